package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	authMiddleware "pelada-api/packages/auth/middleware"
	"pelada-api/packages/core/api"
	"pelada-api/packages/core/models"
	"pelada-api/packages/core/services"
	"pelada-api/packages/core/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxAvatarBytes = 2 << 20

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type PlayerHandler struct {
	playerService        *services.PlayerService
	ratingHistoryService *services.RatingHistoryService
	uploader             storage.FileUploader
}

// NewPlayerHandler wires the player endpoints. uploader may be nil, in which
// case avatar uploads answer 503.
func NewPlayerHandler(playerService *services.PlayerService, ratingHistoryService *services.RatingHistoryService, uploader storage.FileUploader) *PlayerHandler {
	return &PlayerHandler{
		playerService:        playerService,
		ratingHistoryService: ratingHistoryService,
		uploader:             uploader,
	}
}

// GetPlayer retrieves a player by ID
// @Summary Get player by ID
// @Tags players
// @Produce json
// @Param id path int true "Player ID"
// @Success 200 {object} models.APIResponse{data=models.Player}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /players/{id} [get]
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	id, ok := parseID(c, "id", "player")
	if !ok {
		return
	}

	player, err := h.playerService.GetPlayerByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Player retrieved", player)
}

// GetMe returns the player profile of the authenticated user
// @Summary Get my player profile
// @Tags players
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.Player}
// @Failure 404 {object} models.APIResponse
// @Router /players/me [get]
func (h *PlayerHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	player, err := h.playerService.GetPlayerByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoPlayerProfile) {
			api.Fail(c, http.StatusNotFound, "Player not found", nil)
			return
		}
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Player retrieved", player)
}

// GetRatingHistory retrieves the per-match rating trail of a player
// @Summary Get player rating history
// @Tags players
// @Produce json
// @Param id path int true "Player ID"
// @Success 200 {object} models.APIResponse{data=[]models.RatingHistoryEntry}
// @Failure 404 {object} models.APIResponse
// @Router /players/{id}/rating-history [get]
func (h *PlayerHandler) GetRatingHistory(c *gin.Context) {
	id, ok := parseID(c, "id", "player")
	if !ok {
		return
	}

	history, err := h.ratingHistoryService.GetPlayerRatingHistory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Rating history retrieved", history)
}

// GetTopPlayers ranks players on one career stat
// @Summary Get top players
// @Description Top N players by a career stat, optionally appending the current user when outside the top
// @Tags players
// @Produce json
// @Param by query string false "goals, assists, tackles, wins, mvps or average_rating (default)"
// @Param limit query int false "Number of players (default: 10, max: 100)"
// @Param includeCurrentUser query bool false "Append the current user's player when not in the top (default: false)"
// @Success 200 {object} models.APIResponse{data=[]models.Player}
// @Failure 400 {object} models.APIResponse
// @Router /players/top [get]
func (h *PlayerHandler) GetTopPlayers(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 10, maxPerPage)
	if !ok {
		return
	}

	includeCurrentUser, err := strconv.ParseBool(c.DefaultQuery("includeCurrentUser", "false"))
	if err != nil {
		api.Fail(c, http.StatusBadRequest, "Invalid includeCurrentUser parameter", nil)
		return
	}

	players, err := h.playerService.GetTopPlayers(c.Request.Context(), c.DefaultQuery("by", "average_rating"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if includeCurrentUser {
		if userID, exists := authMiddleware.GetUserID(c); exists {
			players = h.appendCurrentPlayer(c, players, userID)
		}
	}

	api.Success(c, http.StatusOK, "Top players retrieved", players)
}

func (h *PlayerHandler) appendCurrentPlayer(c *gin.Context, players []models.Player, userID uint) []models.Player {
	for _, player := range players {
		if player.UserID == userID {
			return players
		}
	}
	me, err := h.playerService.GetPlayerByUserID(c.Request.Context(), userID)
	if err != nil {
		return players
	}
	return append(players, *me)
}

// GetPlayerMatches lists the matches of a player, newest first
// @Summary Get matches for a player
// @Tags players
// @Produce json
// @Param id path int true "Player ID"
// @Param status query string false "Filter by match status"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Matches per page (default: 10, max: 100)"
// @Success 200 {object} models.APIResponse{data=models.PaginatedMatchResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /players/{id}/matches [get]
func (h *PlayerHandler) GetPlayerMatches(c *gin.Context) {
	id, ok := parseID(c, "id", "player")
	if !ok {
		return
	}
	status, ok := queryStatus(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page", 1, 0)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "pageSize", 10, maxPerPage)
	if !ok {
		return
	}

	matches, err := h.playerService.GetPlayerMatches(c.Request.Context(), id, status, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Player matches retrieved", matches)
}

// GetAllPlayers retrieves all players with pagination and sorting
// @Summary Get all players
// @Tags players
// @Produce json
// @Param orderBy query string false "created_at, name, goals, assists, wins, matches or average_rating (default: created_at)"
// @Param direction query string false "ASC or DESC (default: DESC)"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Players per page (default: 10, max: 100)"
// @Success 200 {object} models.APIResponse{data=models.PaginatedPlayersResponse}
// @Failure 400 {object} models.APIResponse
// @Router /players [get]
func (h *PlayerHandler) GetAllPlayers(c *gin.Context) {
	page, ok := queryInt(c, "page", 1, 0)
	if !ok {
		return
	}
	pageSize, ok := queryInt(c, "pageSize", 10, maxPerPage)
	if !ok {
		return
	}

	players, err := h.playerService.GetAllPlayers(
		c.Request.Context(),
		c.DefaultQuery("orderBy", "created_at"),
		c.DefaultQuery("direction", "DESC"),
		page,
		pageSize,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Players retrieved", players)
}

// UpdatePlayer edits the caller's own profile
// @Summary Update a player
// @Tags players
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Player ID"
// @Param player body models.UpdatePlayerRequest true "Profile fields"
// @Success 200 {object} models.APIResponse{data=models.Player}
// @Failure 403 {object} models.APIResponse
// @Failure 422 {object} models.APIResponse
// @Router /players/{id} [put]
func (h *PlayerHandler) UpdatePlayer(c *gin.Context) {
	id, ok := parseID(c, "id", "player")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdatePlayerRequest
	if !api.BindJSON(c, &req) {
		return
	}

	player, err := h.playerService.UpdatePlayer(c.Request.Context(), id, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Player updated", player)
}

// UploadAvatar stores a new profile picture for the caller
// @Summary Upload my avatar
// @Description Multipart field image, at most 2 MiB, jpeg, png or webp
// @Tags players
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Avatar image"
// @Success 200 {object} models.APIResponse{data=models.Player}
// @Failure 422 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse
// @Router /players/me/avatar [post]
func (h *PlayerHandler) UploadAvatar(c *gin.Context) {
	if h.uploader == nil {
		api.Fail(c, http.StatusServiceUnavailable, "File storage is not configured", nil)
		return
	}

	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		api.FieldErrors(c, map[string][]string{"image": {"The image field is required."}})
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		api.FieldErrors(c, map[string][]string{"image": {"The image may not be greater than 2048 kilobytes."}})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open avatar upload: %w", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		respondError(c, fmt.Errorf("read avatar upload: %w", err))
		return
	}
	if len(content) > maxAvatarBytes {
		api.FieldErrors(c, map[string][]string{"image": {"The image may not be greater than 2048 kilobytes."}})
		return
	}

	contentType := http.DetectContentType(content)
	ext, allowed := avatarExtensions[contentType]
	if !allowed {
		api.FieldErrors(c, map[string][]string{"image": {"The image must be a file of type: jpeg, png, webp."}})
		return
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("avatars/%d/%s%s", player.ID, uuid.NewString(), ext)
	uploaded, err := h.uploader.Upload(ctx, key, contentType, bytes.NewReader(content))
	if err != nil {
		respondError(c, err)
		return
	}

	previous, err := h.playerService.SetPlayerImage(ctx, player.ID, uploaded.Location)
	if err != nil {
		if delErr := h.uploader.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to remove orphan avatar", "key", key, "error", delErr)
		}
		respondError(c, err)
		return
	}

	if previous != nil {
		if oldKey, ok := h.uploader.KeyFromURL(*previous); ok {
			if err := h.uploader.Delete(ctx, oldKey); err != nil {
				slog.Warn("failed to delete previous avatar", "player_id", player.ID, "key", oldKey, "error", err)
			}
		}
	}

	updated, err := h.playerService.GetPlayerByID(ctx, player.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	slog.Info("avatar uploaded", "player_id", player.ID, "key", key)
	api.Success(c, http.StatusOK, "Avatar uploaded", updated)
}
