package handlers

import (
	"context"
	"net/http"

	"pelada-api/packages/core/api"
	"pelada-api/packages/core/models"
	"pelada-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

const (
	defaultMatchesPerPage = 15
	maxPerPage            = 100
)

type MatchHandler struct {
	matchService  *services.MatchService
	playerService *services.PlayerService
}

func NewMatchHandler(matchService *services.MatchService, playerService *services.PlayerService) *MatchHandler {
	return &MatchHandler{
		matchService:  matchService,
		playerService: playerService,
	}
}

// CanJoinResponse tells the caller whether joining would succeed right now.
type CanJoinResponse struct {
	CanJoin bool `json:"can_join"`
}

// CreateMatch creates a match administered by the caller
// @Summary Create a match
// @Description Create a waiting match with a unique 6 character join code. The admin is not joined automatically.
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param match body models.CreateMatchRequest true "Match configuration"
// @Success 201 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 400 {object} models.APIResponse
// @Failure 422 {object} models.APIResponse
// @Router /matches [post]
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	var req models.CreateMatchRequest
	if !api.BindJSON(c, &req) {
		return
	}

	match, err := h.matchService.CreateMatch(c.Request.Context(), player.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusCreated, "Match created", match)
}

// GetMatches lists matches, newest first
// @Summary List matches
// @Description Paginated match list with admin summary and participant count
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status: waiting, in_progress, finished, cancelled"
// @Param page query int false "Page number (default: 1)"
// @Param per_page query int false "Matches per page (default: 15, max: 100)"
// @Success 200 {object} models.APIResponse{data=models.PaginatedMatchResponse}
// @Failure 400 {object} models.APIResponse
// @Router /matches [get]
func (h *MatchHandler) GetMatches(c *gin.Context) {
	status, ok := queryStatus(c)
	if !ok {
		return
	}
	page, ok := queryInt(c, "page", 1, 0)
	if !ok {
		return
	}
	perPage, ok := queryInt(c, "per_page", defaultMatchesPerPage, maxPerPage)
	if !ok {
		return
	}

	matches, err := h.matchService.GetMatches(c.Request.Context(), services.MatchFilters{
		Status:  status,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Matches retrieved", matches)
}

// GetMatch returns the full read model of a match
// @Summary Get match by ID
// @Description Match with admin, participants, teams and event ledger
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 404 {object} models.APIResponse
// @Router /matches/{id} [get]
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}

	match, err := h.matchService.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Match retrieved", match)
}

// @Summary Get match by join code
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param code path string true "Join code"
// @Success 200 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 404 {object} models.APIResponse
// @Router /matches/code/{code} [get]
func (h *MatchHandler) GetMatchByCode(c *gin.Context) {
	match, err := h.matchService.GetMatchByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Match retrieved", match)
}

// UpdateMatch edits the configuration of a waiting match
// @Summary Update a match
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param match body models.UpdateMatchRequest true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 422 {object} models.APIResponse
// @Router /matches/{id} [put]
func (h *MatchHandler) UpdateMatch(c *gin.Context) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	var req models.UpdateMatchRequest
	if !api.BindJSON(c, &req) {
		return
	}

	match, err := h.matchService.UpdateMatch(c.Request.Context(), matchID, player.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Match updated", match)
}

// @Summary Cancel a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /matches/{id}/cancel [patch]
func (h *MatchHandler) CancelMatch(c *gin.Context) {
	h.adminAction(c, "Match cancelled", h.matchService.CancelMatch)
}

// @Summary Delete a match
// @Description Delete a match with its teams, participants and events
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /matches/{id} [delete]
func (h *MatchHandler) DeleteMatch(c *gin.Context) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	if err := h.matchService.DeleteMatch(c.Request.Context(), matchID, player.ID); err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Match deleted", nil)
}

// JoinMatch adds the caller to a match by join code
// @Summary Join a match
// @Description Join by code. When ineligible, errors lists every failing reason.
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.JoinMatchRequest true "Join code"
// @Success 200 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /matches/join [post]
func (h *MatchHandler) JoinMatch(c *gin.Context) {
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	var req models.JoinMatchRequest
	if !api.BindJSON(c, &req) {
		return
	}

	match, err := h.matchService.JoinMatch(c.Request.Context(), req.Code, player.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Joined match", match)
}

// @Summary Check whether the caller can join
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse{data=CanJoinResponse}
// @Failure 404 {object} models.APIResponse
// @Router /matches/{id}/can-join [get]
func (h *MatchHandler) CanJoin(c *gin.Context) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	canJoin, err := h.matchService.CanJoin(c.Request.Context(), matchID, player.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Eligibility checked", CanJoinResponse{CanJoin: canJoin})
}

// @Summary Leave a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /matches/{id}/leave [post]
func (h *MatchHandler) LeaveMatch(c *gin.Context) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	if err := h.matchService.LeaveMatch(c.Request.Context(), matchID, player.ID); err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Left match", nil)
}

// @Summary Shuffle teams
// @Description Randomly split the participants into team A and team B, resetting their match counters
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse{data=models.ShuffleResult}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /matches/{id}/shuffle-teams [post]
func (h *MatchHandler) ShuffleTeams(c *gin.Context) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	result, err := h.matchService.ShuffleTeams(c.Request.Context(), matchID, player.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Teams shuffled", result)
}

// @Summary Start a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /matches/{id}/start [post]
func (h *MatchHandler) StartMatch(c *gin.Context) {
	h.adminAction(c, "Match started", h.matchService.StartMatch)
}

// @Summary Pause or resume a match
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /matches/{id}/toggle-pause [post]
func (h *MatchHandler) TogglePause(c *gin.Context) {
	h.adminAction(c, "Match pause toggled", h.matchService.TogglePause)
}

// @Summary Finish a match
// @Description Close the match, decide the winner and propagate career stats
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} models.APIResponse{data=models.MatchDetail}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /matches/{id}/finish [post]
func (h *MatchHandler) FinishMatch(c *gin.Context) {
	h.adminAction(c, "Match finished", h.matchService.FinishMatch)
}

// @Summary Record a match event
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param event body models.AddEventRequest true "Event"
// @Success 201 {object} models.APIResponse{data=models.EventView}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 422 {object} models.APIResponse
// @Router /matches/{id}/events [post]
func (h *MatchHandler) AddEvent(c *gin.Context) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	var req models.AddEventRequest
	if !api.BindJSON(c, &req) {
		return
	}

	event, err := h.matchService.AddEvent(c.Request.Context(), matchID, player.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusCreated, "Event recorded", event)
}

// @Summary List match events
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param id path int true "Match ID"
// @Param type query string false "Filter by event type: goal, assist, tackle, defense"
// @Success 200 {object} models.APIResponse{data=[]models.EventView}
// @Failure 404 {object} models.APIResponse
// @Router /matches/{id}/events [get]
func (h *MatchHandler) GetMatchEvents(c *gin.Context) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}

	var eventType *models.EventType
	if raw := c.Query("type"); raw != "" {
		t := models.EventType(raw)
		if !t.IsValid() {
			api.FieldErrors(c, map[string][]string{"type": {"The selected type is invalid."}})
			return
		}
		eventType = &t
	}

	events, err := h.matchService.GetMatchEvents(c.Request.Context(), matchID, eventType)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Events retrieved", events)
}

type adminOperation func(ctx context.Context, matchID, actorID uint) (*models.MatchDetail, error)

// adminAction runs a state transition that only the match admin may trigger.
func (h *MatchHandler) adminAction(c *gin.Context, message string, op adminOperation) {
	matchID, ok := parseID(c, "id", "match")
	if !ok {
		return
	}
	player, ok := currentPlayer(c, h.playerService)
	if !ok {
		return
	}

	match, err := op(c.Request.Context(), matchID, player.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, message, match)
}
