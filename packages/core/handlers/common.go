package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	authMiddleware "pelada-api/packages/auth/middleware"
	"pelada-api/packages/core/api"
	"pelada-api/packages/core/models"
	"pelada-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes. Unknown errors are
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		api.Fail(c, http.StatusUnprocessableEntity, verr.Message, verr.Fields)
	case errors.Is(err, services.ErrNotMatchAdmin), errors.Is(err, services.ErrNotPlayerOwner):
		api.Fail(c, http.StatusForbidden, capitalize(err.Error()), nil)
	case errors.Is(err, services.ErrMatchNotFound):
		api.Fail(c, http.StatusNotFound, "Match not found", nil)
	case errors.Is(err, services.ErrPlayerNotFound):
		api.Fail(c, http.StatusNotFound, "Player not found", nil)
	case errors.Is(err, services.ErrNoPlayerProfile):
		api.Fail(c, http.StatusBadRequest, "No player profile is linked to this account", nil)
	case isStateConflict(err):
		api.Fail(c, http.StatusBadRequest, capitalize(services.Reasons(err)[0]), services.Reasons(err))
	default:
		slog.Error("request failed", "path", c.FullPath(), "method", c.Request.Method, "error", err)
		api.Fail(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

var stateConflicts = []error{
	services.ErrMatchFull,
	services.ErrMatchNotWaiting,
	services.ErrAlreadyJoined,
	services.ErrNotAParticipant,
	services.ErrAdminCannotLeave,
	services.ErrMatchStarted,
	services.ErrMatchNotInProgress,
	services.ErrMatchClosed,
}

func isStateConflict(err error) bool {
	for _, target := range stateConflicts {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func parseID(c *gin.Context, param, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		api.Fail(c, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return 0, false
	}
	return uint(id), true
}

// queryInt reads a positive integer query parameter, falling back to def and
// capping at max when max > 0.
func queryInt(c *gin.Context, name string, def, max int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		api.Fail(c, http.StatusBadRequest, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	if max > 0 && value > max {
		value = max
	}
	return value, true
}

func queryStatus(c *gin.Context) (*models.MatchStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status := models.MatchStatus(raw)
	if !status.IsValid() {
		api.FieldErrors(c, map[string][]string{"status": {"The selected status is invalid."}})
		return nil, false
	}
	return &status, true
}

func currentUserID(c *gin.Context) (uint, bool) {
	userID, ok := authMiddleware.GetUserID(c)
	if !ok {
		api.Fail(c, http.StatusUnauthorized, "Unauthorized", nil)
		return 0, false
	}
	return userID, true
}

// currentPlayer resolves the player profile of the authenticated user.
func currentPlayer(c *gin.Context, players *services.PlayerService) (*models.Player, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	player, err := players.GetPlayerByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return player, true
}
