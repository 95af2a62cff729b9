package handlers

import (
	"net/http"

	"pelada-api/packages/core/api"
	"pelada-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type RatingHistoryHandler struct {
	ratingHistoryService *services.RatingHistoryService
}

func NewRatingHistoryHandler(ratingHistoryService *services.RatingHistoryService) *RatingHistoryHandler {
	return &RatingHistoryHandler{
		ratingHistoryService: ratingHistoryService,
	}
}

// GetRecentRatingChanges lists the latest rating changes across all players
// @Summary Get recent rating changes
// @Tags rating-history
// @Produce json
// @Param limit query int false "Number of entries (default: 20, max: 100)"
// @Success 200 {object} models.APIResponse{data=[]models.RatingHistoryEntry}
// @Failure 400 {object} models.APIResponse
// @Router /rating-history/recent [get]
func (h *RatingHistoryHandler) GetRecentRatingChanges(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 20, maxPerPage)
	if !ok {
		return
	}

	history, err := h.ratingHistoryService.GetRecentRatingChanges(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Rating changes retrieved", history)
}
