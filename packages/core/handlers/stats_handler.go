package handlers

import (
	"net/http"

	"pelada-api/packages/core/api"
	"pelada-api/packages/core/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats retrieves general statistics
// @Summary Get general statistics
// @Description Totals of players, matches and goals with a weekly comparison
// @Tags stats
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.Stats}
// @Failure 500 {object} models.APIResponse
// @Router /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	api.Success(c, http.StatusOK, "Statistics retrieved", stats)
}
