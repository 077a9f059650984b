package api

import (
	"net/http"
	"time"

	"mayday/coordinator/internal/common"
	"mayday/coordinator/internal/services"
)

// StatsHandler handles GET /api/v1/stats
//
// @Summary      Dashboard summary
// @Description  Active events, volunteer rows, offered resource quantity and locations.
// @Tags         Stats
// @Produce      json
// @Success      200  {object}  dtos.APIResponse
// @Router       /api/v1/stats [get]
func StatsHandler(stats *services.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		out, err := stats.Get(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err, "Failed to compute stats")
			return
		}
		common.RespondSuccess(w, initTime, "Stats fetched", out)
	}
}
