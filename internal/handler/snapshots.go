package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"polytracker/internal/repository"
	"polytracker/internal/service"
)

type SnapshotHandler struct {
	Repo   repository.Repository
	Cycle  *service.Cycle
	Logger *zap.Logger
}

func (h *SnapshotHandler) Register(r *gin.Engine) {
	r.GET("/api/markets/:id/snapshots", h.listSnapshots)
	r.POST("/api/snapshots/refresh", h.refresh)
}

// @Summary Snapshot history for a market
// @Tags snapshots
// @Param id path int true "instrument id"
// @Param range_hours query int false "lookback hours"
// @Success 200 {object} apiResponse
// @Router /api/markets/{id}/snapshots [get]
func (h *SnapshotHandler) listSnapshots(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	rangeHours := intQuery(c, "range_hours", 24)
	if rangeHours <= 0 {
		rangeHours = 24
	}
	from := time.Now().UTC().Add(-time.Duration(rangeHours) * time.Hour)
	items, err := h.Repo.ListSnapshotsRange(c.Request.Context(), id, from)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary Manually refresh snapshots and run shift detection
// @Tags snapshots
// @Success 200 {object} apiResponse
// @Router /api/snapshots/refresh [post]
func (h *SnapshotHandler) refresh(c *gin.Context) {
	if err := h.Cycle.Run(c.Request.Context()); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"message": "snapshots refreshed"}, nil)
}
