package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"polytracker/internal/apperr"
	"polytracker/internal/models"
	"polytracker/internal/repository"
	"polytracker/internal/service"
)

type AlertHandler struct {
	Repo   repository.Repository
	Ledger *service.AlertLedger
}

func (h *AlertHandler) Register(r *gin.Engine) {
	r.GET("/api/alerts", h.listAlerts)
	r.GET("/api/markets/:id/shifts", h.listShifts)
	r.POST("/api/alerts/ack/:id", h.acknowledge)
}

// @Summary List alerts, active by default
// @Tags alerts
// @Param status query string false "filter by status"
// @Param include_all query bool false "include acknowledged alerts"
// @Success 200 {object} apiResponse
// @Router /api/alerts [get]
func (h *AlertHandler) listAlerts(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	includeAll := strings.EqualFold(c.Query("include_all"), "true")

	params := repository.ListAlertsParams{Limit: 500}
	if status != "" {
		params.Status = &status
	} else if !includeAll {
		active := models.AlertStatusActive
		params.Status = &active
	}
	items, err := h.Repo.ListAlerts(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary All shifts for one market, strongest impact first
// @Tags alerts
// @Param id path int true "instrument id"
// @Success 200 {object} apiResponse
// @Router /api/markets/{id}/shifts [get]
func (h *AlertHandler) listShifts(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	items, err := h.Repo.ListAlertsByImpact(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary Acknowledge an alert
// @Tags alerts
// @Param id path int true "alert id"
// @Success 200 {object} apiResponse
// @Router /api/alerts/ack/{id} [post]
func (h *AlertHandler) acknowledge(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	err := h.Ledger.Acknowledge(c.Request.Context(), id)
	if apperr.IsNotFound(err) {
		Error(c, http.StatusNotFound, "alert not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"message": "alert acknowledged"}, nil)
}
