package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"polytracker/internal/service"
)

type TrendingHandler struct {
	Service *service.TrendingService
}

func (h *TrendingHandler) Register(r *gin.Engine) {
	r.GET("/api/trending-categories", h.list)
	r.POST("/api/trending-categories/refresh", h.refresh)
}

// @Summary Cached trending categories
// @Tags trending
// @Success 200 {object} apiResponse
// @Router /api/trending-categories [get]
func (h *TrendingHandler) list(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := h.Service.List(ctx)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if len(items) == 0 {
		// Cold cache; compute inline once rather than returning nothing.
		refreshed, err := h.Service.Refresh(ctx)
		if err != nil {
			Error(c, http.StatusBadGateway, err.Error(), nil)
			return
		}
		items = refreshed
	}
	Ok(c, items, nil)
}

// @Summary Recompute trending categories now
// @Tags trending
// @Success 200 {object} apiResponse
// @Router /api/trending-categories/refresh [post]
func (h *TrendingHandler) refresh(c *gin.Context) {
	items, err := h.Service.Refresh(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"message": "categories refreshed", "count": len(items)}, nil)
}
