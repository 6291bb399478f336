package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"polytracker/internal/apperr"
	"polytracker/internal/client/gamma"
	"polytracker/internal/models"
	"polytracker/internal/repository"
)

// MarketHandler covers tracked-market CRUD plus the Gamma passthrough
// endpoints the frontend browses markets with.
type MarketHandler struct {
	Repo   repository.Repository
	Gamma  *gamma.Client
	Logger *zap.Logger
}

func (h *MarketHandler) Register(r *gin.Engine) {
	r.GET("/api/events", h.listEvents)
	r.GET("/api/market/:slug", h.getMarket)
	group := r.Group("/api/tracked-markets")
	group.POST("", h.create)
	group.GET("", h.list)
	group.DELETE("/:id", h.remove)
}

// @Summary List upstream events, optionally by tag
// @Tags markets
// @Param tag_slug query string false "tag slug"
// @Param limit query int false "page size"
// @Success 200 {object} apiResponse
// @Router /api/events [get]
func (h *MarketHandler) listEvents(c *gin.Context) {
	tagSlug := strings.TrimSpace(c.Query("tag_slug"))
	limit := intQuery(c, "limit", 50)
	events, err := h.Gamma.ListEvents(c.Request.Context(), gamma.ListEventsParams{
		TagSlug: tagSlug,
		Limit:   limit,
		Order:   "volume24hr",
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	payload := make([]json.RawMessage, 0, len(events))
	for _, ev := range events {
		payload = append(payload, ev.Raw)
	}
	Ok(c, payload, nil)
}

// @Summary Upstream market details
// @Tags markets
// @Param slug path string true "market slug or id"
// @Success 200 {object} apiResponse
// @Router /api/market/{slug} [get]
func (h *MarketHandler) getMarket(c *gin.Context) {
	slug := c.Param("slug")
	ev, err := h.Gamma.GetEvent(c.Request.Context(), slug)
	if apperr.IsNotFound(err) {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, json.RawMessage(ev.Raw), nil)
}

type createTrackedMarketRequest struct {
	MarketSlug string  `json:"market_slug" binding:"required"`
	MarketID   *string `json:"market_id"`
	Title      string  `json:"title" binding:"required"`
	TagSlug    *string `json:"tag_slug"`
}

// @Summary Start tracking a market
// @Tags markets
// @Accept json
// @Success 200 {object} apiResponse
// @Router /api/tracked-markets [post]
func (h *MarketHandler) create(c *gin.Context) {
	var req createTrackedMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	ctx := c.Request.Context()
	if existing, err := h.Repo.GetInstrumentBySlug(ctx, req.MarketSlug); err == nil && existing != nil {
		Error(c, http.StatusConflict, "market already tracked", nil)
		return
	} else if err != nil && !apperr.IsNotFound(err) {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	item := models.Instrument{
		Slug:       req.MarketSlug,
		ExternalID: req.MarketID,
		Title:      req.Title,
		TagSlug:    req.TagSlug,
	}
	if err := h.Repo.CreateInstrument(ctx, &item); err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	if h.Logger != nil {
		h.Logger.Info("market tracked", zap.Uint64("instrument_id", item.ID), zap.String("slug", item.Slug))
	}
	Ok(c, item, nil)
}

// @Summary List tracked markets
// @Tags markets
// @Success 200 {object} apiResponse
// @Router /api/tracked-markets [get]
func (h *MarketHandler) list(c *gin.Context) {
	items, err := h.Repo.ListInstruments(c.Request.Context())
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// @Summary Stop tracking a market
// @Tags markets
// @Param id path int true "instrument id"
// @Success 200 {object} apiResponse
// @Router /api/tracked-markets/{id} [delete]
func (h *MarketHandler) remove(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	err := h.Repo.DeleteInstrument(c.Request.Context(), id)
	if apperr.IsNotFound(err) {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}
	Ok(c, gin.H{"message": "market removed from tracking"}, nil)
}
