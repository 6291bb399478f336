package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"polytracker/internal/apperr"
	"polytracker/internal/broadcast"
	"polytracker/internal/repository"
)

const wsWriteTimeout = 5 * time.Second

// WSHandler upgrades subscriber connections and ties their lifetime to the
// broadcast registry: attach on accept, detach when the read side drops.
type WSHandler struct {
	Repo     repository.Repository
	Registry *broadcast.Registry
	Logger   *zap.Logger
}

func (h *WSHandler) Register(r *gin.Engine) {
	r.GET("/ws/markets/:id", h.subscribe)
}

func (h *WSHandler) subscribe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	instrument, err := h.Repo.GetInstrumentByID(c.Request.Context(), id)
	if apperr.IsNotFound(err) {
		Error(c, http.StatusNotFound, "market not found", nil)
		return
	}
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("websocket accept failed", zap.Error(err))
		}
		return
	}

	sink := &wsSink{conn: conn}
	h.Registry.Attach(instrument.ID, instrument.Slug, sink)
	defer h.Registry.Detach(instrument.ID, sink)

	// Read loop: keeps the connection alive, answers pings, and ends the
	// subscription when the client goes away.
	ctx := c.Request.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &msg) == nil && msg.Type == "ping" {
			_ = sink.writeJSON(ctx, map[string]string{"type": "pong"})
		}
	}
}

type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Send(ctx context.Context, update broadcast.Update) error {
	return s.writeJSON(ctx, update)
}

func (s *wsSink) writeJSON(ctx context.Context, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return s.conn.Write(wctx, websocket.MessageText, payload)
}

func (s *wsSink) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
