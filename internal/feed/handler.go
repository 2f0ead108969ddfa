package feed

import (
	"github.com/gin-gonic/gin"

	"github.com/airtime-feed/backend/pkg/response"
)

// Handler serves the feed state over HTTP.
type Handler struct {
	engine *Engine
}

// NewHandler creates a feed handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Current handles GET /api/feed/current.
func (h *Handler) Current(c *gin.Context) {
	response.OK(c, h.engine.Snapshot())
}
