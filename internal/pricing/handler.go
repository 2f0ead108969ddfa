package pricing

import (
	"github.com/gin-gonic/gin"

	"github.com/airtime-feed/backend/pkg/response"
)

// QuoteRequest is the body for POST /api/pricing/quote.
type QuoteRequest struct {
	Duration float64 `json:"duration" binding:"required"`
	Days     int     `json:"days"`
}

// Handler serves price quotes.
type Handler struct {
	calc *Calculator
}

// NewHandler creates a pricing handler.
func NewHandler(calc *Calculator) *Handler {
	return &Handler{calc: calc}
}

// Quote handles POST /api/pricing/quote. Days defaults to 1.
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Days == 0 {
		req.Days = 1
	}
	q, err := h.calc.Quote(req.Duration, req.Days)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.OK(c, q)
}
