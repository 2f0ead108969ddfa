// Package payments exposes the payment-intent endpoint. No provider is
// integrated; with payments disabled it returns a simulated intent.
package payments

import (
	"math"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/airtime-feed/backend/pkg/response"
)

// Simulated intent identifiers returned while payments are disabled.
const (
	SimulatedClientSecret    = "pi_dummy_secret"
	SimulatedPaymentIntentID = "pi_dummy_id"
	SimulatedMessage         = "simulated payment (test mode)"
)

// Config controls the payment endpoint.
type Config struct {
	Enabled  bool
	Currency string
}

// IntentRequest is the body for POST /api/create-payment-intent.
type IntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// IntentResponse is returned for a created (or simulated) intent.
type IntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Message         string `json:"message,omitempty"`
}

// Handler serves payment intents.
type Handler struct {
	cfg    Config
	logger *zap.Logger
}

// NewHandler creates a payments handler.
func NewHandler(cfg Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	return &Handler{cfg: cfg, logger: logger}
}

// CreateIntent handles POST /api/create-payment-intent.
func (h *Handler) CreateIntent(c *gin.Context) {
	if !h.cfg.Enabled {
		response.OK(c, IntentResponse{
			ClientSecret:    SimulatedClientSecret,
			PaymentIntentID: SimulatedPaymentIntentID,
			Message:         SimulatedMessage,
		})
		return
	}

	var req IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		response.BadRequest(c, "invalid amount")
		return
	}
	if req.Currency == "" {
		req.Currency = h.cfg.Currency
	}
	h.logger.Warn("payment intent requested but no provider is configured",
		zap.Int64("amount_cents", int64(math.Round(req.Amount*100))),
		zap.String("currency", req.Currency),
	)
	response.ServiceUnavailable(c, "payment provider not configured")
}
