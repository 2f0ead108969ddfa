package realtime

import (
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// EventVideoChanged carries a feed snapshot to viewers.
const EventVideoChanged = "video_changed"

var viewersGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "airtime_feed_viewers",
	Help: "Number of connected websocket viewers.",
})

// Hub keeps the set of connected viewers and fans messages out to them.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a viewer.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	count := len(h.clients)
	h.mu.Unlock()
	viewersGauge.Set(float64(count))
	h.logger.Debug("viewer connected", zap.String("client_id", c.ID), zap.Int("viewers", count))
}

// Unregister removes a viewer and stops its writer.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		c.closeOnce.Do(func() { close(c.done) })
	}
	count := len(h.clients)
	h.mu.Unlock()
	viewersGauge.Set(float64(count))
	h.logger.Debug("viewer disconnected", zap.String("client_id", c.ID), zap.Int("viewers", count))
}

// Broadcast sends an event to every viewer. Slow viewers with a full buffer miss the message.
func (h *Hub) Broadcast(event string, payload interface{}) {
	msg, err := newMessage(event, payload)
	if err != nil {
		h.logger.Warn("encode broadcast failed", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.enqueue(msg)
	}
}

// Count returns the number of connected viewers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func newMessage(event string, payload interface{}) (WSMessage, error) {
	var data []byte
	switch v := payload.(type) {
	case nil:
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			return WSMessage{}, err
		}
		data = b
	}
	return WSMessage{Event: event, Data: data}, nil
}
