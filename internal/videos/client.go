package videos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airtime-feed/backend/internal/models"
)

// Client reads the video list from a remote server's GET /api/videos.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a read-only repository backed by the listing API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type listEnvelope struct {
	Success bool           `json:"success"`
	Data    []models.Video `json:"data"`
	Error   string         `json:"error"`
}

// List fetches the active video list.
func (c *Client) List(ctx context.Context) ([]models.Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/videos", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get videos: %w", err)
	}
	defer resp.Body.Close()

	var body listEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode videos (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		return nil, fmt.Errorf("get videos: status %d: %s", resp.StatusCode, body.Error)
	}
	return body.Data, nil
}

// Create is not supported over the listing API.
func (c *Client) Create(ctx context.Context, v *models.Video) error {
	return ErrReadOnly
}
