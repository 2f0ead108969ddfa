package payments

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func serve(h *Handler, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/create-payment-intent", h.CreateIntent)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateIntent_Disabled(t *testing.T) {
	w := serve(NewHandler(Config{}, nil), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var env struct {
		Success bool           `json:"success"`
		Data    IntentResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if !env.Success || env.Data.ClientSecret != "pi_dummy_secret" || env.Data.PaymentIntentID != "pi_dummy_id" || env.Data.Message == "" {
		t.Errorf("response = %+v", env)
	}
}

func TestCreateIntent_Enabled(t *testing.T) {
	h := NewHandler(Config{Enabled: true}, nil)
	tests := []struct {
		body string
		want int
	}{
		{`{"amount":0}`, http.StatusBadRequest},
		{`{"amount":-5}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
		{`garbage`, http.StatusBadRequest},
		{`{"amount":30,"currency":"eur"}`, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		if w := serve(h, tt.body); w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.body, w.Code, tt.want)
		}
	}
}
