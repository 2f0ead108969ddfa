package videos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/airtime-feed/backend/internal/models"
)

func TestDecodeHash_OrdersAndSkipsMalformed(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	enc := func(v models.Video) string {
		b, _ := json.Marshal(v)
		return string(b)
	}
	fields := map[string]string{
		"c":   enc(models.Video{ID: "c", URL: "/c", UploadedAt: t0.Add(time.Hour)}),
		"b":   enc(models.Video{ID: "b", URL: "/b", UploadedAt: t0}),
		"a":   enc(models.Video{ID: "a", URL: "/a", UploadedAt: t0}),
		"bad": "{not json",
		"x":   `{"url":"/x","uploadedAt":"2023-12-31T00:00:00Z"}`,
	}
	got := decodeHash(fields, zap.NewNop())
	var ids []string
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	want := []string{"x", "a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestDecodeHash_TimestampIDRecord(t *testing.T) {
	fields := map[string]string{
		"1718000000000": `{"id":"1718000000000","url":"/videos/1718000000000-a.mp4","duration":3,` +
			`"uploadedAt":"2024-06-10T06:13:20.000Z","schedule":{"days":["monday"],"startTime":"09:00",` +
			`"endTime":"18:00","timezone":"Europe/Rome"},"isActive":true}`,
	}
	got := decodeHash(fields, zap.NewNop())
	if len(got) != 1 {
		t.Fatalf("got %d records", len(got))
	}
	v := got[0]
	if v.Schedule == nil || v.Schedule.Timezone != "Europe/Rome" || !v.Active() || v.Duration != 3 {
		t.Errorf("decoded = %+v", v)
	}
}

func TestFilterActive(t *testing.T) {
	in := []models.Video{
		{ID: "a"},
		{ID: "b", IsActive: models.Bool(false)},
		{ID: "c", IsActive: models.Bool(true)},
	}
	got := FilterActive(in)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("FilterActive = %+v", got)
	}
}

func TestClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/videos" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"a","url":"/videos/a.mp4"},{"id":"b","url":"/videos/b.mp4"}]}`))
	}))
	defer srv.Close()

	list, err := NewClient(srv.URL+"/", time.Second).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[1].ID != "b" {
		t.Errorf("list = %+v", list)
	}
}

func TestClient_ListError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"failed to list videos"}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).List(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestClient_CreateReadOnly(t *testing.T) {
	err := NewClient("http://localhost", 0).Create(context.Background(), &models.Video{})
	if !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Create err = %v, want ErrReadOnly", err)
	}
}
