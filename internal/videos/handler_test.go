package videos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/airtime-feed/backend/internal/models"
)

type memRepo struct {
	mu      sync.Mutex
	videos  []models.Video
	err     error
	listErr error
}

func (r *memRepo) List(ctx context.Context) ([]models.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]models.Video(nil), r.videos...), nil
}

func (r *memRepo) Create(ctx context.Context, v *models.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.videos = append(r.videos, *v)
	return nil
}

type memMedia struct {
	saved   map[string][]byte
	deleted []string
	err     error
}

func newMemMedia() *memMedia { return &memMedia{saved: map[string][]byte{}} }

func (m *memMedia) Save(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.saved[name] = b
	return "/videos/" + name, nil
}

func (m *memMedia) Delete(ctx context.Context, name string) error {
	m.deleted = append(m.deleted, name)
	delete(m.saved, name)
	return nil
}

type countNotifier struct{ n int }

func (c *countNotifier) VideosChanged() { c.n++ }

type uploadForm struct {
	filename    string
	contentType string
	body        []byte
	schedule    string
	duration    string
	noFile      bool
}

func (f uploadForm) request(t *testing.T) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if !f.noFile {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename=%q`, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(f.body)
	}
	if f.schedule != "" {
		w.WriteField("schedule", f.schedule)
	}
	if f.duration != "" {
		w.WriteField("duration", f.duration)
	}
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

const validSchedule = `{"days":["Monday","friday"],"startTime":"09:00","endTime":"18:00","timezone":"Europe/Rome"}`

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/upload", h.Upload)
	r.GET("/api/videos", h.List)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

func TestUpload_Success(t *testing.T) {
	repo := &memRepo{}
	media := newMemMedia()
	notifier := &countNotifier{}
	h := NewHandler(repo, media, notifier, 0, nil)
	h.now = func() time.Time { return time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, uploadForm{
		filename:    "my clip.mp4",
		contentType: "video/mp4",
		body:        bytes.Repeat([]byte("x"), 1024*1024+1),
		schedule:    validSchedule,
	}.request(t))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	if err := json.Unmarshal(decode(t, w).Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.VideoID == "" || !strings.HasSuffix(resp.VideoPath, resp.VideoID+"-my_clip.mp4") {
		t.Errorf("unexpected ids: %+v", resp)
	}
	if resp.Duration != 2 {
		t.Errorf("duration = %v, want 2 (ceil of size in MiB)", resp.Duration)
	}
	if got := resp.Schedule.Days; len(got) != 2 || got[0] != "monday" || got[1] != "friday" {
		t.Errorf("days = %v, want normalized [monday friday]", got)
	}
	if len(repo.videos) != 1 {
		t.Fatalf("stored %d records, want 1", len(repo.videos))
	}
	v := repo.videos[0]
	if !v.Active() || v.Schedule == nil || v.URL != resp.VideoPath || !v.UploadedAt.Equal(h.now()) {
		t.Errorf("stored record = %+v", v)
	}
	if notifier.n != 1 {
		t.Errorf("notifier called %d times, want 1", notifier.n)
	}
}

func TestUpload_ExplicitDuration(t *testing.T) {
	repo := &memRepo{}
	h := NewHandler(repo, newMemMedia(), nil, 0, nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, uploadForm{
		filename: "a.webm", contentType: "video/webm", body: []byte("abc"),
		schedule: validSchedule, duration: "12.5",
	}.request(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if repo.videos[0].Duration != 12.5 {
		t.Errorf("duration = %v, want 12.5", repo.videos[0].Duration)
	}
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name string
		form uploadForm
	}{
		{"missing file", uploadForm{noFile: true, schedule: validSchedule}},
		{"missing schedule", uploadForm{filename: "a.mp4", contentType: "video/mp4", body: []byte("a")}},
		{"malformed schedule", uploadForm{filename: "a.mp4", contentType: "video/mp4", body: []byte("a"), schedule: "{days"}},
		{"empty days", uploadForm{filename: "a.mp4", contentType: "video/mp4", body: []byte("a"),
			schedule: `{"days":[],"startTime":"09:00","endTime":"18:00"}`}},
		{"bad time", uploadForm{filename: "a.mp4", contentType: "video/mp4", body: []byte("a"),
			schedule: `{"days":["monday"],"startTime":"9:00","endTime":"18:00"}`}},
		{"wrong type", uploadForm{filename: "a.png", contentType: "image/png", body: []byte("a"), schedule: validSchedule}},
		{"oversize", uploadForm{filename: "a.mp4", contentType: "video/mp4", body: bytes.Repeat([]byte("x"), 2048), schedule: validSchedule}},
		{"bad duration", uploadForm{filename: "a.mp4", contentType: "video/mp4", body: []byte("a"), schedule: validSchedule, duration: "-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			media := newMemMedia()
			h := NewHandler(repo, media, nil, 1024, nil)
			w := httptest.NewRecorder()
			newTestRouter(h).ServeHTTP(w, tt.form.request(t))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			if env := decode(t, w); env.Success || env.Error == "" {
				t.Errorf("envelope = %+v", env)
			}
			if len(repo.videos) != 0 || len(media.saved) != 0 {
				t.Error("rejected upload must not store anything")
			}
		})
	}
}

func TestUpload_RepositoryFailureRemovesMedia(t *testing.T) {
	repo := &memRepo{err: errors.New("redis down")}
	media := newMemMedia()
	h := NewHandler(repo, media, nil, 0, nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, uploadForm{
		filename: "a.mp4", contentType: "video/mp4", body: []byte("a"), schedule: validSchedule,
	}.request(t))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if len(media.deleted) != 1 || len(media.saved) != 0 {
		t.Errorf("media not rolled back: saved=%v deleted=%v", media.saved, media.deleted)
	}
}

func TestUpload_MediaFailure(t *testing.T) {
	repo := &memRepo{}
	media := newMemMedia()
	media.err = errors.New("disk full")
	h := NewHandler(repo, media, nil, 0, nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, uploadForm{
		filename: "a.mp4", contentType: "video/mp4", body: []byte("a"), schedule: validSchedule,
	}.request(t))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if len(repo.videos) != 0 {
		t.Error("record stored despite media failure")
	}
}

func TestList_ExcludesInactive(t *testing.T) {
	repo := &memRepo{videos: []models.Video{
		{ID: "a", URL: "/videos/a.mp4"},
		{ID: "b", URL: "/videos/b.mp4", IsActive: models.Bool(false)},
		{ID: "c", URL: "/videos/c.mp4", IsActive: models.Bool(true),
			Schedule: &models.Schedule{Days: []string{"sunday"}, StartTime: "00:00", EndTime: "00:01"}},
	}}
	h := NewHandler(repo, newMemMedia(), nil, 0, nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/videos", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var list []models.Video
	if err := json.Unmarshal(decode(t, w).Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "c" {
		t.Errorf("list = %+v, want a and c", list)
	}
}

func TestList_Failure(t *testing.T) {
	h := NewHandler(&memRepo{listErr: errors.New("boom")}, newMemMedia(), nil, 0, nil)
	w := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/videos", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if env := decode(t, w); env.Error != "failed to list videos" {
		t.Errorf("error = %q", env.Error)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		raw     string
		size    int64
		want    float64
		wantErr bool
	}{
		{"", 0, 0, false},
		{"", 1, 1, false},
		{"", 3 * 1024 * 1024, 3, false},
		{" 30 ", 10, 30, false},
		{"0", 10, 0, true},
		{"abc", 10, 0, true},
		{"NaN", 10, 0, true},
	}
	for _, tt := range tests {
		got, err := parseDuration(tt.raw, tt.size)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseDuration(%q, %d) = %v, %v", tt.raw, tt.size, got, err)
		}
	}
}
