package videos

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airtime-feed/backend/internal/models"
	"github.com/airtime-feed/backend/internal/schedule"
	"github.com/airtime-feed/backend/pkg/response"
	"github.com/airtime-feed/backend/pkg/storage"
)

const bytesPerMiB = 1024 * 1024

// Notifier is told when the video list changes so playback can reload.
type Notifier interface {
	VideosChanged()
}

// UploadResponse is the data returned by POST /api/upload.
type UploadResponse struct {
	VideoID   string          `json:"videoId"`
	VideoPath string          `json:"videoPath"`
	Duration  float64         `json:"duration"`
	Schedule  models.Schedule `json:"schedule"`
}

// Handler serves upload and listing endpoints.
type Handler struct {
	repo     Repository
	media    storage.MediaStore
	notifier Notifier
	maxSize  int64
	now      func() time.Time
	logger   *zap.Logger
}

// NewHandler creates a videos handler. maxSize <= 0 uses storage.DefaultMaxVideoFileSize.
func NewHandler(repo Repository, media storage.MediaStore, notifier Notifier, maxSize int64, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = storage.DefaultMaxVideoFileSize
	}
	return &Handler{repo: repo, media: media, notifier: notifier, maxSize: maxSize, now: time.Now, logger: logger}
}

// Upload handles POST /api/upload (multipart: video, schedule, optional duration).
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("video")
	if err != nil {
		response.BadRequest(c, "missing video (form field: video)")
		return
	}
	rawSchedule := strings.TrimSpace(c.PostForm("schedule"))
	if rawSchedule == "" {
		response.BadRequest(c, "missing schedule (form field: schedule)")
		return
	}
	var sched models.Schedule
	if err := json.Unmarshal([]byte(rawSchedule), &sched); err != nil {
		response.BadRequest(c, "invalid schedule JSON: "+err.Error())
		return
	}
	sched, err = schedule.Normalize(sched)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if file.Size > h.maxSize {
		response.BadRequest(c, fmt.Sprintf("file size exceeds %dMB limit", h.maxSize/bytesPerMiB))
		return
	}
	headerType := file.Header.Get("Content-Type")
	if !storage.ValidateVideoFileType(headerType, file.Filename) {
		response.BadRequest(c, "invalid file type: only mp4, webm and quicktime video allowed")
		return
	}
	duration, err := parseDuration(c.PostForm("duration"), file.Size)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	contentType := storage.ContentTypeForFilename(file.Filename)
	if _, ok := storage.AllowedVideoTypes[headerType]; ok {
		contentType = headerType
	}

	id := uuid.NewString()
	name := storage.ObjectName(id, file.Filename)
	rc, err := file.Open()
	if err != nil {
		h.logger.Error("open uploaded file failed", zap.Error(err))
		response.Internal(c, "failed to read file")
		return
	}
	defer rc.Close()

	ctx := c.Request.Context()
	url, err := h.media.Save(ctx, name, contentType, rc, file.Size)
	if err != nil {
		h.logger.Error("media save failed", zap.Error(err), zap.String("name", name))
		response.Internal(c, "failed to store video")
		return
	}

	v := &models.Video{
		ID:         id,
		URL:        url,
		Duration:   duration,
		UploadedAt: h.now().UTC(),
		Schedule:   &sched,
		IsActive:   models.Bool(true),
	}
	if err := h.repo.Create(ctx, v); err != nil {
		h.logger.Error("save video record failed", zap.Error(err), zap.String("video_id", id))
		if derr := h.media.Delete(ctx, name); derr != nil {
			h.logger.Warn("remove orphaned media failed", zap.Error(derr), zap.String("name", name))
		}
		response.Internal(c, "failed to save video")
		return
	}
	h.logger.Info("video uploaded",
		zap.String("video_id", id),
		zap.String("url", url),
		zap.Int64("size", file.Size),
		zap.Strings("days", sched.Days),
	)
	if h.notifier != nil {
		h.notifier.VideosChanged()
	}

	response.OK(c, UploadResponse{VideoID: id, VideoPath: url, Duration: duration, Schedule: sched})
}

// List handles GET /api/videos. Records with isActive false are omitted.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list videos failed", zap.Error(err))
		response.Internal(c, "failed to list videos")
		return
	}
	response.OK(c, FilterActive(list))
}

var errInvalidDuration = errors.New("invalid duration: must be a positive number of seconds")

// parseDuration reads the optional duration field, falling back to one second per MiB.
func parseDuration(raw string, size int64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return math.Ceil(float64(size) / bytesPerMiB), nil
	}
	d, err := strconv.ParseFloat(raw, 64)
	if err != nil || d <= 0 || math.IsInf(d, 0) || math.IsNaN(d) {
		return 0, errInvalidDuration
	}
	return d, nil
}
