package storage

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
)

// DefaultMaxVideoFileSize is the upload limit when none is configured (100MB).
const DefaultMaxVideoFileSize = 100 * 1024 * 1024

// MediaStore persists uploaded video blobs and returns a playable URL.
type MediaStore interface {
	Save(ctx context.Context, name, contentType string, body io.Reader, size int64) (url string, err error)
	Delete(ctx context.Context, name string) error
}

// Allowed video MIME types and extensions.
var (
	AllowedVideoTypes = map[string]string{
		"video/mp4":       ".mp4",
		"video/webm":      ".webm",
		"video/quicktime": ".mov",
	}
	AllowedVideoExtensions = map[string]string{
		".mp4":  "video/mp4",
		".m4v":  "video/mp4",
		".webm": "video/webm",
		".mov":  "video/quicktime",
	}
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ValidateVideoFileType returns true if the content type or extension is an accepted video format.
func ValidateVideoFileType(contentType, filename string) bool {
	if contentType != "" {
		ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
		if _, ok := AllowedVideoTypes[ct]; ok {
			return true
		}
	}
	_, ok := AllowedVideoExtensions[strings.ToLower(path.Ext(filename))]
	return ok
}

// ContentTypeForFilename returns the MIME type for a video filename extension.
func ContentTypeForFilename(filename string) string {
	if ct, ok := AllowedVideoExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ObjectName returns the stored name for an upload: {videoID}-{sanitized filename}.
func ObjectName(videoID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	clean := strings.Trim(unsafeChars.ReplaceAllString(base, "_"), "._")
	if clean == "" {
		clean = "video"
	}
	return videoID + "-" + clean
}
