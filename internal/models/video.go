package models

import "time"

// Schedule is a recurring weekly display window for a video.
type Schedule struct {
	Days      []string `json:"days"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Timezone  string   `json:"timezone"`
}

// Video is an uploaded feed video. A nil Schedule marks a default (always-on) video.
type Video struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Duration   float64   `json:"duration"`
	UploadedAt time.Time `json:"uploadedAt"`
	Schedule   *Schedule `json:"schedule,omitempty"`
	IsActive   *bool     `json:"isActive,omitempty"`
}

// Active reports whether the video is active. An unset flag counts as active.
func (v Video) Active() bool {
	return v.IsActive == nil || *v.IsActive
}

// Bool returns a pointer to b, for IsActive literals.
func Bool(b bool) *bool { return &b }
