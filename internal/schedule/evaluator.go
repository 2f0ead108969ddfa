// Package schedule decides whether a video may be shown at a given instant.
package schedule

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/airtime-feed/backend/internal/models"
)

// zoneCacheSize bounds the resolved-timezone cache; unknown names are cached too.
const zoneCacheSize = 128

// Weekdays lists the accepted day names, indexed by time.Weekday.
var Weekdays = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Evaluator checks videos against their weekly schedule.
// Each schedule is evaluated in its own timezone; an empty or unknown zone
// falls back to the site-wide display zone.
type Evaluator struct {
	fallback *time.Location
	zones    *lru.Cache[string, *time.Location]
}

// NewEvaluator creates an evaluator. A nil fallback means UTC.
func NewEvaluator(fallback *time.Location) *Evaluator {
	if fallback == nil {
		fallback = time.UTC
	}
	zones, _ := lru.New[string, *time.Location](zoneCacheSize)
	return &Evaluator{fallback: fallback, zones: zones}
}

// IsEligible returns true if v may be displayed at now.
func (e *Evaluator) IsEligible(v models.Video, now time.Time) bool {
	if !v.Active() {
		return false
	}
	s := v.Schedule
	if s == nil {
		return true
	}
	local := now.In(e.location(s.Timezone))
	if !containsDay(s.Days, Weekdays[local.Weekday()]) {
		return false
	}
	return IsTimeMatch(s.StartTime, s.EndTime, local.Format("15:04"))
}

// Filter returns the videos eligible at now, keeping their order.
func (e *Evaluator) Filter(videos []models.Video, now time.Time) []models.Video {
	out := make([]models.Video, 0, len(videos))
	for _, v := range videos {
		if e.IsEligible(v, now) {
			out = append(out, v)
		}
	}
	return out
}

// IsTimeMatch reports start <= current <= end on zero-padded HH:MM strings.
// Windows crossing midnight (start > end) never match.
func IsTimeMatch(start, end, current string) bool {
	if start == "" || end == "" {
		return false
	}
	return current >= start && current <= end
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if strings.EqualFold(strings.TrimSpace(d), day) {
			return true
		}
	}
	return false
}

func (e *Evaluator) location(name string) *time.Location {
	if name == "" {
		return e.fallback
	}
	if loc, ok := e.zones.Get(name); ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = e.fallback
	}
	e.zones.Add(name, loc)
	return loc
}
