package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/airtime-feed/backend/internal/models"
)

// ErrInvalidSchedule is wrapped by every Normalize error.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Normalize validates s and returns a copy with lowercase, deduplicated days.
func Normalize(s models.Schedule) (models.Schedule, error) {
	out := models.Schedule{
		StartTime: strings.TrimSpace(s.StartTime),
		EndTime:   strings.TrimSpace(s.EndTime),
		Timezone:  strings.TrimSpace(s.Timezone),
	}
	seen := make(map[string]bool, len(s.Days))
	for _, d := range s.Days {
		day := strings.ToLower(strings.TrimSpace(d))
		if !isWeekday(day) {
			return out, fmt.Errorf("%w: unknown day %q", ErrInvalidSchedule, d)
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		out.Days = append(out.Days, day)
	}
	if len(out.Days) == 0 {
		return out, fmt.Errorf("%w: at least one day is required", ErrInvalidSchedule)
	}
	if !validClock(out.StartTime) {
		return out, fmt.Errorf("%w: startTime %q is not HH:MM", ErrInvalidSchedule, s.StartTime)
	}
	if !validClock(out.EndTime) {
		return out, fmt.Errorf("%w: endTime %q is not HH:MM", ErrInvalidSchedule, s.EndTime)
	}
	if out.Timezone != "" {
		if _, err := time.LoadLocation(out.Timezone); err != nil {
			return out, fmt.Errorf("%w: unknown timezone %q", ErrInvalidSchedule, s.Timezone)
		}
	}
	return out, nil
}

func isWeekday(day string) bool {
	for _, w := range Weekdays {
		if w == day {
			return true
		}
	}
	return false
}

// validClock accepts only the fixed-width form, so string comparison stays ordered.
func validClock(v string) bool {
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", v)
	return err == nil
}

// Validate reports whether s would be accepted by Normalize.
func Validate(s models.Schedule) error {
	_, err := Normalize(s)
	return err
}
