package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eligibleVideos = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airtime_feed_eligible_videos",
		Help: "Number of videos eligible for display at the last evaluation.",
	})
	rotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airtime_feed_rotations_total",
		Help: "Number of timer-driven advances to the next video.",
	})
	refreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airtime_feed_refresh_failures_total",
		Help: "Number of video list fetches that failed and fell back to the defaults.",
	})
)
