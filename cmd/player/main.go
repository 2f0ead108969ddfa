// Package main runs a headless display session: it polls a server's video
// list, evaluates schedules locally and logs every change of the on-air video.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/airtime-feed/backend/config"
	"github.com/airtime-feed/backend/internal/feed"
	"github.com/airtime-feed/backend/internal/schedule"
	"github.com/airtime-feed/backend/internal/videos"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	zone, err := time.LoadLocation(cfg.Feed.DisplayTimezone)
	if err != nil {
		logger.Fatal("display timezone", zap.Error(err))
	}
	defaults := feed.DefaultVideos()
	if cfg.Feed.DefaultsFile != "" {
		if list, err := feed.LoadDefaults(cfg.Feed.DefaultsFile); err != nil {
			logger.Warn("defaults file ignored", zap.String("path", cfg.Feed.DefaultsFile), zap.Error(err))
		} else {
			defaults = list
		}
	}

	client := videos.NewClient(cfg.Player.APIBaseURL, cfg.Feed.FetchTimeout)
	engine := feed.NewEngine(client, schedule.NewEvaluator(zone), schedule.RealClock{}, feed.Config{
		RotationInterval: cfg.Feed.RotationInterval,
		RefreshInterval:  cfg.Feed.RefreshInterval,
		FetchTimeout:     cfg.Feed.FetchTimeout,
		Defaults:         defaults,
	}, logger)
	engine.OnChange(func(s feed.Snapshot) {
		if s.Video == nil {
			logger.Info("nothing scheduled", zap.String("state", string(s.State)))
			return
		}
		logger.Info("now playing",
			zap.String("video_id", s.Video.ID),
			zap.String("url", s.Video.URL),
			zap.Int("index", s.Index),
			zap.Int("total", s.Total),
			zap.Bool("defaults", s.UsingDefaults),
		)
	})

	engine.Start()
	logger.Info("player started", zap.String("api", cfg.Player.APIBaseURL))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	engine.Stop()
	logger.Info("player stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
