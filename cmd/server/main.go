// Package main runs the airtime feed HTTP server with the rotation engine, WebSocket push and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/airtime-feed/backend/config"
	"github.com/airtime-feed/backend/internal/feed"
	"github.com/airtime-feed/backend/internal/middleware"
	"github.com/airtime-feed/backend/internal/payments"
	"github.com/airtime-feed/backend/internal/pricing"
	"github.com/airtime-feed/backend/internal/realtime"
	"github.com/airtime-feed/backend/internal/schedule"
	"github.com/airtime-feed/backend/internal/videos"
	"github.com/airtime-feed/backend/pkg/database"
	"github.com/airtime-feed/backend/pkg/redis"
	"github.com/airtime-feed/backend/pkg/response"
	"github.com/airtime-feed/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewClient(ctx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	var repo videos.Repository
	switch cfg.Store.Backend {
	case config.StorePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
			MaxConns: int32(cfg.Database.MaxConns),
		}, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		repo = videos.NewPostgresRepository(pool)
	default:
		repo = videos.NewRedisRepository(rdb.Client, logger)
	}

	var media storage.MediaStore
	var local *storage.Local
	switch cfg.Media.Backend {
	case config.MediaS3:
		media, err = storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Bucket:          cfg.AWS.Bucket,
			PublicBaseURL:   cfg.AWS.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Fatal("s3", zap.Error(err))
		}
	default:
		local, err = storage.NewLocal(cfg.Media.LocalDir, "/videos")
		if err != nil {
			logger.Fatal("media dir", zap.Error(err))
		}
		media = local
	}

	engine := newEngine(cfg.Feed, repo, logger)
	hub := realtime.NewHub(logger)
	engine.OnChange(func(s feed.Snapshot) {
		hub.Broadcast(realtime.EventVideoChanged, s)
	})

	var invalidator *realtime.Invalidator
	if rdb != nil {
		pubsub := realtime.NewRedisPubSub(rdb.Client, logger)
		invalidator = realtime.NewInvalidator(engine, pubsub, pubsub, logger)
		if err := invalidator.Listen(); err != nil {
			logger.Warn("videos_updated subscription disabled", zap.Error(err))
		}
	} else {
		invalidator = realtime.NewInvalidator(engine, nil, nil, logger)
	}
	defer invalidator.Close()

	videoHandler := videos.NewHandler(repo, media, invalidator, cfg.Media.MaxUploadBytes(), logger)
	feedHandler := feed.NewHandler(engine)
	pricingHandler := pricing.NewHandler(pricing.NewCalculator(int64(cfg.Payments.PricePerSecondCents), cfg.Payments.Currency))
	paymentsHandler := payments.NewHandler(payments.Config{
		Enabled:  cfg.Payments.Enabled,
		Currency: cfg.Payments.Currency,
	}, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if local != nil {
		router.Static("/videos", local.Root())
	}

	api := router.Group("/api")
	{
		api.POST("/upload", videoHandler.Upload)
		api.GET("/videos", videoHandler.List)
		api.GET("/feed/current", feedHandler.Current)
		api.POST("/pricing/quote", pricingHandler.Quote)
		api.POST("/create-payment-intent", paymentsHandler.CreateIntent)
	}

	router.GET("/ws", realtime.ServeWs(hub, logger, func() interface{} { return engine.Snapshot() }))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	engine.Start()

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	engine.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newEngine(cfg config.FeedConfig, repo feed.Repository, logger *zap.Logger) *feed.Engine {
	zone, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.Warn("display timezone not found, using UTC", zap.String("timezone", cfg.DisplayTimezone), zap.Error(err))
		zone = time.UTC
	}
	defaults := feed.DefaultVideos()
	if cfg.DefaultsFile != "" {
		if list, err := feed.LoadDefaults(cfg.DefaultsFile); err != nil {
			logger.Warn("defaults file ignored", zap.String("path", cfg.DefaultsFile), zap.Error(err))
		} else {
			defaults = list
		}
	}
	return feed.NewEngine(repo, schedule.NewEvaluator(zone), schedule.RealClock{}, feed.Config{
		RotationInterval: cfg.RotationInterval,
		RefreshInterval:  cfg.RefreshInterval,
		FetchTimeout:     cfg.FetchTimeout,
		Defaults:         defaults,
	}, logger)
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
