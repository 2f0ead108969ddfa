package config

import (
	"strings"
	"testing"
	"time"

	_ "time/tzdata"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != StoreRedis || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("store = %q redis = %q", cfg.Store.Backend, cfg.Redis.Addr)
	}
	if cfg.Media.Backend != MediaLocal || cfg.Media.MaxUploadBytes() != 100*1024*1024 {
		t.Errorf("media = %+v", cfg.Media)
	}
	if cfg.Feed.RotationInterval != 30*time.Second || cfg.Feed.RefreshInterval != time.Minute || cfg.Feed.FetchTimeout != 10*time.Second {
		t.Errorf("feed = %+v", cfg.Feed)
	}
	if cfg.Feed.DisplayTimezone != "Europe/Rome" {
		t.Errorf("display timezone = %q", cfg.Feed.DisplayTimezone)
	}
	if cfg.Payments.Enabled || cfg.Payments.PricePerSecondCents != 100 {
		t.Errorf("payments = %+v", cfg.Payments)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VIDEO_STORE", "Postgres")
	t.Setenv("MEDIA_BACKEND", "s3")
	t.Setenv("AWS_S3_VIDEOS_BUCKET", "airtime-videos")
	t.Setenv("FEED_REFRESH_INTERVAL_SEC", "0")
	t.Setenv("PAYMENTS_ENABLED", "true")
	t.Setenv("DATABASE_URL", "postgres://db/airtime")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != StorePostgres || cfg.Redis.Addr != "" {
		t.Errorf("store = %q redis = %q, want postgres without redis", cfg.Store.Backend, cfg.Redis.Addr)
	}
	if cfg.Feed.RefreshInterval != 0 {
		t.Errorf("refresh = %v, want 0 (one-shot)", cfg.Feed.RefreshInterval)
	}
	if !cfg.Payments.Enabled {
		t.Error("payments should be enabled")
	}
	if cfg.Database.DSN() != "postgres://db/airtime" {
		t.Errorf("dsn = %q", cfg.Database.DSN())
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{"VIDEO_STORE", "mongo", "VIDEO_STORE"},
		{"MEDIA_BACKEND", "ftp", "MEDIA_BACKEND"},
		{"MEDIA_BACKEND", "s3", "AWS_S3_VIDEOS_BUCKET"},
		{"FEED_DISPLAY_TIMEZONE", "Mars/Olympus", "FEED_DISPLAY_TIMEZONE"},
		{"FEED_ROTATION_INTERVAL_SEC", "0", "FEED_ROTATION_INTERVAL_SEC"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: "5432", DBName: "d", SSLMode: "disable"}
	if got, want := c.DSN(), "postgres://u:p@h:5432/d?sslmode=disable"; got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
