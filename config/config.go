package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	MediaLocal    = "local"
	MediaS3       = "s3"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Store    StoreConfig
	Media    MediaConfig
	AWS      AWSConfig
	Feed     FeedConfig
	Payments PaymentsConfig
	Player   PlayerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/airtime?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis
// when the video store is PostgreSQL.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StoreConfig selects the video metadata backend.
type StoreConfig struct {
	Backend string // redis or postgres
}

// MediaConfig selects where uploaded files go.
type MediaConfig struct {
	Backend     string // local or s3
	LocalDir    string
	MaxUploadMB int
}

// AWSConfig holds AWS credentials and the media bucket.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicBaseURL   string
}

// FeedConfig holds playback rotation settings.
type FeedConfig struct {
	RotationInterval time.Duration
	RefreshInterval  time.Duration
	FetchTimeout     time.Duration
	DisplayTimezone  string
	DefaultsFile     string
}

// PaymentsConfig controls the payment stub and price quotes.
type PaymentsConfig struct {
	Enabled             bool
	Currency            string
	PricePerSecondCents int
}

// PlayerConfig is used by cmd/player.
type PlayerConfig struct {
	APIBaseURL string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// MaxUploadBytes returns the upload limit in bytes.
func (c MediaConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 120),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "airtime"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("VIDEO_STORE", StoreRedis)),
		},
		Media: MediaConfig{
			Backend:     strings.ToLower(getEnv("MEDIA_BACKEND", MediaLocal)),
			LocalDir:    getEnv("MEDIA_LOCAL_DIR", "./public/videos"),
			MaxUploadMB: getEnvInt("MEDIA_MAX_UPLOAD_MB", 100),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "eu-south-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("AWS_S3_VIDEOS_BUCKET", ""),
			PublicBaseURL:   getEnv("AWS_S3_PUBLIC_BASE_URL", ""),
		},
		Feed: FeedConfig{
			RotationInterval: getEnvSeconds("FEED_ROTATION_INTERVAL_SEC", 30),
			RefreshInterval:  getEnvSeconds("FEED_REFRESH_INTERVAL_SEC", 60),
			FetchTimeout:     getEnvSeconds("FEED_FETCH_TIMEOUT_SEC", 10),
			DisplayTimezone:  getEnv("FEED_DISPLAY_TIMEZONE", "Europe/Rome"),
			DefaultsFile:     getEnv("FEED_DEFAULTS_FILE", ""),
		},
		Payments: PaymentsConfig{
			Enabled:             getEnvBool("PAYMENTS_ENABLED", false),
			Currency:            strings.ToLower(getEnv("PAYMENTS_CURRENCY", "eur")),
			PricePerSecondCents: getEnvInt("PRICE_PER_SECOND_CENTS", 100),
		},
		Player: PlayerConfig{
			APIBaseURL: getEnv("PLAYER_API_BASE_URL", "http://localhost:8080"),
		},
	}
	if cfg.Redis.Addr == "" && cfg.Store.Backend == StoreRedis {
		cfg.Redis.Addr = "localhost:6379"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("VIDEO_STORE must be %q or %q, got %q", StoreRedis, StorePostgres, c.Store.Backend)
	}
	switch c.Media.Backend {
	case MediaLocal:
	case MediaS3:
		if c.AWS.Bucket == "" {
			return fmt.Errorf("AWS_S3_VIDEOS_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND must be %q or %q, got %q", MediaLocal, MediaS3, c.Media.Backend)
	}
	if c.Media.MaxUploadMB <= 0 {
		return fmt.Errorf("MEDIA_MAX_UPLOAD_MB must be positive")
	}
	if c.Feed.RotationInterval <= 0 {
		return fmt.Errorf("FEED_ROTATION_INTERVAL_SEC must be positive")
	}
	if c.Feed.RefreshInterval < 0 {
		return fmt.Errorf("FEED_REFRESH_INTERVAL_SEC must not be negative")
	}
	if _, err := time.LoadLocation(c.Feed.DisplayTimezone); err != nil {
		return fmt.Errorf("FEED_DISPLAY_TIMEZONE: %w", err)
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
