package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort        = "8080"
	defaultDatabaseURL = "veriflow.db"
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultJWTTTL      = "24h"
	defaultUploadDir   = "./uploads"
	defaultTempDir     = "./uploads/temp"
	defaultStaticBase  = "/uploads"
	defaultQueueSize   = "256"
	defaultLogLevel    = "info"
	defaultLogFormat   = "json"
)

type RuntimeConfig struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	UploadDir  string
	TempDir    string
	StaticBase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion string
	EmailFrom string

	EventQueueSize int

	LogLevel  string
	LogFormat string
}

func LoadRuntimeConfig() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.Port = getEnv("PORT", defaultPort)
	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.UploadDir = getEnv("UPLOAD_DIR", defaultUploadDir)
	cfg.TempDir = getEnv("TEMP_DIR", defaultTempDir)
	cfg.StaticBase = getEnv("STATIC_BASE", defaultStaticBase)

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB, err = parseIntEnv("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}

	cfg.AWSRegion = getEnv("AWS_REGION", "ap-south-1")
	cfg.EmailFrom = strings.TrimSpace(os.Getenv("EMAIL_FROM"))

	cfg.EventQueueSize, err = parseIntEnv("EVENT_QUEUE_SIZE", defaultQueueSize)
	if err != nil {
		return nil, err
	}

	cfg.LogLevel = getEnv("LOG_LEVEL", defaultLogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", defaultLogFormat)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *RuntimeConfig) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.EventQueueSize <= 0 {
		return fmt.Errorf("EVENT_QUEUE_SIZE must be > 0")
	}
	if IsProdLike(cfg.AppEnv) && cfg.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	return nil
}

// IsProdLike reports whether the app runs in a production-style environment.
func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

func parseIntEnv(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, raw, err)
	}
	return n, nil
}
