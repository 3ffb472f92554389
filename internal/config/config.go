package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the full application configuration, loaded from environment
// variables with an optional .env file.
type Config struct {
	Port      string `validate:"required"`
	DBPath    string `validate:"required"`
	JWTSecret string `validate:"required,min=16"`
	LogLevel  string `validate:"oneof=debug info warn error"`

	PredictorURL     string        `validate:"required,url"`
	PredictorTimeout time.Duration `validate:"gt=0"`

	WindowSize int     `validate:"gt=0"`
	Overlap    float64 `validate:"gte=0,lt=1"`

	SpatialThresholdMeters float64 `validate:"gt=0"`
	TemporalThresholdSecs  float64 `validate:"gt=0"`
	ConfidenceBoost        float64 `validate:"gte=0,lte=1"`
	FusionWorkers          int     `validate:"gte=0"`

	RateLimitPerMinute int `validate:"gt=0"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getEnv("PORT", ":8080"),
		DBPath:                 getEnv("DB_PATH", "./data/tmd.db"),
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		PredictorURL:           getEnv("PREDICTOR_URL", "http://localhost:8500"),
		PredictorTimeout:       getDuration("PREDICTOR_TIMEOUT", 10*time.Second),
		WindowSize:             getInt("WINDOW_SIZE", 50),
		Overlap:                getFloat("WINDOW_OVERLAP", 0.5),
		SpatialThresholdMeters: getFloat("SPATIAL_THRESHOLD_METERS", 50),
		TemporalThresholdSecs:  getFloat("TEMPORAL_THRESHOLD_SECONDS", 300),
		ConfidenceBoost:        getFloat("CONFIDENCE_BOOST", 0.2),
		FusionWorkers:          getInt("FUSION_WORKERS", 0),
		RateLimitPerMinute:     getInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
