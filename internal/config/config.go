package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr           string
	DatabaseURL    string
	JWTSecret      string
	JWTExpiry      time.Duration
	UploadDir      string
	MaxUploadBytes int64
}

// Load reads configuration from environment variables.
func Load() Config {
	cfg := Config{
		Addr:           getEnv("ADDR", ":8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		JWTExpiry:      72 * time.Hour,
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: 5 << 20,
	}

	if v := os.Getenv("JWT_EXPIRES_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.JWTExpiry = time.Duration(hours) * time.Hour
		}
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
