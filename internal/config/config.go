package config

import (
	"fmt"
	"os"
	"time"
)

// AppConfig holds everything the server binary reads from the environment.
type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// DatabaseURL is the Postgres connection string. Empty selects the
	// in-memory store (development mode).
	DatabaseURL string

	// JWTSecret signs session tokens; TokenTTL bounds their lifetime.
	JWTSecret string
	TokenTTL  time.Duration

	// DefaultCity is the fallback location when geolocation fails.
	DefaultCity string

	// HTTPTimeout applies to outbound provider calls.
	HTTPTimeout time.Duration

	// RefreshInterval controls how often favorited cities are re-aggregated.
	RefreshInterval time.Duration

	// SnapshotMaxAge bounds how stale a cached favorite summary may be.
	SnapshotMaxAge time.Duration

	Port string
}

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.JWTSecret = os.Getenv("ACCESS_TOKEN_SECRET")
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "New Delhi")
	cfg.Port = getenvDefault("PORT", "8080")

	var err error
	if cfg.TokenTTL, err = getenvDuration("TOKEN_TTL", "1h"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if cfg.SnapshotMaxAge, err = getenvDuration("SNAPSHOT_MAX_AGE", "1h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
