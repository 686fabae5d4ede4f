// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kyiku/planet-jigsaw-back/internal/placement"
	"github.com/kyiku/planet-jigsaw-back/internal/snap"
	"github.com/kyiku/planet-jigsaw-back/internal/texture"
)

// Config holds the application configuration.
type Config struct {
	Port             string
	AllowedOrigin    string
	AWSRegion        string
	S3Bucket         string
	CloudfrontDomain string

	GridSize         int
	RasterSize       int
	OverlapThreshold float64
	MagnetDistance   float64
	GrainDensity     int
	Rounds           []texture.Body
	DropPolicy       placement.DropPolicy

	SessionTTL time.Duration
	RateLimit  int // Game starts per minute per IP
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigin:    getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
		AWSRegion:        getEnv("AWS_REGION", "ap-northeast-1"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		CloudfrontDomain: getEnv("CLOUDFRONT_DOMAIN", ""),
	}

	var err error
	if cfg.GridSize, err = getEnvInt("GRID_SIZE", 3); err != nil {
		return nil, err
	}
	if cfg.RasterSize, err = getEnvInt("RASTER_SIZE", texture.DefaultSize); err != nil {
		return nil, err
	}
	if cfg.OverlapThreshold, err = getEnvFloat("OVERLAP_THRESHOLD", snap.DefaultOverlap); err != nil {
		return nil, err
	}
	if cfg.MagnetDistance, err = getEnvFloat("MAGNET_DISTANCE", snap.DefaultMagnet); err != nil {
		return nil, err
	}
	if cfg.GrainDensity, err = getEnvInt("GRAIN_DENSITY", texture.DefaultGrainDensity); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getEnvInt("RATE_LIMIT", 30); err != nil {
		return nil, err
	}

	if cfg.Rounds, err = parseRounds(getEnv("ROUNDS", "earth,mars,jupiter")); err != nil {
		return nil, err
	}
	if cfg.DropPolicy, err = placement.ParseDropPolicy(getEnv("DROP_POLICY", "soft")); err != nil {
		return nil, fmt.Errorf("DROP_POLICY: %w", err)
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate port is a number
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("invalid port: must be a number")
	}

	if c.GridSize < 1 {
		return errors.New("invalid GRID_SIZE: must be at least 1")
	}
	if c.RasterSize < c.GridSize {
		return errors.New("invalid RASTER_SIZE: must be at least GRID_SIZE")
	}
	if c.OverlapThreshold < 0 || c.OverlapThreshold > 1 {
		return errors.New("invalid OVERLAP_THRESHOLD: must be between 0 and 1")
	}
	if c.MagnetDistance < 0 {
		return errors.New("invalid MAGNET_DISTANCE: must not be negative")
	}
	if c.GrainDensity < 0 {
		return errors.New("invalid GRAIN_DENSITY: must not be negative")
	}
	if len(c.Rounds) == 0 {
		return errors.New("invalid ROUNDS: at least one body is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("invalid SESSION_TTL: must be positive")
	}
	if c.RateLimit < 1 {
		return errors.New("invalid RATE_LIMIT: must be at least 1")
	}

	return nil
}

// Thresholds returns the snap thresholds from the configuration.
func (c *Config) Thresholds() snap.Thresholds {
	return snap.Thresholds{Overlap: c.OverlapThreshold, Magnet: c.MagnetDistance}
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", key)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be a number", key)
	}
	return f, nil
}

// parseRounds reads a comma separated list of body names.
func parseRounds(value string) ([]texture.Body, error) {
	var bodies []texture.Body
	for _, name := range strings.Split(value, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		b, err := texture.ParseBody(name)
		if err != nil {
			return nil, fmt.Errorf("ROUNDS: %w", err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}
