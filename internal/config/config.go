// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrInvalid is returned for malformed configuration values.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete process configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr    string
	GinMode string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level slog.Level
}

// DatabaseConfig holds the optional Postgres connection. An empty URL keeps
// analyses in memory.
type DatabaseConfig struct {
	URL string
}

// AnalysisConfig holds defaults for CLI and server analyses.
type AnalysisConfig struct {
	Universe        []string
	VerifyTolerance float64
}

// Load reads a .env file if present, then the environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	level, err := parseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	tolerance, err := getEnvFloatOrDefault("SYNERGY_VERIFY_TOLERANCE", 1e-9)
	if err != nil {
		return Config{}, err
	}
	if tolerance <= 0 {
		return Config{}, fmt.Errorf("%w: SYNERGY_VERIFY_TOLERANCE must be positive, got %g", ErrInvalid, tolerance)
	}

	ginMode := getEnvOrDefault("GIN_MODE", "release")
	switch ginMode {
	case "debug", "release", "test":
	default:
		return Config{}, fmt.Errorf("%w: GIN_MODE %q (want debug, release or test)", ErrInvalid, ginMode)
	}

	return Config{
		Server: ServerConfig{
			Addr:    getEnvOrDefault("SYNERGY_ADDR", ":8080"),
			GinMode: ginMode,
		},
		Log: LogConfig{
			Level: level,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Analysis: AnalysisConfig{
			Universe:        SplitList(getEnvOrDefault("SYNERGY_UNIVERSE", "A,I,S,G")),
			VerifyTolerance: tolerance,
		},
	}, nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: LOG_LEVEL %q", ErrInvalid, s)
	}
	return level, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalid, key, value)
	}
	return f, nil
}
