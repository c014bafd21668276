package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// DataDir is the directory holding yearly source tables.
	DataDir string
	// FilePattern names the per-year file inside DataDir. It must contain
	// exactly one %d verb, substituted with the calendar year.
	FilePattern string
	YearStart   int
	YearEnd     int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	yearStart, err := parseYear("YEAR_START", 2016)
	if err != nil {
		return nil, err
	}

	yearEnd, err := parseYear("YEAR_END", 2023)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := parseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         envOrDefault("DATA_DIR", "data"),
		FilePattern:     envOrDefault("FILE_PATTERN", "hyd_air_quality_%d.csv"),
		YearStart:       yearStart,
		YearEnd:         yearEnd,
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if strings.Count(cfg.FilePattern, "%d") != 1 {
		return nil, errors.New("FILE_PATTERN must contain exactly one %d year placeholder")
	}
	if cfg.YearStart <= 0 {
		return nil, errors.New("YEAR_START must be a positive year")
	}
	if cfg.YearEnd < cfg.YearStart {
		return nil, errors.New("YEAR_END must not precede YEAR_START")
	}

	return cfg, nil
}

// Years returns the configured year range, ascending and inclusive.
func (c *Config) Years() []int {
	years := make([]int, 0, c.YearEnd-c.YearStart+1)
	for y := c.YearStart; y <= c.YearEnd; y++ {
		years = append(years, y)
	}
	return years
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseYear(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a year", key, s)
	}
	return n, nil
}

func parseShutdownTimeout() (time.Duration, error) {
	s := envOrDefault("SHUTDOWN_TIMEOUT", "10s")
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid SHUTDOWN_TIMEOUT")
	}
	return d, nil
}
