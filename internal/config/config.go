// Package config provides environment-driven configuration for graphfeed.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration values.
type Config struct {
	Port            string
	ListenHost      string
	CORSOrigins     []string
	LogLevel        string
	SupernodeCutoff int
	NodeIDBits      int
	Workers         int
	DemoGraph       bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       envOrDefault("PORT", "3040"),
		ListenHost: envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),
		DemoGraph:  envOrDefault("DEMO_GRAPH", "false") == "true",
	}

	cutoff, err := strconv.Atoi(envOrDefault("SUPERNODE_CUTOFF", "3"))
	if err != nil || cutoff < 1 || cutoff > 18 {
		return nil, fmt.Errorf("SUPERNODE_CUTOFF must be an integer between 1 and 18")
	}
	cfg.SupernodeCutoff = cutoff

	bits, err := strconv.Atoi(envOrDefault("NODE_ID_BITS", "32"))
	if err != nil || bits < 1 || bits > 32 {
		return nil, fmt.Errorf("NODE_ID_BITS must be an integer between 1 and 32")
	}
	cfg.NodeIDBits = bits

	workers, err := strconv.Atoi(envOrDefault("WORKERS", "0"))
	if err != nil || workers < 0 || workers > 256 {
		return nil, fmt.Errorf("WORKERS must be an integer between 0 and 256 (0 means GOMAXPROCS)")
	}
	cfg.Workers = workers

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func (c *Config) validate() error {
	if err := c.validateNetwork(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	return c.validateLogLevel()
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Validate LISTEN_HOST is a loopback address to prevent accidental external exposure.
	if c.ListenHost != "127.0.0.1" && c.ListenHost != "::1" && c.ListenHost != "localhost" {
		return fmt.Errorf("LISTEN_HOST must be a loopback address (127.0.0.1, ::1, or localhost), got %q", c.ListenHost)
	}

	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) validateLogLevel() error {
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.LogLevel)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
