// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package config defines the immutable server configuration and loads it
// from layered sources (defaults, optional YAML file, environment).
package config

import (
	"fmt"
	"time"

	"github.com/asgcam/camserver/internal/logging"
	"github.com/asgcam/camserver/internal/validation"
)

// Config is the root configuration value. It is created once at startup,
// validated, and shared by reference across the engine and its
// collaborators; nothing mutates it afterwards.
type Config struct {
	Server  ServerConfig   `koanf:"server"`
	Logging logging.Config `koanf:"logging"`
}

// ServerConfig configures the camera server and its protocol engine.
type ServerConfig struct {
	// Port is the TCP listening port.
	Port int `koanf:"port" validate:"min=0,max=65535"`

	// Host is the listen address. Empty or 0.0.0.0 binds all interfaces.
	Host string `koanf:"host"`

	// Name is the human-readable server name reported in responses.
	Name string `koanf:"name" validate:"required"`

	// CORSEnabled controls whether responses carry permissive CORS headers
	// and whether OPTIONS preflights are answered directly by the engine.
	CORSEnabled bool `koanf:"cors_enabled"`

	// MaxBodySize caps accepted request bodies in bytes.
	MaxBodySize int64 `koanf:"max_body_size" validate:"min=0"`

	// RateLimitRequests is the per-IP admission quota within the window.
	RateLimitRequests int `koanf:"rate_limit_requests" validate:"min=1"`

	// RateLimitWindow is the trailing rate-limit window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`

	// CacheSize is the response cache capacity in entries.
	CacheSize int `koanf:"cache_size" validate:"min=1"`

	// CacheTTL is how long cached file payloads stay fresh. Zero disables
	// expiry.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"min=0"`

	// IdleTimeout is the per-connection socket deadline, intended for large
	// transfers. Passed through to the transport.
	IdleTimeout time.Duration `koanf:"idle_timeout" validate:"min=0"`

	// PhotosDir is the directory holding the flat photo/video store.
	PhotosDir string `koanf:"photos_dir" validate:"required"`
}

// Default returns a Config with all default values applied.
// Defaults are overridden by the config file and environment variables.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8089,
			Host:              "0.0.0.0",
			Name:              "ASG Camera Server",
			CORSEnabled:       true,
			MaxBodySize:       10 << 20, // 10MB
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CacheSize:         50,
			CacheTTL:          time.Minute,
			IdleTimeout:       30 * time.Second,
			PhotosDir:         "Photos",
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validation.ValidateStruct(&c.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Addr returns the listen address in host:port form.
func (s *ServerConfig) Addr() string {
	host := s.Host
	if host == "0.0.0.0" {
		host = ""
	}
	return fmt.Sprintf("%s:%d", host, s.Port)
}
