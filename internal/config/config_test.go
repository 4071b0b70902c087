// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}

	if cfg.Server.Port != 8089 {
		t.Errorf("Expected default port 8089, got %d", cfg.Server.Port)
	}
	if !cfg.Server.CORSEnabled {
		t.Error("Expected CORS enabled by default")
	}
	if cfg.Server.RateLimitWindow != time.Minute {
		t.Errorf("Expected 1m rate-limit window, got %v", cfg.Server.RateLimitWindow)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative port", func(c *Config) { c.Server.Port = -1 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty name", func(c *Config) { c.Server.Name = "" }},
		{"zero rate quota", func(c *Config) { c.Server.RateLimitRequests = 0 }},
		{"zero window", func(c *Config) { c.Server.RateLimitWindow = 0 }},
		{"zero cache size", func(c *Config) { c.Server.CacheSize = 0 }},
		{"empty photos dir", func(c *Config) { c.Server.PhotosDir = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation failure for %s", tc.name)
			}
		})
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SERVER_NAME", "Test Cam")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected env-overridden port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.Name != "Test Cam" {
		t.Errorf("Expected env-overridden name, got %q", cfg.Server.Name)
	}
	if cfg.Server.RateLimitRequests != 5 {
		t.Errorf("Expected env-overridden quota 5, got %d", cfg.Server.RateLimitRequests)
	}
	// Untouched settings keep their defaults.
	if cfg.Server.CacheSize != 50 {
		t.Errorf("Expected default cache size 50, got %d", cfg.Server.CacheSize)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("server:\n  port: 8200\n  name: File Cam\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8200 {
		t.Errorf("Expected file port 8200, got %d", cfg.Server.Port)
	}
	if cfg.Server.Name != "File Cam" {
		t.Errorf("Expected file name, got %q", cfg.Server.Name)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8200\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "8300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8300 {
		t.Errorf("Env should beat file: expected 8300, got %d", cfg.Server.Port)
	}
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "99999")

	if _, err := Load(); err == nil {
		t.Error("Expected Load to fail validation for out-of-range port")
	}
}

func TestAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8089}
	if got := s.Addr(); got != ":8089" {
		t.Errorf("Expected :8089 for wildcard host, got %q", got)
	}

	s.Host = "127.0.0.1"
	if got := s.Addr(); got != "127.0.0.1:8089" {
		t.Errorf("Expected 127.0.0.1:8089, got %q", got)
	}
}
