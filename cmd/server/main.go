// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package main is the entry point for the standalone camera server.
//
// CamServer exposes the camera REST API and web gallery of a smart-glasses
// camera over the local network. On the glasses the server is embedded in
// the companion app; this binary runs the same stack standalone for
// development and for serving an existing photo directory.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Logging: Structured zerolog output per the configured level and format
//  3. Manager: Network address monitor, response cache, camera handler, protocol engine
//  4. Listener: Raw TCP socket serving HTTP/1.1, one request per connection
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, PHOTOS_DIR, RATE_LIMIT_REQUESTS, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: the listener
// and open connections are closed, in-flight requests drain, and the
// response cache is cleared.
//
// # Example Usage
//
// Serve the default Photos directory on port 8089:
//
//	./camserver
//
// Serve an existing photo collection on another port:
//
//	export HTTP_PORT=9000
//	export PHOTOS_DIR=/data/photos
//	./camserver
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/asgcam/camserver/internal/config"
	"github.com/asgcam/camserver/internal/logging"
	"github.com/asgcam/camserver/internal/manager"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)

	logging.Info().
		Str("name", cfg.Server.Name).
		Int("port", cfg.Server.Port).
		Str("photos_dir", cfg.Server.PhotosDir).
		Msg("Starting camera server")

	mgr := manager.New(*cfg)
	defer mgr.Close()

	// Standalone mode runs without a camera pipeline: capture and recording
	// requests are acknowledged but have no delegate to act on them.
	if err := mgr.StartServer(nil, ""); err != nil {
		logging.Fatal().Err(err).Msg("Failed to start server")
	}

	if url := mgr.ServerURL(); url != "" {
		logging.Info().Str("url", url).Msg("Server reachable")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	received := <-sig

	logging.Info().Str("signal", received.String()).Msg("Shutting down")
	mgr.StopServer()
	logging.Info().Msg("Shutdown complete")
}
