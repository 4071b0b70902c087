// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package manager composes the camera server stack: it owns the network
// address provider, builds the response cache, camera handler, and protocol
// engine on start, and exposes the lifecycle surface the hosting app talks
// to. The hosting app holds exactly one Manager.
package manager

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/asgcam/camserver/internal/cache"
	"github.com/asgcam/camserver/internal/camera"
	"github.com/asgcam/camserver/internal/config"
	"github.com/asgcam/camserver/internal/httpd"
	"github.com/asgcam/camserver/internal/logging"
	"github.com/asgcam/camserver/internal/netaddr"
)

// Manager wires configuration, the address provider, the camera handler,
// and the protocol engine into one start/stoppable unit. All methods are
// safe for concurrent use.
type Manager struct {
	mu     sync.Mutex
	cfg    config.Config
	addrs  *netaddr.Provider
	logger zerolog.Logger

	// Reconstructed on every start so a restart picks up reconfiguration.
	engine *httpd.Server
	cam    *camera.Server

	// Preserved across stop/start cycles.
	delegate  camera.Delegate
	photosDir string
}

// New creates a manager with the given configuration and starts its
// network address monitor. Call Close when done.
func New(cfg config.Config) *Manager {
	return &Manager{
		cfg:    cfg,
		addrs:  netaddr.NewProvider(netaddr.DefaultMonitorInterval),
		logger: logging.With().Str("component", "manager").Logger(),
	}
}

// Configure replaces the configuration used by subsequent starts. A running
// server keeps its current configuration until restarted.
func (m *Manager) Configure(cfg config.Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
}

// StartServer builds the stack and binds the listener. The delegate
// receives capture/recording callbacks and may be nil; photosDir overrides
// the configured media directory when non-empty. Starting a running
// manager is a no-op that keeps the existing stack.
func (m *Manager) StartServer(delegate camera.Delegate, photosDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delegate = delegate
	if photosDir != "" {
		m.photosDir = photosDir
	}

	if m.engine != nil && m.engine.Running() {
		return nil
	}
	return m.startLocked()
}

// startLocked builds and starts the stack from the current configuration,
// delegate, and photos directory. Caller holds m.mu.
func (m *Manager) startLocked() error {
	respCache := cache.NewResponseCache(m.cfg.Server.CacheSize)

	cam, err := camera.NewServer(m.cfg.Server, m.photosDir, respCache, m.addrs)
	if err != nil {
		return fmt.Errorf("failed to build camera server: %w", err)
	}
	cam.SetDelegate(m.delegate)

	engine := httpd.NewServer(m.cfg.Server, cam, respCache)
	if err := engine.Start(); err != nil {
		return err
	}

	m.cam = cam
	m.engine = engine

	m.logger.Info().
		Int("port", engine.Port()).
		Str("photos_dir", cam.PhotosDir()).
		Msg("Camera server started")
	return nil
}

// StopServer shuts the listener down and releases the stack. The delegate
// and photos directory survive for a later start. Stopping a stopped
// manager is a no-op.
func (m *Manager) StopServer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.engine == nil {
		return
	}
	m.engine.Stop()
	m.engine = nil
	m.cam = nil
}

// RestartServer tears the stack down and rebuilds it with the current
// configuration, preserving the registered delegate and photos directory.
// A stopped manager simply starts.
func (m *Manager) RestartServer() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	return m.startLocked()
}

// Running reports whether the protocol engine currently owns a listener.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine != nil && m.engine.Running()
}

// Port returns the bound port of the running engine, or 0.
func (m *Manager) Port() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		return 0
	}
	return m.engine.Port()
}

// ServerURL returns the advertised base URL of the running server, or "".
func (m *Manager) ServerURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cam == nil {
		return ""
	}
	return m.cam.ServerURL()
}

// SetDelegate re-registers the camera delegate on the fly. Nil clears it.
func (m *Manager) SetDelegate(delegate camera.Delegate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.delegate = delegate
	if m.cam != nil {
		m.cam.SetDelegate(delegate)
	}
}

// SavePhoto stores photo bytes via the running camera server. A stopped
// manager drops the write and returns an error naming the state.
func (m *Manager) SavePhoto(data []byte, name string) (string, error) {
	m.mu.Lock()
	cam := m.cam
	m.mu.Unlock()

	if cam == nil {
		return "", fmt.Errorf("camera server is not running")
	}
	return cam.SavePhoto(data, name)
}

// SaveVideo copies a finished recording into the store via the running
// camera server.
func (m *Manager) SaveVideo(srcPath, name string) (string, error) {
	m.mu.Lock()
	cam := m.cam
	m.mu.Unlock()

	if cam == nil {
		return "", fmt.Errorf("camera server is not running")
	}
	return cam.SaveVideo(srcPath, name)
}

// UpdateLatestPhoto pushes fresh preview bytes to the running camera
// server. A stopped manager drops the update silently.
func (m *Manager) UpdateLatestPhoto(data []byte) {
	m.mu.Lock()
	cam := m.cam
	m.mu.Unlock()

	if cam != nil {
		cam.UpdateLatestPhoto(data)
	}
}

// Close stops the server and the network address monitor.
func (m *Manager) Close() {
	m.StopServer()
	m.addrs.Close()
}
