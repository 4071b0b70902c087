// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package camera implements the camera REST surface on top of the protocol
// engine: capture and recording triggers, gallery listing, photo and video
// serving, and housekeeping over a flat-file media store.
//
// The package performs no actual capture. Capture and recording requests
// are forwarded to a Delegate (the hosting app's streaming session) and
// acknowledged immediately; the delegate may be absent, in which case the
// notification is dropped.
package camera

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/asgcam/camserver/internal/cache"
	"github.com/asgcam/camserver/internal/config"
	"github.com/asgcam/camserver/internal/logging"
	"github.com/asgcam/camserver/internal/netaddr"
)

// Delegate receives fire-and-forget notifications when a remote client
// requests camera actions. Implementations must tolerate being called from
// arbitrary goroutines.
type Delegate interface {
	DidRequestCapture()
	DidRequestStartRecording()
	DidRequestStopRecording()
}

// mediaExtensions are the file extensions listed by the gallery.
var mediaExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".heic": true,
	".mp4":  true,
	".mov":  true,
}

// videoExtensions mark a media file as video.
var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
}

// modifiedTimeFormat is the timestamp format used in gallery metadata.
const modifiedTimeFormat = "2006-01-02 15:04:05"

// Server is the camera request handler backing the REST + gallery API.
// It satisfies httpd.Handler.
type Server struct {
	cfg       config.ServerConfig
	photosDir string
	cache     *cache.ResponseCache
	addrs     *netaddr.Provider
	logger    zerolog.Logger
	startTime time.Time

	// delegateMu guards the re-registrable delegate handle. The server
	// holds a non-owning reference; a cleared delegate turns notifications
	// into no-ops.
	delegateMu sync.RWMutex
	delegate   Delegate

	// latestMu guards the in-memory copy of the most recent photo, which
	// is updated by the hosting app without touching disk.
	latestMu    sync.RWMutex
	latestPhoto []byte
}

// NewServer creates a camera server over photosDir, creating the directory
// if needed. An empty photosDir falls back to the configured default. The
// response cache and address provider may be nil; both only degrade
// functionality (no payload caching, no advertised URL).
func NewServer(cfg config.ServerConfig, photosDir string, respCache *cache.ResponseCache, addrs *netaddr.Provider) (*Server, error) {
	if photosDir == "" {
		photosDir = cfg.PhotosDir
	}
	if err := os.MkdirAll(photosDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photos directory %s: %w", photosDir, err)
	}

	return &Server{
		cfg:       cfg,
		photosDir: photosDir,
		cache:     respCache,
		addrs:     addrs,
		logger:    logging.With().Str("component", "camera").Logger(),
		startTime: time.Now(),
	}, nil
}

// PhotosDir returns the directory backing the media store.
func (s *Server) PhotosDir() string {
	return s.photosDir
}

// SetDelegate registers the collaborator notified of capture and recording
// requests. Passing nil clears the handle; clear before tearing the
// collaborator down.
func (s *Server) SetDelegate(d Delegate) {
	s.delegateMu.Lock()
	s.delegate = d
	s.delegateMu.Unlock()
}

// notify runs fn against the current delegate on its own goroutine. The
// HTTP response never waits for the delegate.
func (s *Server) notify(fn func(Delegate)) {
	go func() {
		s.delegateMu.RLock()
		d := s.delegate
		s.delegateMu.RUnlock()

		if d != nil {
			fn(d)
		}
	}()
}

// SavePhoto writes photo bytes into the store and returns the full path.
// An empty name selects the timestamped default photo_<epochMillis>.jpg.
func (s *Server) SavePhoto(data []byte, name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("photo_%d.jpg", time.Now().UnixMilli())
	}
	if !safeFileName(name) {
		return "", fmt.Errorf("unsafe file name %q", name)
	}

	path := filepath.Join(s.photosDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	// Drop any stale cached payload for this name.
	if s.cache != nil {
		s.cache.Remove(name)
	}

	s.logger.Info().Str("file", name).Int("bytes", len(data)).Msg("Photo saved")
	return path, nil
}

// SaveVideo copies a finished recording from a local file into the store
// and returns the full path. An empty name selects the timestamped default
// video_<epochMillis>.mp4.
func (s *Server) SaveVideo(srcPath, name string) (string, error) {
	if name == "" {
		name = fmt.Sprintf("video_%d.mp4", time.Now().UnixMilli())
	}
	if !safeFileName(name) {
		return "", fmt.Errorf("unsafe file name %q", name)
	}

	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to read video source: %w", err)
	}

	path := filepath.Join(s.photosDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save video: %w", err)
	}

	if s.cache != nil {
		s.cache.Remove(name)
	}

	s.logger.Info().Str("file", name).Int("bytes", len(data)).Msg("Video saved")
	return path, nil
}

// UpdateLatestPhoto replaces the in-memory "latest" photo without touching
// disk. Serves /api/latest-photo ahead of any file lookup.
func (s *Server) UpdateLatestPhoto(data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)

	s.latestMu.Lock()
	s.latestPhoto = buf
	s.latestMu.Unlock()
}

// latest returns the in-memory latest photo, or nil.
func (s *Server) latest() []byte {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	return s.latestPhoto
}

// ServerURL computes the advertised base URL from the best local address,
// or "" when no usable interface exists.
func (s *Server) ServerURL() string {
	if s.addrs == nil {
		return ""
	}
	ip, ok := s.addrs.BestIPAddress()
	if !ok {
		return ""
	}
	return fmt.Sprintf("http://%s:%d", ip, s.cfg.Port)
}

// safeFileName rejects names that could escape the photos directory: path
// separators (either flavor), parent references, and absolute paths. This
// is the sole defense against traversal and must not be weakened.
func safeFileName(name string) bool {
	if name == "" {
		return false
	}
	if strings.Contains(name, "..") {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	if filepath.IsAbs(name) {
		return false
	}
	return true
}

// isMedia reports whether a file name carries a known media extension.
func isMedia(name string) bool {
	return mediaExtensions[strings.ToLower(filepath.Ext(name))]
}

// isVideo reports whether a file name carries a video extension.
func isVideo(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}
