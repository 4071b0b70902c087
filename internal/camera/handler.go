// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

package camera

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/asgcam/camserver/internal/httpd"
	"github.com/asgcam/camserver/internal/models"
)

// defaultGalleryLimit is the page size when the client sends no limit.
const defaultGalleryLimit = 50

// defaultCleanupAgeHours is applied when /api/cleanup has no max_age_hours.
const defaultCleanupAgeHours = 24

// HandleRequest routes one parsed request by exact path match. Unknown
// paths get a 404 envelope echoing the requested path.
func (s *Server) HandleRequest(req *httpd.Request) *httpd.Response {
	switch req.Path {
	case "/":
		return httpd.HTML(galleryPage)
	case "/api/take-picture":
		s.notify(Delegate.DidRequestCapture)
		return httpd.Success(models.ActionData{Message: "Photo capture requested"})
	case "/api/start-recording":
		s.notify(Delegate.DidRequestStartRecording)
		return httpd.Success(models.ActionData{Message: "Video recording started"})
	case "/api/stop-recording":
		s.notify(Delegate.DidRequestStopRecording)
		return httpd.Success(models.ActionData{Message: "Video recording stopped"})
	case "/api/latest-photo":
		return s.handleLatestPhoto()
	case "/api/gallery":
		return s.handleGallery(req)
	case "/api/photo":
		return s.handleFile(req, false)
	case "/api/download":
		return s.handleFile(req, true)
	case "/api/status":
		return s.handleStatus()
	case "/api/health":
		return httpd.Success(models.HealthData{Healthy: true})
	case "/api/cleanup":
		return s.handleCleanup(req)
	default:
		return httpd.NotFound("No route for path: " + req.Path)
	}
}

// handleLatestPhoto serves the in-memory latest photo when present,
// otherwise the newest media file on disk.
func (s *Server) handleLatestPhoto() *httpd.Response {
	if data := s.latest(); len(data) > 0 {
		return httpd.OK(data, "image/jpeg")
	}

	entries, err := s.listMedia()
	if err != nil {
		return httpd.InternalError("Failed to read photos directory")
	}
	if len(entries) == 0 {
		return httpd.NotFound("No photos available")
	}

	newest := entries[0]
	data, err := os.ReadFile(filepath.Join(s.photosDir, newest.name))
	if err != nil {
		return httpd.InternalError("Failed to read latest photo")
	}
	return httpd.OK(data, httpd.MimeType(newest.name))
}

// handleFile serves a stored media file by name. Download mode adds a
// Content-Disposition attachment header. Payloads pass through the response
// cache keyed by file name.
func (s *Server) handleFile(req *httpd.Request, download bool) *httpd.Response {
	name := req.QueryParam("file")
	if name == "" {
		return httpd.BadRequest("Missing file parameter")
	}
	if !safeFileName(name) {
		return httpd.BadRequest("Invalid file name")
	}

	data, hit := []byte(nil), false
	if s.cache != nil {
		data, hit = s.cache.Get(name)
	}
	if !hit {
		var err error
		data, err = os.ReadFile(filepath.Join(s.photosDir, name))
		if err != nil {
			if os.IsNotExist(err) {
				return httpd.NotFound("File not found: " + name)
			}
			s.logger.Error().Err(err).Str("file", name).Msg("File read failed")
			return httpd.InternalError("Failed to read file")
		}
		if s.cache != nil {
			s.cache.Put(name, data, s.cfg.CacheTTL)
		}
	}

	resp := httpd.OK(data, httpd.MimeType(name))
	if download {
		resp.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	return resp
}

// handleGallery lists stored media newest-first with offset/limit paging.
// Counts and sizes aggregate the whole store, not just the returned page.
func (s *Server) handleGallery(req *httpd.Request) *httpd.Response {
	offset, err := parseNonNegative(req.QueryParam("offset"), 0)
	if err != nil {
		return httpd.BadRequest("Invalid offset parameter")
	}
	limit, err := parseNonNegative(req.QueryParam("limit"), defaultGalleryLimit)
	if err != nil || limit == 0 {
		return httpd.BadRequest("Invalid limit parameter")
	}

	entries, err := s.listMedia()
	if err != nil {
		return httpd.InternalError("Failed to read photos directory")
	}

	var totalSize int64
	for _, e := range entries {
		totalSize += e.size
	}

	page := entries
	if offset >= len(page) {
		page = nil
	} else {
		page = page[offset:]
	}
	if len(page) > limit {
		page = page[:limit]
	}

	photos := make([]models.PhotoMetadata, 0, len(page))
	for _, e := range page {
		escaped := url.QueryEscape(e.name)
		photos = append(photos, models.PhotoMetadata{
			Name:        e.name,
			Size:        e.size,
			Modified:    e.modified.Format(modifiedTimeFormat),
			MimeType:    httpd.MimeType(e.name),
			URL:         "/api/photo?file=" + escaped,
			DownloadURL: "/api/download?file=" + escaped,
			IsVideo:     isVideo(e.name),
		})
	}

	return httpd.Success(models.GalleryData{
		Photos:     photos,
		TotalCount: len(entries),
		TotalSize:  totalSize,
		Offset:     offset,
		Limit:      limit,
		HasMore:    offset+limit < len(entries),
	})
}

// handleStatus reports server identity, uptime, and store summary.
func (s *Server) handleStatus() *httpd.Response {
	entries, err := s.listMedia()
	if err != nil {
		return httpd.InternalError("Failed to read photos directory")
	}

	return httpd.Success(models.StatusData{
		ServerName:    s.cfg.Name,
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		PhotoCount:    len(entries),
		PhotosDir:     s.photosDir,
		ServerURL:     s.ServerURL(),
	})
}

// handleCleanup deletes media older than max_age_hours (default 24) and
// evicts the deleted names from the response cache.
func (s *Server) handleCleanup(req *httpd.Request) *httpd.Response {
	maxAge := defaultCleanupAgeHours
	if raw := req.QueryParam("max_age_hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return httpd.BadRequest("Invalid max_age_hours parameter")
		}
		maxAge = parsed
	}

	entries, err := s.listMedia()
	if err != nil {
		return httpd.InternalError("Failed to read photos directory")
	}

	cutoff := time.Now().Add(-time.Duration(maxAge) * time.Hour)
	deleted := 0
	for _, e := range entries {
		if !e.modified.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.photosDir, e.name)); err != nil {
			s.logger.Warn().Err(err).Str("file", e.name).Msg("Cleanup delete failed")
			continue
		}
		if s.cache != nil {
			s.cache.Remove(e.name)
		}
		deleted++
	}

	s.logger.Info().Int("deleted", deleted).Int("max_age_hours", maxAge).Msg("Cleanup finished")
	return httpd.Success(models.CleanupData{DeletedCount: deleted, MaxAgeHours: maxAge})
}

// mediaEntry is one stat'd media file.
type mediaEntry struct {
	name     string
	size     int64
	modified time.Time
}

// listMedia stats every media file in the store, newest first. Files that
// vanish between listing and stat are skipped.
func (s *Server) listMedia() ([]mediaEntry, error) {
	dirEntries, err := os.ReadDir(s.photosDir)
	if err != nil {
		return nil, err
	}

	entries := make([]mediaEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || !isMedia(de.Name()) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, mediaEntry{
			name:     de.Name(),
			size:     info.Size(),
			modified: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modified.After(entries[j].modified)
	})
	return entries, nil
}

// parseNonNegative parses a non-negative integer query value, returning the
// fallback for an absent value and an error for garbage or negatives.
func parseNonNegative(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return n, nil
}
