// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package models defines the JSON response shapes shared by the HTTP engine
// and the camera request handler.
package models

// APIResponse is the standardized envelope used by every JSON endpoint.
//
// Status field values:
//   - "success": request completed, see Data
//   - "error": request failed, see Message
//
// Example successful response:
//
//	{"status":"success","data":{"message":"Photo capture requested"}}
//
// Example error response:
//
//	{"status":"error","message":"File not found: photo_123.jpg"}
type APIResponse struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Success wraps data in a success envelope.
func Success(data interface{}) *APIResponse {
	return &APIResponse{Status: "success", Data: data}
}

// Error wraps a human-readable message in an error envelope.
func Error(message string) *APIResponse {
	return &APIResponse{Status: "error", Message: message}
}

// PhotoMetadata describes one stored media file. It is derived fresh from a
// filesystem stat on every gallery request and never persisted.
type PhotoMetadata struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Modified     string `json:"modified"`
	MimeType     string `json:"mime_type"`
	URL          string `json:"url"`
	DownloadURL  string `json:"download_url"`
	IsVideo      bool   `json:"is_video"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// GalleryData is the payload of /api/gallery.
type GalleryData struct {
	Photos     []PhotoMetadata `json:"photos"`
	TotalCount int             `json:"total_count"`
	TotalSize  int64           `json:"total_size"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit"`
	HasMore    bool            `json:"has_more"`
}

// StatusData is the payload of /api/status.
type StatusData struct {
	ServerName    string  `json:"server_name"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	PhotoCount    int     `json:"photo_count"`
	PhotosDir     string  `json:"photos_dir"`
	ServerURL     string  `json:"server_url,omitempty"`
}

// HealthData is the payload of /api/health.
type HealthData struct {
	Healthy bool `json:"healthy"`
}

// CleanupData is the payload of /api/cleanup.
type CleanupData struct {
	DeletedCount int `json:"deleted_count"`
	MaxAgeHours  int `json:"max_age_hours"`
}

// ActionData acknowledges a fire-and-forget action request.
type ActionData struct {
	Message string `json:"message"`
}
