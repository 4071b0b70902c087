// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

package httpd

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestSerializeFraming(t *testing.T) {
	resp := NewResponse(200)
	resp.Headers["Content-Type"] = "text/plain"
	resp.Headers["Content-Length"] = "5"
	resp.Body = []byte("hello")

	raw := string(resp.serialize())

	if !strings.HasPrefix(raw, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("Expected status line prefix, got %q", raw)
	}
	if !strings.Contains(raw, "Content-Type: text/plain\r\n") {
		t.Errorf("Expected header line, got %q", raw)
	}
	head, body, found := strings.Cut(raw, "\r\n\r\n")
	if !found {
		t.Fatalf("Expected CRLFCRLF separator in %q", raw)
	}
	if body != "hello" {
		t.Errorf("Expected body after separator, got %q", body)
	}
	if strings.Contains(head, "hello") {
		t.Error("Body leaked into head")
	}
}

func TestSuccessEnvelope(t *testing.T) {
	resp := Success(map[string]string{"message": "ok"})

	if resp.StatusCode != 200 {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("Expected JSON content type, got %q", resp.Headers["Content-Type"])
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		t.Fatalf("Body is not valid JSON: %v", err)
	}
	if envelope["status"] != "success" {
		t.Errorf("Expected status success, got %v", envelope["status"])
	}
	if _, ok := envelope["data"]; !ok {
		t.Error("Expected data field in success envelope")
	}
}

func TestErrorEnvelope(t *testing.T) {
	resp := NotFound("File not found: x.jpg")

	if resp.StatusCode != 404 {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}

	var envelope map[string]interface{}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		t.Fatalf("Body is not valid JSON: %v", err)
	}
	if envelope["status"] != "error" {
		t.Errorf("Expected status error, got %v", envelope["status"])
	}
	if envelope["message"] != "File not found: x.jpg" {
		t.Errorf("Expected message field, got %v", envelope["message"])
	}
}

func TestConvenienceConstructorStatusCodes(t *testing.T) {
	cases := []struct {
		resp *Response
		want int
	}{
		{BadRequest("x"), 400},
		{NotFound("x"), 404},
		{TooManyRequests(), 429},
		{InternalError("x"), 500},
		{OK([]byte("b"), "text/plain"), 200},
		{HTML("<html></html>"), 200},
	}

	for _, tc := range cases {
		if tc.resp.StatusCode != tc.want {
			t.Errorf("Expected status %d, got %d", tc.want, tc.resp.StatusCode)
		}
	}
}

func TestReasonPhrase(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{200, "OK"},
		{400, "Bad Request"},
		{404, "Not Found"},
		{413, "Payload Too Large"},
		{429, "Too Many Requests"},
		{500, "Internal Server Error"},
		{299, "Unknown"},
	}

	for _, tc := range cases {
		if got := reasonPhrase(tc.code); got != tc.want {
			t.Errorf("reasonPhrase(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestMimeType(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"photo_123.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"clip.mp4", "video/mp4"},
		{"clip.mov", "video/quicktime"},
		{"page.html", "text/html; charset=utf-8"},
		{"unknown.xyz", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}

	for _, tc := range cases {
		if got := MimeType(tc.name); got != tc.want {
			t.Errorf("MimeType(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
