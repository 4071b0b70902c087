// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

package manager

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/asgcam/camserver/internal/config"
)

func testManagerConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Port = 0 // ephemeral
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.PhotosDir = t.TempDir()
	return *cfg
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m := New(testManagerConfig(t))
	t.Cleanup(m.Close)
	return m
}

// httpGet issues one raw request and returns status code and body.
func httpGet(t *testing.T, port int, path string) (int, string) {
	t.Helper()

	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	fmt.Fprintf(conn, "GET %s HTTP/1.1\r\nHost: localhost\r\n\r\n", path)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	data, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	raw := string(data)
	var status int
	if _, err := fmt.Sscanf(raw, "HTTP/1.1 %d", &status); err != nil {
		t.Fatalf("Bad response %q", raw)
	}
	_, body, _ := strings.Cut(raw, "\r\n\r\n")
	return status, body
}

func TestStartServesAndStopReleasesPort(t *testing.T) {
	m := newTestManager(t)

	if err := m.StartServer(nil, ""); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}
	if !m.Running() {
		t.Fatal("Expected running after start")
	}

	status, body := httpGet(t, m.Port(), "/api/health")
	if status != 200 || !strings.Contains(body, `"healthy":true`) {
		t.Errorf("Expected healthy response, got %d %q", status, body)
	}

	m.StopServer()
	if m.Running() {
		t.Error("Expected stopped after StopServer")
	}
	if m.Port() != 0 {
		t.Errorf("Expected port 0 when stopped, got %d", m.Port())
	}

	m.StopServer() // second stop is a no-op
}

func TestStartIsIdempotent(t *testing.T) {
	m := newTestManager(t)

	if err := m.StartServer(nil, ""); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}
	port := m.Port()

	if err := m.StartServer(nil, ""); err != nil {
		t.Errorf("Second start should be a no-op success, got %v", err)
	}
	if m.Port() != port {
		t.Error("Second start must not rebind")
	}
}

func TestSavePhotoRequiresRunningServer(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.SavePhoto([]byte("x"), "a.jpg"); err == nil {
		t.Error("Expected error saving while stopped")
	}
	if _, err := m.SaveVideo("/nowhere", "a.mp4"); err == nil {
		t.Error("Expected error saving video while stopped")
	}
	m.UpdateLatestPhoto([]byte("x")) // silently dropped, must not panic
}

func TestSavePhotoVisibleOverAPI(t *testing.T) {
	m := newTestManager(t)
	if err := m.StartServer(nil, ""); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}

	if _, err := m.SavePhoto([]byte("jpegbytes"), "shot.jpg"); err != nil {
		t.Fatalf("SavePhoto failed: %v", err)
	}

	status, body := httpGet(t, m.Port(), "/api/photo?file=shot.jpg")
	if status != 200 || body != "jpegbytes" {
		t.Errorf("Expected saved bytes over API, got %d %q", status, body)
	}
}

func TestRestartPreservesPhotosDir(t *testing.T) {
	m := newTestManager(t)

	photosDir := t.TempDir()
	if err := m.StartServer(nil, photosDir); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}
	if _, err := m.SavePhoto([]byte("x"), "keep.jpg"); err != nil {
		t.Fatalf("SavePhoto failed: %v", err)
	}

	if err := m.RestartServer(); err != nil {
		t.Fatalf("RestartServer failed: %v", err)
	}
	if !m.Running() {
		t.Fatal("Expected running after restart")
	}

	// The override directory survives the restart.
	if _, err := os.Stat(filepath.Join(photosDir, "keep.jpg")); err != nil {
		t.Fatalf("Photo missing from preserved dir: %v", err)
	}
	status, body := httpGet(t, m.Port(), "/api/photo?file=keep.jpg")
	if status != 200 || body != "x" {
		t.Errorf("Expected photo served after restart, got %d %q", status, body)
	}
}

func TestRestartFromStoppedStarts(t *testing.T) {
	m := newTestManager(t)

	if err := m.RestartServer(); err != nil {
		t.Fatalf("RestartServer from stopped failed: %v", err)
	}
	if !m.Running() {
		t.Error("Expected running after restart from stopped")
	}
}

func TestConfigureAppliesOnRestart(t *testing.T) {
	m := newTestManager(t)
	if err := m.StartServer(nil, ""); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}

	cfg := testManagerConfig(t)
	cfg.Server.Name = "Renamed Cam"
	m.Configure(cfg)

	if err := m.RestartServer(); err != nil {
		t.Fatalf("RestartServer failed: %v", err)
	}

	_, body := httpGet(t, m.Port(), "/api/status")
	if !strings.Contains(body, "Renamed Cam") {
		t.Errorf("Expected reconfigured name in status, got %q", body)
	}
}

type countingDelegate struct {
	captures chan struct{}
}

func (d *countingDelegate) DidRequestCapture()        { d.captures <- struct{}{} }
func (d *countingDelegate) DidRequestStartRecording() {}
func (d *countingDelegate) DidRequestStopRecording()  {}

func TestDelegateSurvivesRestart(t *testing.T) {
	m := newTestManager(t)

	delegate := &countingDelegate{captures: make(chan struct{}, 1)}
	if err := m.StartServer(delegate, ""); err != nil {
		t.Fatalf("StartServer failed: %v", err)
	}
	if err := m.RestartServer(); err != nil {
		t.Fatalf("RestartServer failed: %v", err)
	}

	if status, _ := httpGet(t, m.Port(), "/api/take-picture"); status != 200 {
		t.Fatalf("Expected 200 acknowledgment, got %d", status)
	}

	select {
	case <-delegate.captures:
	case <-time.After(2 * time.Second):
		t.Error("Delegate not notified after restart")
	}
}
