// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package httpd implements a connection-oriented HTTP/1.1 server directly on
// TCP stream sockets: listener ownership, request parsing off the wire,
// response framing, CORS and rate-limit policy, and dispatch to a pluggable
// request handler.
//
// The server is request-per-connection: each accepted connection carries
// exactly one request and is closed after the response is written. There is
// no keep-alive; clients on the local network reconnect per request.
//
// Request handling is strictly local to one connection. Connections are
// served on their own goroutines and may interleave freely; the only shared
// state (connection table, rate-limit ledger, response cache) sits behind
// per-component locks.
package httpd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asgcam/camserver/internal/cache"
	"github.com/asgcam/camserver/internal/config"
	"github.com/asgcam/camserver/internal/logging"
	"github.com/asgcam/camserver/internal/ratelimit"
)

// maxHeaderBytes caps the request head (request line + headers).
const maxHeaderBytes = 16 << 10

// readChunkSize is the per-read buffer size for connection reads.
const readChunkSize = 4096

var headerSeparator = []byte("\r\n\r\n")

// Handler processes one parsed request into a response. Implementations
// must be safe for concurrent calls.
type Handler interface {
	HandleRequest(req *Request) *Response
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(req *Request) *Response

// HandleRequest calls f.
func (f HandlerFunc) HandleRequest(req *Request) *Response {
	return f(req)
}

// Server owns the listening socket and the policy applied to every request:
// CORS preflights, per-IP rate limiting, body size caps, and response
// framing. Actual request semantics live in the injected Handler.
type Server struct {
	cfg     config.ServerConfig
	handler Handler
	limiter *ratelimit.Limiter
	cache   *cache.ResponseCache
	logger  zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[string]net.Conn
	running  bool

	wg sync.WaitGroup
}

// NewServer creates a server for the given configuration and handler. The
// response cache may be nil; when present it is cleared on Stop.
func NewServer(cfg config.ServerConfig, handler Handler, responseCache *cache.ResponseCache) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		limiter: ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		cache:   responseCache,
		logger:  logging.With().Str("component", "httpd").Logger(),
		conns:   make(map[string]net.Conn),
	}
}

// Start binds the listening socket and begins accepting connections.
// A bind failure (port in use, permission denied) is returned synchronously
// and the server does not enter the running state. Starting a running
// server is a no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.cfg.Addr(), err)
	}

	s.listener = listener
	s.running = true

	s.wg.Add(1)
	go s.acceptLoop(listener)

	s.logger.Info().
		Str("addr", listener.Addr().String()).
		Str("name", s.cfg.Name).
		Msg("Listener bound")

	return nil
}

// Stop cancels the listener and every tracked open connection, waits for
// in-flight handlers, then clears the response cache. Idempotent: stopping
// a server that is not running is a no-op.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false

	_ = s.listener.Close()
	s.listener = nil
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()

	if s.cache != nil {
		s.cache.Clear()
	}

	s.logger.Info().Msg("Server stopped")
}

// Running reports whether the server currently owns a listening socket.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Port returns the actual bound TCP port, useful when configured with port
// 0, or 0 when not running.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return 0
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return 0
}

// acceptLoop accepts connections until the listener is closed. Each
// connection is tracked and served on its own goroutine.
func (s *Server) acceptLoop(listener net.Listener) {
	defer s.wg.Done()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("Accept failed")
			continue
		}

		id := uuid.NewString()
		s.track(id, conn)

		s.wg.Add(1)
		go s.handleConn(id, conn)
	}
}

func (s *Server) track(id string, conn net.Conn) {
	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()
}

func (s *Server) untrack(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// handleConn serves exactly one request on conn and closes it. Every
// failure path is contained to this connection: it produces an error
// response or a silent teardown, never more.
func (s *Server) handleConn(id string, conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(id)
	defer conn.Close()

	start := time.Now()

	if s.cfg.IdleTimeout > 0 {
		_ = conn.SetDeadline(start.Add(s.cfg.IdleTimeout))
	}

	head, rest, err := readHead(conn)
	if err != nil {
		s.logger.Debug().Err(err).Str("conn", id).Msg("Unreadable request")
		s.send(id, conn, BadRequest("Malformed request"))
		return
	}

	req, err := parseRequestHead(head)
	if err != nil {
		s.send(id, conn, BadRequest("Malformed request"))
		return
	}
	req.RemoteAddr = conn.RemoteAddr().String()

	// CORS preflights are answered by the engine, bypassing the limiter and
	// the handler.
	if req.Method == "OPTIONS" && s.cfg.CORSEnabled {
		s.send(id, conn, NewResponse(200))
		return
	}

	clientID := clientIP(req.RemoteAddr)
	if !s.limiter.Allow(clientID) {
		s.logger.Debug().Str("client", clientID).Msg("Rate limit exceeded")
		s.send(id, conn, TooManyRequests())
		return
	}

	if n := req.ContentLength(); n > 0 && req.Method != "GET" {
		if s.cfg.MaxBodySize > 0 && int64(n) > s.cfg.MaxBodySize {
			s.send(id, conn, Error(413, "Request body too large"))
			return
		}
		body, err := readBody(conn, rest, n)
		if err != nil {
			s.send(id, conn, BadRequest("Incomplete request body"))
			return
		}
		req.Body = body
	}

	resp := s.dispatch(req)
	s.send(id, conn, resp)

	s.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("client", clientID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Request served")
}

// dispatch invokes the handler, converting a panic or a nil response into a
// 500 so a handler bug can never tear down the connection loop.
func (s *Server) dispatch(req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("path", req.Path).
				Msg("Handler panicked")
			resp = InternalError("Internal server error")
		}
	}()

	resp = s.handler.HandleRequest(req)
	if resp == nil {
		resp = InternalError("Internal server error")
	}
	return resp
}

// send finalizes policy headers and writes the framed response. A write
// failure is logged and the connection torn down; it never affects other
// connections.
func (s *Server) send(id string, conn net.Conn, resp *Response) {
	if s.cfg.CORSEnabled {
		resp.Headers["Access-Control-Allow-Origin"] = "*"
		resp.Headers["Access-Control-Allow-Methods"] = "GET, POST, OPTIONS"
		resp.Headers["Access-Control-Allow-Headers"] = "Content-Type"
	}
	resp.Headers["Content-Length"] = fmt.Sprintf("%d", len(resp.Body))
	if s.cfg.Name != "" {
		resp.Headers["Server"] = s.cfg.Name
	}

	if _, err := conn.Write(resp.serialize()); err != nil {
		s.logger.Debug().Err(err).Str("conn", id).Msg("Send failed")
	}
}

// readHead reads from conn until the CRLFCRLF header separator, returning
// the head bytes and any body bytes already read past the separator.
func readHead(conn net.Conn) (head, rest []byte, err error) {
	buf := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)

	for {
		if idx := bytes.Index(buf, headerSeparator); idx >= 0 {
			return buf[:idx], buf[idx+len(headerSeparator):], nil
		}
		if len(buf) > maxHeaderBytes {
			return nil, nil, fmt.Errorf("request head exceeds %d bytes", maxHeaderBytes)
		}

		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("connection closed before request head: %w", err)
		}
	}
}

// readBody reads a Content-Length-bounded body, starting from the bytes
// already buffered past the header separator.
func readBody(conn net.Conn, rest []byte, contentLength int) ([]byte, error) {
	body := make([]byte, 0, contentLength)
	body = append(body, rest...)

	chunk := make([]byte, readChunkSize)
	for len(body) < contentLength {
		n, err := conn.Read(chunk)
		if n > 0 {
			body = append(body, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) && len(body) >= contentLength {
				break
			}
			return nil, fmt.Errorf("connection closed mid-body: %w", err)
		}
	}

	return body[:contentLength], nil
}

// clientIP extracts the host part of a remote endpoint description. Under
// NAT or shared IPv6 prefixes this may under- or over-group distinct
// clients; that grouping is a known limitation of IP-keyed limiting.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
