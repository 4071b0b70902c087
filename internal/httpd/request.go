// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

package httpd

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrMalformedRequest reports an unparseable request head.
var ErrMalformedRequest = errors.New("malformed HTTP request")

// Request is one parsed inbound HTTP request. It is constructed once per
// connection by the parser and read-only afterwards.
type Request struct {
	// Method is the HTTP method verbatim from the request line.
	Method string

	// Path is the percent-decoded URI path without the query string.
	Path string

	// Query maps decoded parameter names to values. Keys are unique; the
	// last occurrence wins on duplicates.
	Query map[string]string

	// Headers maps lower-cased header names to values.
	Headers map[string]string

	// Body holds the raw request body, or nil when none was sent.
	Body []byte

	// RemoteAddr identifies the originating client connection.
	RemoteAddr string
}

// QueryParam returns the named query parameter, or "" when absent.
func (r *Request) QueryParam(name string) string {
	return r.Query[name]
}

// Header returns the named header value; lookup is case-insensitive.
func (r *Request) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// ContentLength returns the declared body length, or 0 when absent or
// unparseable.
func (r *Request) ContentLength() int {
	n, err := strconv.Atoi(r.Headers["content-length"])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseRequestHead parses the request line and headers from the bytes
// preceding the blank line. Lines are delimited by exact CRLF.
func parseRequestHead(head []byte) (*Request, error) {
	lines := strings.Split(string(head), "\r\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, ErrMalformedRequest
	}

	// Request line: METHOD SP PATH SP VERSION. Anything with fewer than two
	// tokens is rejected outright.
	tokens := strings.Split(lines[0], " ")
	if len(tokens) < 2 || tokens[0] == "" || tokens[1] == "" {
		return nil, ErrMalformedRequest
	}

	path, query := splitTarget(tokens[1])

	req := &Request{
		Method:  tokens[0],
		Path:    path,
		Query:   query,
		Headers: make(map[string]string),
	}

	// Headers run up to the first empty line. Name is lower-cased for
	// lookup consistency; both sides are trimmed.
	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		req.Headers[name] = strings.TrimSpace(value)
	}

	return req, nil
}

// splitTarget splits a request target into the decoded path and parsed
// query parameters at the first '?'.
func splitTarget(target string) (string, map[string]string) {
	rawPath, rawQuery, _ := strings.Cut(target, "?")
	return decodePath(rawPath), parseQuery(rawQuery)
}

// decodePath percent-decodes a path, falling back to the raw token when
// decoding fails.
func decodePath(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// parseQuery splits a query string on '&', then each pair at the first '='.
// Keys and values are percent-decoded with a fallback to the raw token.
// The last occurrence wins on duplicate keys.
func parseQuery(rawQuery string) map[string]string {
	params := make(map[string]string)
	if rawQuery == "" {
		return params
	}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if key == "" {
			continue
		}
		params[decodeQueryToken(key)] = decodeQueryToken(value)
	}

	return params
}

// decodeQueryToken percent-decodes one query key or value, treating '+' as
// space, falling back to the raw token when decoding fails.
func decodeQueryToken(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
