// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

package httpd

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/asgcam/camserver/internal/models"
)

// Response is one outbound HTTP response value, constructed by the handler
// or by the convenience constructors below. The engine injects
// Content-Length and (when enabled) CORS headers before transmission.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// NewResponse creates an empty response with the given status code.
func NewResponse(status int) *Response {
	return &Response{
		StatusCode: status,
		Headers:    make(map[string]string),
	}
}

// SetHeader sets a header, replacing any previous value.
func (r *Response) SetHeader(name, value string) *Response {
	r.Headers[name] = value
	return r
}

// OK returns a 200 response with the given body and content type.
func OK(body []byte, contentType string) *Response {
	resp := NewResponse(200)
	resp.Headers["Content-Type"] = contentType
	resp.Body = body
	return resp
}

// HTML returns a 200 response carrying an HTML page.
func HTML(page string) *Response {
	return OK([]byte(page), "text/html; charset=utf-8")
}

// JSON returns a response with the given status carrying v as JSON. A
// marshal failure degrades to a plain 500 error body rather than a crash.
func JSON(status int, v interface{}) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		body = []byte(`{"status":"error","message":"response serialization failed"}`)
		status = 500
	}

	resp := NewResponse(status)
	resp.Headers["Content-Type"] = "application/json"
	resp.Body = body
	return resp
}

// Success returns a 200 JSON success envelope around data.
func Success(data interface{}) *Response {
	return JSON(200, models.Success(data))
}

// Error returns a JSON error envelope with the given status and message.
func Error(status int, message string) *Response {
	return JSON(status, models.Error(message))
}

// BadRequest returns a 400 JSON error response.
func BadRequest(message string) *Response {
	return Error(400, message)
}

// NotFound returns a 404 JSON error response.
func NotFound(message string) *Response {
	return Error(404, message)
}

// TooManyRequests returns a 429 JSON error response.
func TooManyRequests() *Response {
	return Error(429, "Rate limit exceeded")
}

// InternalError returns a 500 JSON error response.
func InternalError(message string) *Response {
	return Error(500, message)
}

// serialize frames the response as HTTP/1.1 bytes: status line, headers,
// CRLFCRLF, body. Content-Length is expected to be set already.
func (r *Response) serialize() []byte {
	var buf []byte
	buf = append(buf, "HTTP/1.1 "...)
	buf = strconv.AppendInt(buf, int64(r.StatusCode), 10)
	buf = append(buf, ' ')
	buf = append(buf, reasonPhrase(r.StatusCode)...)
	buf = append(buf, "\r\n"...)

	for name, value := range r.Headers {
		buf = append(buf, fmt.Sprintf("%s: %s\r\n", name, value)...)
	}

	buf = append(buf, "\r\n"...)
	buf = append(buf, r.Body...)
	return buf
}

// reasonPhrase maps a status code to its canonical reason phrase.
func reasonPhrase(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 202:
		return "Accepted"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 408:
		return "Request Timeout"
	case 413:
		return "Payload Too Large"
	case 414:
		return "URI Too Long"
	case 429:
		return "Too Many Requests"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown"
	}
}
