// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package ratelimit implements a sliding-window request throttle keyed by
// client IP.
//
// Admission is decided by counting the exact request timestamps within the
// trailing window, recomputed on every check. This differs from fixed-bucket
// counters: there is no reset boundary a client can straddle to double its
// quota.
//
// Complexity:
//   - Allow/Record: O(n) where n = requests for that IP within the window
//   - Memory: O(n) per active IP; fully pruned ledgers are dropped
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a thread-safe sliding-window rate limiter.
// The zero value is not usable; construct with NewLimiter.
type Limiter struct {
	mu sync.Mutex

	// maxRequests is the admission quota within the window.
	maxRequests int

	// window is the trailing time window.
	window time.Duration

	// ledger maps client IP to the ordered request timestamps still inside
	// the window. Timestamps are appended in arrival order, so pruning only
	// ever trims a prefix.
	ledger map[string][]time.Time

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

// NewLimiter creates a limiter admitting at most maxRequests per client IP
// within the trailing window.
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		ledger:      make(map[string][]time.Time),
		now:         time.Now,
	}
}

// IsAllowed reports whether the given IP may issue another request.
// Entries older than the window are pruned before the decision; an IP with
// no prior requests is always allowed.
func (l *Limiter) IsAllowed(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.prune(ip)) < l.maxRequests
}

// RecordRequest records an admitted request for the given IP.
// Pruning happens here too so ledgers never grow past one window of traffic.
func (l *Limiter) RecordRequest(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ledger[ip] = append(l.prune(ip), l.now())
}

// Allow performs the check and the record in one critical section: it
// prunes, admits iff the surviving count is below the quota, and records the
// request only on admission. The engine uses this so concurrent connections
// can never admit more than maxRequests within a window.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.prune(ip)
	if len(stamps) >= l.maxRequests {
		return false
	}
	l.ledger[ip] = append(stamps, l.now())
	return true
}

// Count returns the number of requests for the IP still inside the window.
func (l *Limiter) Count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.prune(ip))
}

// Reset clears all ledgers.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ledger = make(map[string][]time.Time)
}

// prune drops timestamps older than the window for the given IP and returns
// the surviving slice. Must be called with mu held.
func (l *Limiter) prune(ip string) []time.Time {
	stamps, ok := l.ledger[ip]
	if !ok {
		return nil
	}

	cutoff := l.now().Add(-l.window)
	keep := 0
	for keep < len(stamps) && !stamps[keep].After(cutoff) {
		keep++
	}

	if keep == 0 {
		return stamps
	}

	stamps = stamps[keep:]
	if len(stamps) == 0 {
		// Drop empty ledgers so idle IPs do not leak memory.
		delete(l.ledger, ip)
		return nil
	}

	l.ledger[ip] = stamps
	return stamps
}
