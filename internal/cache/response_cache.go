// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package cache provides a bounded LRU cache for response payloads.
//
// The cache holds raw byte bodies keyed by an opaque string (typically a
// file name) with an optional per-entry TTL. Eviction is true
// least-recently-accessed: a Get refreshes an entry's position, so the entry
// whose most recent access is oldest goes first when capacity is exceeded.
//
// This implementation uses a doubly-linked list for ordering and a hashmap
// for lookups, giving O(1) Get, Put, Remove, and eviction.
package cache

import (
	"sync"
	"time"
)

// entry is a node in the access-ordered list.
type entry struct {
	key   string
	value []byte
	prev  *entry
	next  *entry

	// expiresAt is the absolute expiry; zero means the entry never expires.
	expiresAt time.Time

	// accessedAt is the last hit or insertion time, kept for introspection.
	accessedAt time.Time
}

// ResponseCache is a thread-safe LRU cache with lazy TTL expiration.
//
// Expired entries are treated as absent and evicted on lookup; until then
// they still occupy a slot and count toward Len. All operations are
// serialized by a single mutex since they race across connection-handling
// goroutines.
type ResponseCache struct {
	mu sync.Mutex

	// capacity is the maximum number of entries.
	capacity int

	// items maps keys to list nodes for O(1) lookup.
	items map[string]*entry

	// head and tail are sentinel nodes.
	// head.next is the most recently accessed, tail.prev the least.
	head *entry
	tail *entry

	// now is the clock source, replaceable in tests.
	now func() time.Time

	// stats
	hits   int64
	misses int64
}

// NewResponseCache creates a cache holding at most capacity entries.
func NewResponseCache(capacity int) *ResponseCache {
	if capacity <= 0 {
		capacity = 100
	}

	c := &ResponseCache{
		capacity: capacity,
		items:    make(map[string]*entry, capacity),
		head:     &entry{},
		tail:     &entry{},
		now:      time.Now,
	}

	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the cached bytes for key, or nil and false if the key is
// absent or expired. A hit refreshes the entry's access time and position.
// An expired entry is evicted before returning.
func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}

	if c.expired(e) {
		c.removeEntry(e)
		c.misses++
		return nil, false
	}

	e.accessedAt = c.now()
	c.moveToFront(e)
	c.hits++
	return e.value, true
}

// Put inserts or overwrites the bytes for key. A ttl of zero means the entry
// never expires. If the key is new and the cache is at capacity, the single
// least-recently-accessed entry is evicted first.
func (c *ResponseCache) Put(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		e.accessedAt = now
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	e := &entry{
		key:        key,
		value:      value,
		expiresAt:  expiresAt,
		accessedAt: now,
	}
	c.addToFront(e)
	c.items[key] = e
}

// Remove deletes the entry for key.
// Returns true if the entry was present.
func (c *ResponseCache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.removeEntry(e)
		return true
	}
	return false
}

// Clear removes all entries.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the current entry count. Expired entries that have not been
// touched since expiring still count until a lookup evicts them.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit/miss counters and the current size.
func (c *ResponseCache) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Internal methods (must be called with mu held)

func (c *ResponseCache) expired(e *entry) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

// addToFront adds an entry at the most-recently-accessed position.
func (c *ResponseCache) addToFront(e *entry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

// moveToFront relinks an existing entry to the front.
func (c *ResponseCache) moveToFront(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

// removeEntry unlinks an entry from both the list and the map.
func (c *ResponseCache) removeEntry(e *entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

// evictOldest removes the least-recently-accessed entry.
func (c *ResponseCache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
}
