// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache implements the response-cache engine: pluggable eviction
// policy, TTL expiry, and a single-flight guarantee for concurrent
// misses. Single-flight coordination is built on
// golang.org/x/sync/singleflight rather than hand-rolled.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"rivaas.dev/corehttp/errors"
)

// Policy selects the eviction strategy. Chosen at construction and
// never changed.
type Policy string

const (
	PolicyLRU    Policy = "lru"
	PolicyLFU    Policy = "lfu"
	PolicyFIFO   Policy = "fifo"
	PolicyRandom Policy = "random"
)

// Entry is the stored artifact for one fingerprint.
type Entry struct {
	Key         string
	Body        []byte
	Status      int
	Header      map[string][]string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	accessCount uint64
	lastAccess  time.Time
	seq         uint64

	listElem *list.Element // LRU recency list membership
}

// Expired reports whether e is logically absent. An entry whose expiry
// has passed is treated as absent even before eviction sweeps it.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Stats holds monotonically increasing counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits/(hits+misses), with the 0/0 = 0 convention.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a concurrency-safe response cache with single-flight
// coalescing of concurrent misses for the same key.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*Entry
	recency     *list.List // front = most recently used, for PolicyLRU
	policy      Policy
	maxEntries  int
	maxBodySize int64
	nextSeq     uint64

	group singleflight.Group

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64

	statsEnabled bool

	rand randSource
}

// Option configures a Cache.
type Option func(*Cache)

// WithPolicy selects the eviction policy. Default PolicyLRU.
func WithPolicy(p Policy) Option {
	return func(c *Cache) { c.policy = p }
}

// WithMaxEntries bounds the cache size; eviction runs once per insert once
// count() >= max_entries.
func WithMaxEntries(n int) Option {
	return func(c *Cache) { c.maxEntries = n }
}

// WithMaxBodySize rejects Set calls whose body exceeds n bytes with
// BodyTooLarge.
func WithMaxBodySize(n int64) Option {
	return func(c *Cache) { c.maxBodySize = n }
}

// WithStats enables statistics collection (disabled adds zero overhead
// beyond an atomic increment).
func WithStats(enabled bool) Option {
	return func(c *Cache) { c.statsEnabled = enabled }
}

// New constructs a Cache. Default policy is LRU, max entries 10000, no
// body size limit, stats enabled.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:      make(map[string]*Entry),
		recency:      list.New(),
		policy:       PolicyLRU,
		maxEntries:   10000,
		statsEnabled: true,
		rand:         newRandSource(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached entry for key if present and unexpired.
// Expired entries are never returned.
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.Expired(time.Now()) {
		c.recordMiss()
		return nil, false
	}

	e.accessCount++
	e.lastAccess = time.Now()
	if c.policy == PolicyLRU {
		c.recency.MoveToFront(e.listElem)
	}
	c.recordHit()
	return e, true
}

func (c *Cache) recordHit() {
	if c.statsEnabled {
		c.hits.Add(1)
	}
}

func (c *Cache) recordMiss() {
	if c.statsEnabled {
		c.misses.Add(1)
	}
}

// Set inserts or replaces the entry for key with the given TTL.
// Rejects bodies exceeding max_body_size.
func (c *Cache) Set(key string, body []byte, status int, header map[string][]string, ttl time.Duration) error {
	if c.maxBodySize > 0 && int64(len(body)) > c.maxBodySize {
		return errors.New(errors.KindValidation, errors.CodeBodyTooLarge, "cached body exceeds max_body_size")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if existing, ok := c.entries[key]; ok {
		c.removeLocked(existing)
	}

	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}

	c.nextSeq++
	e := &Entry{
		Key:        key,
		Body:       body,
		Status:     status,
		Header:     header,
		CreatedAt:  now,
		lastAccess: now,
		seq:        c.nextSeq,
	}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	c.entries[key] = e
	e.listElem = c.recency.PushFront(e)
	return nil
}

// Remove deletes key if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.removeLocked(e)
	}
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry)
	c.recency.Init()
}

// Contains reports whether key has an unexpired entry, without affecting
// recency/access statistics.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && !e.Expired(time.Now())
}

// Count returns the number of entries currently stored, including expired
// ones not yet swept; eviction is lazy, running at insert time.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Iterate yields a snapshot of entries in unspecified order, allowing
// prefix-based invalidation by callers.
func (c *Cache) Iterate(fn func(*Entry) bool) {
	c.mu.Lock()
	snapshot := make([]*Entry, 0, len(c.entries))
	for _, e := range c.entries {
		snapshot = append(snapshot, e)
	}
	c.mu.Unlock()

	for _, e := range snapshot {
		if !fn(e) {
			return
		}
	}
}

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// removeLocked deletes e from both the map and the recency list. Caller
// must hold c.mu.
func (c *Cache) removeLocked(e *Entry) {
	delete(c.entries, e.Key)
	if e.listElem != nil {
		c.recency.Remove(e.listElem)
	}
}

// evictOneLocked removes exactly one entry per the configured policy.
// Caller must hold c.mu and must have already verified count() >=
// maxEntries. Exactly one entry is evicted per insert.
func (c *Cache) evictOneLocked() {
	if len(c.entries) == 0 {
		return
	}

	var victim *Entry
	switch c.policy {
	case PolicyLRU:
		if back := c.recency.Back(); back != nil {
			victim = back.Value.(*Entry)
		}
	case PolicyLFU:
		for _, e := range c.entries {
			if victim == nil ||
				e.accessCount < victim.accessCount ||
				(e.accessCount == victim.accessCount && e.lastAccess.Before(victim.lastAccess)) {
				victim = e
			}
		}
	case PolicyFIFO:
		for _, e := range c.entries {
			if victim == nil || e.seq < victim.seq {
				victim = e
			}
		}
	case PolicyRandom:
		idx := c.rand.Intn(len(c.entries))
		i := 0
		for _, e := range c.entries {
			if i == idx {
				victim = e
				break
			}
			i++
		}
	}

	if victim != nil {
		c.removeLocked(victim)
		if c.statsEnabled {
			c.evictions.Add(1)
		}
	}
}

// Builder produces the artifact for a cache miss. Returning an error
// propagates the build failure to every waiter.
type Builder func() (body []byte, status int, header map[string][]string, ttl time.Duration, err error)

// GetOrBuild implements the single-flight guarantee: the first caller
// for a missed key becomes the builder; concurrent
// callers for the same key block on singleflight.Group.Do and observe the
// same result (artifact or error), never running their own builder.
func (c *Cache) GetOrBuild(key string, build Builder) (*Entry, error) {
	if e, ok := c.Get(key); ok {
		return e, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the single-flight key: another goroutine may
		// have populated the cache between our Get and entering Do.
		if e, ok := c.Get(key); ok {
			return e, nil
		}

		body, status, header, ttl, buildErr := build()
		if buildErr != nil {
			return nil, buildErr
		}
		if err := c.Set(key, body, status, header, ttl); err != nil {
			return nil, err
		}
		e, _ := c.Get(key)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}
