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

// Package ratelimit implements a token-bucket rate limiter. Exhausted
// clients get a 429 with RateLimit-* response headers.
package ratelimit

import (
	"strconv"
	"sync"
	"time"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// KeyFunc derives the rate-limit bucket key for a request (by IP, by
// authenticated user, by route — caller's choice).
type KeyFunc func(*router.Context) string

// ByRemoteAddr is the default KeyFunc: one bucket per client address.
func ByRemoteAddr(c *router.Context) string { return c.Request.RemoteAddr }

// Option configures the rate limiter.
type Option func(*config)

type config struct {
	ratePerSecond float64
	burst         int
	key           KeyFunc
	headers       bool
	onExceeded    func(c *router.Context)
	ttl           time.Duration
}

func defaultConfig() *config {
	return &config{
		ratePerSecond: 100,
		burst:         20,
		key:           ByRemoteAddr,
		headers:       true,
		ttl:           5 * time.Minute,
	}
}

// WithRequestsPerSecond sets the sustained refill rate. Default 100.
func WithRequestsPerSecond(rate float64) Option {
	return func(cfg *config) { cfg.ratePerSecond = rate }
}

// WithBurst sets the bucket capacity. Default 20.
func WithBurst(n int) Option {
	return func(cfg *config) { cfg.burst = n }
}

// WithKeyFunc overrides the default per-remote-address bucketing.
func WithKeyFunc(fn KeyFunc) Option {
	return func(cfg *config) { cfg.key = fn }
}

// WithHeaders toggles the IETF-draft RateLimit-* response headers.
// Default true.
func WithHeaders(enabled bool) Option {
	return func(cfg *config) { cfg.headers = enabled }
}

// WithOnExceeded overrides the default 429 JSON body.
func WithOnExceeded(fn func(c *router.Context)) Option {
	return func(cfg *config) { cfg.onExceeded = fn }
}

// WithEntryTTL bounds how long an idle bucket is retained before its
// cleanup sweep reclaims it. Default 5m.
func WithEntryTTL(d time.Duration) Option {
	return func(cfg *config) { cfg.ttl = d }
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	lastUsed   time.Time
}

type store struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

func newStore() *store { return &store{buckets: make(map[string]*bucket)} }

func (s *store) get(key string, burst int) *bucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(burst), lastRefill: time.Now(), lastUsed: time.Now()}
		s.buckets[key] = b
	}
	return b
}

func (s *store) sweep(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range s.buckets {
		b.mu.Lock()
		stale := b.lastUsed.Before(cutoff)
		b.mu.Unlock()
		if stale {
			delete(s.buckets, k)
		}
	}
}

// allow reports whether a request is permitted and the tokens remaining
// after the decision, refilling the bucket continuously since lastRefill.
func (b *bucket) allow(rate float64, burst int) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * rate
	if b.tokens > float64(burst) {
		b.tokens = float64(burst)
	}
	b.lastRefill = now
	b.lastUsed = now

	if b.tokens < 1 {
		return false, int(b.tokens)
	}
	b.tokens--
	return true, int(b.tokens)
}

func defaultExceeded(c *router.Context) {
	_ = c.JSON(protocol.StatusTooManyRequests, map[string]string{
		"error":   "RATE_LIMIT_EXCEEDED",
		"message": "rate limit window exhausted",
	})
}

// New returns a token-bucket rate-limiting middleware. Each key (by
// default, the client remote address) gets its own bucket refilling at
// ratePerSecond up to burst capacity; exceeding it yields a 429 with
// RateLimit-* headers when WithHeaders is enabled (the default).
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	st := newStore()
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.ttl)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				st.sweep(cfg.ttl)
			}
		}
	}()

	onExceeded := cfg.onExceeded
	if onExceeded == nil {
		onExceeded = defaultExceeded
	}

	return func(c *router.Context) {
		key := cfg.key(c)
		b := st.get(key, cfg.burst)
		allowed, remaining := b.allow(cfg.ratePerSecond, cfg.burst)

		if cfg.headers {
			c.Response.SetHeader("RateLimit-Limit", strconv.Itoa(cfg.burst))
			c.Response.SetHeader("RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		}

		if !allowed {
			onExceeded(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
