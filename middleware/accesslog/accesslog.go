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

// Package accesslog provides structured per-request access logging,
// gated on the enable_access_log configuration field.
package accesslog

import (
	"crypto/sha256"
	"encoding/binary"
	"log/slog"
	"strings"
	"time"

	"rivaas.dev/corehttp/logging"
	"rivaas.dev/corehttp/router"
)

// Option configures the accesslog middleware.
type Option func(*config)

type config struct {
	logger          *slog.Logger
	excludePaths    map[string]bool
	excludePrefixes []string
	slowThreshold   time.Duration
	logErrorsOnly   bool
	sampleRate      float64
}

func defaultConfig() *config {
	return &config{
		logger:       logging.Noop(),
		excludePaths: map[string]bool{},
		sampleRate:   1.0,
	}
}

// WithLogger sets the structured logger access lines are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithExcludePaths skips logging exact path matches (e.g. "/health").
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips logging any path starting with prefix.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(cfg *config) { cfg.excludePrefixes = append(cfg.excludePrefixes, prefixes...) }
}

// WithSlowThreshold forces logging (bypassing sampling) for requests that
// take at least d.
func WithSlowThreshold(d time.Duration) Option {
	return func(cfg *config) { cfg.slowThreshold = d }
}

// WithLogErrorsOnly restricts logging to responses with status >= 400 or
// requests exceeding the slow threshold.
func WithLogErrorsOnly(enabled bool) Option {
	return func(cfg *config) { cfg.logErrorsOnly = enabled }
}

// WithSampleRate logs a deterministic fraction (0.0-1.0) of non-error,
// non-slow requests, hashed by path so a given route samples consistently.
func WithSampleRate(rate float64) Option {
	return func(cfg *config) { cfg.sampleRate = rate }
}

// New returns the access-log middleware. It should run early in the chain
// (after recovery, before the handler) so duration measurement spans the
// full request.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		path := c.Request.Path
		if cfg.excludePaths[path] {
			c.Next()
			return
		}
		for _, prefix := range cfg.excludePrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Response.Status

		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold

		shouldLog := true
		if !isError && !isSlow {
			if cfg.logErrorsOnly {
				shouldLog = false
			} else if cfg.sampleRate < 1.0 {
				shouldLog = sampleByHash(path, cfg.sampleRate)
			}
		}
		if !shouldLog {
			return
		}

		level := slog.LevelInfo
		if isError {
			level = slog.LevelWarn
		}
		cfg.logger.Log(nil, level, "http request",
			"method", c.Request.Method.String(),
			"path", path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"bytes", len(c.Response.Body),
			"remote_addr", c.Request.RemoteAddr,
		)
	}
}

// sampleByHash deterministically samples key at rate in [0,1), so the
// same path always resolves the same way within one process lifetime.
func sampleByHash(key string, rate float64) bool {
	sum := sha256.Sum256([]byte(key))
	bucket := binary.BigEndian.Uint32(sum[:4])
	return float64(bucket)/float64(^uint32(0)) < rate
}
