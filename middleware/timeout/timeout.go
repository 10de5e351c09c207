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

// Package timeout bounds how long the rest of the middleware chain may
// run. Handlers have no implicit deadline; when the configured bound is
// exceeded the response is abandoned and the connection closed.
package timeout

import (
	"time"

	"rivaas.dev/corehttp/router"
)

// Option configures the timeout middleware.
type Option func(*config)

type config struct {
	duration  time.Duration
	skipPaths map[string]bool
}

func defaultConfig(d time.Duration) *config {
	return &config{duration: d, skipPaths: map[string]bool{}}
}

// WithSkipPaths exempts exact path matches from the timeout — useful for
// intentionally long-lived endpoints (streaming, webhooks).
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// New returns a middleware enforcing d as the maximum time the rest of
// the chain may run. When exceeded, the worker stops waiting and calls
// Context.Leak — the handler goroutine is not killed (Go offers no such
// primitive), but the connection the client was waiting on is abandoned
// rather than served a half-finished response.
// router.Context carries no deadline or done channel, so a handler that
// must react to the timeout needs its own cancellation plumbing; the
// framework does not impose cooperative cancellation on resolvers.
func New(d time.Duration, opts ...Option) router.HandlerFunc {
	cfg := defaultConfig(d)
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if cfg.skipPaths[c.Request.Path] || d <= 0 {
			c.Next()
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Next()
		}()

		timer := time.NewTimer(cfg.duration)
		defer timer.Stop()

		select {
		case <-done:
		case <-timer.C:
			c.Response.Abandon()
			c.Leak()
		}
	}
}
