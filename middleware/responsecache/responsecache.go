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

// Package responsecache memoizes responses to idempotent requests in a
// cache.ResponseCache. Concurrent misses for the same fingerprint are
// coalesced through the cache's single-flight group: exactly one
// request runs the downstream handler chain, every other request for
// that fingerprint blocks and replays the builder's artifact.
package responsecache

import (
	"strings"
	"time"

	"rivaas.dev/corehttp/cache"
	"rivaas.dev/corehttp/router"
)

// Option configures the response-cache middleware.
type Option func(*config)

type config struct {
	varyHeaders []string
	ttl         time.Duration
	skipPaths   map[string]bool
}

func defaultConfig() *config {
	return &config{skipPaths: map[string]bool{}}
}

// WithVaryHeaders names the request headers that partition the cache
// key. They are canonicalized into the fingerprint and mirrored into
// the response's Vary header so downstream caches partition the same
// way.
func WithVaryHeaders(names ...string) Option {
	return func(c *config) { c.varyHeaders = names }
}

// WithTTL sets the stored entry lifetime. Non-positive (the default)
// falls through to the ResponseCache's own default TTL.
func WithTTL(d time.Duration) Option {
	return func(c *config) { c.ttl = d }
}

// WithSkipPaths exempts exact paths from caching entirely — health and
// metrics endpoints must reflect current state, not a memoized one.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		for _, p := range paths {
			c.skipPaths[p] = true
		}
	}
}

// New returns a middleware memoizing downstream responses in rc. Mount
// it after recovery/logging and before the handler. Responses that are
// hijacked, abandoned, or streamed are never stored; a response whose
// method or status falls outside rc's cacheable sets is served normally
// and not stored.
func New(rc *cache.ResponseCache, opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	varyValue := strings.Join(cfg.varyHeaders, ", ")

	return func(c *router.Context) {
		if cfg.skipPaths[c.Request.Path] {
			c.Next()
			return
		}

		vary := make(map[string]string, len(cfg.varyHeaders))
		for _, name := range cfg.varyHeaders {
			vary[name] = c.Request.Header.Get(name)
		}

		// Headers already on the response were set by earlier middleware
		// for this request alone (request ids, session cookies' kin) —
		// they must not leak into the shared entry.
		preexisting := map[string]bool{}
		c.Response.Header.Range(func(key, _ string) bool {
			preexisting[key] = true
			return true
		})

		built := false
		entry, err := rc.GetOrBuild(c.Request.Method.String(), c.Request.Path, vary,
			func() ([]byte, int, map[string][]string, time.Duration, error) {
				built = true
				c.Next()

				resp := c.Response
				if resp.Abandoned() || resp.HijackFunc() != nil || resp.StreamReader() != nil {
					return nil, 0, nil, 0, cache.ErrUncacheable
				}
				if varyValue != "" && resp.Header.Get("Vary") == "" {
					resp.Header.Set("Vary", varyValue)
				}
				// Deep-copy out of the per-request arena: the entry
				// outlives this request.
				body := append([]byte(nil), resp.Body...)
				return body, resp.Status, captureHeader(resp, preexisting), cfg.ttl, nil
			})
		if built {
			return // this request ran the chain; its response stands as written
		}
		if err != nil || entry == nil {
			// The shared build failed or produced an uncacheable
			// response: serve this request fresh.
			c.Next()
			return
		}
		replay(c, entry)
	}
}

// captureHeader snapshots the handler-set response headers, excluding
// the ones earlier middleware had already placed for this request, and
// folding the separately tracked content type in the same way the
// serializer does.
func captureHeader(resp *router.Response, exclude map[string]bool) map[string][]string {
	out := make(map[string][]string, resp.Header.Len()+1)
	resp.Header.Range(func(key, value string) bool {
		if !exclude[key] {
			out[key] = append(out[key], value)
		}
		return true
	})
	if resp.ContentType != "" && len(out["Content-Type"]) == 0 {
		out["Content-Type"] = []string{resp.ContentType}
	}
	return out
}

// replay writes a stored entry onto the current response, leaving any
// header a prior middleware already set for this request alone. The
// body is copied so no later middleware can mutate the shared entry.
func replay(c *router.Context, e *cache.Entry) {
	for key, values := range e.Header {
		if c.Response.Header.Has(key) {
			continue
		}
		for _, v := range values {
			c.Response.Header.Add(key, v)
		}
	}
	c.Response.SetStatus(e.Status)
	c.Response.Body = append([]byte(nil), e.Body...)
}
