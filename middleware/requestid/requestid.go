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

// Package requestid assigns a correlation id to every request, for log
// correlation and distributed tracing. Mount it right after recovery so
// every logged request carries an id.
package requestid

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"rivaas.dev/corehttp/router"

	"crypto/rand"
	mathrand "math/rand/v2"
)

// contextKey is the router.Context scratch-map key the id is stored under.
const contextKey = "corehttp.request_id"

// Option configures the requestid middleware.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUID,
		allowClientID: true,
	}
}

func generateUUID() string {
	return uuid.New().String()
}

// generateULID uses a monotonic ULID source, yielding lexicographically
// sortable ids — useful when request ids double as a rough time index.
func generateULID() string {
	entropy := ulid.Monotonic(rand.Reader, uint64(mathrand.Uint32()))
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// WithHeader sets the header name carrying the request id. Default
// "X-Request-ID".
func WithHeader(name string) Option {
	return func(cfg *config) { cfg.headerName = name }
}

// WithULID switches id generation to ULID instead of the default UUIDv4.
func WithULID() Option {
	return func(cfg *config) { cfg.generator = generateULID }
}

// WithGenerator installs a custom id generator.
func WithGenerator(fn func() string) Option {
	return func(cfg *config) { cfg.generator = fn }
}

// WithAllowClientID controls whether a client-supplied request id header
// is trusted. Default true; set false to always mint a server-side id.
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) { cfg.allowClientID = allow }
}

// New returns a middleware that reads (or mints) a request id, echoes it
// on the response header, and stashes it on the Context for downstream
// middleware (accesslog, tracing) to read via Get.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		var id string
		if cfg.allowClientID {
			id = c.Request.Header.Get(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}
		c.Response.SetHeader(cfg.headerName, id)
		c.Set(contextKey, id)
		c.Next()
	}
}

// Get retrieves the request id stashed by New, or "" if none was set.
func Get(c *router.Context) string {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
