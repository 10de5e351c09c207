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

// Package cors implements Cross-Origin Resource Sharing handling,
// including preflight responses.
package cors

import (
	"strconv"
	"strings"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// Option configures the CORS middleware.
type Option func(*config)

type config struct {
	allowedOrigins   []string
	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
	allowAllOrigins  bool
	allowOriginFunc  func(origin string) bool
}

// defaultConfig is restrictive: no origins allowed until the caller
// opts in.
func defaultConfig() *config {
	return &config{
		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// WithAllowedOrigins sets the exact origins permitted.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *config) {
		cfg.allowedOrigins = origins
		cfg.allowAllOrigins = false
	}
}

// WithAllowAllOrigins sets Access-Control-Allow-Origin: *. Insecure;
// intended for public, credential-less APIs only.
func WithAllowAllOrigins(allow bool) Option {
	return func(cfg *config) { cfg.allowAllOrigins = allow }
}

// WithAllowedMethods overrides the default method allowlist.
func WithAllowedMethods(methods ...string) Option {
	return func(cfg *config) { cfg.allowedMethods = methods }
}

// WithAllowedHeaders overrides the default request header allowlist.
func WithAllowedHeaders(headers ...string) Option {
	return func(cfg *config) { cfg.allowedHeaders = headers }
}

// WithExposedHeaders sets headers visible to client-side script.
func WithExposedHeaders(headers ...string) Option {
	return func(cfg *config) { cfg.exposedHeaders = headers }
}

// WithAllowCredentials allows cookies/Authorization to accompany
// cross-origin requests. Incompatible with a wildcard origin.
func WithAllowCredentials(allow bool) Option {
	return func(cfg *config) { cfg.allowCredentials = allow }
}

// WithMaxAge sets the preflight cache lifetime, in seconds.
func WithMaxAge(seconds int) Option {
	return func(cfg *config) { cfg.maxAge = seconds }
}

// WithAllowOriginFunc installs a dynamic origin predicate, overriding the
// static allowlist.
func WithAllowOriginFunc(fn func(origin string) bool) Option {
	return func(cfg *config) { cfg.allowOriginFunc = fn }
}

// New returns the CORS middleware.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	allowedMethods := strings.Join(cfg.allowedMethods, ", ")
	allowedHeaders := strings.Join(cfg.allowedHeaders, ", ")
	exposedHeaders := strings.Join(cfg.exposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.maxAge)

	return func(c *router.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		allowedOrigin := ""
		switch {
		case cfg.allowAllOrigins:
			allowedOrigin = "*"
		case cfg.allowOriginFunc != nil:
			if cfg.allowOriginFunc(origin) {
				allowedOrigin = origin
			}
		default:
			for _, allowed := range cfg.allowedOrigins {
				if origin == allowed {
					allowedOrigin = origin
					break
				}
			}
		}

		if allowedOrigin == "" {
			c.Next()
			return
		}

		c.Response.SetHeader("Access-Control-Allow-Origin", allowedOrigin)
		if cfg.allowCredentials {
			if allowedOrigin == "*" {
				c.Response.SetHeader("Access-Control-Allow-Origin", origin)
			}
			c.Response.SetHeader("Access-Control-Allow-Credentials", "true")
		}
		if exposedHeaders != "" {
			c.Response.SetHeader("Access-Control-Expose-Headers", exposedHeaders)
		}

		if c.Request.Method == protocol.MethodOptions {
			c.Response.SetHeader("Access-Control-Allow-Methods", allowedMethods)
			c.Response.SetHeader("Access-Control-Allow-Headers", allowedHeaders)
			c.Response.SetHeader("Access-Control-Max-Age", maxAge)
			c.Response.SetStatus(protocol.StatusNoContent)
			return
		}

		c.Next()
	}
}
