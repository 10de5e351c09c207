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

// Package security sets the standard hardening response headers.
package security

import (
	"fmt"

	"rivaas.dev/corehttp/router"
)

// Option configures the Security middleware.
type Option func(*config)

type config struct {
	frameOptions          string
	contentTypeNosniff    bool
	hstsMaxAge            int
	hstsIncludeSubdomains bool
	hstsPreload           bool
	contentSecurityPolicy string
	referrerPolicy        string
	permissionsPolicy     string
	customHeaders         map[string]string
}

func defaultConfig() *config {
	return &config{
		frameOptions:          "DENY",
		contentTypeNosniff:    true,
		hstsMaxAge:            31536000,
		hstsIncludeSubdomains: true,
		contentSecurityPolicy: "default-src 'self'",
		referrerPolicy:        "strict-origin-when-cross-origin",
		customHeaders:         map[string]string{},
	}
}

// WithFrameOptions sets X-Frame-Options. Default "DENY".
func WithFrameOptions(v string) Option { return func(cfg *config) { cfg.frameOptions = v } }

// WithContentTypeNosniff toggles X-Content-Type-Options: nosniff. Default true.
func WithContentTypeNosniff(enabled bool) Option {
	return func(cfg *config) { cfg.contentTypeNosniff = enabled }
}

// WithHSTS configures Strict-Transport-Security.
func WithHSTS(maxAgeSeconds int, includeSubdomains, preload bool) Option {
	return func(cfg *config) {
		cfg.hstsMaxAge = maxAgeSeconds
		cfg.hstsIncludeSubdomains = includeSubdomains
		cfg.hstsPreload = preload
	}
}

// WithContentSecurityPolicy sets the CSP header. Default "default-src 'self'".
func WithContentSecurityPolicy(policy string) Option {
	return func(cfg *config) { cfg.contentSecurityPolicy = policy }
}

// WithReferrerPolicy sets Referrer-Policy.
func WithReferrerPolicy(policy string) Option {
	return func(cfg *config) { cfg.referrerPolicy = policy }
}

// WithPermissionsPolicy sets Permissions-Policy.
func WithPermissionsPolicy(policy string) Option {
	return func(cfg *config) { cfg.permissionsPolicy = policy }
}

// WithCustomHeader adds an arbitrary additional response header.
func WithCustomHeader(key, value string) Option {
	return func(cfg *config) { cfg.customHeaders[key] = value }
}

// New returns a middleware that sets hardening headers on every response
// before the handler runs, so a short-circuiting handler still gets them.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	hsts := ""
	if cfg.hstsMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", cfg.hstsMaxAge)
		if cfg.hstsIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.hstsPreload {
			hsts += "; preload"
		}
	}

	return func(c *router.Context) {
		if cfg.frameOptions != "" {
			c.Response.SetHeader("X-Frame-Options", cfg.frameOptions)
		}
		if cfg.contentTypeNosniff {
			c.Response.SetHeader("X-Content-Type-Options", "nosniff")
		}
		if hsts != "" {
			c.Response.SetHeader("Strict-Transport-Security", hsts)
		}
		if cfg.contentSecurityPolicy != "" {
			c.Response.SetHeader("Content-Security-Policy", cfg.contentSecurityPolicy)
		}
		if cfg.referrerPolicy != "" {
			c.Response.SetHeader("Referrer-Policy", cfg.referrerPolicy)
		}
		if cfg.permissionsPolicy != "" {
			c.Response.SetHeader("Permissions-Policy", cfg.permissionsPolicy)
		}
		for k, v := range cfg.customHeaders {
			c.Response.SetHeader(k, v)
		}
		c.Next()
	}
}
