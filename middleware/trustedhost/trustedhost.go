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

// Package trustedhost rejects requests whose Host header is not in an
// allowlist, answering 403 on mismatch.
package trustedhost

import (
	"strings"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// Option configures the trustedhost middleware.
type Option func(*config)

type config struct {
	allowedHosts []string
	allowAny     bool
}

func defaultConfig() *config {
	return &config{}
}

// WithAllowedHosts sets the exact or wildcard-prefixed ("*.example.com")
// hosts permitted.
func WithAllowedHosts(hosts ...string) Option {
	return func(cfg *config) { cfg.allowedHosts = append(cfg.allowedHosts, hosts...) }
}

// WithAllowAny disables host checking entirely (useful in local dev).
func WithAllowAny(allow bool) Option {
	return func(cfg *config) { cfg.allowAny = allow }
}

func hostMatches(pattern, host string) bool {
	if pattern == host {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return strings.HasSuffix(host, "."+suffix)
	}
	return false
}

// New returns a middleware that 403s any request whose Host header (the
// part before an optional ":port") doesn't match one of the allowed
// patterns. With no allowed hosts configured (and WithAllowAny not set),
// every request is rejected — callers must opt in explicitly.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if cfg.allowAny {
			c.Next()
			return
		}

		host := c.Request.Header.Get("Host")
		if host == "" {
			host = c.Request.Header.Get("X-Forwarded-Host")
		}
		host, _, _ = strings.Cut(host, ":")

		for _, pattern := range cfg.allowedHosts {
			if hostMatches(pattern, host) {
				c.Next()
				return
			}
		}

		_ = c.JSON(protocol.StatusForbidden, map[string]string{
			"error":   "AUTH_HOST_REJECTED",
			"message": "host not allowed",
		})
		c.Abort()
	}
}
