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

// Package auth holds the session-aware authentication and CSRF
// middlewares.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// BasicAuthOption configures the BasicAuth middleware.
type BasicAuthOption func(*basicConfig)

type basicConfig struct {
	users               map[string]string
	realm               string
	validator           func(username, password string) bool
	unauthorizedHandler func(c *router.Context)
	skipPaths           map[string]bool
}

func defaultBasicConfig() *basicConfig {
	return &basicConfig{
		users:               map[string]string{},
		realm:               "Restricted",
		unauthorizedHandler: defaultUnauthorized,
		skipPaths:           map[string]bool{},
	}
}

func defaultUnauthorized(c *router.Context) {
	_ = c.JSON(protocol.StatusUnauthorized, map[string]string{
		"error":   "UNAUTHORIZED",
		"message": "authentication required",
	})
}

// WithBasicAuthUsers sets the static username/password allowlist.
func WithBasicAuthUsers(users map[string]string) BasicAuthOption {
	return func(cfg *basicConfig) { cfg.users = users }
}

// WithBasicAuthRealm sets the WWW-Authenticate realm. Default "Restricted".
func WithBasicAuthRealm(realm string) BasicAuthOption {
	return func(cfg *basicConfig) { cfg.realm = realm }
}

// WithBasicAuthValidator overrides the static map with a custom
// validation function (database lookup, LDAP bind, etc.).
func WithBasicAuthValidator(fn func(username, password string) bool) BasicAuthOption {
	return func(cfg *basicConfig) { cfg.validator = fn }
}

// WithBasicAuthUnauthorizedHandler overrides the default 401 JSON body.
func WithBasicAuthUnauthorizedHandler(fn func(c *router.Context)) BasicAuthOption {
	return func(cfg *basicConfig) { cfg.unauthorizedHandler = fn }
}

// WithBasicAuthSkipPaths exempts exact path matches from authentication.
func WithBasicAuthSkipPaths(paths ...string) BasicAuthOption {
	return func(cfg *basicConfig) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

const usernameContextKey = "corehttp.auth.username"

// BasicAuth returns an RFC 7617 HTTP Basic Authentication middleware.
// Passwords are compared in constant time to avoid a timing side channel.
func BasicAuth(opts ...BasicAuthOption) router.HandlerFunc {
	cfg := defaultBasicConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if cfg.skipPaths[c.Request.Path] {
			c.Next()
			return
		}

		username, password, ok := parseBasicAuth(c.Request.Header.Get("Authorization"))
		if !ok || !credentialsValid(cfg, username, password) {
			c.Response.SetHeader("WWW-Authenticate", `Basic realm="`+cfg.realm+`"`)
			cfg.unauthorizedHandler(c)
			c.Abort()
			return
		}

		c.Set(usernameContextKey, username)
		c.Next()
	}
}

// Username returns the authenticated user set by BasicAuth, or "".
func Username(c *router.Context) string {
	if v, ok := c.Get(usernameContextKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func credentialsValid(cfg *basicConfig, username, password string) bool {
	if cfg.validator != nil {
		return cfg.validator(username, password)
	}
	expected, ok := cfg.users[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(password)) == 1
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", "", false
	}
	return username, password, true
}
