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

package session

import "time"

// SameSite is a Set-Cookie SameSite attribute value.
type SameSite string

const (
	SameSiteStrict SameSite = "Strict"
	SameSiteLax    SameSite = "Lax"
	SameSiteNone   SameSite = "None"
)

// Config holds the Manager's cookie and lifecycle settings, built with
// the same functional-options idiom as config.Config and router.Option.
type Config struct {
	CookieName string
	Path       string
	Domain     string
	Secure     bool
	HTTPOnly   bool
	SameSite   SameSite

	// IDLength is the raw byte length of generated session ids, before
	// hex-encoding (default 32 bytes -> 64 hex chars).
	IDLength int

	// Expiry is the idle lifetime: a session's cookie Max-Age and the
	// store's expiry are both set to now+Expiry on every touch.
	Expiry time.Duration

	CleanupInterval time.Duration

	CSRFHeader string
	CSRFField  string
}

// Option configures a Config.
type Option func(*Config)

// Default returns the default session configuration.
func Default() *Config {
	return &Config{
		CookieName:      "session_id",
		Path:            "/",
		Secure:          true,
		HTTPOnly:        true,
		SameSite:        SameSiteLax,
		IDLength:        32,
		Expiry:          24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
		CSRFHeader:      "X-CSRF-Token",
		CSRFField:       "csrf_token",
	}
}

// New builds a Config starting from Default() and applying opts in order.
func New(opts ...Option) *Config {
	cfg := Default()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithCookieName sets the Set-Cookie/Cookie name. Default "session_id".
func WithCookieName(name string) Option {
	return func(c *Config) { c.CookieName = name }
}

// WithPath sets the cookie Path attribute. Default "/".
func WithPath(path string) Option {
	return func(c *Config) { c.Path = path }
}

// WithDomain sets the cookie Domain attribute. Default "" (host-only).
func WithDomain(domain string) Option {
	return func(c *Config) { c.Domain = domain }
}

// WithSecure toggles the cookie Secure attribute. Default true.
func WithSecure(secure bool) Option {
	return func(c *Config) { c.Secure = secure }
}

// WithHTTPOnly toggles the cookie HttpOnly attribute. Default true.
func WithHTTPOnly(httpOnly bool) Option {
	return func(c *Config) { c.HTTPOnly = httpOnly }
}

// WithSameSite sets the cookie SameSite attribute. Default SameSiteLax.
func WithSameSite(s SameSite) Option {
	return func(c *Config) { c.SameSite = s }
}

// WithIDLength sets the raw byte length of generated session ids.
// Default 32 (64 hex characters).
func WithIDLength(n int) Option {
	return func(c *Config) { c.IDLength = n }
}

// WithExpiry sets the idle session lifetime. Default 24h.
func WithExpiry(d time.Duration) Option {
	return func(c *Config) { c.Expiry = d }
}

// WithCleanupInterval sets the background sweep cadence. Default 5m.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *Config) { c.CleanupInterval = d }
}

// WithCSRFHeader sets the header CSRF validation reads from. Default
// "X-CSRF-Token".
func WithCSRFHeader(name string) Option {
	return func(c *Config) { c.CSRFHeader = name }
}

// WithCSRFField sets the form field CSRF validation falls back to.
// Default "csrf_token".
func WithCSRFField(name string) Option {
	return func(c *Config) { c.CSRFField = name }
}
