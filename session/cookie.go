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

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"time"
)

// generateID returns n random bytes hex-encoded — a cryptographically
// random opaque identifier.
func generateID(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// parseCookieHeader extracts the value of name from a raw "Cookie" header
// value. corehttp's Request carries headers as its own case-insensitive
// multi-map rather than net/http's, so cookie parsing is done by hand
// instead of via http.Request.Cookie.
func parseCookieHeader(header, name string) (string, bool) {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == name {
			if unquoted, err := strconvUnquote(v); err == nil {
				return unquoted, true
			}
			return v, true
		}
	}
	return "", false
}

// strconvUnquote strips a pair of surrounding double quotes, if present,
// matching how browsers may quote cookie values. Any other string value
// is returned unchanged.
func strconvUnquote(v string) (string, error) {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1], nil
	}
	return v, nil
}

// buildSetCookie renders a Set-Cookie header value using net/http's
// canonical Cookie writer — the stdlib's cookie-attribute serialization
// is the idiomatic choice here; no pack dependency wraps RFC 6265 cookie
// construction, and corehttp's own Header type is deliberately a thin
// multi-map rather than a full HTTP value-formatting library.
func buildSetCookie(cfg *Config, value string, maxAge time.Duration, delete bool) string {
	c := &http.Cookie{
		Name:     cfg.CookieName,
		Value:    value,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		Secure:   cfg.Secure,
		HttpOnly: cfg.HTTPOnly,
	}
	switch cfg.SameSite {
	case SameSiteStrict:
		c.SameSite = http.SameSiteStrictMode
	case SameSiteNone:
		c.SameSite = http.SameSiteNoneMode
	default:
		c.SameSite = http.SameSiteLaxMode
	}
	if delete {
		c.Value = ""
		c.MaxAge = -1
	} else if maxAge > 0 {
		c.MaxAge = int(maxAge.Seconds())
	}
	return c.String()
}
