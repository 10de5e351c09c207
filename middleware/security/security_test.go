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

package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

func newReq(method protocol.Method, path string) *router.Request {
	return &router.Request{Method: method, Path: path, Header: protocol.NewHeader()}
}

func TestSecurityDefaultHeaders(t *testing.T) {
	r := router.New()
	r.Use(New())
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	defer c.Release()

	assert.Equal(t, "DENY", c.Response.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", c.Response.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", c.Response.Header.Get("Strict-Transport-Security"))
	assert.Equal(t, "default-src 'self'", c.Response.Header.Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", c.Response.Header.Get("Referrer-Policy"))
}

func TestSecurityHeadersSetEvenOnShortCircuit(t *testing.T) {
	r := router.New()
	r.Use(New())
	require.NoError(t, r.GET("/x", func(c *router.Context) {
		c.Abort()
	}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	defer c.Release()
	assert.Equal(t, "DENY", c.Response.Header.Get("X-Frame-Options"))
}

func TestSecurityCustomOptions(t *testing.T) {
	r := router.New()
	r.Use(New(
		WithFrameOptions("SAMEORIGIN"),
		WithHSTS(100, false, true),
		WithContentSecurityPolicy("default-src 'none'"),
		WithReferrerPolicy("no-referrer"),
		WithPermissionsPolicy("geolocation=()"),
		WithCustomHeader("X-Custom", "yes"),
	))
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	defer c.Release()

	assert.Equal(t, "SAMEORIGIN", c.Response.Header.Get("X-Frame-Options"))
	assert.Equal(t, "max-age=100; preload", c.Response.Header.Get("Strict-Transport-Security"))
	assert.Equal(t, "default-src 'none'", c.Response.Header.Get("Content-Security-Policy"))
	assert.Equal(t, "no-referrer", c.Response.Header.Get("Referrer-Policy"))
	assert.Equal(t, "geolocation=()", c.Response.Header.Get("Permissions-Policy"))
	assert.Equal(t, "yes", c.Response.Header.Get("X-Custom"))
}

func TestSecurityDisabledNosniff(t *testing.T) {
	r := router.New()
	r.Use(New(WithContentTypeNosniff(false)))
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	defer c.Release()
	assert.Empty(t, c.Response.Header.Get("X-Content-Type-Options"))
}
