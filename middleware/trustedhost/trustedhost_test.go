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

package trustedhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

func newReq(host string) *router.Request {
	h := protocol.NewHeader()
	if host != "" {
		h.Set("Host", host)
	}
	return &router.Request{Method: protocol.MethodGet, Path: "/x", Header: h}
}

func dispatch(r *router.Router, req *router.Request) *router.Context {
	return r.Dispatch(req)
}

func TestTrustedHostRejectsByDefault(t *testing.T) {
	r := router.New()
	r.Use(New())
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	c := dispatch(r, newReq("example.com"))
	defer c.Release()
	assert.Equal(t, protocol.StatusForbidden, c.Response.Status)
}

func TestTrustedHostAllowsExactMatch(t *testing.T) {
	r := router.New()
	r.Use(New(WithAllowedHosts("example.com")))
	require.NoError(t, r.GET("/x", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := dispatch(r, newReq("example.com:8080"))
	defer c.Release()
	assert.Equal(t, protocol.StatusOK, c.Response.Status)
}

func TestTrustedHostWildcardSubdomain(t *testing.T) {
	r := router.New()
	r.Use(New(WithAllowedHosts("*.example.com")))
	require.NoError(t, r.GET("/x", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := dispatch(r, newReq("api.example.com"))
	defer c.Release()
	assert.Equal(t, protocol.StatusOK, c.Response.Status)

	c2 := dispatch(r, newReq("example.com"))
	defer c2.Release()
	assert.Equal(t, protocol.StatusForbidden, c2.Response.Status)
}

func TestTrustedHostAllowAnyBypassesCheck(t *testing.T) {
	r := router.New()
	r.Use(New(WithAllowAny(true)))
	require.NoError(t, r.GET("/x", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := dispatch(r, newReq(""))
	defer c.Release()
	assert.Equal(t, protocol.StatusOK, c.Response.Status)
}

func TestTrustedHostFallsBackToForwardedHost(t *testing.T) {
	r := router.New()
	r.Use(New(WithAllowedHosts("example.com")))
	require.NoError(t, r.GET("/x", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	h := protocol.NewHeader()
	h.Set("X-Forwarded-Host", "example.com")
	req := &router.Request{Method: protocol.MethodGet, Path: "/x", Header: h}
	c := dispatch(r, req)
	defer c.Release()
	assert.Equal(t, protocol.StatusOK, c.Response.Status)
}
