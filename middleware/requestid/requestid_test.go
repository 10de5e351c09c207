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

package requestid

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

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	var seen string
	r := router.New()
	r.Use(New())
	require.NoError(t, r.GET("/x", func(c *router.Context) {
		seen = Get(c)
	}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	defer c.Release()

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, c.Response.Header.Get("X-Request-ID"))
}

func TestRequestIDHonorsClientSuppliedHeader(t *testing.T) {
	r := router.New()
	r.Use(New())
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	req := newReq(protocol.MethodGet, "/x")
	req.Header.Set("X-Request-ID", "client-supplied-id")
	c := r.Dispatch(req)
	defer c.Release()

	assert.Equal(t, "client-supplied-id", c.Response.Header.Get("X-Request-ID"))
}

func TestRequestIDRejectsClientIDWhenDisallowed(t *testing.T) {
	r := router.New()
	r.Use(New(WithAllowClientID(false)))
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	req := newReq(protocol.MethodGet, "/x")
	req.Header.Set("X-Request-ID", "client-supplied-id")
	c := r.Dispatch(req)
	defer c.Release()

	assert.NotEqual(t, "client-supplied-id", c.Response.Header.Get("X-Request-ID"))
}

func TestRequestIDCustomGenerator(t *testing.T) {
	r := router.New()
	r.Use(New(WithGenerator(func() string { return "fixed-id" })))
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	defer c.Release()
	assert.Equal(t, "fixed-id", c.Response.Header.Get("X-Request-ID"))
}

func TestRequestIDCustomHeaderName(t *testing.T) {
	r := router.New()
	r.Use(New(WithHeader("X-Trace-ID")))
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	defer c.Release()
	assert.NotEmpty(t, c.Response.Header.Get("X-Trace-ID"))
	assert.Empty(t, c.Response.Header.Get("X-Request-ID"))
}

func TestRequestIDULIDGeneratorProducesDistinctIDs(t *testing.T) {
	r := router.New()
	r.Use(New(WithULID()))
	require.NoError(t, r.GET("/x", func(c *router.Context) {}))

	c1 := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	id1 := c1.Response.Header.Get("X-Request-ID")
	c1.Release()

	c2 := r.Dispatch(newReq(protocol.MethodGet, "/x"))
	id2 := c2.Response.Header.Get("X-Request-ID")
	c2.Release()

	assert.NotEmpty(t, id1)
	assert.NotEmpty(t, id2)
	assert.NotEqual(t, id1, id2)
}
