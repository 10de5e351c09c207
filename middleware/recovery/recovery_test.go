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

package recovery

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/logging"
	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

func newReq(method protocol.Method, path string) *router.Request {
	return &router.Request{Method: method, Path: path, Header: protocol.NewHeader()}
}

func TestRecoveryConvertsPanicTo500(t *testing.T) {
	r := router.New()
	r.Use(New())
	require.NoError(t, r.GET("/boom", func(c *router.Context) {
		panic("kaboom")
	}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/boom"))
	defer c.Release()

	assert.Equal(t, protocol.StatusInternalServerError, c.Response.Status)
	assert.Contains(t, string(c.Response.Body), "INTERNAL_ERROR")
}

func TestRecoveryPassesThroughWithoutPanic(t *testing.T) {
	r := router.New()
	r.Use(New())
	require.NoError(t, r.GET("/ok", func(c *router.Context) {
		c.Text(protocol.StatusOK, "fine")
	}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/ok"))
	defer c.Release()

	assert.Equal(t, protocol.StatusOK, c.Response.Status)
	assert.Equal(t, "fine", string(c.Response.Body))
}

func TestRecoveryCustomHandler(t *testing.T) {
	called := false
	r := router.New()
	r.Use(New(WithHandler(func(c *router.Context, err any) {
		called = true
		c.Text(protocol.StatusCreated, "custom")
	})))
	require.NoError(t, r.GET("/boom", func(c *router.Context) {
		panic("nope")
	}))

	c := r.Dispatch(newReq(protocol.MethodGet, "/boom"))
	defer c.Release()

	assert.True(t, called)
	assert.Equal(t, protocol.StatusCreated, c.Response.Status)
}

func TestRecoveryStackTraceDisabled(t *testing.T) {
	var logged bytes.Buffer
	r := router.New()
	r.Use(New(WithStackTrace(false), WithLogger(logging.New(logging.WithWriter(&logged))), WithHandler(func(c *router.Context, err any) {
		c.Text(protocol.StatusInternalServerError, "handled")
	})))
	require.NoError(t, r.GET("/boom", func(c *router.Context) { panic("x") }))

	c := r.Dispatch(newReq(protocol.MethodGet, "/boom"))
	defer c.Release()
	assert.Contains(t, logged.String(), `stack=""`)
	assert.Equal(t, protocol.StatusInternalServerError, c.Response.Status)
}
