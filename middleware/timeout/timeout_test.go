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

package timeout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

func newReq(path string) *router.Request {
	return &router.Request{Method: protocol.MethodGet, Path: path, Header: protocol.NewHeader()}
}

func TestTimeoutAllowsFastHandler(t *testing.T) {
	r := router.New()
	r.Use(New(50 * time.Millisecond))
	require.NoError(t, r.GET("/x", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := r.Dispatch(newReq("/x"))
	defer c.Release()

	assert.False(t, c.Response.Abandoned())
	assert.Equal(t, protocol.StatusOK, c.Response.Status)
}

func TestTimeoutAbandonsSlowHandler(t *testing.T) {
	r := router.New()
	r.Use(New(10 * time.Millisecond))
	require.NoError(t, r.GET("/x", func(c *router.Context) {
		time.Sleep(100 * time.Millisecond)
		c.Text(protocol.StatusOK, "too late")
	}))

	c := r.Dispatch(newReq("/x"))
	assert.True(t, c.Response.Abandoned())
	// A leaked Context must not be returned to the pool; Release is a
	// no-op in that case, so this must not panic or corrupt shared state.
	c.Release()
}

func TestTimeoutSkipPathBypassesDeadline(t *testing.T) {
	r := router.New()
	r.Use(New(5*time.Millisecond, WithSkipPaths("/slow")))
	require.NoError(t, r.GET("/slow", func(c *router.Context) {
		time.Sleep(20 * time.Millisecond)
		c.Text(protocol.StatusOK, "done")
	}))

	c := r.Dispatch(newReq("/slow"))
	defer c.Release()

	assert.False(t, c.Response.Abandoned())
	assert.Equal(t, protocol.StatusOK, c.Response.Status)
}

func TestTimeoutZeroDurationDisablesEnforcement(t *testing.T) {
	r := router.New()
	r.Use(New(0))
	require.NoError(t, r.GET("/x", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := r.Dispatch(newReq("/x"))
	defer c.Release()
	assert.False(t, c.Response.Abandoned())
	assert.Equal(t, protocol.StatusOK, c.Response.Status)
}
