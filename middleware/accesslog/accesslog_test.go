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

package accesslog

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/logging"
	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

func newReq(path string) *router.Request {
	return &router.Request{Method: protocol.MethodGet, Path: path, Header: protocol.NewHeader()}
}

func TestAccessLogWritesLineForNormalRequest(t *testing.T) {
	var buf bytes.Buffer
	r := router.New()
	r.Use(New(WithLogger(logging.New(logging.WithWriter(&buf)))))
	require.NoError(t, r.GET("/x", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := r.Dispatch(newReq("/x"))
	defer c.Release()

	out := buf.String()
	assert.Contains(t, out, "http request")
	assert.Contains(t, out, "path=/x")
	assert.Contains(t, out, "status=200")
}

func TestAccessLogExcludesExactPath(t *testing.T) {
	var buf bytes.Buffer
	r := router.New()
	r.Use(New(WithLogger(logging.New(logging.WithWriter(&buf))), WithExcludePaths("/health")))
	require.NoError(t, r.GET("/health", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := r.Dispatch(newReq("/health"))
	defer c.Release()
	assert.Empty(t, buf.String())
}

func TestAccessLogExcludesPrefix(t *testing.T) {
	var buf bytes.Buffer
	r := router.New()
	r.Use(New(WithLogger(logging.New(logging.WithWriter(&buf))), WithExcludePrefixes("/internal/")))
	require.NoError(t, r.GET("/internal/metrics", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := r.Dispatch(newReq("/internal/metrics"))
	defer c.Release()
	assert.Empty(t, buf.String())
}

func TestAccessLogErrorsOnlySkipsSuccesses(t *testing.T) {
	var buf bytes.Buffer
	r := router.New()
	r.Use(New(WithLogger(logging.New(logging.WithWriter(&buf))), WithLogErrorsOnly(true)))
	require.NoError(t, r.GET("/ok", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))
	require.NoError(t, r.GET("/bad", func(c *router.Context) { c.Text(protocol.StatusInternalServerError, "bad") }))

	c1 := r.Dispatch(newReq("/ok"))
	c1.Release()
	assert.Empty(t, buf.String())

	c2 := r.Dispatch(newReq("/bad"))
	defer c2.Release()
	assert.Contains(t, buf.String(), "status=500")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestAccessLogSlowThresholdForcesLogDespiteSampleRateZero(t *testing.T) {
	var buf bytes.Buffer
	r := router.New()
	r.Use(New(
		WithLogger(logging.New(logging.WithWriter(&buf))),
		WithSampleRate(0),
		WithSlowThreshold(1*time.Millisecond),
	))
	require.NoError(t, r.GET("/slow", func(c *router.Context) {
		time.Sleep(5 * time.Millisecond)
		c.Text(protocol.StatusOK, "ok")
	}))

	c := r.Dispatch(newReq("/slow"))
	defer c.Release()
	assert.Contains(t, buf.String(), "path=/slow")
}

func TestAccessLogSampleRateZeroSuppressesFastSuccess(t *testing.T) {
	var buf bytes.Buffer
	r := router.New()
	r.Use(New(WithLogger(logging.New(logging.WithWriter(&buf))), WithSampleRate(0)))
	require.NoError(t, r.GET("/fast", func(c *router.Context) { c.Text(protocol.StatusOK, "ok") }))

	c := r.Dispatch(newReq("/fast"))
	defer c.Release()
	assert.Empty(t, buf.String())
}
