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

package server

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/config"
	"rivaas.dev/corehttp/router"
)

func newTestServer(t *testing.T, numThreads *int) (*Server, func()) {
	t.Helper()
	r := router.New()
	require.NoError(t, r.GET("/ping", func(c *router.Context) {
		_ = c.JSON(200, map[string]string{"pong": "true"})
	}))

	cfg := config.New(
		config.WithAddress("127.0.0.1"),
		config.WithPort(0),
		config.WithAutoPort(false),
		config.WithReusePort(false),
		config.WithKeepAliveTimeout(200*time.Millisecond),
	)
	if numThreads != nil {
		cfg.NumThreads = numThreads
	}

	srv := New(cfg, r.Dispatch)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	cleanup := func() {
		cancel()
		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Fatal("server did not shut down")
		}
	}
	return srv, cleanup
}

func doRawRequest(t *testing.T, addr net.Addr, raw string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(raw))
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(conn)
	statusLine, err := r.ReadString('\n')
	require.NoError(t, err)
	return statusLine
}

func TestServerRespondsToRequestWithWorkerPool(t *testing.T) {
	zero := 2
	srv, cleanup := newTestServer(t, &zero)
	defer cleanup()

	addr := srv.Addr()
	status := doRawRequest(t, addr, "GET /ping HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")
	assert.Contains(t, status, "200")
}

func TestServerRespondsInlineWhenNumThreadsZero(t *testing.T) {
	zero := 0
	srv, cleanup := newTestServer(t, &zero)
	defer cleanup()

	addr := srv.Addr()
	status := doRawRequest(t, addr, "GET /ping HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")
	assert.Contains(t, status, "200")
}

func TestServerReturns404ForUnknownRoute(t *testing.T) {
	srv, cleanup := newTestServer(t, nil)
	defer cleanup()

	addr := srv.Addr()
	status := doRawRequest(t, addr, "GET /nope HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")
	assert.Contains(t, status, "404")
}

// A handler panic with no recovery middleware mounted must close
// the offending connection without writing a response and, critically,
// must not take down the worker goroutine — the server keeps serving
// other connections afterward.
func TestServerSurvivesHandlerPanicWithoutRecoveryMiddleware(t *testing.T) {
	r := router.New()
	require.NoError(t, r.GET("/ping", func(c *router.Context) {
		_ = c.JSON(200, map[string]string{"pong": "true"})
	}))
	require.NoError(t, r.GET("/boom", func(c *router.Context) {
		panic("handler exploded")
	}))

	cfg := config.New(
		config.WithAddress("127.0.0.1"),
		config.WithPort(0),
		config.WithAutoPort(false),
		config.WithReusePort(false),
		config.WithKeepAliveTimeout(200*time.Millisecond),
		config.WithNumThreads(2),
	)
	srv := New(cfg, r.Dispatch)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()
	defer func() {
		cancel()
		select {
		case <-errCh:
		case <-time.After(time.Second):
			t.Fatal("server did not shut down")
		}
	}()

	addr := srv.Addr()

	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	_, err = conn.Write([]byte("GET /boom HTTP/1.1\r\nHost: x\r\nConnection: keep-alive\r\n\r\n"))
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 16)
	n, readErr := conn.Read(buf)
	assert.Zero(t, n)
	assert.Error(t, readErr, "a panicking handler must close the connection, not write a response")
	conn.Close()

	status := doRawRequest(t, addr, "GET /ping HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n")
	assert.Contains(t, status, "200", "the worker pool must keep serving other connections after a recovered panic")
}
