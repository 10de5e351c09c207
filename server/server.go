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

// Package server implements the connection acceptor, bounded worker
// pool, and the raw HTTP/1.1 request parser and response serializer
// built on top of it.
//
// The package owns the listener and the byte-level framing itself rather
// than riding on net/http.Server: explicit socket options (TCP_NODELAY,
// SO_REUSEPORT, keepalive), an explicit worker-count policy, and
// backpressure at max_connections are not things net/http.Server
// exposes. Workers pull accepted sockets from a bounded FIFO; there is
// no platform-specific poller, just blocking Accept plus goroutine
// workers.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"rivaas.dev/corehttp/config"
	"rivaas.dev/corehttp/logging"
	"rivaas.dev/corehttp/router"
)

// Handler processes one parsed Request and produces a Context holding the
// Response. Router.Dispatch satisfies this signature.
type Handler func(req *router.Request) *router.Context

// Server owns a listener, a bounded worker pool, and the atomic liveness
// counters exposed through ActiveConnections and RequestCount.
type Server struct {
	cfg     *config.Config
	handler Handler
	logger  *slog.Logger

	listener net.Listener
	addrCh   chan net.Addr

	queue chan net.Conn

	activeConnections atomic.Int64
	requestCount      atomic.Uint64
	running           atomic.Bool

	wg sync.WaitGroup
}

// Option configures a Server beyond what config.Config covers.
type Option func(*Server)

// WithLogger sets the structured logger used for accept/parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New constructs a Server bound to cfg, dispatching parsed requests to
// handler.
func New(cfg *config.Config, handler Handler, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		logger:  logging.Noop(),
		addrCh:  make(chan net.Addr, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ActiveConnections returns the current live-connection count.
func (s *Server) ActiveConnections() int64 { return s.activeConnections.Load() }

// RequestCount returns the number of responses completed since start.
func (s *Server) RequestCount() uint64 { return s.requestCount.Load() }

// Running reports whether the server is currently accepting connections.
func (s *Server) Running() bool { return s.running.Load() }

// Addr blocks until ListenAndServe has bound its listener, then returns
// its address. Intended for tests and callers that picked port 0 for an
// OS-assigned ephemeral port.
func (s *Server) Addr() net.Addr {
	addr := <-s.addrCh
	s.addrCh <- addr
	return addr
}

// ListenAndServe binds the configured address — when auto_port is set
// and the port is in use, probing sequentially up to max_port_attempts
// before failing with BindFailed — then serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, actualPort, err := bind(s.cfg)
	if err != nil {
		return err
	}
	s.listener = ln
	s.addrCh <- ln.Addr()
	s.logger.Info("server listening", "address", s.cfg.Address, "port", actualPort)

	s.running.Store(true)
	defer s.running.Store(false)

	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	numWorkers := resolveNumThreads(s.cfg.NumThreads)

	if numWorkers == 0 {
		// num_threads = 0: accept-and-serve on the calling goroutine.
		return s.serveInline(ctx)
	}

	s.queue = make(chan net.Conn, s.cfg.MaxConnections)
	for i := 0; i < numWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s.acceptLoop(ctx)
}

// resolveNumThreads resolves the num_threads policy: 0 = calling
// goroutine, nil = max(1, 2*cores-1), else the explicit count.
func resolveNumThreads(n *int) int {
	if n == nil {
		return max(1, 2*runtime.NumCPU()-1)
	}
	return *n
}

// serveInline implements num_threads=0: every accepted connection is
// served synchronously on the accepting goroutine.
func (s *Server) serveInline(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if isTemporary(err) {
				s.logger.Warn("accept error, retrying", "error", err)
				time.Sleep(5 * time.Millisecond)
				continue
			}
			return err
		}
		s.serveConn(conn)
	}
}

// acceptLoop accepts connections and enqueues them to the worker pool.
// Once max_connections is reached, new accepts are refused with a
// TCP-level RST.
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.closeQueue()
				s.wg.Wait()
				return nil
			}
			if isTemporary(err) {
				s.logger.Warn("accept error, retrying", "error", err)
				time.Sleep(5 * time.Millisecond)
				continue
			}
			s.closeQueue()
			s.wg.Wait()
			return err
		}

		if int(s.activeConnections.Load()) >= s.cfg.MaxConnections {
			resetConn(conn)
			continue
		}

		select {
		case s.queue <- conn:
		default:
			// Queue is full even though the connection-count gate passed:
			// reject with RST rather than blocking the accept loop.
			resetConn(conn)
		}
	}
}

func (s *Server) closeQueue() {
	if s.queue != nil {
		close(s.queue)
	}
}

func (s *Server) worker() {
	defer s.wg.Done()
	for conn := range s.queue {
		s.serveConn(conn)
	}
}

// serveConn drives the keep-alive loop for one accepted connection,
// parsing requests until the peer closes, a parse error occurs, or the
// response opts out of keep-alive.
func (s *Server) serveConn(conn net.Conn) {
	s.activeConnections.Add(1)
	hijacked := false
	defer func() {
		if !hijacked {
			s.activeConnections.Add(-1)
			_ = conn.Close()
		}
	}()

	applySocketOptions(conn, s.cfg)

	reader := newConnReader(conn, s.cfg.ReadBufferSize)
	keepAliveTimeout := s.cfg.KeepAliveTimeout

	for {
		if keepAliveTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(keepAliveTimeout))
		}

		req, perr := parseRequest(reader, s.cfg.MaxBodySize, s.cfg.ReadBufferSize)
		if perr != nil {
			if perr.closeSilently {
				return
			}
			writeErrorResponse(conn, perr.status, perr.message)
			return
		}
		if req == nil {
			return // peer closed cleanly between requests
		}

		req.RemoteAddr = conn.RemoteAddr().String()

		c := s.handler(req)
		s.requestCount.Add(1)

		if hijack := c.Response.HijackFunc(); hijack != nil {
			hijacked = true
			c.Release()
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.activeConnections.Add(-1)
				defer conn.Close()
				hijack(conn)
			}()
			return
		}

		if c.Response.Abandoned() {
			c.Release()
			return
		}

		keepAlive := shouldKeepAlive(req, c.Response)
		if !keepAlive {
			c.Response.SetHeader("Connection", "close")
		}

		if err := writeResponse(conn, c.Response); err != nil {
			c.Release()
			return
		}
		c.Release()

		if !keepAlive {
			return
		}
	}
}

func isTemporary(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func resetConn(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetLinger(0)
	}
	_ = conn.Close()
}

func writeErrorResponse(conn net.Conn, status int, message string) {
	resp := fmt.Sprintf("HTTP/1.1 %d %s\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		status, message, len(message), message)
	_, _ = conn.Write([]byte(resp))
}
