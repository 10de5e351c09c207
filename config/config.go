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

// Package config holds the server-wide configuration surface, expressed
// as a functional-options Config. The same Option idiom is used by every
// configurable type in this module.
package config

import "time"

// Config is the immutable-after-build server configuration. Construct one
// with New(opts...); it is frozen the moment server.New consumes it.
type Config struct {
	Address string
	Port    int

	MaxBodySize    int64
	NumThreads     *int // nil = auto (max(1, 2*cores-1)); a set *0 means "serve on the calling goroutine"
	ReadBufferSize int

	EnableAccessLog bool

	AutoPort        bool
	MaxPortAttempts int

	KeepAliveTimeout time.Duration
	MaxConnections   int

	TCPNoDelay bool
	ReusePort  bool

	DisableReservedRoutes bool
}

// Option configures a Config.
type Option func(*Config)

// Default returns the default server configuration.
func Default() *Config {
	return &Config{
		Address:               "127.0.0.1",
		Port:                  8000,
		MaxBodySize:           10 << 20, // 10 MiB
		NumThreads:            nil,
		ReadBufferSize:        16 << 10, // 16 KiB
		EnableAccessLog:       true,
		AutoPort:              true,
		MaxPortAttempts:       100,
		KeepAliveTimeout:      5000 * time.Millisecond,
		MaxConnections:        10000,
		TCPNoDelay:            true,
		ReusePort:             true,
		DisableReservedRoutes: false,
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

// WithAddress sets the bind address.
func WithAddress(addr string) Option {
	return func(c *Config) { c.Address = addr }
}

// WithPort sets the bind port.
func WithPort(port int) Option {
	return func(c *Config) { c.Port = port }
}

// WithMaxBodySize bounds the accepted request body size in bytes.
func WithMaxBodySize(n int64) Option {
	return func(c *Config) { c.MaxBodySize = n }
}

// WithNumThreads pins the worker count. Pass 0 to serve on the calling
// goroutine (no worker pool); omit this option to auto-derive from
// runtime.NumCPU().
func WithNumThreads(n int) Option {
	return func(c *Config) { c.NumThreads = &n }
}

// WithReadBufferSize sets the per-connection read buffer used for the
// request line and headers.
func WithReadBufferSize(n int) Option {
	return func(c *Config) { c.ReadBufferSize = n }
}

// WithAccessLog toggles the access-log middleware default wiring.
func WithAccessLog(enabled bool) Option {
	return func(c *Config) { c.EnableAccessLog = enabled }
}

// WithAutoPort toggles sequential port probing on bind conflicts.
func WithAutoPort(enabled bool) Option {
	return func(c *Config) { c.AutoPort = enabled }
}

// WithMaxPortAttempts bounds how many ports WithAutoPort will probe.
func WithMaxPortAttempts(n int) Option {
	return func(c *Config) { c.MaxPortAttempts = n }
}

// WithKeepAliveTimeout sets how long an idle keep-alive connection is held
// open before the worker closes it.
func WithKeepAliveTimeout(d time.Duration) Option {
	return func(c *Config) { c.KeepAliveTimeout = d }
}

// WithMaxConnections bounds in-flight connections; accepts beyond this are
// refused with a TCP-level RST.
func WithMaxConnections(n int) Option {
	return func(c *Config) { c.MaxConnections = n }
}

// WithTCPNoDelay toggles TCP_NODELAY on accepted sockets.
func WithTCPNoDelay(enabled bool) Option {
	return func(c *Config) { c.TCPNoDelay = enabled }
}

// WithReusePort toggles SO_REUSEPORT on the listening socket.
func WithReusePort(enabled bool) Option {
	return func(c *Config) { c.ReusePort = enabled }
}

// WithoutReservedRoutes disables automatic registration of /health,
// /openapi.json, /docs, /redoc, and the GraphQL IDE routes.
func WithoutReservedRoutes() Option {
	return func(c *Config) { c.DisableReservedRoutes = true }
}
