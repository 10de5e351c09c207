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

package ws

import (
	"log/slog"
	"time"

	"rivaas.dev/corehttp/logging"
)

// Config is the Hub's functional-options configuration, following the same
// Option func(*T) idiom as config.Config and cache.Option.
type Config struct {
	AllowedOrigins []string

	PingInterval time.Duration
	PongTimeout  time.Duration

	ReadBufferSize  int
	WriteBufferSize int

	SendQueueSize int

	// OverflowCloseCode is the close code applied to a connection whose
	// send queue overflows: 1009 (message too big) or 1011 (internal
	// error), depending on deployment policy.
	OverflowCloseCode int

	// OnMessage, when set, is invoked from the connection's read goroutine
	// for every inbound text/binary frame. Left nil, inbound application
	// data is simply discarded — callers that only need broadcast/rooms
	// (no client→server payloads) don't need to wire this.
	OnMessage func(c *Connection, opcode int, data []byte)

	// OnConnect and OnDisconnect, when set, fire as a connection is
	// registered/unregistered. OnConnect runs before the connection has
	// joined any room; OnDisconnect runs after it has left every room.
	OnConnect    func(c *Connection)
	OnDisconnect func(c *Connection, code int)

	Logger *slog.Logger
}

// Option configures a Hub at construction.
type Option func(*Config)

func defaultConfig() *Config {
	return &Config{
		PingInterval:      30 * time.Second,
		PongTimeout:       60 * time.Second,
		ReadBufferSize:    4 << 10,
		WriteBufferSize:   4 << 10,
		SendQueueSize:     64,
		OverflowCloseCode: CloseInternalError,
		Logger:            logging.Noop(),
	}
}

// WithAllowedOrigins restricts handshake acceptance to the given Origin
// values. An empty list (the default) skips origin checking entirely.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *Config) { c.AllowedOrigins = origins }
}

// WithPingInterval sets how often the hub pings each open connection.
func WithPingInterval(d time.Duration) Option {
	return func(c *Config) { c.PingInterval = d }
}

// WithPongTimeout sets how long the hub waits for a pong before forcibly
// closing a connection with code 1006.
func WithPongTimeout(d time.Duration) Option {
	return func(c *Config) { c.PongTimeout = d }
}

// WithBufferSizes sets the gorilla/websocket read/write buffer sizes used
// per connection.
func WithBufferSizes(read, write int) Option {
	return func(c *Config) { c.ReadBufferSize = read; c.WriteBufferSize = write }
}

// WithSendQueueSize bounds the per-connection outbound queue before
// backpressure closes the connection.
func WithSendQueueSize(n int) Option {
	return func(c *Config) { c.SendQueueSize = n }
}

// WithOverflowCloseCode selects the close code applied on send-queue
// overflow: ws.CloseMessageTooBig or ws.CloseInternalError.
func WithOverflowCloseCode(code int) Option {
	return func(c *Config) { c.OverflowCloseCode = code }
}

// WithLogger sets the structured logger used for handshake/liveness
// diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithMessageHandler registers the callback invoked for every inbound
// text/binary frame.
func WithMessageHandler(fn func(c *Connection, opcode int, data []byte)) Option {
	return func(c *Config) { c.OnMessage = fn }
}

// WithConnectHandler registers a callback fired once a connection is
// registered with the hub.
func WithConnectHandler(fn func(c *Connection)) Option {
	return func(c *Config) { c.OnConnect = fn }
}

// WithDisconnectHandler registers a callback fired once a connection is
// unregistered, receiving the close code it went down with.
func WithDisconnectHandler(fn func(c *Connection, code int)) Option {
	return func(c *Config) { c.OnDisconnect = fn }
}
