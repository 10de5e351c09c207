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

// Package recovery converts a panicking handler or downstream middleware
// into a 500 response instead of letting the worker goroutine terminate
// the connection.
package recovery

import (
	"log/slog"
	"runtime/debug"

	"rivaas.dev/corehttp/logging"
	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// Option configures the Recovery middleware.
type Option func(*config)

type config struct {
	stackTrace bool
	stackSize  int
	logger     *slog.Logger
	handler    func(c *router.Context, err any)
}

func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10,
		logger:     logging.Noop(),
		handler:    defaultHandler,
	}
}

func defaultHandler(c *router.Context, err any) {
	_ = c.JSON(protocol.StatusInternalServerError, map[string]any{
		"error":   "INTERNAL_ERROR",
		"message": "an internal error occurred",
	})
}

// WithStackTrace enables or disables stack-trace capture on panic.
// Default: true.
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) { cfg.stackTrace = enabled }
}

// WithStackSize bounds the captured stack trace in bytes. Default 4KiB.
func WithStackSize(n int) Option {
	return func(cfg *config) { cfg.stackSize = n }
}

// WithLogger sets the logger used to record the recovered panic.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = logger }
}

// WithHandler overrides the response written after a panic is recovered.
func WithHandler(handler func(c *router.Context, err any)) Option {
	return func(cfg *config) { cfg.handler = handler }
}

// New returns a middleware that recovers from panics in any handler later
// in the chain, logs the panic and (optionally) its stack, and writes a
// 500 response instead of letting the connection die. Register it first
// (or as early as possible) so it guards the rest of the chain.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		defer func() {
			if err := recover(); err != nil {
				var stack []byte
				if cfg.stackTrace {
					full := debug.Stack()
					if len(full) > cfg.stackSize {
						full = full[:cfg.stackSize]
					}
					stack = full
				}
				cfg.logger.Error("recovered panic", "error", err, "stack", string(stack))
				cfg.handler(c, err)
			}
		}()
		c.Next()
	}
}
