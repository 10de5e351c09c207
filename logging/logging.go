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

// Package logging provides the slog.Logger construction used across
// corehttp's logging subsystems (acceptor, router, hub, session manager,
// app and middleware). It follows rivaas.dev/logging's functional-options
// shape, trimmed to what corehttp's ambient stack needs.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Config holds logger construction options.
type Config struct {
	level  slog.Level
	json   bool
	out    io.Writer
	addSrc bool
}

// Option configures a Config.
type Option func(*Config)

// WithLevel sets the minimum level emitted.
func WithLevel(level slog.Level) Option {
	return func(c *Config) { c.level = level }
}

// WithJSONHandler switches to slog.NewJSONHandler (the default is text).
func WithJSONHandler() Option {
	return func(c *Config) { c.json = true }
}

// WithWriter redirects output; default is os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *Config) { c.out = w }
}

// WithSource adds source file/line to every record.
func WithSource(enabled bool) Option {
	return func(c *Config) { c.addSrc = enabled }
}

// New builds a *slog.Logger from opts.
func New(opts ...Option) *slog.Logger {
	cfg := &Config{level: slog.LevelInfo, out: os.Stdout}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSrc}
	var handler slog.Handler
	if cfg.json {
		handler = slog.NewJSONHandler(cfg.out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(cfg.out, handlerOpts)
	}
	return slog.New(handler)
}

// noop is the singleton logger used when a subsystem is constructed
// without WithLogger.
var noop = slog.New(slog.NewTextHandler(io.Discard, nil))

// Noop returns the shared discard logger.
func Noop() *slog.Logger {
	return noop
}
