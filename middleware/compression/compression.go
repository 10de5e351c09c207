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

// Package compression gzip-encodes response bodies when the client
// accepts it. Intended as the innermost middleware, just before the
// handler.
package compression

import (
	"bytes"
	"compress/gzip"
	"path"
	"strings"

	"rivaas.dev/corehttp/router"
)

// Option configures the compression middleware.
type Option func(*config)

type config struct {
	level               int
	minSize             int
	excludePaths        map[string]bool
	excludeExtensions   map[string]bool
	excludeContentTypes map[string]bool
}

func defaultConfig() *config {
	return &config{
		level:               gzip.DefaultCompression,
		minSize:             1024,
		excludePaths:        map[string]bool{},
		excludeExtensions:   map[string]bool{},
		excludeContentTypes: map[string]bool{},
	}
}

// WithLevel sets the gzip compression level (gzip.BestSpeed ..
// gzip.BestCompression). Default gzip.DefaultCompression.
func WithLevel(level int) Option {
	return func(cfg *config) { cfg.level = level }
}

// WithMinSize sets the minimum response body size, in bytes, eligible
// for compression. Since corehttp's Response body is fully materialized
// before the serializer runs, this is enforced exactly (unlike a
// streaming writer, which would need to buffer to know the size).
func WithMinSize(n int) Option {
	return func(cfg *config) { cfg.minSize = n }
}

// WithExcludePaths skips compression for exact path matches.
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludeExtensions skips compression for paths ending in one of
// these extensions (e.g. ".jpg", ".png", ".gz" — already-compressed
// formats that don't benefit).
func WithExcludeExtensions(extensions ...string) Option {
	return func(cfg *config) {
		for _, ext := range extensions {
			cfg.excludeExtensions[ext] = true
		}
	}
}

// WithExcludeContentTypes skips compression when the response's
// Content-Type matches one of these exactly.
func WithExcludeContentTypes(contentTypes ...string) Option {
	return func(cfg *config) {
		for _, ct := range contentTypes {
			cfg.excludeContentTypes[ct] = true
		}
	}
}

// New returns the compression middleware.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		c.Next()

		if cfg.excludePaths[c.Request.Path] {
			return
		}
		if ext := path.Ext(c.Request.Path); cfg.excludeExtensions[ext] {
			return
		}
		if cfg.excludeContentTypes[c.Response.ContentType] {
			return
		}
		if c.Response.StreamReader() != nil {
			return // streaming bodies are not buffered for compression
		}
		if len(c.Response.Body) < cfg.minSize {
			return
		}
		if !strings.Contains(c.Request.Header.Get("Accept-Encoding"), "gzip") {
			return
		}
		if c.Response.Header.Has("Content-Encoding") {
			return
		}

		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, cfg.level)
		if err != nil {
			return
		}
		if _, err := zw.Write(c.Response.Body); err != nil {
			_ = zw.Close()
			return
		}
		if err := zw.Close(); err != nil {
			return
		}

		c.Response.Body = buf.Bytes()
		c.Response.SetHeader("Content-Encoding", "gzip")
		c.Response.SetHeader("Vary", "Accept-Encoding")
	}
}
