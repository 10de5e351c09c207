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

package graphql

import "time"

// Config holds the pipeline tunables, built with the same
// functional-options idiom as config.Config/router.Option/session.Config.
type Config struct {
	MaxDepth                 int
	IgnoreIntrospectionDepth bool

	DefaultFieldComplexity int
	ListMultiplier         int
	MaxComplexity          int

	EnableIntrospection bool

	MaskErrors        bool
	MaskedMessage     string
	IncludeErrorCodes bool

	PersistedQueriesOnly bool

	MaxBatchSize int

	CacheEnabled bool
	CacheTTL     time.Duration

	TracingEnabled bool

	KeepAliveInterval time.Duration
	AckTimeout        time.Duration
}

// Option configures a Config.
type Option func(*Config)

// Default returns the default GraphQL pipeline configuration.
func Default() *Config {
	return &Config{
		MaxDepth:               15,
		DefaultFieldComplexity: 1,
		ListMultiplier:         10,
		MaxComplexity:          1000,
		EnableIntrospection:    true,
		MaskErrors:             false,
		MaskedMessage:          "internal server error",
		IncludeErrorCodes:      true,
		MaxBatchSize:           10,
		CacheTTL:               60 * time.Second,
		KeepAliveInterval:      20 * time.Second,
		AckTimeout:             10 * time.Second,
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

// WithMaxDepth sets the maximum selection-set nesting depth. Default 15.
func WithMaxDepth(n int) Option { return func(c *Config) { c.MaxDepth = n } }

// WithIgnoreIntrospectionDepth excludes __schema/__type subtrees from the
// depth count.
func WithIgnoreIntrospectionDepth(v bool) Option {
	return func(c *Config) { c.IgnoreIntrospectionDepth = v }
}

// WithDefaultFieldComplexity sets the base cost per field. Default 1.
func WithDefaultFieldComplexity(n int) Option {
	return func(c *Config) { c.DefaultFieldComplexity = n }
}

// WithListMultiplier sets the multiplier applied to list-typed fields.
// Default 10.
func WithListMultiplier(n int) Option { return func(c *Config) { c.ListMultiplier = n } }

// WithMaxComplexity sets the maximum total selection complexity.
// Default 1000.
func WithMaxComplexity(n int) Option { return func(c *Config) { c.MaxComplexity = n } }

// WithIntrospection toggles __schema/__type support. Default true.
func WithIntrospection(enabled bool) Option {
	return func(c *Config) { c.EnableIntrospection = enabled }
}

// WithMaskErrors toggles replacing resolver/handler error messages with a
// generic message, preserving codes per WithIncludeErrorCodes. Default
// false; production deployments should enable this.
func WithMaskErrors(enabled bool) Option {
	return func(c *Config) { c.MaskErrors = enabled }
}

// WithMaskedMessage sets the generic message substituted when masking is
// enabled.
func WithMaskedMessage(msg string) Option { return func(c *Config) { c.MaskedMessage = msg } }

// WithIncludeErrorCodes toggles whether stable codes survive masking.
// Default true.
func WithIncludeErrorCodes(v bool) Option { return func(c *Config) { c.IncludeErrorCodes = v } }

// WithPersistedQueriesOnly rejects any request that isn't a persisted-
// query lookup. Default false.
func WithPersistedQueriesOnly(v bool) Option { return func(c *Config) { c.PersistedQueriesOnly = v } }

// WithMaxBatchSize bounds the number of operations a single batched
// request may contain. Default 10.
func WithMaxBatchSize(n int) Option { return func(c *Config) { c.MaxBatchSize = n } }

// WithCache enables the response cache probe for query operations, using
// ttl for newly-built entries.
func WithCache(enabled bool, ttl time.Duration) Option {
	return func(c *Config) { c.CacheEnabled = enabled; c.CacheTTL = ttl }
}

// WithTracing enables per-stage duration reporting in the response's
// extensions.tracing.
func WithTracing(enabled bool) Option { return func(c *Config) { c.TracingEnabled = enabled } }

// WithKeepAliveInterval sets the subscription transport's ping cadence.
// Default 20s.
func WithKeepAliveInterval(d time.Duration) Option {
	return func(c *Config) { c.KeepAliveInterval = d }
}

// WithAckTimeout sets how long a graphql-ws client has to send
// connection_init before the socket is closed. Default 10s.
func WithAckTimeout(d time.Duration) Option { return func(c *Config) { c.AckTimeout = d } }
