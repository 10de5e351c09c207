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

// Package app wires router, server, cache, session, ws, and graphql into
// one ListenAndServe, registering the reserved routes. corehttp has no
// OpenAPI generator, no OTLP metrics/tracing pipeline, no API versioning,
// and no hot-reload, so the surface here is only what corehttp's own
// packages actually provide.
package app

import (
	"context"
	"log/slog"
	"time"

	"rivaas.dev/corehttp/cache"
	"rivaas.dev/corehttp/config"
	"rivaas.dev/corehttp/graphql"
	"rivaas.dev/corehttp/logging"
	"rivaas.dev/corehttp/metrics"
	"rivaas.dev/corehttp/middleware/accesslog"
	"rivaas.dev/corehttp/middleware/recovery"
	"rivaas.dev/corehttp/middleware/requestid"
	"rivaas.dev/corehttp/middleware/responsecache"
	"rivaas.dev/corehttp/router"
	"rivaas.dev/corehttp/server"
	"rivaas.dev/corehttp/session"
	"rivaas.dev/corehttp/ws"
)

// App is the top-level wiring of one corehttp service.
type App struct {
	router *router.Router
	server *server.Server
	config *config.Config
	logger *slog.Logger

	cache         *cache.Cache
	varyHeaders   []string
	sessions      *session.Manager
	hub           *ws.Hub
	wsPath        string
	subs          *graphql.SubscriptionManager
	graphqlEng    *graphql.Engine
	metrics       *metrics.Collector
	hooks         *Hooks
	exposeMetrics bool
}

// Option configures an App at construction.
type Option func(*App)

// WithConfig sets the server configuration. Defaults to config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(a *App) { a.config = cfg }
}

// WithLogger sets the structured logger used for the router, middleware,
// and lifecycle diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithCache attaches a response cache: New mounts a response-cache
// middleware backed by it (memoizing idempotent routes, with /health
// and /metrics exempt since they must reflect current state) and
// threads it into the GraphQL engine's cache probe when the engine has
// no cache of its own.
func WithCache(c *cache.Cache) Option {
	return func(a *App) { a.cache = c }
}

// WithVaryHeaders names the request headers the response-cache
// middleware partitions its keys by. Only meaningful together with
// WithCache.
func WithVaryHeaders(names ...string) Option {
	return func(a *App) { a.varyHeaders = names }
}

// WithSessions attaches a session manager and registers its middleware as
// global router middleware, loading/flushing a session around every
// request.
func WithSessions(mgr *session.Manager) Option {
	return func(a *App) { a.sessions = mgr }
}

// WithWebSocketHub attaches a ws.Hub and mounts it at path (commonly
// "/ws"). When the hub is meant to speak graphql-ws, use WithGraphQL's
// subs parameter instead — New constructs and mounts that hub itself.
func WithWebSocketHub(hub *ws.Hub, path string) Option {
	return func(a *App) {
		a.hub = hub
		a.wsPath = path
	}
}

// WithGraphQL attaches a GraphQL engine, mounting its POST /graphql
// handler, and — if subs is non-nil — a graphql-ws subscription
// transport sharing the engine's schema/config.
func WithGraphQL(engine *graphql.Engine, subs *graphql.SubscriptionManager) Option {
	return func(a *App) {
		a.graphqlEng = engine
		a.subs = subs
	}
}

// WithMetrics attaches a metrics collector and exposes it at /metrics,
// registered the same way as the reserved routes when a collector is
// supplied.
func WithMetrics(collector *metrics.Collector) Option {
	return func(a *App) { a.metrics = collector; a.exposeMetrics = true }
}

// New builds an App: constructs the router with the default middleware
// stack (request id, recovery, optional access log), wires the reserved
// routes, and constructs (but does not start) the server.
func New(opts ...Option) (*App, error) {
	a := &App{config: config.Default(), hooks: &Hooks{}}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.Noop()
	}

	a.router = router.New(router.WithLogger(a.logger))
	a.router.Use(requestid.New())
	a.router.Use(recovery.New(recovery.WithLogger(a.logger)))
	if a.config.EnableAccessLog {
		a.router.Use(accesslog.New(accesslog.WithLogger(a.logger)))
	}
	if a.sessions != nil {
		a.router.Use(a.sessions.Middleware())
	}
	if a.cache != nil {
		a.router.Use(responsecache.New(cache.NewResponseCache(a.cache),
			responsecache.WithVaryHeaders(a.varyHeaders...),
			responsecache.WithSkipPaths("/health", "/metrics")))
	}

	// A subscription manager needs a WebSocket hub speaking graphql-ws;
	// build one from its Options() unless the caller already supplied a
	// hub of their own via WithWebSocketHub.
	if a.subs != nil && a.hub == nil {
		a.hub = ws.New(a.subs.Options()...)
		a.wsPath = "/graphql/ws"
	}

	if !a.config.DisableReservedRoutes {
		a.registerReservedRoutes()
	}
	if a.graphqlEng != nil {
		if a.cache != nil && a.graphqlEng.Cache == nil {
			a.graphqlEng.Cache = a.cache
			a.graphqlEng.Config.CacheEnabled = true
		}
		_ = a.router.POST("/graphql", a.graphqlEng.Handler())
	}
	if a.hub != nil && a.wsPath != "" {
		_ = a.router.GET(a.wsPath, a.websocketHandler(a.hub))
	}
	if a.exposeMetrics && a.metrics != nil {
		_ = a.router.GET("/metrics", a.metricsHandler())
	}

	a.server = server.New(a.config, a.router.Dispatch, server.WithLogger(a.logger))
	return a, nil
}

// Router exposes the underlying router for direct route registration —
// the normal way application code adds its own handlers.
func (a *App) Router() *router.Router { return a.router }

// Server exposes the underlying server for accessors like
// ActiveConnections/RequestCount.
func (a *App) Server() *server.Server { return a.server }

// Hooks exposes the lifecycle hook registry.
func (a *App) Hooks() *Hooks { return a.hooks }

// Run starts the server and blocks until ctx is cancelled or the server
// exits with an error. server.Server.ListenAndServe already drains
// in-flight connections on cancellation, so Run's own job is limited to
// firing lifecycle hooks around that call — it does not reimplement
// graceful shutdown. Signal handling is the caller's responsibility (via
// signal.NotifyContext in main).
func (a *App) Run(ctx context.Context) error {
	if err := a.hooks.runStart(ctx); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() { errCh <- a.server.ListenAndServe(ctx) }()

	for !a.server.Running() {
		select {
		case err := <-errCh:
			a.hooks.runShutdown(ctx)
			return err
		case <-time.After(time.Millisecond):
		}
	}
	a.hooks.runReady()

	select {
	case err := <-errCh:
		a.hooks.runShutdown(ctx)
		return err
	case <-ctx.Done():
		err := <-errCh
		a.hooks.runShutdown(ctx)
		return err
	}
}
