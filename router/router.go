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

// Package router implements the static+parameterized route matcher and
// the ordered, composable middleware chain, plus the per-request Context
// that ties them together.
package router

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"rivaas.dev/corehttp/logging"
	"rivaas.dev/corehttp/protocol"
)

// OpenAPIMeta is optional per-route metadata. corehttp does not
// serialize OpenAPI documents itself; this is just a place for a future
// serializer to read from.
type OpenAPIMeta struct {
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
}

// Route is the registration-time record for one handler binding.
type Route struct {
	Method  protocol.Method
	Pattern string
	Handler HandlerFunc
	OpenAPI *OpenAPIMeta
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the structured logger used for diagnostics (panics
// recovered without a registered recovery middleware).
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// NotFoundHandler overrides the default JSON 404 body.
func NotFoundHandler(h HandlerFunc) Option {
	return func(r *Router) { r.notFound = h }
}

// MethodNotAllowedHandler overrides the default 405 body.
func MethodNotAllowedHandler(h HandlerFunc) Option {
	return func(r *Router) { r.methodNotAllowed = h }
}

// Router matches (method, path) to a handler chain and runs the configured
// middleware around it. Safe for concurrent ServeHTTP-style dispatch once
// Freeze has been called (implicitly, on first Dispatch); registration
// itself is single-threaded.
type Router struct {
	mu     sync.Mutex
	frozen bool
	trees  methodTrees
	mw     []HandlerFunc
	routes []Route // registration order, for diagnostics/iteration

	logger           *slog.Logger
	notFound         HandlerFunc
	methodNotAllowed HandlerFunc

	panicCount atomic.Uint64
}

// New constructs a Router with the given options.
func New(opts ...Option) *Router {
	r := &Router{
		trees: make(methodTrees),
	}
	r.logger = logging.Noop()
	r.notFound = defaultNotFound
	r.methodNotAllowed = defaultMethodNotAllowed
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultNotFound(c *Context) {
	_ = c.JSON(protocol.StatusNotFound, map[string]string{"error": "Not Found"})
}

func defaultMethodNotAllowed(c *Context) {
	_ = c.JSON(protocol.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
}

// Use appends global middleware, executed in registration order on the
// request path and reverse order on the response path. Must be
// called before the router starts serving.
func (r *Router) Use(mw ...HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic("router: Use called after Freeze")
	}
	r.mw = append(r.mw, mw...)
}

// Handle registers pattern for method. Returns an errors.Error
// (KindRouting, CodeRouteConflict) if the same (method,
// pattern) is already registered, or if it exceeds the 8-parameter cap.
func (r *Router) Handle(method protocol.Method, pattern string, handler HandlerFunc, meta ...*OpenAPIMeta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		panic("router: Handle called after Freeze")
	}

	t := r.trees.treeFor(method)
	if err := t.add(pattern, []HandlerFunc{handler}); err != nil {
		return err
	}

	rt := Route{Method: method, Pattern: pattern, Handler: handler}
	if len(meta) > 0 {
		rt.OpenAPI = meta[0]
	}
	r.routes = append(r.routes, rt)
	return nil
}

// GET/POST/PUT/PATCH/DELETE are sugar over Handle for the common methods.
func (r *Router) GET(pattern string, h HandlerFunc) error {
	return r.Handle(protocol.MethodGet, pattern, h)
}
func (r *Router) POST(pattern string, h HandlerFunc) error {
	return r.Handle(protocol.MethodPost, pattern, h)
}
func (r *Router) PUT(pattern string, h HandlerFunc) error {
	return r.Handle(protocol.MethodPut, pattern, h)
}
func (r *Router) PATCH(pattern string, h HandlerFunc) error {
	return r.Handle(protocol.MethodPatch, pattern, h)
}
func (r *Router) DELETE(pattern string, h HandlerFunc) error {
	return r.Handle(protocol.MethodDelete, pattern, h)
}
func (r *Router) HEAD(pattern string, h HandlerFunc) error {
	return r.Handle(protocol.MethodHead, pattern, h)
}
func (r *Router) OPTIONS(pattern string, h HandlerFunc) error {
	return r.Handle(protocol.MethodOptions, pattern, h)
}

// Freeze marks route registration complete. Idempotent. Called
// automatically by Dispatch on first use.
func (r *Router) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Routes returns a snapshot of all registered routes, in registration
// order (used by OpenAPI/diagnostics tooling that lives outside core).
func (r *Router) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Dispatch matches req against the registered routes and runs the full
// middleware chain. The caller MUST call the returned Context's Release
// method after it has finished reading Context.Response (e.g. after the
// serializer has copied the body onto the wire) — this is what frees the
// per-request arena.
//
// If the chain panics, Dispatch recovers it itself — the last-resort
// backstop when no recovery middleware is mounted, or when the panic
// happens in a middleware registered before it. The worker closes the
// connection and the incident is counted; the server keeps serving.
// The recovered
// Context is marked Abandoned so the server closes the connection
// instead of serializing a half-built response, and PanicCount is
// incremented so the incident is observable without crashing the
// process. A mounted middleware/recovery still runs first and converts
// the panic into a normal 500 response, since its own recover happens
// further down the call stack before this one ever sees the panic.
func (r *Router) Dispatch(req *Request) *Context {
	r.Freeze()

	c := acquireContext(r)
	c.Request = req

	handlers, matched := r.resolve(req, c)
	c.handlers = append(c.handlers, r.mw...)
	c.handlers = append(c.handlers, handlers...)
	_ = matched

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.panicCount.Add(1)
				c.Response.Abandon()
				r.logger.Error("panic in handler chain; closing connection",
					"panic", rec, "method", req.Method.String(), "path", req.Path)
			}
		}()
		c.Next()
	}()
	return c
}

// PanicCount returns the number of requests whose handler chain panicked
// all the way out without being caught by a mounted recovery middleware.
func (r *Router) PanicCount() uint64 { return r.panicCount.Load() }

// resolve finds the handler chain for req, returning the not-found or
// method-not-allowed handler when nothing matches.
func (r *Router) resolve(req *Request, c *Context) ([]HandlerFunc, bool) {
	t, hasMethodTree := r.trees[req.Method]
	if hasMethodTree {
		if handlers, ok := t.match(req.Path, c); ok {
			return handlers, true
		}
	}

	// 405 vs 404: if another method has this exact path registered,
	// it's a method mismatch, not a missing route.
	for m, other := range r.trees {
		if m == req.Method {
			continue
		}
		probe := &Context{}
		if _, ok := other.match(req.Path, probe); ok {
			return []HandlerFunc{r.methodNotAllowed}, false
		}
	}
	return []HandlerFunc{r.notFound}, false
}
