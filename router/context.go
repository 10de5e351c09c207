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

package router

import (
	"net"
	"sync"

	"rivaas.dev/corehttp/arena"
)

// maxParams bounds path-parameter captures per route, keeping the param
// array small and fixed-capacity.
const maxParams = 8

// HandlerFunc is a request handler or middleware step. Middlewares
// distinguish themselves from terminal handlers purely by calling
// c.Next(); the Response is built incrementally on c.Response rather
// than returned.
type HandlerFunc func(c *Context)

// NoContext adapts a context-free handler — one that computes its
// response from nothing but its own state — to the HandlerFunc shape.
// The variant is resolved here at registration time; dispatch never
// reflects. The returned body is written as JSON.
func NoContext(fn func() (status int, body any)) HandlerFunc {
	return func(c *Context) { _ = c.JSON(fn()) }
}

type paramEntry struct {
	key   string
	value string
}

// Context carries all per-request state: the parsed Request, an Arena for
// transient allocations, captured path parameters, and an opaque
// middleware-to-handler scratch map.
//
// ⚠️ THREAD SAFETY: a Context is bound to the single worker goroutine
// processing its request. Do not retain a Context, or anything allocated
// from its Arena, beyond the handler's synchronous execution — see
// arena.Arena.Keep for the escape hatch when data must outlive the request.
type Context struct {
	Request  *Request
	Response *Response
	Arena    *arena.Arena

	params    [maxParams]paramEntry
	numParams int

	store map[string]any

	handlers []HandlerFunc
	index    int

	router *Router

	aborted bool

	// leaked marks a Context whose handler chain is still running in a
	// background goroutine after the owning worker gave up waiting on it
	// (see middleware/timeout). A leaked Context is never returned to the
	// pool or have its Arena released, since the background goroutine may
	// still be reading/writing it — it is simply garbage collected once
	// that goroutine finally exits.
	leaked bool
}

// Leak detaches c from the Context/Arena pools. After calling Leak, a
// later call to Release becomes a no-op. Used by middleware that gives up
// waiting on a handler without being able to safely stop it.
func (c *Context) Leak() {
	c.leaked = true
}

var contextPool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquireContext(r *Router) *Context {
	c, ok := contextPool.Get().(*Context)
	if !ok {
		panic("router: pool corruption - contextPool returned non-Context type")
	}
	c.router = r
	c.Arena = arena.Acquire()
	if c.Request == nil {
		c.Request = &Request{}
	}
	c.Request.reset()
	if c.Response == nil {
		c.Response = newResponse()
	}
	c.Response.reset()
	c.numParams = 0
	c.index = -1
	c.handlers = c.handlers[:0]
	c.aborted = false
	c.leaked = false
	if c.store != nil {
		clear(c.store)
	}
	return c
}

func releaseContext(c *Context) {
	if c.leaked {
		return
	}
	c.Arena.Release()
	c.router = nil
	contextPool.Put(c)
}

// Release returns the Context (and its Arena) to their pools. Callers of
// Router.Dispatch MUST call this exactly once, after they are done
// reading c.Response — typically right after the serializer has copied
// the response onto the wire.
func (c *Context) Release() {
	releaseContext(c)
}

// addParam records a path-parameter capture. Silently drops captures past
// maxParams — route registration validates capture counts ahead of time so
// this should never trigger in practice.
func (c *Context) addParam(key, value string) {
	if c.numParams >= maxParams {
		return
	}
	c.params[c.numParams] = paramEntry{key: key, value: value}
	c.numParams++
}

// Param returns the raw, undecoded path-parameter value for name, or "".
func (c *Context) Param(name string) string {
	for i := 0; i < c.numParams; i++ {
		if c.params[i].key == name {
			return c.params[i].value
		}
	}
	return ""
}

// Set stores a value in the per-request scratch map, for middleware-to-
// handler data passing.
func (c *Context) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any, 4)
	}
	c.store[key] = value
}

// Get retrieves a value previously stored with Set.
func (c *Context) Get(key string) (any, bool) {
	if c.store == nil {
		return nil, false
	}
	v, ok := c.store[key]
	return v, ok
}

// MustGet retrieves a value previously stored with Set, or returns nil.
func (c *Context) MustGet(key string) any {
	v, _ := c.Get(key)
	return v
}

// Next invokes the next handler in the chain. Middleware calls Next to
// continue the pipeline; not calling it short-circuits the remaining
// chain.
// A middleware may invoke Next at most once; corehttp does not defend
// against double invocation beyond normal index bounds.
func (c *Context) Next() {
	c.index++
	for c.index < len(c.handlers) && !c.aborted {
		c.handlers[c.index](c)
		c.index++
	}
}

// Abort stops the remaining middleware chain from running after the
// current handler returns, without affecting a Response already written.
func (c *Context) Abort() {
	c.aborted = true
}

// JSON is a convenience forwarding to Response.JSON.
func (c *Context) JSON(status int, v any) error {
	return c.Response.JSON(status, v)
}

// Text is a convenience forwarding to Response.Text.
func (c *Context) Text(status int, body string) {
	c.Response.Text(status, body)
}

// Hijack is a convenience forwarding to Response.Hijack.
func (c *Context) Hijack(fn func(net.Conn)) {
	c.Response.Hijack(fn)
}
