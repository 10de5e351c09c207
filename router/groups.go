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
	"strings"

	"rivaas.dev/corehttp/protocol"
)

// Group is a sub-router mounted under a path prefix with its own
// middleware stack and an optional tag set. Its routes register as
// prefix-joined patterns with the group's tags appended.
type Group struct {
	router *Router
	prefix string
	mw     []HandlerFunc
	tags   []string
}

// Group returns a new Group mounted at prefix, inheriting r's middleware
// plus any passed here.
func (r *Router) Group(prefix string, mw ...HandlerFunc) *Group {
	return &Group{router: r, prefix: strings.TrimSuffix(prefix, "/"), mw: mw}
}

// WithTags attaches OpenAPI tags to every route subsequently registered on
// this group. The matcher ignores tags entirely; they exist only for an
// external OpenAPI serializer to read.
func (g *Group) WithTags(tags ...string) *Group {
	g.tags = append(append([]string{}, g.tags...), tags...)
	return g
}

// Group creates a nested group, concatenating prefixes and middleware.
func (g *Group) Group(prefix string, mw ...HandlerFunc) *Group {
	return &Group{
		router: g.router,
		prefix: g.prefix + strings.TrimSuffix(prefix, "/"),
		mw:     append(append([]HandlerFunc{}, g.mw...), mw...),
		tags:   append([]string{}, g.tags...),
	}
}

func (g *Group) wrap(h HandlerFunc) HandlerFunc {
	if len(g.mw) == 0 {
		return h
	}
	chain := append(append([]HandlerFunc{}, g.mw...), h)
	return func(c *Context) {
		saved := c.handlers
		savedIdx := c.index
		c.handlers = chain
		c.index = -1
		c.Next()
		c.handlers = saved
		c.index = savedIdx
	}
}

func (g *Group) meta() *OpenAPIMeta {
	if len(g.tags) == 0 {
		return nil
	}
	return &OpenAPIMeta{Tags: append([]string{}, g.tags...)}
}

// Handle registers pattern under the group's prefix for method.
func (g *Group) Handle(method protocol.Method, pattern string, h HandlerFunc) error {
	full := g.prefix + normalizeSubPath(pattern)
	return g.router.Handle(method, full, g.wrap(h), g.meta())
}

func normalizeSubPath(pattern string) string {
	if pattern == "" || pattern == "/" {
		return ""
	}
	if !strings.HasPrefix(pattern, "/") {
		return "/" + pattern
	}
	return pattern
}

func (g *Group) GET(pattern string, h HandlerFunc) error {
	return g.Handle(protocol.MethodGet, pattern, h)
}
func (g *Group) POST(pattern string, h HandlerFunc) error {
	return g.Handle(protocol.MethodPost, pattern, h)
}
func (g *Group) PUT(pattern string, h HandlerFunc) error {
	return g.Handle(protocol.MethodPut, pattern, h)
}
func (g *Group) PATCH(pattern string, h HandlerFunc) error {
	return g.Handle(protocol.MethodPatch, pattern, h)
}
func (g *Group) DELETE(pattern string, h HandlerFunc) error {
	return g.Handle(protocol.MethodDelete, pattern, h)
}
