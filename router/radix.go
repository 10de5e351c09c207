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

	"rivaas.dev/corehttp/errors"
	"rivaas.dev/corehttp/protocol"
)

// edge is a per-segment static child. Linear scan; route trees are small
// enough that this beats map hashing.
type edge struct {
	label string
	node  *node
}

// paramChild captures a single {name} segment.
type paramChild struct {
	key  string
	node *node
}

// node is one segment of the route tree.
//
// Matching order at a node is static edges first, then the param child,
// so /users/me wins over /users/{id}.
type node struct {
	handlers []HandlerFunc
	pattern  string // full registered pattern, for diagnostics
	edges    []edge
	param    *paramChild
}

func (n *node) findStatic(segment string) *node {
	for i := range n.edges {
		if n.edges[i].label == segment {
			return n.edges[i].node
		}
	}
	return nil
}

func (n *node) findOrCreateStatic(segment string) *node {
	if c := n.findStatic(segment); c != nil {
		return c
	}
	child := &node{}
	n.edges = append(n.edges, edge{label: segment, node: child})
	return child
}

func (n *node) findOrCreateParam(key string) (*node, error) {
	if n.param != nil {
		if n.param.key != key {
			return nil, errors.New(errors.KindRouting, errors.CodeRouteConflict,
				"conflicting parameter name at same depth: {"+n.param.key+"} vs {"+key+"}")
		}
		return n.param.node, nil
	}
	child := &node{}
	n.param = &paramChild{key: key, node: child}
	return child, nil
}

// tree is the per-method root of a route trie.
type tree struct {
	root *node
}

func newTree() *tree {
	return &tree{root: &node{}}
}

// splitPath splits a route pattern into non-empty segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// add registers handlers at pattern. Returns RouteConflict if the exact
// pattern is already registered, or if a parameter name conflicts with an
// existing capture at the same depth.
func (t *tree) add(pattern string, handlers []HandlerFunc) error {
	segments := splitPath(pattern)

	if paramCount(segments) > maxParams {
		return errors.New(errors.KindRouting, errors.CodeRouteConflict,
			"route exceeds maximum of 8 path parameters: "+pattern)
	}

	n := t.root
	for _, seg := range segments {
		if isParamSegment(seg) {
			key := seg[1 : len(seg)-1]
			child, err := n.findOrCreateParam(key)
			if err != nil {
				return err
			}
			n = child
			continue
		}
		n = n.findOrCreateStatic(seg)
	}

	if n.handlers != nil {
		return errors.New(errors.KindRouting, errors.CodeRouteConflict,
			"route already registered: "+pattern)
	}
	n.handlers = handlers
	n.pattern = pattern
	return nil
}

func isParamSegment(seg string) bool {
	return len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}'
}

func paramCount(segments []string) int {
	n := 0
	for _, s := range segments {
		if isParamSegment(s) {
			n++
		}
	}
	return n
}

// match walks path against the tree, preferring static children over the
// parameter branch at every depth. Captured
// parameters are written directly into c via addParam to avoid an
// intermediate allocation.
func (t *tree) match(path string, c *Context) (handlers []HandlerFunc, ok bool) {
	segments := splitPath(path)
	n := t.root
	for _, seg := range segments {
		if child := n.findStatic(seg); child != nil {
			n = child
			continue
		}
		if n.param != nil {
			c.addParam(n.param.key, seg)
			n = n.param.node
			continue
		}
		return nil, false
	}
	if n.handlers == nil {
		return nil, false
	}
	return n.handlers, true
}

// router keeps one tree per method.
type methodTrees map[protocol.Method]*tree

func (mt methodTrees) treeFor(m protocol.Method) *tree {
	t, ok := mt[m]
	if !ok {
		t = newTree()
		mt[m] = t
	}
	return t
}
