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

package app

import (
	"context"
	"fmt"
	"sync"
)

// Hooks manages application lifecycle callbacks. corehttp's router has no
// OpenAPI/route registration step worth hooking into, so only the three
// callbacks that bracket Run's own lifecycle exist.
type Hooks struct {
	mu         sync.Mutex
	onStart    []func(context.Context) error // sequential, stops on first error
	onReady    []func()                      // fired once the listener is accepting
	onShutdown []func(context.Context)       // LIFO, fired as Run returns
}

// OnStart registers a hook run sequentially before the server starts
// listening. If any hook returns an error, Run aborts before accepting a
// single connection.
func (h *Hooks) OnStart(fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStart = append(h.onStart, fn)
}

// OnReady registers a hook run once ListenAndServe has begun accepting
// connections. Errors are not possible by design — readiness hooks are
// for things like registering with service discovery, not initialization
// that can fail.
func (h *Hooks) OnReady(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReady = append(h.onReady, fn)
}

// OnShutdown registers a hook run, in reverse registration order, as Run
// returns — after the server has stopped accepting new connections but
// while ctx (or its parent) is still valid for cleanup I/O.
func (h *Hooks) OnShutdown(fn func(context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onShutdown = append(h.onShutdown, fn)
}

func (h *Hooks) runStart(ctx context.Context) error {
	h.mu.Lock()
	hooks := make([]func(context.Context) error, len(h.onStart))
	copy(hooks, h.onStart)
	h.mu.Unlock()

	for i, hook := range hooks {
		if err := hook(ctx); err != nil {
			return fmt.Errorf("app: OnStart hook %d failed: %w", i, err)
		}
	}
	return nil
}

func (h *Hooks) runReady() {
	h.mu.Lock()
	hooks := make([]func(), len(h.onReady))
	copy(hooks, h.onReady)
	h.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

func (h *Hooks) runShutdown(ctx context.Context) {
	h.mu.Lock()
	hooks := make([]func(context.Context), len(h.onShutdown))
	copy(hooks, h.onShutdown)
	h.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i](ctx)
	}
}
