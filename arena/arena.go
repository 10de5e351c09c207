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

// Package arena provides a per-request bump allocator.
//
// One Arena is acquired per accepted connection's in-flight request and
// released exactly once, on every exit path, when the response has been
// flushed. Everything allocated through an Arena — header storage, body
// buffers, path-parameter strings, GraphQL resolver intermediates — is
// freed in a single O(1) operation (Reset) instead of being individually
// garbage collected. Data that must outlive the request (cache entries,
// session writes, broadcast buffers) must be copied out with Keep before
// the arena is released.
package arena

import "sync"

// defaultBlockSize is the size of each growth block. Chosen to cover a
// typical small JSON request/response pair without a second allocation.
const defaultBlockSize = 4096

// Arena is a bump allocator scoped to a single request's lifetime.
//
// Arena is NOT safe for concurrent use. A request is handled by exactly one
// worker goroutine at a time (see package server), so no locking is needed
// on the hot path.
type Arena struct {
	blocks   [][]byte
	cur      []byte // the active growth block
	off      int    // allocation offset within cur
	kept     int    // number of Keep'd allocations, for diagnostics
	released bool
}

// pool recycles Arena structs (and their first block) across requests,
// mirroring the Context-pooling pattern used by the router package.
var pool = sync.Pool{
	New: func() any {
		return &Arena{}
	},
}

// Acquire returns an Arena from the pool, ready for use. The caller MUST
// call Release exactly once, on every exit path (including panics recovered
// by middleware), or pooled memory leaks out of rotation.
func Acquire() *Arena {
	a, ok := pool.Get().(*Arena)
	if !ok {
		panic("arena: pool corruption - non-Arena type returned")
	}
	a.released = false
	if a.cur == nil {
		a.cur = make([]byte, defaultBlockSize)
	}
	return a
}

// Release frees all allocations made through a in one step and returns the
// Arena to the pool. Calling Release twice is a no-op; Alloc,
// AppendString and AppendBytes panic after Release.
func (a *Arena) Release() {
	if a.released {
		return
	}
	a.Reset()
	a.released = true
	pool.Put(a)
}

// Reset frees all allocations without returning the Arena to the pool. Used
// when a caller wants to reuse the same Arena value for a follow-up phase
// (rare; most callers should just Acquire/Release per request).
func (a *Arena) Reset() {
	a.off = 0
	a.kept = 0
	if len(a.blocks) > 0 {
		// Keep the largest block as the new active block to amortize
		// growth for requests with similarly sized bodies.
		largest := a.cur
		for _, b := range a.blocks {
			if len(b) > len(largest) {
				largest = b
			}
		}
		a.cur = largest
		a.blocks = a.blocks[:0]
	}
}

func (a *Arena) checkAlive() {
	if a.released {
		panic("arena: use after Release")
	}
}

// Alloc returns a zeroed byte slice of length n backed by the arena. The
// slice is only valid until Release or Reset is called.
func (a *Arena) Alloc(n int) []byte {
	a.checkAlive()
	if n < 0 {
		panic("arena: negative allocation size")
	}
	if n == 0 {
		return nil
	}
	if a.off+n > len(a.cur) {
		a.grow(n)
	}
	b := a.cur[a.off : a.off+n : a.off+n]
	a.off += n
	for i := range b {
		b[i] = 0
	}
	return b
}

// grow appends the current block to the retired list and allocates a new
// active block large enough to satisfy the pending request.
func (a *Arena) grow(want int) {
	if len(a.cur) > 0 {
		a.blocks = append(a.blocks, a.cur)
	}
	size := defaultBlockSize
	for size < want {
		size *= 2
	}
	a.cur = make([]byte, size)
	a.off = 0
}

// AppendString copies s into arena-owned memory and returns it as a string.
// Use this for header values, path segments, and other small strings that
// must not retain a reference into the underlying read buffer.
func (a *Arena) AppendString(s string) string {
	a.checkAlive()
	if s == "" {
		return ""
	}
	b := a.Alloc(len(s))
	copy(b, s)
	return string(b)
}

// AppendBytes copies src into arena-owned memory.
func (a *Arena) AppendBytes(src []byte) []byte {
	a.checkAlive()
	if len(src) == 0 {
		return nil
	}
	b := a.Alloc(len(src))
	copy(b, src)
	return b
}

// Keep copies b into a longer-lived allocation (the Go heap, subject to
// normal GC) and returns it. Call this for any value that must survive past
// Release — a cached response body, session data, a WebSocket broadcast
// buffer. Arena memory is invalid the instant Release runs, so anything
// longer-lived must be copied out through here first.
func (a *Arena) Keep(b []byte) []byte {
	a.kept++
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// KeepString is Keep for strings; since Go strings are already immutable,
// this just forces a copy independent of arena-owned backing memory.
func (a *Arena) KeepString(s string) string {
	a.kept++
	return string([]byte(s))
}

// Kept reports how many values have been escaped via Keep/KeepString. Used
// by diagnostics/tests to catch handlers that accidentally retain arena
// memory without going through Keep.
func (a *Arena) Kept() int {
	return a.kept
}

// Len reports the number of bytes currently allocated in the active block,
// for diagnostics and tests.
func (a *Arena) Len() int {
	return a.off
}
