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

package protocol

import "strings"

// kv is one header field as it will be serialized: original-case key,
// original value. Insertion order is preserved for output.
type kv struct {
	key   string
	value string
}

// Header is a case-insensitive, order-preserving, multi-valued header
// collection. It backs both Request and Response.
//
// Lookups fold case; storage and iteration keep the original case and
// insertion order, matching how real HTTP/1.1 peers expect to see their
// headers echoed back.
type Header struct {
	entries []kv
}

// NewHeader returns an empty Header ready for use.
func NewHeader() *Header {
	return &Header{}
}

func foldKey(key string) string {
	return strings.ToLower(key)
}

// Add appends a value under key without removing any existing values.
func (h *Header) Add(key, value string) {
	h.entries = append(h.entries, kv{key: key, value: value})
}

// Set replaces all existing values for key with a single value.
func (h *Header) Set(key, value string) {
	h.Del(key)
	h.Add(key, value)
}

// Get returns the first value stored for key, or "" if absent.
func (h *Header) Get(key string) string {
	fk := foldKey(key)
	for _, e := range h.entries {
		if foldKey(e.key) == fk {
			return e.value
		}
	}
	return ""
}

// Values returns every value stored for key, in insertion order.
func (h *Header) Values(key string) []string {
	fk := foldKey(key)
	var out []string
	for _, e := range h.entries {
		if foldKey(e.key) == fk {
			out = append(out, e.value)
		}
	}
	return out
}

// Has reports whether key has at least one value.
func (h *Header) Has(key string) bool {
	fk := foldKey(key)
	for _, e := range h.entries {
		if foldKey(e.key) == fk {
			return true
		}
	}
	return false
}

// Del removes all values stored for key.
func (h *Header) Del(key string) {
	fk := foldKey(key)
	out := h.entries[:0]
	for _, e := range h.entries {
		if foldKey(e.key) != fk {
			out = append(out, e)
		}
	}
	h.entries = out
}

// Len returns the number of header fields (counting repeated keys
// separately), for diagnostics.
func (h *Header) Len() int {
	return len(h.entries)
}

// Range calls fn for every header field in insertion order. Returning
// false from fn stops iteration early.
func (h *Header) Range(fn func(key, value string) bool) {
	for _, e := range h.entries {
		if !fn(e.key, e.value) {
			return
		}
	}
}

// Clone returns a deep copy, safe to mutate independently of h.
func (h *Header) Clone() *Header {
	out := &Header{entries: make([]kv, len(h.entries))}
	copy(out.entries, h.entries)
	return out
}

// Reset clears all entries, keeping the backing array for reuse (used when
// recycling pooled Request/Response values between requests).
func (h *Header) Reset() {
	h.entries = h.entries[:0]
}
