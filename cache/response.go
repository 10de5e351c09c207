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

package cache

import (
	"sort"
	"strings"
	"time"

	"rivaas.dev/corehttp/errors"
)

// ErrUncacheable signals that a single-flight build produced a response
// outside the cacheable status set: the builder still gets its own
// response, but nothing is stored and waiters fall back to building
// their own. Never surfaced to clients.
var ErrUncacheable = errors.New(errors.KindInternal, "UNCACHEABLE", "response not cacheable")

// Fingerprint derives the canonical cache key for a response:
// upper-cased method, path, and the response's Vary dimensions — header
// names case-folded and sorted, each paired with the value the request
// carried for it. Two requests that agree on every Vary'd header produce
// the same fingerprint regardless of header order or casing.
func Fingerprint(method, path string, vary map[string]string) string {
	type pair struct{ name, value string }
	pairs := make([]pair, 0, len(vary))
	for name, value := range vary {
		pairs = append(pairs, pair{strings.ToLower(name), value})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	var b strings.Builder
	b.WriteString(strings.ToUpper(method))
	b.WriteByte(' ')
	b.WriteString(path)
	for _, p := range pairs {
		b.WriteByte('\n')
		b.WriteString(p.name)
		b.WriteByte(':')
		b.WriteString(p.value)
	}
	return b.String()
}

// ResponseCache is the HTTP-aware layer over Cache: it derives keys via
// Fingerprint and stores only responses whose method and status are in
// its cacheable sets.
type ResponseCache struct {
	store    *Cache
	methods  map[string]bool
	statuses map[int]bool
	ttl      time.Duration
}

// ResponseOption configures a ResponseCache.
type ResponseOption func(*ResponseCache)

// WithCacheableMethods replaces the set of request methods eligible for
// caching. Default {GET, HEAD}.
func WithCacheableMethods(methods ...string) ResponseOption {
	return func(rc *ResponseCache) {
		rc.methods = make(map[string]bool, len(methods))
		for _, m := range methods {
			rc.methods[strings.ToUpper(m)] = true
		}
	}
}

// WithCacheableStatuses replaces the set of response statuses eligible
// for caching. Default {200}.
func WithCacheableStatuses(statuses ...int) ResponseOption {
	return func(rc *ResponseCache) {
		rc.statuses = make(map[int]bool, len(statuses))
		for _, s := range statuses {
			rc.statuses[s] = true
		}
	}
}

// WithDefaultTTL sets the TTL applied by Store when the caller passes a
// non-positive one. Default 60s.
func WithDefaultTTL(d time.Duration) ResponseOption {
	return func(rc *ResponseCache) { rc.ttl = d }
}

// NewResponseCache wraps store with HTTP-aware keying and cacheability
// filtering.
func NewResponseCache(store *Cache, opts ...ResponseOption) *ResponseCache {
	rc := &ResponseCache{
		store:    store,
		methods:  map[string]bool{"GET": true, "HEAD": true},
		statuses: map[int]bool{200: true},
		ttl:      60 * time.Second,
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Cacheable reports whether a response to method with status is eligible
// for storage.
func (rc *ResponseCache) Cacheable(method string, status int) bool {
	return rc.methods[strings.ToUpper(method)] && rc.statuses[status]
}

// Lookup probes the store for the fingerprint of (method, path, vary).
// Non-cacheable methods miss without touching the store.
func (rc *ResponseCache) Lookup(method, path string, vary map[string]string) (*Entry, bool) {
	if !rc.methods[strings.ToUpper(method)] {
		return nil, false
	}
	return rc.store.Get(Fingerprint(method, path, vary))
}

// Store inserts the response under its fingerprint, applying the default
// TTL when ttl is non-positive. Responses failing Cacheable are dropped
// silently; a body over the store's size limit returns BodyTooLarge.
func (rc *ResponseCache) Store(method, path string, vary map[string]string, body []byte, status int, header map[string][]string, ttl time.Duration) error {
	if !rc.Cacheable(method, status) {
		return nil
	}
	if ttl <= 0 {
		ttl = rc.ttl
	}
	return rc.store.Set(Fingerprint(method, path, vary), body, status, header, ttl)
}

// GetOrBuild coalesces concurrent misses for the fingerprint of
// (method, path, vary) through the store's single-flight group: exactly
// one caller runs build per observed miss, everyone else blocks and
// observes its entry or error. A non-cacheable method runs build
// directly without touching the store; a build producing a
// non-cacheable status fails the flight with ErrUncacheable, handing
// the response back to the builder alone.
func (rc *ResponseCache) GetOrBuild(method, path string, vary map[string]string, build Builder) (*Entry, error) {
	if !rc.methods[strings.ToUpper(method)] {
		body, status, header, _, err := build()
		if err != nil {
			return nil, err
		}
		return &Entry{Body: body, Status: status, Header: header}, nil
	}

	return rc.store.GetOrBuild(Fingerprint(method, path, vary), func() ([]byte, int, map[string][]string, time.Duration, error) {
		body, status, header, ttl, err := build()
		if err != nil {
			return nil, 0, nil, 0, err
		}
		if !rc.statuses[status] {
			return nil, 0, nil, 0, ErrUncacheable
		}
		if ttl <= 0 {
			ttl = rc.ttl
		}
		return body, status, header, ttl, nil
	})
}

// Invalidate removes the entry for (method, path, vary) if present.
func (rc *ResponseCache) Invalidate(method, path string, vary map[string]string) {
	rc.store.Remove(Fingerprint(method, path, vary))
}

// InvalidatePathPrefix removes every entry whose path component begins
// with prefix, via the store's Iterate snapshot.
func (rc *ResponseCache) InvalidatePathPrefix(prefix string) {
	var victims []string
	rc.store.Iterate(func(e *Entry) bool {
		if _, path, ok := strings.Cut(e.Key, " "); ok {
			if line, _, found := strings.Cut(path, "\n"); found {
				path = line
			}
			if strings.HasPrefix(path, prefix) {
				victims = append(victims, e.Key)
			}
		}
		return true
	})
	for _, k := range victims {
		rc.store.Remove(k)
	}
}
