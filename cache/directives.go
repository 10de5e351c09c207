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
	"fmt"
	"strings"
	"time"
)

// DirectiveOption configures a Cache-Control header value. Directives are
// declared as options and serialized in canonical order by CacheControl.
type DirectiveOption func(*directives)

type directives struct {
	public               bool
	private              bool
	noStore              bool
	noCache              bool
	immutable            bool
	noTransform          bool
	mustRevalidate       bool
	proxyRevalidate      bool
	maxAge               time.Duration
	sMaxAge              time.Duration
	staleWhileRevalidate time.Duration
	staleIfError         time.Duration
}

func WithPublic() DirectiveOption    { return func(d *directives) { d.public = true } }
func WithPrivate() DirectiveOption   { return func(d *directives) { d.private = true } }
func WithNoStore() DirectiveOption   { return func(d *directives) { d.noStore = true } }
func WithNoCache() DirectiveOption   { return func(d *directives) { d.noCache = true } }
func WithImmutable() DirectiveOption { return func(d *directives) { d.immutable = true } }
func WithNoTransform() DirectiveOption {
	return func(d *directives) { d.noTransform = true }
}
func WithMustRevalidate() DirectiveOption {
	return func(d *directives) { d.mustRevalidate = true }
}
func WithProxyRevalidate() DirectiveOption {
	return func(d *directives) { d.proxyRevalidate = true }
}

func WithMaxAge(ttl time.Duration) DirectiveOption {
	return func(d *directives) {
		if ttl > 0 {
			d.maxAge = ttl
		}
	}
}

func WithSharedMaxAge(ttl time.Duration) DirectiveOption {
	return func(d *directives) {
		if ttl > 0 {
			d.sMaxAge = ttl
		}
	}
}

func WithStaleWhileRevalidate(ttl time.Duration) DirectiveOption {
	return func(d *directives) {
		if ttl > 0 {
			d.staleWhileRevalidate = ttl
		}
	}
}

func WithStaleIfError(ttl time.Duration) DirectiveOption {
	return func(d *directives) {
		if ttl > 0 {
			d.staleIfError = ttl
		}
	}
}

// BuildCacheControl renders a Cache-Control header value from the given
// options, in a fixed, deterministic directive order.
func BuildCacheControl(opts ...DirectiveOption) string {
	d := &directives{}
	for _, opt := range opts {
		opt(d)
	}

	parts := make([]string, 0, 9)
	if d.public {
		parts = append(parts, "public")
	}
	if d.private {
		parts = append(parts, "private")
	}
	if d.noStore {
		parts = append(parts, "no-store")
	}
	if d.noCache {
		parts = append(parts, "no-cache")
	}
	if d.noTransform {
		parts = append(parts, "no-transform")
	}
	if d.mustRevalidate {
		parts = append(parts, "must-revalidate")
	}
	if d.proxyRevalidate {
		parts = append(parts, "proxy-revalidate")
	}
	if d.maxAge > 0 {
		parts = append(parts, fmt.Sprintf("max-age=%d", int(d.maxAge.Seconds())))
	}
	if d.sMaxAge > 0 {
		parts = append(parts, fmt.Sprintf("s-maxage=%d", int(d.sMaxAge.Seconds())))
	}
	if d.staleWhileRevalidate > 0 {
		parts = append(parts, fmt.Sprintf("stale-while-revalidate=%d", int(d.staleWhileRevalidate.Seconds())))
	}
	if d.staleIfError > 0 {
		parts = append(parts, fmt.Sprintf("stale-if-error=%d", int(d.staleIfError.Seconds())))
	}
	if d.immutable {
		parts = append(parts, "immutable")
	}

	return strings.Join(parts, ", ")
}
