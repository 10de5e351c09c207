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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildCacheControlOrdering(t *testing.T) {
	got := BuildCacheControl(
		WithPublic(),
		WithMaxAge(time.Minute),
		WithStaleWhileRevalidate(2*time.Minute),
	)
	assert.Equal(t, "public, max-age=60, stale-while-revalidate=120", got)
}

func TestBuildCacheControlNoStoreKeepsMaxAge(t *testing.T) {
	got := BuildCacheControl(WithNoStore(), WithMaxAge(time.Minute))
	assert.Contains(t, got, "no-store")
	assert.Contains(t, got, "max-age=60")
}

func TestBuildCacheControlEmpty(t *testing.T) {
	assert.Equal(t, "", BuildCacheControl())
}

func TestBuildCacheControlRevalidationDirectives(t *testing.T) {
	got := BuildCacheControl(
		WithPrivate(),
		WithNoTransform(),
		WithMustRevalidate(),
		WithProxyRevalidate(),
	)
	assert.Equal(t, "private, no-transform, must-revalidate, proxy-revalidate", got)
}
