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

package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/cache"
	"rivaas.dev/corehttp/ws"
)

func TestCollectorScrapesCacheAndHub(t *testing.T) {
	c := cache.New()
	require.NoError(t, c.Set("k", []byte("v"), 200, nil, time.Minute))
	_, _ = c.Get("k")
	_, _ = c.Get("missing")

	hub := ws.New()

	col := NewCollector(WithCache(c), WithHub(hub))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	col.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "corehttp_cache_hits_total 1")
	assert.Contains(t, body, "corehttp_cache_misses_total 1")
	assert.Contains(t, body, "corehttp_websocket_connections 0")
}

func TestCollectorOmitsUnattachedComponents(t *testing.T) {
	col := NewCollector()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	col.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.NotContains(t, rec.Body.String(), "corehttp_cache_hits_total")
}
