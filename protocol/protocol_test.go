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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseMethod(t *testing.T) {
	assert.Equal(t, MethodGet, ParseMethod("GET"))
	assert.Equal(t, MethodUnknown, ParseMethod("get"))
	assert.Equal(t, MethodUnknown, ParseMethod("FROB"))
	assert.True(t, MethodGet.Safe())
	assert.False(t, MethodPost.Safe())
}

func TestHeaderCaseInsensitiveOrderPreserving(t *testing.T) {
	h := NewHeader()
	h.Add("Content-Type", "application/json")
	h.Add("X-Custom", "a")
	h.Add("x-custom", "b")

	assert.Equal(t, "application/json", h.Get("content-type"))
	assert.Equal(t, []string{"a", "b"}, h.Values("X-Custom"))

	var keys []string
	h.Range(func(k, v string) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []string{"Content-Type", "X-Custom", "x-custom"}, keys)
}

func TestHeaderSetReplaces(t *testing.T) {
	h := NewHeader()
	h.Add("Vary", "Accept")
	h.Add("Vary", "Accept-Encoding")
	h.Set("Vary", "Origin")
	assert.Equal(t, []string{"Origin"}, h.Values("vary"))
}

func TestHTTPDateRoundTrip(t *testing.T) {
	t0 := time.Date(1994, 11, 6, 8, 49, 37, 0, time.UTC)
	s := FormatHTTPDate(t0)
	assert.Equal(t, "Sun, 06 Nov 1994 08:49:37 GMT", s)

	parsed, ok := ParseHTTPDate(s)
	assert.True(t, ok)
	assert.True(t, t0.Equal(parsed))
}

func TestTypeByExtension(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", TypeByExtension("index.html"))
	assert.Equal(t, "application/octet-stream", TypeByExtension("file.unknown"))
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON("application/json"))
	assert.True(t, IsJSON("application/json; charset=utf-8"))
	assert.True(t, IsJSON("application/vnd.api+json"))
	assert.False(t, IsJSON("text/plain"))
}
