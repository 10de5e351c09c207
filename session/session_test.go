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

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFlashOneShot(t *testing.T) {
	s := newSession("abc", time.Hour)
	s.SetFlash("notice", "saved")

	v, ok := s.GetFlash("notice")
	require.True(t, ok)
	assert.Equal(t, "saved", v)

	_, ok = s.GetFlash("notice")
	assert.False(t, ok, "flash must not be readable a second time")
}

func TestSessionSetGetDelete(t *testing.T) {
	s := newSession("abc", time.Hour)
	s.Set("user_id", "42")

	v, ok := s.Get("user_id")
	require.True(t, ok)
	assert.Equal(t, "42", v)

	s.Delete("user_id")
	_, ok = s.Get("user_id")
	assert.False(t, ok)
}

func TestSessionCSRFTokenStableAndValidates(t *testing.T) {
	s := newSession("abc", time.Hour)
	tok1, err := s.CSRFToken()
	require.NoError(t, err)
	require.NotEmpty(t, tok1)

	tok2, err := s.CSRFToken()
	require.NoError(t, err)
	assert.Equal(t, tok1, tok2, "token must be stable across calls")

	assert.True(t, s.ValidateCSRF(tok1))
	assert.False(t, s.ValidateCSRF("wrong-token"))
	assert.False(t, s.ValidateCSRF(""))
}

func TestMemoryStoreRejectsWrongLengthID(t *testing.T) {
	store := NewMemoryStore(32)
	s := newSession("short", time.Hour)
	require.NoError(t, store.Save(s))

	_, ok := store.Get("short")
	assert.False(t, ok, "store must reject ids of unexpected length")
}

func TestMemoryStoreCleanupRemovesExpired(t *testing.T) {
	store := NewMemoryStore(4)
	id, err := generateID(4)
	require.NoError(t, err)

	s := newSession(id, -time.Second) // already expired
	require.NoError(t, store.Save(s))
	assert.Equal(t, 1, store.Len())

	removed := store.Cleanup(time.Now())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, store.Len())
}

func TestSessionCloneCarriesDataToNewID(t *testing.T) {
	s := newSession("old-id", time.Hour)
	s.Set("cart", "3-items")

	clone := s.clone("new-id", time.Hour)
	assert.Equal(t, "new-id", clone.ID())
	v, ok := clone.Get("cart")
	require.True(t, ok)
	assert.Equal(t, "3-items", v)
}

func TestBuildSetCookieAttributes(t *testing.T) {
	cfg := New(
		WithCookieName("sid"),
		WithPath("/app"),
		WithSecure(true),
		WithHTTPOnly(true),
		WithSameSite(SameSiteStrict),
	)
	header := buildSetCookie(cfg, "value123", time.Hour, false)
	assert.Contains(t, header, "sid=value123")
	assert.Contains(t, header, "Path=/app")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "SameSite=Strict")
}

func TestBuildSetCookieDelete(t *testing.T) {
	cfg := New(WithCookieName("sid"))
	header := buildSetCookie(cfg, "irrelevant", 0, true)
	assert.Contains(t, header, "sid=")
	assert.Contains(t, header, "Max-Age=0")
}

func TestParseCookieHeader(t *testing.T) {
	v, ok := parseCookieHeader("a=1; sid=deadbeef; other=2", "sid")
	require.True(t, ok)
	assert.Equal(t, "deadbeef", v)

	_, ok = parseCookieHeader("a=1", "sid")
	assert.False(t, ok)
}
