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
	"sync"
	"time"

	"rivaas.dev/corehttp/errors"
)

// Store persists Sessions between requests. The reference implementation
// is MemoryStore; external backends (Redis, etc.) can implement this
// interface.
type Store interface {
	// Get returns the session for id, or ok=false if absent or expired.
	Get(id string) (*Session, bool)
	// Save inserts or replaces the session under its own id.
	Save(s *Session) error
	// Delete removes a session by id. Deleting an absent id is not an error.
	Delete(id string) error
	// Cleanup removes entries whose expiry is before now, returning the
	// count removed.
	Cleanup(now time.Time) int
	// Len reports the number of sessions currently held.
	Len() int
}

// MemoryStore is the in-memory reference Store: a single mutex
// protecting the map.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idLength int // expected raw byte length of ids, for rejection of malformed ids
}

// NewMemoryStore constructs an empty MemoryStore. idLength is the expected
// raw id length in bytes (before hex-encoding); Get rejects ids of any
// other decoded length.
func NewMemoryStore(idLength int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		idLength: idLength,
	}
}

func (m *MemoryStore) Get(id string) (*Session, bool) {
	if len(id) != m.idLength*2 {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if !s.Expiry().IsZero() && time.Now().After(s.Expiry()) {
		delete(m.sessions, id)
		return nil, false
	}
	return s, true
}

func (m *MemoryStore) Save(s *Session) error {
	if s == nil {
		return errors.New(errors.KindInternal, "SESSION_NIL", "cannot save a nil session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
	return nil
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Cleanup(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now.After(s.Expiry()) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
