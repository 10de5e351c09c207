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

import "crypto/subtle"

// csrfValueKey is the session value key the CSRF token is stored under.
const csrfValueKey = "_csrf"

// CSRFToken returns the session's CSRF token, generating and persisting
// one on first use.
func (s *Session) CSRFToken() (string, error) {
	s.mu.Lock()
	existing, ok := s.values[csrfValueKey]
	s.mu.Unlock()
	if ok && existing != "" {
		return existing, nil
	}

	token, err := generateID(32)
	if err != nil {
		return "", err
	}
	s.Set(csrfValueKey, token)
	return token, nil
}

// ValidateCSRF reports whether candidate matches the session's current
// CSRF token, using a constant-time comparison to avoid timing side
// channels.
func (s *Session) ValidateCSRF(candidate string) bool {
	if candidate == "" {
		return false
	}
	s.mu.Lock()
	token, ok := s.values[csrfValueKey]
	s.mu.Unlock()
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(candidate)) == 1
}
