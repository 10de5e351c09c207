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

package ws

import (
	"crypto/sha1"
	"encoding/base64"
	"slices"
	"strings"

	"rivaas.dev/corehttp/errors"
	"rivaas.dev/corehttp/router"
)

// Upgrade is a validated handshake ticket: the client's
// Sec-WebSocket-Key and the Sec-WebSocket-Accept value the 101 response
// must carry. It holds plain strings copied out of the request, so it
// stays valid inside a Context.Hijack closure after the pooled Request
// has been released.
type Upgrade struct {
	Key    string
	Accept string
}

// ValidateUpgrade checks req against the RFC 6455 handshake
// requirements and, on success, returns the Upgrade ticket Serve commits
// with. It does not write anything to the connection —
// callers decide whether to commit to the upgrade (via Context.Hijack) or
// surface the error as a normal HTTP response.
func (h *Hub) ValidateUpgrade(req *router.Request) (Upgrade, error) {
	if !headerContainsToken(req.Header.Get("Upgrade"), "websocket") {
		return Upgrade{}, errors.New(errors.KindClientProtocol, errors.CodeWebSocketUpgradeFailed,
			"Upgrade header must be \"websocket\"")
	}
	if !headerContainsToken(req.Header.Get("Connection"), "upgrade") {
		return Upgrade{}, errors.New(errors.KindClientProtocol, errors.CodeWebSocketUpgradeFailed,
			"Connection header must include \"Upgrade\"")
	}
	key := req.Header.Get("Sec-WebSocket-Key")
	if decoded, err := base64.StdEncoding.DecodeString(key); err != nil || len(decoded) != 16 {
		return Upgrade{}, errors.New(errors.KindClientProtocol, errors.CodeWebSocketUpgradeFailed,
			"Sec-WebSocket-Key must be 16 base64-encoded bytes")
	}
	if len(h.cfg.AllowedOrigins) > 0 {
		origin := req.Header.Get("Origin")
		if !slices.Contains(h.cfg.AllowedOrigins, origin) {
			return Upgrade{}, errors.New(errors.KindClientProtocol, errors.CodeWebSocketUpgradeFailed,
				"origin not allowed")
		}
	}
	return Upgrade{Key: key, Accept: acceptKey(key)}, nil
}

// acceptKey computes RFC 6455's Sec-WebSocket-Accept value: the base64
// encoding of the SHA-1 digest of the client key concatenated with the
// fixed GUID.
func acceptKey(clientKey string) string {
	sum := sha1.Sum([]byte(clientKey + acceptGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// headerContainsToken reports whether value, interpreted as a
// comma-separated list, contains token (case-insensitively, trimming
// surrounding whitespace per each item).
func headerContainsToken(value, token string) bool {
	for _, part := range strings.Split(value, ",") {
		if strings.EqualFold(strings.TrimSpace(part), token) {
			return true
		}
	}
	return false
}
