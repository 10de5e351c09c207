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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

func newUpgradeRequest(headers map[string]string) *router.Request {
	h := protocol.NewHeader()
	for k, v := range headers {
		h.Set(k, v)
	}
	return &router.Request{Header: h}
}

func TestValidateUpgradeAccepts(t *testing.T) {
	hub := New()
	req := newUpgradeRequest(map[string]string{
		"Upgrade":           "websocket",
		"Connection":        "Upgrade",
		"Sec-WebSocket-Key": "dGhlIHNhbXBsZSBub25jZQ==",
	})

	up, err := hub.ValidateUpgrade(req)
	require.NoError(t, err)
	assert.Equal(t, "dGhlIHNhbXBsZSBub25jZQ==", up.Key)
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", up.Accept)
}

func TestValidateUpgradeRejectsMissingUpgradeHeader(t *testing.T) {
	hub := New()
	req := newUpgradeRequest(map[string]string{
		"Connection":        "Upgrade",
		"Sec-WebSocket-Key": "dGhlIHNhbXBsZSBub25jZQ==",
	})

	_, err := hub.ValidateUpgrade(req)
	assert.Error(t, err)
}

func TestValidateUpgradeRejectsMissingConnectionToken(t *testing.T) {
	hub := New()
	req := newUpgradeRequest(map[string]string{
		"Upgrade":           "websocket",
		"Connection":        "keep-alive",
		"Sec-WebSocket-Key": "dGhlIHNhbXBsZSBub25jZQ==",
	})

	_, err := hub.ValidateUpgrade(req)
	assert.Error(t, err)
}

func TestValidateUpgradeRejectsMissingKey(t *testing.T) {
	hub := New()
	req := newUpgradeRequest(map[string]string{
		"Upgrade":    "websocket",
		"Connection": "Upgrade",
	})

	_, err := hub.ValidateUpgrade(req)
	assert.Error(t, err)
}

func TestValidateUpgradeRejectsMalformedKey(t *testing.T) {
	hub := New()
	req := newUpgradeRequest(map[string]string{
		"Upgrade":           "websocket",
		"Connection":        "Upgrade",
		"Sec-WebSocket-Key": "not-base64!",
	})

	_, err := hub.ValidateUpgrade(req)
	assert.Error(t, err)
}

func TestValidateUpgradeEnforcesAllowedOrigins(t *testing.T) {
	hub := New(WithAllowedOrigins("https://example.com"))
	req := newUpgradeRequest(map[string]string{
		"Upgrade":           "websocket",
		"Connection":        "Upgrade",
		"Sec-WebSocket-Key": "dGhlIHNhbXBsZSBub25jZQ==",
		"Origin":            "https://evil.example",
	})

	_, err := hub.ValidateUpgrade(req)
	assert.Error(t, err)

	req.Header.Set("Origin", "https://example.com")
	_, err = hub.ValidateUpgrade(req)
	assert.NoError(t, err)
}

func TestHeaderContainsTokenIsCaseInsensitiveAndTrimsWhitespace(t *testing.T) {
	assert.True(t, headerContainsToken("Keep-Alive,  Upgrade", "upgrade"))
	assert.False(t, headerContainsToken("keep-alive", "upgrade"))
}
