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
)

// newTestConnection builds a Connection with no backing net.Conn, for
// exercising room/broadcast bookkeeping without a real handshake.
func newTestConnection(h *Hub, id uint64) *Connection {
	c := &Connection{
		ID:    id,
		hub:   h,
		send:  make(chan message, h.cfg.SendQueueSize),
		done:  make(chan struct{}),
		rooms: make(map[string]struct{}),
	}
	c.setState(StateOpen)
	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
	return c
}

func TestHubJoinLeaveRoom(t *testing.T) {
	h := New()
	c := newTestConnection(h, 1)

	h.JoinRoom(c, "lobby")
	assert.Equal(t, []string{"lobby"}, c.Rooms())

	h.LeaveRoom(c, "lobby")
	assert.Empty(t, c.Rooms())
}

func TestHubBroadcastToRoom(t *testing.T) {
	h := New()
	a := newTestConnection(h, 1)
	b := newTestConnection(h, 2)
	outsider := newTestConnection(h, 3)

	h.JoinRoom(a, "lobby")
	h.JoinRoom(b, "lobby")

	h.BroadcastToRoom("lobby", []byte("hi"))

	select {
	case m := <-a.send:
		assert.Equal(t, []byte("hi"), m.data)
	default:
		t.Fatal("expected a to receive broadcast")
	}
	select {
	case m := <-b.send:
		assert.Equal(t, []byte("hi"), m.data)
	default:
		t.Fatal("expected b to receive broadcast")
	}
	assert.Empty(t, outsider.send)
}

func TestHubBroadcastToRoomExceptExcludesGivenConnection(t *testing.T) {
	h := New()
	a := newTestConnection(h, 1)
	b := newTestConnection(h, 2)

	h.JoinRoom(a, "lobby")
	h.JoinRoom(b, "lobby")

	h.BroadcastToRoomExcept("lobby", []byte("hi"), a.ID)

	assert.Empty(t, a.send)
	require.Len(t, b.send, 1)
}

func TestHubBroadcastReachesAllOpenConnections(t *testing.T) {
	h := New()
	a := newTestConnection(h, 1)
	b := newTestConnection(h, 2)

	h.Broadcast([]byte("ping"))

	require.Len(t, a.send, 1)
	require.Len(t, b.send, 1)
}

func TestHubLeaveRoomDropsEmptyRoom(t *testing.T) {
	h := New()
	c := newTestConnection(h, 1)
	h.JoinRoom(c, "lobby")
	h.LeaveRoom(c, "lobby")

	h.mu.RLock()
	_, exists := h.rooms["lobby"]
	h.mu.RUnlock()
	assert.False(t, exists)
}

func TestHubCount(t *testing.T) {
	h := New()
	newTestConnection(h, 1)
	newTestConnection(h, 2)
	assert.Equal(t, 2, h.Count())
}

func TestUpgradeRequestDetectsWebSocketUpgrade(t *testing.T) {
	req := newUpgradeRequest(map[string]string{"Upgrade": "websocket"})
	assert.True(t, UpgradeRequest(req))

	req2 := newUpgradeRequest(map[string]string{"Upgrade": "h2c"})
	assert.False(t, UpgradeRequest(req2))
}
