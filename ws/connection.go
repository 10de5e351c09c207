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
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// message is one outbound frame queued on a Connection's send channel.
type message struct {
	opcode int
	data   []byte
}

// Connection is one upgraded WebSocket connection. Its send queue is
// owned exclusively by its own writePump goroutine; every other
// interaction goes through the Hub so that room membership and the
// id→connection index stay consistent under concurrent register/close.
type Connection struct {
	ID uint64

	conn *websocket.Conn
	hub  *Hub

	state atomic.Int32

	send chan message
	done chan struct{}

	lastPingSent     atomic.Int64 // unix nanos
	lastPongReceived atomic.Int64

	mu    sync.Mutex
	rooms map[string]struct{}
	meta  map[string]any
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() State {
	return State(c.state.Load())
}

func (c *Connection) setState(s State) {
	c.state.Store(int32(s))
}

// SetMetadata stores an opaque value against key, for handler-to-handler
// bookkeeping (e.g. the authenticated user id behind a connection).
func (c *Connection) SetMetadata(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.meta == nil {
		c.meta = make(map[string]any, 4)
	}
	c.meta[key] = value
}

// Metadata retrieves a value previously stored with SetMetadata.
func (c *Connection) Metadata(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.meta[key]
	return v, ok
}

// Rooms returns a snapshot of the rooms this connection currently belongs
// to.
func (c *Connection) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		out = append(out, r)
	}
	return out
}

// Send enqueues a text message for delivery, non-blocking: a full queue
// closes the connection per the hub's overflow policy rather than
// stalling the caller.
func (c *Connection) Send(data []byte) {
	c.enqueue(message{opcode: websocket.TextMessage, data: data})
}

// SendBinary enqueues a binary message for delivery.
func (c *Connection) SendBinary(data []byte) {
	c.enqueue(message{opcode: websocket.BinaryMessage, data: data})
}

func (c *Connection) enqueue(m message) {
	select {
	case c.send <- m:
	default:
		c.hub.closeOverflowing(c)
	}
}

// Close closes the connection with the given RFC 6455 close code,
// unregistering it from the hub.
func (c *Connection) Close(code int) {
	c.hub.unregister(c, code)
}

// writePump owns conn.Write* calls exclusively: gorilla/websocket forbids
// concurrent writers on the same *websocket.Conn, so every outbound frame —
// data or control — funnels through this goroutine.
func (c *Connection) writePump(cfg *Config) {
	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case m, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(m.opcode, m.data); err != nil {
				c.hub.unregisterAbnormal(c)
				return
			}
		case <-ticker.C:
			c.lastPingSent.Store(time.Now().UnixNano())
			deadline := time.Now().Add(cfg.PongTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.hub.unregisterAbnormal(c)
				return
			}
		}
	}
}

// readPump drives the blocking read loop for one connection until the peer
// closes, a protocol violation occurs, or the pong deadline lapses.
func (c *Connection) readPump(cfg *Config) {
	defer c.hub.unregisterAbnormal(c)

	c.conn.SetReadLimit(int64(cfg.ReadBufferSize) * 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.lastPongReceived.Store(time.Now().UnixNano())
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	})

	for {
		opcode, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if cfg.OnMessage != nil {
			cfg.OnMessage(c, opcode, data)
		}
	}
}
