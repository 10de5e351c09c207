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
	"bufio"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"rivaas.dev/corehttp/router"
)

// Hub is the connection registry and room index. One Hub
// serves every upgraded connection for a server; Serve is the entry point
// the acceptor hands a hijacked net.Conn to.
type Hub struct {
	cfg *Config

	mu    sync.RWMutex
	conns map[uint64]*Connection
	rooms map[string]map[uint64]*Connection

	nextID atomic.Uint64
}

// New constructs a Hub. Call ValidateUpgrade from a route handler to
// decide whether to commit to a connection, then Context.Hijack into
// Serve with the returned ticket.
func New(opts ...Option) *Hub {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Hub{
		cfg:   cfg,
		conns: make(map[uint64]*Connection),
		rooms: make(map[string]map[uint64]*Connection),
	}
}

// Count returns the number of currently open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// hijackWriter adapts a raw net.Conn to the http.ResponseWriter +
// http.Hijacker pair websocket.Upgrader writes its handshake through.
// Only Hijack is ever exercised on the success path; Header/Write exist
// for the Upgrader's error reporting.
type hijackWriter struct {
	conn   net.Conn
	header http.Header
}

func (w *hijackWriter) Header() http.Header {
	if w.header == nil {
		w.header = make(http.Header)
	}
	return w.header
}

func (w *hijackWriter) Write(b []byte) (int, error) { return w.conn.Write(b) }

func (w *hijackWriter) WriteHeader(int) {}

func (w *hijackWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.conn, bufio.NewReadWriter(bufio.NewReader(w.conn), bufio.NewWriter(w.conn)), nil
}

// Serve commits to a handshake already validated by ValidateUpgrade: it
// replays the validated fields through websocket.Upgrader (which writes
// the 101 response and owns the frame layer from then on), registers the
// connection, and blocks driving its read loop until the peer disconnects
// or a liveness check fails. Intended to be called from the function
// passed to Context.Hijack; the Upgrade ticket carries plain strings so
// the closure never touches the pooled Request after dispatch.
func (h *Hub) Serve(conn net.Conn, up Upgrade) {
	hdr := make(http.Header, 4)
	hdr.Set("Upgrade", "websocket")
	hdr.Set("Connection", "Upgrade")
	hdr.Set("Sec-WebSocket-Key", up.Key)
	hdr.Set("Sec-WebSocket-Version", "13")
	httpReq := &http.Request{
		Method:     http.MethodGet,
		URL:        &url.URL{Path: "/"},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     hdr,
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  h.cfg.ReadBufferSize,
		WriteBufferSize: h.cfg.WriteBufferSize,
		// Origin policy already ran in ValidateUpgrade.
		CheckOrigin: func(*http.Request) bool { return true },
	}
	wsConn, err := upgrader.Upgrade(&hijackWriter{conn: conn}, httpReq, nil)
	if err != nil {
		_ = conn.Close()
		return
	}

	c := &Connection{
		ID:    h.nextID.Add(1),
		conn:  wsConn,
		hub:   h,
		send:  make(chan message, h.cfg.SendQueueSize),
		done:  make(chan struct{}),
		rooms: make(map[string]struct{}),
	}
	c.setState(StateOpen)

	h.register(c)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump(h.cfg)
	}()

	c.readPump(h.cfg) // blocks until the connection goes down
	wg.Wait()
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()

	if h.cfg.OnConnect != nil {
		h.cfg.OnConnect(c)
	}
}

// unregister removes c from the registry and every room it belonged to,
// closing the underlying connection with code. Safe to call more than
// once; only the first call has effect.
func (h *Hub) unregister(c *Connection, code int) {
	if !c.state.CompareAndSwap(int32(StateOpen), int32(StateClosing)) &&
		!c.state.CompareAndSwap(int32(StateConnecting), int32(StateClosing)) {
		return
	}

	h.mu.Lock()
	delete(h.conns, c.ID)
	c.mu.Lock()
	for room := range c.rooms {
		if members := h.rooms[room]; members != nil {
			delete(members, c.ID)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	c.mu.Unlock()
	h.mu.Unlock()

	close(c.done)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""), time.Now().Add(time.Second))
	_ = c.conn.Close()
	c.setState(StateClosed)

	if h.cfg.OnDisconnect != nil {
		h.cfg.OnDisconnect(c, code)
	}
}

// unregisterAbnormal is called from the read/write pumps when the
// transport itself fails. The connection is already gone, so the close
// handshake is best-effort only and the recorded code is 1006.
func (h *Hub) unregisterAbnormal(c *Connection) {
	h.unregister(c, CloseAbnormal)
}

func (h *Hub) closeOverflowing(c *Connection) {
	h.unregister(c, h.cfg.OverflowCloseCode)
}

// JoinRoom adds c to room, creating the room if it doesn't exist yet.
func (h *Hub) JoinRoom(c *Connection, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[uint64]*Connection)
	}
	h.rooms[room][c.ID] = c

	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()
}

// LeaveRoom removes c from room.
func (h *Hub) LeaveRoom(c *Connection, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members := h.rooms[room]; members != nil {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}

	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()
}

// BroadcastToRoom fans msg out to every connection in room.
func (h *Hub) BroadcastToRoom(room string, msg []byte) {
	h.broadcastToRoom(room, msg, 0)
}

// BroadcastToRoomExcept fans msg out to every connection in room except
// the one identified by exclude.
func (h *Hub) BroadcastToRoomExcept(room string, msg []byte, exclude uint64) {
	h.broadcastToRoom(room, msg, exclude)
}

func (h *Hub) broadcastToRoom(room string, msg []byte, exclude uint64) {
	h.mu.RLock()
	members := h.rooms[room]
	targets := make([]*Connection, 0, len(members))
	for id, c := range members {
		if id != exclude {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.Send(msg)
	}
}

// Broadcast fans msg out to every currently open connection.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.Send(msg)
	}
}

// Connection looks up a currently registered connection by id.
func (h *Hub) Connection(id uint64) (*Connection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.conns[id]
	return c, ok
}

// UpgradeRequest reports whether req is the request that the server
// package should hand off to Serve instead of dispatching a normal HTTP
// response — a thin convenience for route handlers that decide this from
// the Upgrade/Connection headers directly rather than calling
// ValidateUpgrade twice.
func UpgradeRequest(req *router.Request) bool {
	return headerContainsToken(req.Header.Get("Upgrade"), "websocket")
}
