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
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// serveOneUpgrade accepts a single connection on ln, reads the raw HTTP
// upgrade request with net/http's own reader (test scaffolding only — the
// production acceptor is corehttp/server's hand-rolled parser), and hands
// it to hub.Serve once validated.
func serveOneUpgrade(t *testing.T, ln net.Listener, hub *Hub) {
	t.Helper()
	conn, err := ln.Accept()
	require.NoError(t, err)

	httpReq, err := http.ReadRequest(bufio.NewReader(conn))
	require.NoError(t, err)

	h := protocol.NewHeader()
	for k, vs := range httpReq.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	req := &router.Request{Header: h, Path: httpReq.URL.Path}

	up, err := hub.ValidateUpgrade(req)
	require.NoError(t, err)

	hub.Serve(conn, up)
}

func TestHubServeEndToEndHandshakeAndEcho(t *testing.T) {
	var received []byte
	msgCh := make(chan []byte, 1)

	hub := New(WithMessageHandler(func(c *Connection, opcode int, data []byte) {
		msgCh <- data
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		serveOneUpgrade(t, ln, hub)
	}()

	url := "ws://" + ln.Addr().String() + "/ws"
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hello")))

	select {
	case received = <-msgCh:
	case <-time.After(2 * time.Second):
		t.Fatal("server never observed the client message")
	}
	require.Equal(t, []byte("hello"), received)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, client.Close())
	<-done
}
