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

package graphql

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
	"rivaas.dev/corehttp/ws"
)

func subscriptionSchema() *Schema {
	s := NewSchema("Query", "", "Subscription")
	s.AddType(&ObjectType{Name: "Query", Fields: map[string]*Field{
		"ping": {Name: "ping", TypeName: "String", Resolve: func(rc *ResolveContext, parent Value, args map[string]Value) (Value, error) {
			return StringValue("pong"), nil
		}},
	}})
	s.AddType(&ObjectType{Name: "Subscription", Fields: map[string]*Field{
		"tick": {Name: "tick", TypeName: "String", Resolve: func(rc *ResolveContext, parent Value, args map[string]Value) (Value, error) {
			return StringValue("tock"), nil
		}},
	}})
	return s
}

// serveOneUpgrade accepts a single connection on ln, reads the raw HTTP
// upgrade request with net/http's own reader (test scaffolding only — the
// production acceptor is corehttp/server's hand-rolled parser), and hands
// it to hub.Serve once validated.
func serveOneUpgrade(t *testing.T, ln net.Listener, hub *ws.Hub) {
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

// dialSubscription stands up an Engine + SubscriptionManager behind a
// real listener and returns a connected graphql-ws client.
func dialSubscription(t *testing.T, cfg *Config) *websocket.Conn {
	t.Helper()
	engine := &Engine{Schema: subscriptionSchema(), Config: cfg}
	mgr := NewSubscriptionManager(engine)
	hub := ws.New(mgr.Options()...)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go serveOneUpgrade(t, ln, hub)

	client, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/graphql", nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func writeWS(t *testing.T, c *websocket.Conn, msg wsMessage) {
	t.Helper()
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, c.WriteMessage(websocket.TextMessage, body))
}

func readWS(t *testing.T, c *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	var msg wsMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestSubscriptionInitAck(t *testing.T) {
	client := dialSubscription(t, Default())

	writeWS(t, client, wsMessage{Type: msgConnectionInit})
	ack := readWS(t, client)
	assert.Equal(t, msgConnectionAck, ack.Type)
}

func TestSubscriptionPingPong(t *testing.T) {
	client := dialSubscription(t, Default())

	writeWS(t, client, wsMessage{Type: msgConnectionInit})
	require.Equal(t, msgConnectionAck, readWS(t, client).Type)

	writeWS(t, client, wsMessage{Type: msgPing})
	assert.Equal(t, msgPong, readWS(t, client).Type)
}

func TestSubscriptionNextAndComplete(t *testing.T) {
	client := dialSubscription(t, Default())

	writeWS(t, client, wsMessage{Type: msgConnectionInit})
	require.Equal(t, msgConnectionAck, readWS(t, client).Type)

	payload, _ := json.Marshal(subscribePayload{Query: "subscription { tick }"})
	writeWS(t, client, wsMessage{ID: "1", Type: msgSubscribe, Payload: payload})

	next := readWS(t, client)
	require.Equal(t, msgNext, next.Type)
	assert.Equal(t, "1", next.ID)
	assert.JSONEq(t, `{"data":{"tick":"tock"}}`, string(next.Payload))

	complete := readWS(t, client)
	assert.Equal(t, msgComplete, complete.Type)
	assert.Equal(t, "1", complete.ID)
}

func TestSubscriptionUnknownFieldErrors(t *testing.T) {
	client := dialSubscription(t, Default())

	writeWS(t, client, wsMessage{Type: msgConnectionInit})
	require.Equal(t, msgConnectionAck, readWS(t, client).Type)

	payload, _ := json.Marshal(subscribePayload{Query: "subscription { nope }"})
	writeWS(t, client, wsMessage{ID: "7", Type: msgSubscribe, Payload: payload})

	errMsg := readWS(t, client)
	require.Equal(t, msgError, errMsg.Type)
	assert.Equal(t, "7", errMsg.ID)

	var errs []wireError
	require.NoError(t, json.Unmarshal(errMsg.Payload, &errs))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "unknown subscription field")
}

func TestSubscriptionDepthLimitRejected(t *testing.T) {
	client := dialSubscription(t, New(WithMaxDepth(0)))

	writeWS(t, client, wsMessage{Type: msgConnectionInit})
	require.Equal(t, msgConnectionAck, readWS(t, client).Type)

	payload, _ := json.Marshal(subscribePayload{Query: "subscription { tick }"})
	writeWS(t, client, wsMessage{ID: "2", Type: msgSubscribe, Payload: payload})

	errMsg := readWS(t, client)
	require.Equal(t, msgError, errMsg.Type)
	assert.Equal(t, "2", errMsg.ID)
}
