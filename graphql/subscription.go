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
	"context"
	"encoding/json"
	"sync"
	"time"

	"rivaas.dev/corehttp/ws"
)

// wsMessage is the graphql-ws / graphql-transport-ws envelope: the
// connection_init/connection_ack handshake, a subscribe message carrying
// {query, variables, operationName}, and a next response keyed by the
// client's request id. The transport rides on ws.Hub rather than
// gorilla/websocket's Upgrader entry point, which this acceptor never
// produces an http.ResponseWriter for.
type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

// SubscriptionSource produces a sequence of Values for one subscription
// operation, pushing through yield until ctx is cancelled (the client
// sent "complete"/"stop", or the connection closed). The
// subscription root field's resolver is expected to launch this itself
// (e.g. subscribing to a broadcast channel) rather than corehttp
// providing a generic pub/sub; Field has no separate subscribe hook, so
// further emissions go out through SubscriptionManager.Publish.
type SubscriptionSource func(ctx context.Context, rctx *ResolveContext, args map[string]Value, yield func(Value))

// connState tracks one upgraded connection's graphql-ws handshake state
// and in-flight subscriptions. done closes when the connection goes
// away, stopping the keep-alive and ack-timeout timers.
type connState struct {
	mu            sync.Mutex
	acked         bool
	subscriptions map[string]context.CancelFunc
	done          chan struct{}
}

// SubscriptionManager drives the graphql-ws protocol over a ws.Hub,
// dispatching "subscribe" operations to the schema's subscription root
// type and streaming results back as "next" messages.
type SubscriptionManager struct {
	engine *Engine

	mu    sync.Mutex
	conns map[uint64]*connState
}

// NewSubscriptionManager constructs a manager bound to engine's schema
// and config.
func NewSubscriptionManager(engine *Engine) *SubscriptionManager {
	return &SubscriptionManager{engine: engine, conns: map[uint64]*connState{}}
}

// Options returns the ws.Option set that wires this manager's handlers
// into a ws.Hub's lifecycle callbacks. Construct the Hub with
// ws.New(append(otherOpts, mgr.Options()...)...).
func (m *SubscriptionManager) Options() []ws.Option {
	return []ws.Option{
		ws.WithConnectHandler(m.onConnect),
		ws.WithDisconnectHandler(m.onDisconnect),
		ws.WithMessageHandler(m.onMessage),
	}
}

func (m *SubscriptionManager) onConnect(c *ws.Connection) {
	st := &connState{
		subscriptions: map[string]context.CancelFunc{},
		done:          make(chan struct{}),
	}
	m.mu.Lock()
	m.conns[c.ID] = st
	m.mu.Unlock()

	if timeout := m.engine.Config.AckTimeout; timeout > 0 {
		go func() {
			select {
			case <-time.After(timeout):
			case <-st.done:
				return
			}
			st.mu.Lock()
			acked := st.acked
			st.mu.Unlock()
			if !acked {
				c.Close(ws.ClosePolicyViolation)
			}
		}()
	}

	if interval := m.engine.Config.KeepAliveInterval; interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					m.send(c, wsMessage{Type: msgPing})
				case <-st.done:
					return
				}
			}
		}()
	}
}

func (m *SubscriptionManager) onDisconnect(c *ws.Connection, _ int) {
	m.mu.Lock()
	st := m.conns[c.ID]
	delete(m.conns, c.ID)
	m.mu.Unlock()

	if st == nil {
		return
	}
	close(st.done)
	st.mu.Lock()
	for _, cancel := range st.subscriptions {
		cancel()
	}
	st.mu.Unlock()
}

func (m *SubscriptionManager) onMessage(c *ws.Connection, _ int, data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		m.sendError(c, "", "invalid message envelope")
		return
	}

	m.mu.Lock()
	st := m.conns[c.ID]
	m.mu.Unlock()
	if st == nil {
		return
	}

	switch msg.Type {
	case msgConnectionInit:
		st.mu.Lock()
		st.acked = true
		st.mu.Unlock()
		m.send(c, wsMessage{Type: msgConnectionAck})

	case msgPing:
		m.send(c, wsMessage{Type: msgPong})

	case msgSubscribe:
		m.startSubscription(c, st, msg)

	case msgComplete, "stop":
		st.mu.Lock()
		if cancel, ok := st.subscriptions[msg.ID]; ok {
			cancel()
			delete(st.subscriptions, msg.ID)
		}
		st.mu.Unlock()
	}
}

type subscribePayload struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

func (m *SubscriptionManager) startSubscription(c *ws.Connection, st *connState, msg wsMessage) {
	var payload subscribePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		m.sendError(c, msg.ID, "invalid subscribe payload")
		return
	}

	op, err := Parse(payload.Query)
	if err != nil {
		m.sendError(c, msg.ID, toParseError(err).Message)
		return
	}
	if valErr := validate(m.engine.Schema, op, m.engine.Config); valErr != nil {
		m.sendError(c, msg.ID, valErr.Message)
		return
	}

	root := m.engine.Schema.Types[m.engine.Schema.SubscrType]
	if root == nil || len(op.Selection) == 0 {
		m.sendError(c, msg.ID, "no subscription root type configured")
		return
	}
	field := root.Fields[op.Selection[0].Name]
	if field == nil || field.Resolve == nil {
		m.sendError(c, msg.ID, "unknown subscription field")
		return
	}

	// ResolveFunc has no context.Context parameter, only the opaque
	// ResolveContext, so a resolver cannot observe cancellation. The
	// derived context is discarded; cancel only marks the id as active
	// in the connection's subscription table for stop/complete and
	// disconnect. Publish does not consult that table.
	_, cancel := context.WithCancel(context.Background())
	st.mu.Lock()
	st.subscriptions[msg.ID] = cancel
	st.mu.Unlock()

	rctx := &ResolveContext{Vars: decodeVariables(payload.Variables)}
	sel := op.Selection[0]
	ex := &execution{schema: m.engine.Schema, rctx: rctx}
	args := ex.resolveArgs(sel.Args)

	go func() {
		defer func() {
			st.mu.Lock()
			delete(st.subscriptions, msg.ID)
			st.mu.Unlock()
			m.send(c, wsMessage{ID: msg.ID, Type: msgComplete})
		}()

		val, resolveErr := field.Resolve(rctx, Null(), args)
		if resolveErr != nil {
			m.sendError(c, msg.ID, resolveErr.Error())
			return
		}
		// A subscription field resolver is expected to return a value
		// produced from exactly one emission of a SubscriptionSource it
		// owns; streaming multiple emissions is achieved by the resolver
		// calling back into this manager's Publish for the same id as
		// new data arrives, not by blocking here.
		if len(sel.Selection) > 0 {
			val = ex.executeNested(field.TypeName, val, sel.Selection, []string{sel.ResponseKey()})
		}
		data := NewObject()
		data.Set(sel.ResponseKey(), val)
		resp := wireResponse{Data: &data}
		for _, e := range ex.errs {
			resp.Errors = append(resp.Errors, e.mask(m.engine.Config).toWire())
		}
		body, _ := json.Marshal(resp)
		m.send(c, wsMessage{ID: msg.ID, Type: msgNext, Payload: body})
	}()
}

// Publish pushes a new "next" message for an active subscription id on
// connection c, for resolvers that stream multiple emissions over time
// (e.g. a resolver subscribing to a broadcast channel) rather than
// resolving once. Safe to call from any goroutine.
func (m *SubscriptionManager) Publish(c *ws.Connection, id string, data Value) {
	resp := wireResponse{Data: &data}
	body, _ := json.Marshal(resp)
	m.send(c, wsMessage{ID: id, Type: msgNext, Payload: body})
}

func (m *SubscriptionManager) send(c *ws.Connection, msg wsMessage) {
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.Send(body)
}

func (m *SubscriptionManager) sendError(c *ws.Connection, id, message string) {
	payload, _ := json.Marshal([]wireError{{Message: message}})
	m.send(c, wsMessage{ID: id, Type: msgError, Payload: payload})
}
