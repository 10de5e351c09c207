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

package app

import (
	"net"

	"rivaas.dev/corehttp/errors"
	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
	"rivaas.dev/corehttp/ws"
)

// websocketHandler adapts a ws.Hub into a router.HandlerFunc: it runs the
// handshake validation that doesn't require committing to the connection,
// and only hijacks the socket (via Context.Hijack) once that validation
// passes. On failure it responds with a normal HTTP error carrying
// errors.CodeWebSocketUpgradeFailed instead of touching the connection.
func (a *App) websocketHandler(hub *ws.Hub) router.HandlerFunc {
	return func(c *router.Context) {
		up, err := hub.ValidateUpgrade(c.Request)
		if err != nil {
			if appErr, ok := err.(*errors.Error); ok {
				_ = c.JSON(appErr.HTTPStatus(), map[string]string{"error": appErr.Message, "code": appErr.Code})
				return
			}
			_ = c.JSON(protocol.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		c.Hijack(func(conn net.Conn) {
			hub.Serve(conn, up)
		})
	}
}
