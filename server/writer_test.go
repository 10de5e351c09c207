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

package server

import (
	"io"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

func pipeRoundTrip(t *testing.T, write func(net.Conn)) string {
	t.Helper()
	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		write(server)
		_ = server.Close()
	}()
	out, err := io.ReadAll(client)
	require.NoError(t, err)
	<-done
	return string(out)
}

func newTestResponse() *router.Response {
	resp := &router.Response{Status: protocol.StatusOK, Header: protocol.NewHeader()}
	resp.Bytes(protocol.StatusOK, "text/plain", []byte("hi"))
	return resp
}

func TestWriteResponseContentLengthFraming(t *testing.T) {
	resp := newTestResponse()
	out := pipeRoundTrip(t, func(c net.Conn) {
		require.NoError(t, writeResponse(c, resp))
	})
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, out, "Content-Length: 2\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nhi"))
}

func TestWriteResponseSetCookies(t *testing.T) {
	resp := newTestResponse()
	resp.AddSetCookie("a=1")
	resp.AddSetCookie("b=2")
	out := pipeRoundTrip(t, func(c net.Conn) {
		require.NoError(t, writeResponse(c, resp))
	})
	assert.Contains(t, out, "Set-Cookie: a=1\r\n")
	assert.Contains(t, out, "Set-Cookie: b=2\r\n")
}

func TestWriteResponseChunkedStreaming(t *testing.T) {
	resp := &router.Response{Status: protocol.StatusOK, Header: protocol.NewHeader()}
	resp.Stream(strings.NewReader("streamed-body"))
	out := pipeRoundTrip(t, func(c net.Conn) {
		require.NoError(t, writeResponse(c, resp))
	})
	assert.Contains(t, out, "Transfer-Encoding: chunked\r\n")
	assert.Contains(t, out, "\r\nd\r\nstreamed-body\r\n0\r\n\r\n")
}
