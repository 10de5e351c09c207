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
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/corehttp/protocol"
)

func reader(raw string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(raw))
}

func TestParseRequestLineAndHeaders(t *testing.T) {
	raw := "GET /users/42?tab=bio HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\n\r\n"
	req, perr := parseRequest(reader(raw), 1<<20, 8192)
	require.Nil(t, perr)
	require.NotNil(t, req)
	assert.Equal(t, protocol.MethodGet, req.Method)
	assert.Equal(t, "/users/42", req.Path)
	assert.Equal(t, "tab=bio", req.RawQuery)
	assert.Equal(t, "example.com", req.Header.Get("Host"))
}

func TestParseRequestWithBody(t *testing.T) {
	body := "hello"
	raw := "POST /echo HTTP/1.1\r\nContent-Length: 5\r\n\r\n" + body
	req, perr := parseRequest(reader(raw), 1<<20, 8192)
	require.Nil(t, perr)
	assert.Equal(t, []byte(body), req.Body)
}

func TestParseRequestBodyTooLarge(t *testing.T) {
	raw := "POST /echo HTTP/1.1\r\nContent-Length: 20\r\n\r\n" + strings.Repeat("x", 20)
	_, perr := parseRequest(reader(raw), 10, 8192)
	require.NotNil(t, perr)
	assert.Equal(t, protocol.StatusPayloadTooLarge, perr.status)
}

func TestParseRequestMalformedLine(t *testing.T) {
	raw := "NOT A REQUEST LINE AT ALL\r\n\r\n"
	_, perr := parseRequest(reader(raw), 1<<20, 8192)
	require.NotNil(t, perr)
	assert.Equal(t, protocol.StatusBadRequest, perr.status)
}

func TestParseRequestHeaderTooLarge(t *testing.T) {
	raw := "GET / HTTP/1.1\r\nX-Big: " + strings.Repeat("a", 100) + "\r\n\r\n"
	_, perr := parseRequest(reader(raw), 1<<20, 32)
	require.NotNil(t, perr)
	assert.Equal(t, protocol.StatusHeaderFieldsTooLarge, perr.status)
}

func TestParseRequestEmptyConnectionReturnsNil(t *testing.T) {
	req, perr := parseRequest(reader(""), 1<<20, 8192)
	assert.Nil(t, req)
	assert.Nil(t, perr)
}

func TestSplitPathQueryNoQuery(t *testing.T) {
	path, q := splitPathQuery("/plain")
	assert.Equal(t, "/plain", path)
	assert.Equal(t, "", q)
}
