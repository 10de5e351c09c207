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

package router

import (
	"encoding/json"
	"io"
	"net"

	"rivaas.dev/corehttp/protocol"
)

// Response is built by handlers and consumed by the serializer.
// Like Request, it is owned transitively by the
// arena unless a middleware extends its lifetime via arena.Keep.
type Response struct {
	Status      int
	Header      *protocol.Header
	ContentType string
	Body        []byte
	SetCookies  []string

	// stream, when non-nil, takes precedence over Body: the serializer
	// copies from it using chunked transfer-encoding.
	stream io.Reader

	// hijack, when set, takes ownership of the raw connection instead of a
	// normal serialized response. The WebSocket upgrade handler is the only
	// caller: it writes its own 101 response and drives the connection
	// itself from there.
	hijack func(net.Conn)

	// abandoned marks a response the acceptor must not serialize at all —
	// it closes the connection instead. Set by the timeout middleware when
	// a handler overruns its deadline.
	abandoned bool

	written bool
}

func newResponse() *Response {
	return &Response{Status: protocol.StatusOK, Header: protocol.NewHeader()}
}

func (r *Response) reset() {
	r.Status = protocol.StatusOK
	r.ContentType = ""
	r.Body = nil
	r.SetCookies = nil
	r.stream = nil
	r.hijack = nil
	r.abandoned = false
	r.written = false
	if r.Header != nil {
		r.Header.Reset()
	} else {
		r.Header = protocol.NewHeader()
	}
}

// Written reports whether a status/body has already been assigned this
// request — used by the not-found handler and middleware chain to avoid
// clobbering an earlier short-circuit.
func (r *Response) Written() bool {
	return r.written
}

// SetStatus sets the response status code.
func (r *Response) SetStatus(code int) {
	r.Status = code
	r.written = true
}

// SetHeader sets a response header field.
func (r *Response) SetHeader(key, value string) {
	r.Header.Set(key, value)
}

// AddSetCookie appends a Set-Cookie header value (multiple cookies use
// repeated Set-Cookie fields, not comma-joining, per RFC 6265).
func (r *Response) AddSetCookie(v string) {
	r.SetCookies = append(r.SetCookies, v)
}

// Stream replaces the Body with a lazily-read io.Reader, for chunked
// streaming responses (GraphQL subscriptions use this transport-side via
// the WebSocket hub instead, but plain HTTP handlers can stream too).
func (r *Response) Stream(rd io.Reader) {
	r.stream = rd
	r.written = true
}

// StreamReader returns the reader set by Stream, or nil if the response
// body is a plain byte slice. The serializer uses this to decide between
// Content-Length framing and chunked transfer-encoding.
func (r *Response) StreamReader() io.Reader {
	return r.stream
}

// JSON serializes v and sets the body/content-type accordingly.
func (r *Response) JSON(status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.Status = status
	r.ContentType = "application/json"
	r.Body = b
	r.written = true
	return nil
}

// Text sets a text/plain body.
func (r *Response) Text(status int, body string) {
	r.Status = status
	r.ContentType = "text/plain; charset=utf-8"
	r.Body = []byte(body)
	r.written = true
}

// Hijack marks the response as taking over the raw connection: the
// serializer will not write a Content-Length/chunked body, and fn receives
// the connection once the acceptor has finished dispatching. Used by the
// WebSocket upgrade handler.
func (r *Response) Hijack(fn func(net.Conn)) {
	r.hijack = fn
	r.written = true
}

// HijackFunc returns the function set by Hijack, or nil.
func (r *Response) HijackFunc() func(net.Conn) {
	return r.hijack
}

// Abandon marks the response so the connection is closed without writing
// anything, rather than serializing whatever partial response exists.
// Used by the timeout middleware; see the abandoned field.
func (r *Response) Abandon() {
	r.abandoned = true
	r.written = true
}

// Abandoned reports whether Abandon was called.
func (r *Response) Abandoned() bool {
	return r.abandoned
}

// Bytes sets an arbitrary-content-type body.
func (r *Response) Bytes(status int, contentType string, body []byte) {
	r.Status = status
	r.ContentType = contentType
	r.Body = body
	r.written = true
}
