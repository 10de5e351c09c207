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
	"net/url"

	"rivaas.dev/corehttp/protocol"
)

// Request is the parsed representation of an HTTP/1.1 request.
// Its lifetime is exactly one request; everything it
// points to is owned by the Context's arena and becomes invalid the
// instant the arena is released.
type Request struct {
	Method     protocol.Method
	Path       string
	RawQuery   string
	Header     *protocol.Header
	Body       []byte
	RemoteAddr string

	query url.Values // lazily parsed from RawQuery
}

// Query returns the parsed query string, parsing it lazily on first use.
func (r *Request) Query() url.Values {
	if r.query == nil {
		r.query, _ = url.ParseQuery(r.RawQuery)
		if r.query == nil {
			r.query = url.Values{}
		}
	}
	return r.query
}

// QueryParam returns the first value of a query parameter, or "".
func (r *Request) QueryParam(key string) string {
	return r.Query().Get(key)
}

// reset clears r for reuse from a pool. Does not release backing memory —
// that belongs to the arena, which is reset independently.
func (r *Request) reset() {
	r.Method = protocol.MethodUnknown
	r.Path = ""
	r.RawQuery = ""
	r.Body = nil
	r.RemoteAddr = ""
	r.query = nil
	if r.Header != nil {
		r.Header.Reset()
	} else {
		r.Header = protocol.NewHeader()
	}
}
