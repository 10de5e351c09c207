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
	"io"
	"net"
	"strconv"
	"strings"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// connReader buffers reads off conn with a fixed-size buffer. A blocking
// bufio.Reader rather than a raw syscall.Read loop; this server does not
// drive its own epoll/kqueue poller.
func newConnReader(conn net.Conn, size int) *bufio.Reader {
	return bufio.NewReaderSize(conn, size)
}

// parseError carries the response a malformed request should produce,
// plus whether the connection should simply be dropped without a
// response (peer already gone).
type parseError struct {
	status        int
	message       string
	closeSilently bool
}

func (e *parseError) Error() string { return e.message }

// parseRequest decodes one HTTP/1.1 request frame: request line
// and headers must fit the read buffer (else HeaderTooLarge); the body is
// read up to maxBodySize (else 413). Returns (nil, nil) when the peer
// closed the connection cleanly before sending a new request. maxLineLen
// bounds an individual request-line/header-line length to the
// configured read_buffer_size, so headers exceeding it fail with
// HeaderTooLarge rather than being buffered unbounded in memory.
func parseRequest(r *bufio.Reader, maxBodySize int64, maxLineLen int) (*router.Request, *parseError) {
	line, err := readLine(r, maxLineLen)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		if pe, ok := err.(*parseError); ok {
			return nil, pe
		}
		return nil, &parseError{closeSilently: true}
	}
	if line == "" {
		return nil, &parseError{status: protocol.StatusBadRequest, message: "Bad Request"}
	}

	method, path, _, ok := parseRequestLine(line)
	if !ok {
		return nil, &parseError{status: protocol.StatusBadRequest, message: "Bad Request"}
	}

	header := protocol.NewHeader()
	for {
		hline, err := readLine(r, maxLineLen)
		if err != nil {
			if pe, ok := err.(*parseError); ok {
				return nil, pe
			}
			return nil, &parseError{status: protocol.StatusBadRequest, message: "Bad Request"}
		}
		if hline == "" {
			break
		}
		key, value, ok := splitHeaderLine(hline)
		if !ok {
			return nil, &parseError{status: protocol.StatusBadRequest, message: "Bad Request"}
		}
		header.Add(key, value)
	}

	path, rawQuery := splitPathQuery(path)

	req := &router.Request{
		Method:   protocol.ParseMethod(method),
		Path:     path,
		RawQuery: rawQuery,
		Header:   header,
	}

	body, perr := readBody(r, header, maxBodySize)
	if perr != nil {
		return nil, perr
	}
	req.Body = body

	return req, nil
}

// readLine reads a single CRLF- or LF-terminated line up to maxLen bytes,
// stripping the terminator. An empty string with a nil error means a
// blank line (the header/body separator).
func readLine(r *bufio.Reader, maxLen int) (string, error) {
	var buf strings.Builder
	for {
		chunk, err := r.ReadSlice('\n')
		buf.Write(chunk)
		if buf.Len() > maxLen {
			// Drain is unnecessary: the caller closes the connection on
			// this error.
			return "", &parseError{status: protocol.StatusHeaderFieldsTooLarge, message: "Header Too Large"}
		}
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if buf.Len() == 0 {
			return "", err
		}
		return "", &parseError{status: protocol.StatusBadRequest, message: "Bad Request"}
	}
	return strings.TrimRight(buf.String(), "\r\n"), nil
}

func parseRequestLine(line string) (method, target, proto string, ok bool) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || !strings.HasPrefix(parts[2], "HTTP/") {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func splitHeaderLine(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], strings.TrimSpace(line[idx+1:]), true
}

func splitPathQuery(target string) (path, rawQuery string) {
	if idx := strings.IndexByte(target, '?'); idx >= 0 {
		return target[:idx], target[idx+1:]
	}
	return target, ""
}

// readBody streams the request body into memory up to maxBodySize,
// honoring Content-Length. Chunked request decoding is not supported;
// chunked framing is only produced on the response side.
func readBody(r *bufio.Reader, header *protocol.Header, maxBodySize int64) ([]byte, *parseError) {
	cl := header.Get("Content-Length")
	if cl == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || n < 0 {
		return nil, &parseError{status: protocol.StatusBadRequest, message: "Bad Request"}
	}
	if n > maxBodySize {
		return nil, &parseError{status: protocol.StatusPayloadTooLarge, message: "Payload Too Large"}
	}
	if n == 0 {
		return nil, nil
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, &parseError{closeSilently: true}
	}
	return body, nil
}

// shouldKeepAlive implements the keep-alive policy: honored unless the
// request sent Connection: close or the response explicitly opted out.
func shouldKeepAlive(req *router.Request, resp *router.Response) bool {
	if strings.EqualFold(req.Header.Get("Connection"), "close") {
		return false
	}
	if strings.EqualFold(resp.Header.Get("Connection"), "close") {
		return false
	}
	return true
}
