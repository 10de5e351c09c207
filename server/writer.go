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
	"fmt"
	"io"
	"net"
	"strconv"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// writeResponse serializes resp onto conn: status line,
// headers in insertion order, Set-Cookie entries, and either a
// Content-Length-framed body or, when resp carries a stream, a chunked
// transfer encoding.
func writeResponse(conn net.Conn, resp *router.Response) error {
	w := bufio.NewWriter(conn)

	status := resp.Status
	if status == 0 {
		status = protocol.StatusOK
	}
	if _, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", status, protocol.ReasonPhrase(status)); err != nil {
		return err
	}

	if resp.ContentType != "" && resp.Header.Get("Content-Type") == "" {
		resp.Header.Set("Content-Type", resp.ContentType)
	}

	streaming := resp.StreamReader() != nil
	if streaming {
		resp.Header.Set("Transfer-Encoding", "chunked")
		resp.Header.Del("Content-Length")
	} else if resp.Header.Get("Content-Length") == "" {
		resp.Header.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	}

	writeErr := error(nil)
	resp.Header.Range(func(key, value string) bool {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", key, value); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}

	for _, cookie := range resp.SetCookies {
		if _, err := fmt.Fprintf(w, "Set-Cookie: %s\r\n", cookie); err != nil {
			return err
		}
	}

	if _, err := w.WriteString("\r\n"); err != nil {
		return err
	}

	if streaming {
		if err := writeChunked(w, resp.StreamReader()); err != nil {
			return err
		}
	} else if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			return err
		}
	}

	return w.Flush()
}

// writeChunked copies src onto w using HTTP/1.1 chunked transfer
// encoding.
func writeChunked(w *bufio.Writer, src io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := fmt.Fprintf(w, "%x\r\n", n); werr != nil {
				return werr
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if _, werr := w.WriteString("\r\n"); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			_, werr := w.WriteString("0\r\n\r\n")
			return werr
		}
		if err != nil {
			return err
		}
	}
}
