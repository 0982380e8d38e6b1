/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package http1 is the default send-hook variant: the gateway installs it
// on every Session that is neither Socket.IO nor WebSocket. It renders the
// dealer's response as a plain HTTP/1.1 message onto the owning
// Connection's write queue.
package http1

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/customwebapps/blastbeat/internal/connection"
	"github.com/customwebapps/blastbeat/internal/session"
)

var statusText = map[int]string{
	200: "OK",
	101: "Switching Protocols",
	204: "No Content",
	301: "Moved Permanently",
	302: "Found",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	500: "Internal Server Error",
	502: "Bad Gateway",
	503: "Service Unavailable",
}

// Hooks renders onto a single Connection; one instance is shared by every
// Session that connection owns, since SendHeaders/SendBody/SendEnd always
// take the Session explicitly and route to the Connection captured here.
type Hooks struct {
	Conn *connection.Connection
}

// New returns the default HTTP/1.1 hooks for conn.
func New(conn *connection.Connection) *Hooks {
	return &Hooks{Conn: conn}
}

func reason(status int) string {
	if r, ok := statusText[status]; ok {
		return r
	}
	return "Unknown"
}

// SendHeaders writes the status line and headers. Chunked transfer encoding
// is used unless a Content-Length header is already present, so the caller
// never needs to know the body length up front.
func (h *Hooks) SendHeaders(s *session.Session, status int, headers []session.Header) error {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, reason(status))

	hasLength := false
	for _, hd := range headers {
		if strings.EqualFold(hd.Key, "Content-Length") {
			hasLength = true
		}
		fmt.Fprintf(&b, "%s: %s\r\n", hd.Key, hd.Value)
	}
	if !hasLength {
		b.WriteString("Transfer-Encoding: chunked\r\n")
	}
	b.WriteString("\r\n")

	h.Conn.Write([]byte(b.String()))
	return nil
}

// SendBody writes one chunk of the response body, chunk-encoded.
func (h *Hooks) SendBody(s *session.Session, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	var chunk strings.Builder
	fmt.Fprintf(&chunk, "%s\r\n", strconv.FormatInt(int64(len(b)), 16))
	chunk.Write(b) //nolint:errcheck // strings.Builder.Write never errors
	chunk.WriteString("\r\n")

	h.Conn.Write([]byte(chunk.String()))
	return nil
}

// SendEnd writes the terminating zero-length chunk.
func (h *Hooks) SendEnd(s *session.Session) error {
	h.Conn.Write([]byte("0\r\n\r\n"))
	return nil
}
