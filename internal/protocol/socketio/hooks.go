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

// Package socketio is the send-hook variant for the Socket.IO long-polling
// transport (§4.2, §4.9): each delivery is one XHR poll response carrying a
// single framed message. The gateway closes the socket after the dealer's
// "end" frame; the persistent session is what stays in the session table,
// not this particular socket.
package socketio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/customwebapps/blastbeat/internal/connection"
	"github.com/customwebapps/blastbeat/internal/session"
)

// Hooks renders Socket.IO poll responses onto a single Connection.
type Hooks struct {
	Conn *connection.Connection
}

// New returns Socket.IO hooks for conn.
func New(conn *connection.Connection) *Hooks {
	return &Hooks{Conn: conn}
}

// SendHeaders writes the XHR poll response status line; the body is always
// chunked since its length depends on the framed message written next.
func (h *Hooks) SendHeaders(s *session.Session, status int, headers []session.Header) error {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d OK\r\n", status)
	for _, hd := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", hd.Key, hd.Value)
	}
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("Transfer-Encoding: chunked\r\n\r\n")

	h.Conn.Write([]byte(b.String()))
	return nil
}

// frame wraps a payload in the Socket.IO 0.9 polling message envelope,
// "~m~<len>~m~<payload>", the multi-message delimiter this transport used
// before the engine.io rewrite.
func frame(b []byte) string {
	return "~m~" + strconv.Itoa(len(b)) + "~m~" + string(b)
}

// SendBody writes one queued push as a single framed chunk. An empty payload
// still frames and sends, matching the poll's keep-alive behavior when the
// session's outbound queue was empty at delivery time.
func (h *Hooks) SendBody(s *session.Session, b []byte) error {
	msg := frame(b)

	var chunk strings.Builder
	fmt.Fprintf(&chunk, "%s\r\n", strconv.FormatInt(int64(len(msg)), 16))
	chunk.WriteString(msg)
	chunk.WriteString("\r\n")

	h.Conn.Write([]byte(chunk.String()))
	return nil
}

// SendEnd terminates the current poll response. The session itself is left
// alone; nothing in this package re-attaches it to a later poll's
// connection.
func (h *Hooks) SendEnd(s *session.Session) error {
	h.Conn.Write([]byte("0\r\n\r\n"))
	return nil
}
