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

// Package websocket is the send-hook variant installed after a Connection
// upgrades from HTTP/1.1 to the WebSocket protocol (§4.2's "func may mutate
// func" upgrade path). The upgrade handshake itself is handled by
// golang.org/x/net/websocket's server-side Handler before this Hooks value
// is installed on the Session.
package websocket

import (
	"golang.org/x/net/websocket"

	"github.com/customwebapps/blastbeat/internal/session"
)

// Hooks renders onto a single established WebSocket connection.
type Hooks struct {
	WS *websocket.Conn
}

// New returns WebSocket hooks wrapping an already-upgraded connection.
func New(ws *websocket.Conn) *Hooks {
	return &Hooks{WS: ws}
}

// SendHeaders has no WebSocket equivalent once the handshake has completed;
// the dealer's status and headers are dropped and nothing is written.
func (h *Hooks) SendHeaders(s *session.Session, status int, headers []session.Header) error {
	return nil
}

// SendBody writes one WebSocket data frame.
func (h *Hooks) SendBody(s *session.Session, b []byte) error {
	_, err := h.WS.Write(b)
	if err != nil {
		return ErrorWrite.Error(err)
	}
	return nil
}

// SendEnd closes the underlying WebSocket connection.
func (h *Hooks) SendEnd(s *session.Session) error {
	return h.WS.Close()
}
