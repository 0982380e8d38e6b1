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

// Package spdy is the stub send-hook variant for the SPDY upgrade path. The
// SPDY framing layer and its per-connection zlib header-compression context
// are treated as an external wire parser (assumed to exist upstream, same as
// the HTTP/1.1 and WebSocket parsers) and are not implemented here; this
// package only reserves the slot in the Hooks tagged union so a Connection
// that negotiates SPDY has somewhere to install a handler once that parser
// exists.
package spdy

import (
	"github.com/customwebapps/blastbeat/internal/connection"
	"github.com/customwebapps/blastbeat/internal/session"
)

// Hooks is the SPDY placeholder; every call reports ErrorNotImplemented.
type Hooks struct {
	Conn *connection.Connection
}

// New returns SPDY hooks for conn. The returned value is functional only in
// the sense that it satisfies session.Hooks; all three methods fail.
func New(conn *connection.Connection) *Hooks {
	return &Hooks{Conn: conn}
}

func (h *Hooks) SendHeaders(s *session.Session, status int, headers []session.Header) error {
	return ErrorNotImplemented.Error(nil)
}

func (h *Hooks) SendBody(s *session.Session, b []byte) error {
	return ErrorNotImplemented.Error(nil)
}

func (h *Hooks) SendEnd(s *session.Session) error {
	return ErrorNotImplemented.Error(nil)
}
