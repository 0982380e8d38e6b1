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

// Package connection models a single client socket: its write queue, its
// current protocol handler, and the ordered list of Sessions it owns.
package connection

import (
	"net"
	"sync"

	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/log"
)

var logConn = log.New("connection")

// Handler is the per-connection protocol dispatch function; it may replace
// itself on the Connection (protocol upgrade) by calling SetHandler.
type Handler func(c *Connection, b []byte) error

// Connection is a client socket and its associated state.
type Connection struct {
	id   string
	sock net.Conn

	Queue WriteQueue

	mu       sync.Mutex
	sessions []*session.Session
	handler  Handler
	closed   bool
}

// New wraps an accepted socket, installing the given default protocol
// handler (HTTP/1.1 in practice).
func New(id string, sock net.Conn, handler Handler) *Connection {
	return &Connection{id: id, sock: sock, handler: handler}
}

func (c *Connection) ID() string { return c.id }

// SetHandler swaps the active protocol handler (an in-flight upgrade).
func (c *Connection) SetHandler(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = h
}

// Dispatch feeds freshly-read bytes to the current handler.
func (c *Connection) Dispatch(b []byte) error {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()

	if h == nil {
		return nil
	}
	return h(c, b)
}

// NewSession allocates a Session owned by this connection and appends it as
// the new tail, per §4.1.
func (c *Connection) NewSession(hooks session.Hooks) *session.Session {
	s := session.New(c, hooks)

	c.mu.Lock()
	c.sessions = append(c.sessions, s)
	c.mu.Unlock()

	return s
}

// Sessions returns a snapshot of the connection's owned sessions in
// insertion order.
func (c *Connection) Sessions() []*session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*session.Session, len(c.sessions))
	copy(out, c.sessions)
	return out
}

// remove unlinks s from the session list, if present.
func (c *Connection) remove(s *session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, cur := range c.sessions {
		if cur == s {
			c.sessions = append(c.sessions[:i], c.sessions[i+1:]...)
			return
		}
	}
}

// Write enqueues a borrowed write and flushes immediately; used by protocol
// hooks to send headers/body/end bytes to the client.
func (c *Connection) Write(b []byte) {
	c.Queue.EnqueueBorrowed(b, nil)
	if err := c.Queue.Flush(c.sock); err != nil {
		logConn.WithField("connection", c.id).Errorf("write: %v", err)
		c.Close(nil, nil)
	}
}

// Close implements §4.2's teardown sequence: stop I/O, close every owned
// session (non-persistent freed, persistent detached), drain the write
// queue, close the socket. The session slice is snapshotted before
// iteration so that a Session.Close call unlinking itself mid-loop (the
// open question in the design notes) cannot skip or double-visit a sibling.
func (c *Connection) Close(closeSession func(s *session.Session), teardownErr error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	snapshot := make([]*session.Session, len(c.sessions))
	copy(snapshot, c.sessions)
	c.mu.Unlock()

	for _, s := range snapshot {
		if closeSession != nil {
			closeSession(s)
		}
		c.remove(s)
	}

	c.Queue.Drain(teardownErr)

	if c.sock != nil {
		_ = c.sock.Close()
	}
}

func (c *Connection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
