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

// Package session models a logical request/response context keyed by UUID:
// the per-request/response parser state, the polymorphic send hooks, group
// membership, and the persistent-session close/eviction rules.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/customwebapps/blastbeat/internal/dealer"
	"github.com/customwebapps/blastbeat/internal/sht"
	"github.com/customwebapps/blastbeat/internal/vhost"
)

const maxHeaders = 128

// Header is one bounded request header key/value pair.
type Header struct {
	Key   string
	Value string
}

// RequestState is the per-request parser state, reset by InitializeRequest.
type RequestState struct {
	Initialized  bool
	LastWasValue bool
	Headers      []Header
	Envelope     []byte // serialized request envelope sent to the dealer
	WSQueue      [][]byte
}

// ResponseState is the per-response parser state, reset by InitializeResponse.
type ResponseState struct {
	Initialized  bool
	LastWasValue bool
}

// Hooks is the tagged-variant capability set a Session's protocol binds to
// it: one implementation per {HTTP/1.1, SPDY, WebSocket, Socket.IO}. Swapped
// on protocol upgrade.
type Hooks interface {
	SendHeaders(s *Session, status int, headers []Header) error
	SendBody(s *Session, b []byte) error
	SendEnd(s *Session) error
}

// Conn is the narrow view a Session needs of its owning connection: enough
// to detach itself, never the full connection type, to avoid a Session<->
// Connection import cycle.
type Conn interface {
	ID() string
}

// Session is a logical request/response context.
type Session struct {
	UUID uuid.UUID

	mu sync.Mutex

	persistent bool
	stealth    bool
	closed     bool

	conn  Conn
	Dealer *dealer.Dealer
	VHost  *vhost.VirtualHost

	Hooks Hooks

	Request  RequestState
	Response ResponseState

	groups map[string]struct{}

	sioQueue [][]byte

	timerArmed bool
	timerFire  time.Time
}

// New allocates a Session bound to conn with a fresh random UUID and the
// given hooks installed (nil is allowed), and resets its request and
// response state. It does not insert the Session into the SHT or link it
// into a connection's list (callers do both), and it arms no timer.
func New(conn Conn, hooks Hooks) *Session {
	s := &Session{
		UUID:   uuid.New(),
		conn:   conn,
		Hooks:  hooks,
		groups: make(map[string]struct{}),
	}
	s.InitializeRequest()
	s.InitializeResponse()
	return s
}

// Key returns the SHT bucket key for this session's UUID, the first half
// being the bucket-selection half per §3/§6.
func (s *Session) Key() sht.Key {
	hi := uint64(0)
	lo := uint64(0)
	b := s.UUID[:]
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(b[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(b[i])
	}
	return sht.Key{Hi: hi, Lo: lo}
}

func (s *Session) Persistent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistent
}

func (s *Session) SetPersistent(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistent = v
}

func (s *Session) Stealth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stealth
}

func (s *Session) SetStealth(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stealth = v
}

// Connection returns the owning connection, or nil once detached.
func (s *Session) Connection() Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// Detach clears the owning connection, leaving the Session in the SHT if
// persistent (called by Connection.Close and by Close itself).
func (s *Session) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = nil
}

// InitializeRequest is the canonical request-state reset of §4.3: releases
// every retained allocation and rearms last_was_value for the next header
// key. Idempotent: calling it twice in a row leaves the same state as once.
func (s *Session) InitializeRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Request = RequestState{
		Initialized:  true,
		LastWasValue: true,
	}
}

// InitializeResponse is the symmetric reset for the response direction.
func (s *Session) InitializeResponse() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Response = ResponseState{
		Initialized:  true,
		LastWasValue: true,
	}
}

// AddHeader appends a header, enforcing the bounded header count.
func (s *Session) AddHeader(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.Request.Headers) >= maxHeaders {
		return ErrorHeaderLimit.Error(nil)
	}
	s.Request.Headers = append(s.Request.Headers, Header{Key: key, Value: value})
	return nil
}

// Join adds the session to a named group (§4.9, supplemented from the
// original's session-group linked list).
func (s *Session) Join(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[name] = struct{}{}
}

// Leave removes the session from a named group.
func (s *Session) Leave(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, name)
}

// Groups returns the set of group names this session currently belongs to.
func (s *Session) Groups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.groups))
	for g := range s.groups {
		out = append(out, g)
	}
	return out
}

// EnqueueSocketIO appends a Socket.IO push payload to the per-session
// outbound queue. Nothing drains the queue on a timer; entries leave it only
// through DequeueSocketIO.
func (s *Session) EnqueueSocketIO(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sioQueue = append(s.sioQueue, payload)
}

// DequeueSocketIO pops the oldest pending Socket.IO payload, if any.
func (s *Session) DequeueSocketIO() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sioQueue) == 0 {
		return nil, false
	}
	msg := s.sioQueue[0]
	s.sioQueue = s.sioQueue[1:]
	return msg, true
}
