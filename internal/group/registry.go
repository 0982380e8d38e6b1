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

// Package group implements the named broadcast groups supplemented from the
// source's session-group linked list (bb_session_group): sessions join and
// leave groups by name, and a payload enqueued on a group reaches every
// member's Socket.IO outbound queue.
package group

import (
	"sync"

	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/internal/sht"
)

// member identifies a session by its SHT key halves rather than by
// *session.Session. Registry satisfies session.GroupLeaver, which is
// declared in the session package; only Broadcast needs the Session type.
type member struct {
	hi, lo uint64
}

// Registry tracks named groups and their member sessions. Safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[member]struct{}
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{groups: make(map[string]map[member]struct{})}
}

// Join adds the session identified by (hi, lo) to the named group.
func (r *Registry) Join(hi, lo uint64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.groups[name]
	if !ok {
		m = make(map[member]struct{})
		r.groups[name] = m
	}
	m[member{hi, lo}] = struct{}{}
}

// Leave removes the session from the named group, pruning the group entry
// entirely once it is empty.
func (r *Registry) Leave(hi, lo uint64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(hi, lo, name)
}

func (r *Registry) leaveLocked(hi, lo uint64, name string) {
	m, ok := r.groups[name]
	if !ok {
		return
	}
	delete(m, member{hi, lo})
	if len(m) == 0 {
		delete(r.groups, name)
	}
}

// LeaveAll removes the session from every group in names, implementing
// session.GroupLeaver for Session.Close's step 4.
func (r *Registry) LeaveAll(uuidHi, uuidLo uint64, groups []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range groups {
		r.leaveLocked(uuidHi, uuidLo, name)
	}
}

// Members returns the keys of every session currently in the named group, in
// no particular order.
func (r *Registry) Members(name string) []sht.Key {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.groups[name]
	if !ok {
		return nil
	}
	out := make([]sht.Key, 0, len(m))
	for mm := range m {
		out = append(out, sht.Key{Hi: mm.hi, Lo: mm.lo})
	}
	return out
}

// Broadcast enumerates every session registered under name and pushes
// payload onto each one's Socket.IO outbound queue, skipping members the
// table no longer holds (the session closed between Members and delivery).
func (r *Registry) Broadcast(table *sht.Table[*session.Session], name string, payload []byte) int {
	delivered := 0
	for _, key := range r.Members(name) {
		s, ok := table.Get(key)
		if !ok {
			continue
		}
		s.EnqueueSocketIO(payload)
		delivered++
	}
	return delivered
}
