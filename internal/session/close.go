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

package session

import "github.com/customwebapps/blastbeat/internal/sht"

// GroupLeaver is the narrow view Close needs of the group registry: leave
// every group this session belongs to. Implemented by *group.Registry.
type GroupLeaver interface {
	LeaveAll(uuidHi, uuidLo uint64, groups []string)
}

// EmitEnd sends the four-frame (dealer-identity, uuid, "end", "") message on
// the router bridge. Implemented by *router.Bridge.
type EmitEnd func(dealerIdentity string, key sht.Key) error

// Close implements §4.1's six-step close sequence. It is idempotent: a
// second call on an already-closed Session returns ErrorAlreadyClosed and
// does nothing else, guarded by closed exactly the way
// connection.Connection.Close guards against a double teardown.
func (s *Session) Close(table *sht.Table[*Session], groups GroupLeaver, emitEnd EmitEnd) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrorAlreadyClosed.Error(nil)
	}
	s.closed = true

	persistent := s.persistent
	stealth := s.stealth
	d := s.Dealer
	s.Dealer = nil
	grp := make([]string, 0, len(s.groups))
	for g := range s.groups {
		grp = append(grp, g)
	}
	key := s.Key()
	s.mu.Unlock()

	// 1. remove from SHT unless persistent.
	if !persistent && table != nil {
		table.Remove(key)
	}

	// 2. clear request state.
	s.InitializeRequest()

	// 3. transient queues are released by InitializeRequest/GC; the
	// Socket.IO queue is only cleared here when the session will not
	// survive (persistent sessions keep their pending pushes).
	if !persistent {
		s.mu.Lock()
		s.sioQueue = nil
		s.mu.Unlock()
	}

	// 4. leave groups and emit the end frame, non-persistent only.
	if !persistent {
		if groups != nil && len(grp) > 0 {
			groups.LeaveAll(key.Hi, key.Lo, grp)
		}
		s.mu.Lock()
		for _, g := range grp {
			delete(s.groups, g)
		}
		s.mu.Unlock()

		if d != nil && !stealth {
			d.DecLoad()
			if emitEnd != nil {
				_ = emitEnd(d.Identity, key)
			}
		}
	}

	// 5. detach from the connection (the connection's own list surgery is
	// the caller's responsibility — see connection.Connection.remove).
	s.Detach()

	// 6. non-persistent sessions have nothing further to release in Go;
	// the GC reclaims the struct once the SHT and connection both drop it.
	return nil
}
