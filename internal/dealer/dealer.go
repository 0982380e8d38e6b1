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

// Package dealer models a backend endpoint reachable over the router bridge:
// its routing identity, health status, outstanding load, and liveness
// timestamp, plus the least-loaded selection algorithm used by virtual-host
// dispatch.
package dealer

import (
	"sync/atomic"
	"time"
)

// Status is the dealer's health as tracked by the pinger.
type Status uint8

const (
	Available Status = iota
	Off
)

// Dealer is a named backend endpoint. All fields besides Identity are
// mutated only through the methods below, which are safe for concurrent use
// by the pinger goroutine and the orchestrator.
type Dealer struct {
	Identity string // opaque routing prefix on the bus

	load     int64
	status   int32 // Status, accessed atomically
	lastSeen int64 // unix nano, accessed atomically
}

// New returns a Dealer that starts out Available with last-seen set to now.
func New(identity string) *Dealer {
	d := &Dealer{Identity: identity}
	d.status = int32(Available)
	atomic.StoreInt64(&d.lastSeen, time.Now().UnixNano())
	return d
}

func (d *Dealer) Load() int64 {
	return atomic.LoadInt64(&d.load)
}

func (d *Dealer) incLoad() {
	atomic.AddInt64(&d.load, 1)
}

// DecLoad decrements load, floored at zero so a duplicate decrement (a bug
// elsewhere) cannot make load negative and corrupt selection.
func (d *Dealer) DecLoad() {
	for {
		cur := atomic.LoadInt64(&d.load)
		if cur <= 0 {
			return
		}
		if atomic.CompareAndSwapInt64(&d.load, cur, cur-1) {
			return
		}
	}
}

func (d *Dealer) Status() Status {
	return Status(atomic.LoadInt32(&d.status))
}

func (d *Dealer) setStatus(s Status) {
	atomic.StoreInt32(&d.status, int32(s))
}

// Demote marks the dealer off, as done by the pinger after a silence of more
// than 3x ping_freq.
func (d *Dealer) Demote() {
	d.setStatus(Off)
}

// Revive marks the dealer available again; called by the router bridge when
// an inbound frame is received from it.
func (d *Dealer) Revive() {
	d.setStatus(Available)
}

func (d *Dealer) LastSeen() time.Time {
	return time.Unix(0, atomic.LoadInt64(&d.lastSeen))
}

// Touch updates last-seen to now; called by the router bridge for every
// inbound frame, regardless of command.
func (d *Dealer) Touch() {
	atomic.StoreInt64(&d.lastSeen, time.Now().UnixNano())
}

// Select walks dealers in order, skipping Off ones, and returns the one with
// the smallest Load; ties are broken by iteration order (first encountered
// wins), exactly as the original assign_dealer algorithm. On success, the
// returned dealer's load has already been incremented.
func Select(dealers []*Dealer) (*Dealer, bool) {
	var best *Dealer

	for _, d := range dealers {
		if d.Status() == Off {
			continue
		}
		if best == nil || d.Load() < best.Load() {
			best = d
		}
	}

	if best == nil {
		return nil, false
	}

	best.incLoad()
	return best, true
}
