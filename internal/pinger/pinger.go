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

// Package pinger implements the periodic dealer liveness probe: a
// timer-driven goroutine that, on every tick, calls its lookup function for
// the current dealers and emits probes or demotions as each one's
// last_seen timestamp warrants. It does not go through the orchestrator.
package pinger

import (
	"context"
	"time"

	"github.com/customwebapps/blastbeat/internal/dealer"
	"github.com/customwebapps/blastbeat/internal/sht"
	"github.com/customwebapps/blastbeat/log"
)

var logPinger = log.New("pinger")

// Prober sends the probe frame for one dealer; implemented by
// *router.Bridge.EmitPing bound to an empty session key, per §4.5's
// (identity, "", "ping", "") frame.
type Prober func(identity string, key sht.Key) error

// Pinger ticks every freq seconds, checking every dealer returned by lookup.
type Pinger struct {
	freq   time.Duration
	lookup func() []*dealer.Dealer
	probe  Prober
}

// New returns a Pinger with the given probe frequency. lookup supplies the
// current dealer set on each tick (typically an orchestrator command that
// snapshots the pool); probe sends the wire-level ping.
func New(freq time.Duration, lookup func() []*dealer.Dealer, probe Prober) *Pinger {
	return &Pinger{freq: freq, lookup: lookup, probe: probe}
}

// Run blocks, ticking every p.freq until ctx is cancelled. The first tick
// fires after freq/3 (the spec's "first fire at +1s" for the 3s default),
// not immediately, so a freshly-started dealer pool is not probed before any
// dealer has had a chance to connect.
func (p *Pinger) Run(ctx context.Context) {
	first := p.freq / 3
	if first <= 0 {
		first = p.freq
	}

	timer := time.NewTimer(first)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.tick()
			timer.Reset(p.freq)
		}
	}
}

func (p *Pinger) tick() {
	if p.lookup == nil {
		return
	}

	now := time.Now()
	for _, d := range p.lookup() {
		delta := now.Sub(d.LastSeen())

		if delta > p.freq {
			if p.probe != nil {
				if err := p.probe(d.Identity, sht.Key{}); err != nil {
					logPinger.WithField("dealer", d.Identity).Errorf("probe: %v", err)
				}
			}
		}

		if delta > 3*p.freq && d.Status() == dealer.Available {
			d.Demote()
			logPinger.WithField("dealer", d.Identity).Warnf("demoted after %s of silence", delta)
		}
	}
}
