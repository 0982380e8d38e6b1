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

// Package orchestrator is the Go realization of the spec's single-threaded
// cooperative reactor: one goroutine owns every piece of mutable domain
// state (the session table, the dealer pool, the vhost/acceptor lists) and
// applies every mutation as a command run on that goroutine. Session
// creation, dealer assignment and session close go through Submit/Call.
// Two paths read the state directly instead: the gateway's inbound Dispatch
// looks sessions up in the SHT, and the pinger walks the dealer pool; both
// rely on those structures being safe for concurrent use.
package orchestrator

import (
	"context"

	"github.com/customwebapps/blastbeat/internal/acceptor"
	"github.com/customwebapps/blastbeat/internal/dealer"
	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/internal/sht"
	"github.com/customwebapps/blastbeat/internal/vhost"
)

// Context is the domain state, reachable only from inside a command run on
// the Orchestrator's goroutine. It is named Context (not State) per the
// design notes' "explicit context value threaded through all callbacks"
// resolution of the spec's global-state open question.
type Context struct {
	Sessions  *sht.Table[*session.Session]
	Dealers   *dealer.Pool
	VHosts    []*vhost.VirtualHost
	Acceptors []*acceptor.Acceptor
}

// Command is a unit of work run exclusively on the Orchestrator goroutine,
// given exclusive access to the Context for its duration.
type Command func(ctx *Context)

// Orchestrator runs Commands one at a time from its internal channel.
type Orchestrator struct {
	ctx      *Context
	commands chan Command
}

// New allocates an Orchestrator with the given initial domain state and a
// buffered command channel (the buffer smooths bursts of independent
// connection goroutines submitting commands without forcing them to block
// on the reactor keeping up tick-for-tick).
func New(domainCtx *Context, queueDepth int) *Orchestrator {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	return &Orchestrator{ctx: domainCtx, commands: make(chan Command, queueDepth)}
}

// Run drains the command channel until ctx is cancelled. Meant to be started
// in its own goroutine at process startup; every other goroutine in the
// process communicates with it only through Submit/Call.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-o.commands:
			cmd(o.ctx)
		}
	}
}

// Submit enqueues cmd without waiting for it to run (fire-and-forget).
func (o *Orchestrator) Submit(cmd Command) {
	o.commands <- cmd
}

// Call enqueues cmd and blocks until it has run, for call sites that need a
// result back (e.g. dealer selection for an incoming request).
func (o *Orchestrator) Call(cmd Command) {
	done := make(chan struct{})
	o.commands <- func(ctx *Context) {
		cmd(ctx)
		close(done)
	}
	<-done
}
