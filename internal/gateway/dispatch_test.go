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

package gateway

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/customwebapps/blastbeat/internal/connection"
	"github.com/customwebapps/blastbeat/internal/dealer"
	"github.com/customwebapps/blastbeat/internal/group"
	"github.com/customwebapps/blastbeat/internal/orchestrator"
	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/internal/sht"
)

// recordingHooks counts SendEnd calls instead of rendering anything onto a
// real socket, enough to observe Dispatch's CommandEnd behavior.
type recordingHooks struct {
	mu      sync.Mutex
	ends    int
	headers int
	bodies  int
}

func (h *recordingHooks) SendHeaders(*session.Session, int, []session.Header) error {
	h.mu.Lock()
	h.headers++
	h.mu.Unlock()
	return nil
}

func (h *recordingHooks) SendBody(*session.Session, []byte) error {
	h.mu.Lock()
	h.bodies++
	h.mu.Unlock()
	return nil
}

func (h *recordingHooks) SendEnd(*session.Session) error {
	h.mu.Lock()
	h.ends++
	h.mu.Unlock()
	return nil
}

type fakeBridge struct{}

func (fakeBridge) Publish(string, sht.Key, string, []byte) error { return nil }
func (fakeBridge) EmitEnd(string, sht.Key) error                 { return nil }

func newTestGateway(t *testing.T) (*Gateway, *orchestrator.Context, func()) {
	t.Helper()

	domainCtx := &orchestrator.Context{Sessions: sht.New[*session.Session](16)}
	orch := orchestrator.New(domainCtx, 16)

	runCtx, cancel := context.WithCancel(context.Background())
	go orch.Run(runCtx)

	groups := group.New()
	g := New(orch, fakeBridge{}, groups, nil)
	return g, domainCtx, cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition never became true")
}

func TestDispatchEndClosesTrackedConnection(t *testing.T) {
	g, domainCtx, cancel := newTestGateway(t)
	defer cancel()

	sock, peer := net.Pipe()
	defer peer.Close()

	conn := connection.New("c1", sock, nil)
	s := conn.NewSession(&recordingHooks{})
	s.Dealer = dealer.New("D1")
	domainCtx.Sessions.Add(s.Key(), s)
	g.trackConn(s.Key(), conn)

	dispatch := g.Dispatch(domainCtx)
	dispatch(s.Key(), CommandEnd, nil)

	waitFor(t, conn.Closed)

	if _, ok := g.untrackConn(s.Key()); ok {
		t.Fatalf("expected CommandEnd to have already released the tracked connection")
	}
}

func TestDispatchJoinLeaveBroadcast(t *testing.T) {
	g, domainCtx, cancel := newTestGateway(t)
	defer cancel()

	s := session.New(nil, &recordingHooks{})
	domainCtx.Sessions.Add(s.Key(), s)

	dispatch := g.Dispatch(domainCtx)

	dispatch(s.Key(), CommandJoin, []byte("room1"))
	if groups := s.Groups(); len(groups) != 1 || groups[0] != "room1" {
		t.Fatalf("expected session to have joined room1, got %v", groups)
	}

	delivered := g.Groups.Broadcast(domainCtx.Sessions, "room1", []byte("hello"))
	if delivered != 1 {
		t.Fatalf("expected broadcast to reach 1 member, got %d", delivered)
	}
	msg, ok := s.DequeueSocketIO()
	if !ok || string(msg) != "hello" {
		t.Fatalf("expected session's queue to hold the broadcast payload, got %q ok=%v", msg, ok)
	}

	dispatch(s.Key(), CommandBroadcast, []byte("room1\nvia-dispatch"))
	msg, ok = s.DequeueSocketIO()
	if !ok || string(msg) != "via-dispatch" {
		t.Fatalf("expected dispatch's CommandBroadcast case to reach the group, got %q ok=%v", msg, ok)
	}

	dispatch(s.Key(), CommandLeave, []byte("room1"))
	if groups := s.Groups(); len(groups) != 0 {
		t.Fatalf("expected session to have left room1, got %v", groups)
	}

	delivered = g.Groups.Broadcast(domainCtx.Sessions, "room1", []byte("after-leave"))
	if delivered != 0 {
		t.Fatalf("expected no members left in room1 after leaving, got %d", delivered)
	}
}
