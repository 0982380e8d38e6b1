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

package group

import (
	"testing"

	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/internal/sht"
)

func TestJoinLeaveAndBroadcast(t *testing.T) {
	r := New()
	table := sht.New[*session.Session](16)

	s1 := session.New(nil, nil)
	s2 := session.New(nil, nil)
	table.Add(s1.Key(), s1)
	table.Add(s2.Key(), s2)

	k1, k2 := s1.Key(), s2.Key()
	r.Join(k1.Hi, k1.Lo, "room-a")
	r.Join(k2.Hi, k2.Lo, "room-a")

	if len(r.Members("room-a")) != 2 {
		t.Fatalf("expected 2 members in room-a, got %d", len(r.Members("room-a")))
	}

	n := r.Broadcast(table, "room-a", []byte("hi"))
	if n != 2 {
		t.Fatalf("expected broadcast to reach 2 sessions, got %d", n)
	}

	if msg, ok := s1.DequeueSocketIO(); !ok || string(msg) != "hi" {
		t.Fatalf("expected s1 to receive the broadcast payload")
	}
	if msg, ok := s2.DequeueSocketIO(); !ok || string(msg) != "hi" {
		t.Fatalf("expected s2 to receive the broadcast payload")
	}

	r.Leave(k1.Hi, k1.Lo, "room-a")
	if len(r.Members("room-a")) != 1 {
		t.Fatalf("expected 1 member remaining after leave, got %d", len(r.Members("room-a")))
	}

	r.Leave(k2.Hi, k2.Lo, "room-a")
	if members := r.Members("room-a"); members != nil {
		t.Fatalf("expected room-a pruned once empty, got %v", members)
	}
}

func TestLeaveAllRemovesFromEveryGroup(t *testing.T) {
	r := New()
	s := session.New(nil, nil)
	k := s.Key()

	r.Join(k.Hi, k.Lo, "a")
	r.Join(k.Hi, k.Lo, "b")
	r.Join(k.Hi, k.Lo, "c")

	r.LeaveAll(k.Hi, k.Lo, []string{"a", "b", "c"})

	for _, name := range []string{"a", "b", "c"} {
		if len(r.Members(name)) != 0 {
			t.Fatalf("expected group %q empty after LeaveAll", name)
		}
	}
}

func TestBroadcastSkipsMissingMembers(t *testing.T) {
	r := New()
	table := sht.New[*session.Session](16)

	s := session.New(nil, nil)
	k := s.Key()
	r.Join(k.Hi, k.Lo, "room")
	// deliberately not added to table: simulates a session that closed
	// between group registration and broadcast delivery.

	n := r.Broadcast(table, "room", []byte("x"))
	if n != 0 {
		t.Fatalf("expected 0 delivered for a member absent from the table, got %d", n)
	}
}
