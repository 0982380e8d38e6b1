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

import (
	"testing"

	"github.com/customwebapps/blastbeat/gwerr"
	"github.com/customwebapps/blastbeat/internal/dealer"
	"github.com/customwebapps/blastbeat/internal/sht"
)

type fakeConn struct{ id string }

func (f *fakeConn) ID() string { return f.id }

func TestInitializeRequestIdempotent(t *testing.T) {
	s := New(&fakeConn{id: "c1"}, nil)
	_ = s.AddHeader("Host", "a.example")

	s.InitializeRequest()
	first := s.Request

	s.InitializeRequest()
	second := s.Request

	if first.Initialized != second.Initialized || first.LastWasValue != second.LastWasValue {
		t.Fatalf("expected repeated InitializeRequest to converge to the same state: %+v vs %+v", first, second)
	}
	if len(second.Headers) != 0 || len(second.Envelope) != 0 || len(second.WSQueue) != 0 {
		t.Fatalf("expected all transient allocations released, got %+v", second)
	}
}

func TestCloseNonPersistentEmitsExactlyOneEnd(t *testing.T) {
	table := sht.New[*Session](16)
	s := New(&fakeConn{id: "c1"}, nil)
	table.Add(s.Key(), s)

	d := dealer.New("D1")
	if _, ok := dealer.Select([]*dealer.Dealer{d}); !ok {
		t.Fatalf("expected dealer selectable")
	}
	s.Dealer = d

	ends := 0
	s.Close(table, nil, func(identity string, key sht.Key) error {
		ends++
		if identity != "D1" {
			t.Fatalf("expected end frame addressed to D1, got %s", identity)
		}
		return nil
	})

	if ends != 1 {
		t.Fatalf("expected exactly one end frame, got %d", ends)
	}
	if d.Load() != 0 {
		t.Fatalf("expected dealer load decremented to 0, got %d", d.Load())
	}
	if _, ok := table.Get(s.Key()); ok {
		t.Fatalf("expected non-persistent session removed from SHT")
	}
	if s.Connection() != nil {
		t.Fatalf("expected session detached from its connection")
	}
}

func TestClosePersistentStaysInSHTAndSkipsEnd(t *testing.T) {
	table := sht.New[*Session](16)
	s := New(&fakeConn{id: "c1"}, nil)
	s.SetPersistent(true)
	table.Add(s.Key(), s)

	d := dealer.New("D1")
	s.Dealer = d

	ends := 0
	s.Close(table, nil, func(string, sht.Key) error {
		ends++
		return nil
	})

	if ends != 0 {
		t.Fatalf("expected no end frame for a persistent session, got %d", ends)
	}
	if _, ok := table.Get(s.Key()); !ok {
		t.Fatalf("expected persistent session to remain in the SHT")
	}
	if s.Connection() != nil {
		t.Fatalf("expected persistent session detached from its connection on close")
	}
}

func TestCloseTwiceIsIdempotent(t *testing.T) {
	table := sht.New[*Session](16)
	s := New(&fakeConn{id: "c1"}, nil)
	table.Add(s.Key(), s)

	d := dealer.New("D1")
	if _, ok := dealer.Select([]*dealer.Dealer{d}); !ok {
		t.Fatalf("expected dealer selectable")
	}
	s.Dealer = d

	ends := 0
	emit := func(string, sht.Key) error {
		ends++
		return nil
	}

	if err := s.Close(table, nil, emit); err != nil {
		t.Fatalf("expected first Close to succeed, got %v", err)
	}
	if err := s.Close(table, nil, emit); !gwerr.Is(err, ErrorAlreadyClosed) {
		t.Fatalf("expected second Close to return ErrorAlreadyClosed, got %v", err)
	}

	if ends != 1 {
		t.Fatalf("expected exactly one end frame across both calls, got %d", ends)
	}
	if d.Load() != 0 {
		t.Fatalf("expected dealer load decremented exactly once, got %d", d.Load())
	}
}

func TestStealthSessionSkipsEndFrame(t *testing.T) {
	table := sht.New[*Session](16)
	s := New(&fakeConn{id: "c1"}, nil)
	s.SetStealth(true)
	s.Dealer = dealer.New("D1")

	ends := 0
	s.Close(table, nil, func(string, sht.Key) error {
		ends++
		return nil
	})

	if ends != 0 {
		t.Fatalf("expected stealth session to suppress the end frame, got %d calls", ends)
	}
}
