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

package sht

import "testing"

func TestAddGetRemove(t *testing.T) {
	tb := New[string](16)

	k := Key{Hi: 42, Lo: 7}
	tb.Add(k, "session-a")

	v, ok := tb.Get(k)
	if !ok || v != "session-a" {
		t.Fatalf("expected session-a, got %q ok=%v", v, ok)
	}

	tb.Remove(k)
	if _, ok := tb.Get(k); ok {
		t.Fatalf("expected entry removed")
	}
}

func TestCollisionsKeepAllRetrievable(t *testing.T) {
	tb := New[int](8)

	const n = 200
	for i := 0; i < n; i++ {
		tb.Add(Key{Hi: uint64(i), Lo: uint64(i)}, i)
	}

	if got := tb.Len(); got != n {
		t.Fatalf("expected %d entries, got %d", n, got)
	}

	for i := 0; i < n; i++ {
		v, ok := tb.Get(Key{Hi: uint64(i), Lo: uint64(i)})
		if !ok || v != i {
			t.Fatalf("entry %d not retrievable: got %d ok=%v", i, v, ok)
		}
	}
}

func TestDefaultSize(t *testing.T) {
	tb := New[int](0)
	if tb.Size() != 65536 {
		t.Fatalf("expected default size 65536, got %d", tb.Size())
	}
}
