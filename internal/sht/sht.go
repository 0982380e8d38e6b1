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

// Package sht implements the Session Hash Table: a fixed-size bucket array
// keyed by the first 64-bit half of a session UUID, with per-bucket chaining
// realized as a concurrency-safe typed map per bucket.
package sht

import (
	"github.com/customwebapps/blastbeat/internal/xmap"
)

// Key is the 128-bit session identity split into two 64-bit halves, as
// carried on the wire. Hi is the bucket-selection half.
type Key struct {
	Hi uint64
	Lo uint64
}

// Table is a fixed-size SHT. V is the stored session type.
type Table[V any] struct {
	size    uint64
	buckets []*xmap.Map[Key, V]
}

// New allocates a Table with the given bucket count, matching the `sht_size`
// configuration directive. size of 0 falls back to the spec's default of
// 65536.
func New[V any](size uint64) *Table[V] {
	if size == 0 {
		size = 65536
	}

	t := &Table[V]{
		size:    size,
		buckets: make([]*xmap.Map[Key, V], size),
	}

	for i := range t.buckets {
		t.buckets[i] = xmap.New[Key, V]()
	}

	return t
}

func (t *Table[V]) bucket(k Key) *xmap.Map[Key, V] {
	return t.buckets[k.Hi%t.size]
}

// Add inserts or overwrites the entry for k.
func (t *Table[V]) Add(k Key, v V) {
	t.bucket(k).Store(k, v)
}

// Get looks up the entry for k.
func (t *Table[V]) Get(k Key) (V, bool) {
	return t.bucket(k).Load(k)
}

// Remove deletes the entry for k, if present.
func (t *Table[V]) Remove(k Key) {
	t.bucket(k).Delete(k)
}

// Len walks every bucket counting live entries. O(n); stats/tests only.
func (t *Table[V]) Len() int {
	n := 0
	for _, b := range t.buckets {
		n += b.Len()
	}
	return n
}

// Size returns the configured bucket count.
func (t *Table[V]) Size() uint64 {
	return t.size
}
