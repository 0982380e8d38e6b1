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

package connection

import (
	"io"
	"sync"
)

// writeItem is the two-case variant called for in the design notes: either
// the queue borrows the slice (caller keeps ownership, no further action on
// completion) or it owns the slice (kept alive only for the queue's use).
// Go's GC makes the distinction moot for memory safety, but it is kept to
// preserve the completion-callback contract: borrowed buffers must not be
// mutated by the caller until onComplete fires.
type writeItem struct {
	buf        []byte
	offset     int
	owned      bool
	onComplete func(error)
}

func (w *writeItem) remaining() []byte {
	return w.buf[w.offset:]
}

func (w *writeItem) done() bool {
	return w.offset >= len(w.buf)
}

// WriteQueue is a FIFO of pending writes for one Connection.
type WriteQueue struct {
	mu    sync.Mutex
	items []*writeItem
}

// EnqueueBorrowed adds a write item that does not own buf; the caller must
// not mutate buf until onComplete (if given) fires.
func (q *WriteQueue) EnqueueBorrowed(buf []byte, onComplete func(error)) {
	q.enqueue(&writeItem{buf: buf, onComplete: onComplete})
}

// EnqueueOwned adds a write item that owns buf exclusively.
func (q *WriteQueue) EnqueueOwned(buf []byte, onComplete func(error)) {
	q.enqueue(&writeItem{buf: buf, owned: true, onComplete: onComplete})
}

func (q *WriteQueue) enqueue(it *writeItem) {
	q.mu.Lock()
	q.items = append(q.items, it)
	q.mu.Unlock()
}

// Empty reports whether the queue currently has no pending items.
func (q *WriteQueue) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Flush writes items head-first to w. A partial write (n < len(remaining))
// leaves the unwritten tail at the head of the queue for the next Flush
// call, per §4.7/§8. Flush stops and returns nil on the first short write
// (the equivalent of the reactor seeing EAGAIN) so the caller can re-arm
// write readiness; it returns a non-nil error only on a genuine write
// failure, at which point the caller is expected to close the connection.
func (q *WriteQueue) Flush(w io.Writer) error {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			return nil
		}
		it := q.items[0]
		q.mu.Unlock()

		n, err := w.Write(it.remaining())
		it.offset += n

		if err != nil {
			q.removeHead()
			if it.onComplete != nil {
				it.onComplete(err)
			}
			return ErrorWrite.Error(err)
		}

		if !it.done() {
			// short write: stay at the head, wait for the next readiness.
			return nil
		}

		q.removeHead()
		if it.onComplete != nil {
			it.onComplete(nil)
		}
	}
}

func (q *WriteQueue) removeHead() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
}

// Drain empties the queue, invoking each pending item's completion callback
// with the given teardown error (called when the connection is closed with
// writes still pending).
func (q *WriteQueue) Drain(teardownErr error) {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()

	for _, it := range items {
		if it.onComplete != nil {
			it.onComplete(teardownErr)
		}
	}
}
