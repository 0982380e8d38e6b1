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

package dealer

import (
	"github.com/customwebapps/blastbeat/internal/xmap"
)

// Pool is the process-wide registry of every known Dealer, keyed by
// identity. Virtual hosts hold ordered slices of *Dealer drawn from this
// pool; the pool itself is what the pinger walks on every tick.
type Pool struct {
	m *xmap.Map[string, *Dealer]
}

func NewPool() *Pool {
	return &Pool{m: xmap.New[string, *Dealer]()}
}

// Add registers a new dealer. Returns ErrorDuplicateIdentity if one with the
// same identity already exists.
func (p *Pool) Add(identity string) (*Dealer, error) {
	if _, ok := p.m.Load(identity); ok {
		return nil, ErrorDuplicateIdentity.Error(nil)
	}

	d := New(identity)
	p.m.Store(identity, d)
	return d, nil
}

func (p *Pool) Get(identity string) (*Dealer, bool) {
	return p.m.Load(identity)
}

func (p *Pool) Has(identity string) bool {
	_, ok := p.m.Load(identity)
	return ok
}

func (p *Pool) Del(identity string) {
	p.m.Delete(identity)
}

// List returns every registered dealer in unspecified order.
func (p *Pool) List() []*Dealer {
	var out []*Dealer
	p.m.Range(func(_ string, d *Dealer) bool {
		out = append(out, d)
		return true
	})
	return out
}
