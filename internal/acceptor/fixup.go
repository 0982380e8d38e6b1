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

package acceptor

import "github.com/customwebapps/blastbeat/internal/vhost"

// Fix implements §4.6: bind every vhost to the acceptors it explicitly
// names, then bind every vhost with no explicit binding to every shared
// acceptor. Order-insensitive and idempotent — running it twice must not
// duplicate any vhost in any acceptor's list, which PushVHost guarantees.
func Fix(acceptors []*Acceptor, vhosts []*vhost.VirtualHost) {
	byName := make(map[string]*Acceptor, len(acceptors))
	for _, a := range acceptors {
		byName[a.Name] = a
	}

	for _, v := range vhosts {
		for _, name := range v.AcceptorNames {
			if a, ok := byName[name]; ok {
				a.PushVHost(v)
			}
		}
	}

	for _, v := range vhosts {
		if len(v.AcceptorNames) > 0 {
			continue
		}
		for _, a := range acceptors {
			if a.Shared {
				a.PushVHost(v)
			}
		}
	}
}
