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

// Package vhost models a named routing target: the set of dealers it fans
// requests out to, optional per-vhost TLS material overrides, and the
// acceptors it is explicitly bound to.
package vhost

import (
	"strings"

	"github.com/customwebapps/blastbeat/internal/dealer"
)

// VirtualHost is a name-based routing target.
type VirtualHost struct {
	Name string

	// AcceptorNames are the acceptors this vhost explicitly binds to in
	// config; empty means "bind to every shared acceptor" (§4.6 fixup).
	AcceptorNames []string

	Dealers []*dealer.Dealer

	SSLCertificate string
	SSLKey         string
}

// MatchesHost reports whether host (as presented by the client, e.g. the
// HTTP Host header) names this vhost: case-insensitive, exact length.
func (v *VirtualHost) MatchesHost(host string) bool {
	return len(host) == len(v.Name) && strings.EqualFold(host, v.Name)
}

// AssignDealer implements §4.4: pick the least-loaded available dealer.
func (v *VirtualHost) AssignDealer() (*dealer.Dealer, bool) {
	return dealer.Select(v.Dealers)
}

// Find looks up a vhost by host name among a list, per §4.4 step 1.
func Find(list []*VirtualHost, host string) (*VirtualHost, bool) {
	for _, v := range list {
		if v.MatchesHost(host) {
			return v, true
		}
	}
	return nil, false
}
