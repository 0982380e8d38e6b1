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

// Package acceptor models a bound listening endpoint, its optional TLS
// context, and the virtual-host fixup that binds vhosts to acceptors at
// startup.
package acceptor

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"

	"golang.org/x/net/http2"

	"github.com/customwebapps/blastbeat/gwerr"
	"github.com/customwebapps/blastbeat/internal/vhost"
	"github.com/customwebapps/blastbeat/log"
)

var logAcceptor = log.New("acceptor")

// Acceptor is a bound listening endpoint.
type Acceptor struct {
	Name   string
	Addr   string // host:port
	Shared bool

	SSLCertificate string
	SSLKey         string

	VHosts []*vhost.VirtualHost

	srv *http.Server
	ln  net.Listener
}

// New returns an unbound Acceptor.
func New(name, listen string, shared bool) *Acceptor {
	return &Acceptor{Name: name, Addr: listen, Shared: shared}
}

// PushVHost appends v to the acceptor's vhost list if not already present,
// matching bb_acceptor_push_vhost's dedup-by-identity check.
func (a *Acceptor) PushVHost(v *vhost.VirtualHost) {
	for _, existing := range a.VHosts {
		if existing == v {
			return
		}
	}
	a.VHosts = append(a.VHosts, v)
}

// TLSConfig builds a *tls.Config for this acceptor, applying vhost-level
// certificate overrides via GetCertificate — the Go equivalent of
// bb_assign_ssl's per-vhost certificate/key selection, resolved per
// handshake via SNI instead of once at startup.
func (a *Acceptor) TLSConfig(globalCert, globalKey string) (*tls.Config, error) {
	certs := map[string]tls.Certificate{}

	load := func(name, cert, key string) error {
		if cert == "" {
			cert = globalCert
		}
		if key == "" {
			key = globalKey
		}
		if cert == "" {
			return ErrorMissingCertificate.Error(nil)
		}
		if key == "" {
			return ErrorMissingKey.Error(nil)
		}
		pair, err := tls.LoadX509KeyPair(cert, key)
		if err != nil {
			return ErrorMissingCertificate.Errorf(err, name)
		}
		certs[name] = pair
		return nil
	}

	if err := load(a.Name, a.SSLCertificate, a.SSLKey); err != nil {
		return nil, err
	}

	for _, v := range a.VHosts {
		if err := load(v.Name, v.SSLCertificate, v.SSLKey); err != nil {
			return nil, err
		}
	}

	cfg := &tls.Config{
		GetCertificate: func(hello *tls.ClientHelloInfo) (*tls.Certificate, error) {
			if c, ok := certs[hello.ServerName]; ok {
				return &c, nil
			}
			c := certs[a.Name]
			return &c, nil
		},
	}

	return cfg, nil
}

// Listen binds the acceptor and starts serving handler. On a TLS acceptor it
// calls http2.ConfigureServer before listening, with a default http2.Server
// (no MaxConcurrentStreams or IdleTimeout set).
func (a *Acceptor) Listen(ctx context.Context, handler http.Handler, tlsCfg *tls.Config) error {
	srv := &http.Server{
		Addr:    a.Addr,
		Handler: handler,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	if tlsCfg != nil {
		srv.TLSConfig = tlsCfg

		h2 := &http2.Server{}
		if err := http2.ConfigureServer(srv, h2); err != nil {
			return gwerr.MinPkgAcceptor.Error(err)
		}
	}

	ln, err := net.Listen("tcp", a.Addr)
	if err != nil {
		return ErrorListen.Errorf(err, a.Addr)
	}
	a.ln = ln
	a.srv = srv

	go func() {
		var serveErr error
		if tlsCfg != nil {
			serveErr = srv.ServeTLS(ln, "", "")
		} else {
			serveErr = srv.Serve(ln)
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			logAcceptor.WithField("acceptor", a.Name).Errorf("listen: %v", serveErr)
		}
	}()

	logAcceptor.WithField("acceptor", a.Name).Infof("listening on %s", a.Addr)
	return nil
}

// Shutdown gracefully stops the acceptor's server.
func (a *Acceptor) Shutdown(ctx context.Context) error {
	if a.srv == nil {
		return nil
	}
	return a.srv.Shutdown(ctx)
}
