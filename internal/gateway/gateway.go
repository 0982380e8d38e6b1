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

// Package gateway is the front door: it adapts net/http's request model onto
// the Connection/Session/Dealer pipeline the rest of internal/ implements,
// taking over the raw socket via http.Hijacker so a session's eventual
// response can be written as the protocol hooks see fit (chunked HTTP/1.1,
// a WebSocket frame, a Socket.IO poll reply) rather than through
// http.ResponseWriter's one-shot model.
package gateway

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/customwebapps/blastbeat/internal/connection"
	"github.com/customwebapps/blastbeat/internal/dealer"
	"github.com/customwebapps/blastbeat/internal/group"
	"github.com/customwebapps/blastbeat/internal/metrics"
	"github.com/customwebapps/blastbeat/internal/orchestrator"
	"github.com/customwebapps/blastbeat/internal/protocol/http1"
	"github.com/customwebapps/blastbeat/internal/protocol/socketio"
	wsproto "github.com/customwebapps/blastbeat/internal/protocol/websocket"
	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/internal/sht"
	"github.com/customwebapps/blastbeat/internal/vhost"
	"github.com/customwebapps/blastbeat/log"
)

var logGateway = log.New("gateway")

// Outbound-to-dealer command vocabulary. "request" carries the initial
// envelope; "push" carries a frame the client sent after the request
// completed (a WebSocket data frame), for a persistent session whose dealer
// conversation outlives a single HTTP request/response.
const (
	commandRequest = "request"
	commandPush    = "push"
)

// bridge is the narrow view Gateway needs of the bus bridge: enough to
// publish the initial request frame and emit the end-of-session frame,
// never the full Bridge type, so this package and internal/router don't
// need to know about each other's concrete types beyond this.
type bridge interface {
	Publish(identity string, key sht.Key, command string, payload []byte) error
	EmitEnd(identity string, key sht.Key) error
}

// Gateway dispatches hijacked HTTP connections to a dealer over the router
// bridge and routes replies back by session UUID.
type Gateway struct {
	Orch    *orchestrator.Orchestrator
	Bridge  bridge
	Groups  *group.Registry
	Metrics *metrics.Metrics

	connsMu sync.Mutex
	conns   map[sht.Key]*connection.Connection
}

// New returns a Gateway wired to orch and bridge.
func New(orch *orchestrator.Orchestrator, br bridge, groups *group.Registry, m *metrics.Metrics) *Gateway {
	if m == nil {
		m = metrics.Null()
	}
	return &Gateway{
		Orch:    orch,
		Bridge:  br,
		Groups:  groups,
		Metrics: m,
		conns:   make(map[sht.Key]*connection.Connection),
	}
}

func (g *Gateway) trackConn(key sht.Key, c *connection.Connection) {
	g.connsMu.Lock()
	g.conns[key] = c
	g.connsMu.Unlock()
}

func (g *Gateway) untrackConn(key sht.Key) (*connection.Connection, bool) {
	g.connsMu.Lock()
	c, ok := g.conns[key]
	delete(g.conns, key)
	g.connsMu.Unlock()
	return c, ok
}

// closeByKey tears down a tracked session's socket. It is the counterpart
// to closeSession: closeSession releases the domain state (SHT entry,
// dealer load, groups), closeByKey releases the file descriptor — both are
// required on every terminal path (dealer "end", publish failure, or the
// connection's own read side failing) or the socket leaks forever.
func (g *Gateway) closeByKey(key sht.Key) {
	if c, ok := g.untrackConn(key); ok {
		c.Close(nil, nil)
	}
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}

// isSocketIOPath recognizes the Socket.IO 0.9 long-polling transport's URL
// convention ("/socket.io/1/..."), the era this gateway's wire framing (the
// "~m~<len>~m~<payload>" envelope in protocol/socketio) matches.
func isSocketIOPath(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/socket.io/")
}

// ServeHTTP implements §4.4's request path: protocol selection, vhost
// lookup, dealer selection, session creation, then handoff of the request
// envelope to the chosen dealer. The HTTP response is written later,
// asynchronously, by whichever session.Hooks variant was installed, as the
// dealer's reply frames arrive via Dispatch.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if isWebSocketUpgrade(r) {
		g.serveWebSocket(w, r)
		return
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "hijacking unsupported", http.StatusInternalServerError)
		return
	}

	sock, buf, err := hj.Hijack()
	if err != nil {
		logGateway.Errorf("hijack: %v", err)
		return
	}

	leftover := drainRemainingBuffered(buf)
	conn := connection.New(r.RemoteAddr, sock, nil)

	var (
		v   *vhost.VirtualHost
		d   *dealer.Dealer
		s   *session.Session
		ok2 bool
	)

	g.Orch.Call(func(ctx *orchestrator.Context) {
		v, ok2 = vhost.Find(ctx.VHosts, r.Host)
		if !ok2 {
			return
		}
		d, ok2 = v.AssignDealer()
		if !ok2 {
			return
		}

		s = conn.NewSession(nil)
		if isSocketIOPath(r) {
			s.Hooks = socketio.New(conn)
			s.SetPersistent(true)
		} else {
			s.Hooks = http1.New(conn)
		}
		s.Dealer = d
		s.VHost = v
		ctx.Sessions.Add(s.Key(), s)
		g.Metrics.SetActiveSessions(ctx.Sessions.Len())
		g.Metrics.SetDealerLoad(d.Identity, d.Load())
	})

	if v == nil {
		writeDirect(conn, http.StatusNotFound, "no matching virtual host")
		conn.Close(nil, ErrorNoVHost.Error(nil))
		return
	}
	if d == nil {
		writeDirect(conn, http.StatusServiceUnavailable, "no dealer available")
		conn.Close(nil, ErrorNoDealerAvailable.Error(nil))
		return
	}

	g.trackConn(s.Key(), conn)
	go g.pumpReads(conn, sock, s)

	envelope := encodeRequestEnvelope(r)
	if len(leftover) > 0 {
		envelope = append(envelope, leftover...)
	}

	if err := g.Bridge.Publish(d.Identity, s.Key(), commandRequest, envelope); err != nil {
		logGateway.WithField("dealer", d.Identity).Errorf("publish request: %v", err)
		writeDirect(conn, http.StatusBadGateway, "dealer unreachable")
		g.closeSession(s)
		g.closeByKey(s.Key())
	}
}

// pumpReads keeps a hijacked connection's read side alive so a client-side
// close or error is noticed and torn down instead of leaking the socket
// forever. Bytes read are handed to the connection's installed handler (a
// protocol upgrade may have replaced it via SetHandler); there is none for
// the plain HTTP/1.1 request/response path, so they are simply discarded.
func (g *Gateway) pumpReads(conn *connection.Connection, sock net.Conn, s *session.Session) {
	buf := make([]byte, 4096)
	for {
		n, err := sock.Read(buf)
		if n > 0 {
			_ = conn.Dispatch(buf[:n])
		}
		if err != nil {
			g.closeSession(s)
			g.closeByKey(s.Key())
			return
		}
	}
}

// serveWebSocket performs the WebSocket handshake and keeps the connection
// alive for as long as the client does, forwarding every received frame to
// the dealer as a "push" and releasing the session when the socket closes.
func (g *Gateway) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(ws *websocket.Conn) {
		g.handleWebSocket(ws, r)
	}).ServeHTTP(w, r)
}

func (g *Gateway) handleWebSocket(ws *websocket.Conn, r *http.Request) {
	defer ws.Close()

	conn := connection.New(r.RemoteAddr, ws, nil)

	var (
		v   *vhost.VirtualHost
		d   *dealer.Dealer
		s   *session.Session
		ok2 bool
	)

	g.Orch.Call(func(ctx *orchestrator.Context) {
		v, ok2 = vhost.Find(ctx.VHosts, r.Host)
		if !ok2 {
			return
		}
		d, ok2 = v.AssignDealer()
		if !ok2 {
			return
		}

		s = conn.NewSession(nil)
		s.Hooks = wsproto.New(ws)
		s.Dealer = d
		s.VHost = v
		s.SetPersistent(true)
		ctx.Sessions.Add(s.Key(), s)
		g.Metrics.SetActiveSessions(ctx.Sessions.Len())
		g.Metrics.SetDealerLoad(d.Identity, d.Load())
	})

	if v == nil || d == nil {
		return
	}

	g.trackConn(s.Key(), conn)
	defer g.untrackConn(s.Key())

	envelope := encodeRequestEnvelope(r)
	if err := g.Bridge.Publish(d.Identity, s.Key(), commandRequest, envelope); err != nil {
		logGateway.WithField("dealer", d.Identity).Errorf("publish request: %v", err)
		g.closeSession(s)
		return
	}

	buf := make([]byte, 4096)
	for {
		n, err := ws.Read(buf)
		if n > 0 {
			frame := append([]byte(nil), buf[:n]...)
			if pubErr := g.Bridge.Publish(d.Identity, s.Key(), commandPush, frame); pubErr != nil {
				logGateway.WithField("dealer", d.Identity).Errorf("publish push: %v", pubErr)
			}
		}
		if err != nil {
			g.closeSession(s)
			return
		}
	}
}

// closeSession runs Session.Close on the orchestrator goroutine, the same
// serialization every other domain mutation goes through.
func (g *Gateway) closeSession(s *session.Session) {
	g.Orch.Submit(func(ctx *orchestrator.Context) {
		_ = s.Close(ctx.Sessions, g.Groups, g.Bridge.EmitEnd)
		g.Metrics.SetActiveSessions(ctx.Sessions.Len())
	})
}

func writeDirect(c *connection.Connection, status int, reason string) {
	resp := "HTTP/1.1 " + strconv.Itoa(status) + " " + http.StatusText(status) + "\r\nContent-Length: " +
		strconv.Itoa(len(reason)) + "\r\nConnection: close\r\n\r\n" + reason
	c.Write([]byte(resp))
}
