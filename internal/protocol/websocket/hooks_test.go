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

package websocket

import (
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

func newServerHooks(t *testing.T) (*Hooks, *websocket.Conn, func()) {
	t.Helper()

	serverConn := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(websocket.Handler(func(ws *websocket.Conn) {
		serverConn <- ws
		<-ws.Request().Context().Done()
	}))

	origin := "http://" + srv.Listener.Addr().String() + "/"
	url := "ws://" + srv.Listener.Addr().String() + "/"
	client, err := websocket.Dial(url, "", origin)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	var ws *websocket.Conn
	select {
	case ws = <-serverConn:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server handshake")
	}

	return New(ws), client, func() {
		client.Close()
		srv.Close()
	}
}

func TestSendHeadersIsANoOp(t *testing.T) {
	h, _, cleanup := newServerHooks(t)
	defer cleanup()

	if err := h.SendHeaders(nil, 200, nil); err != nil {
		t.Fatalf("SendHeaders returned error: %v", err)
	}
}

func TestSendBodyDeliversFrame(t *testing.T) {
	h, client, cleanup := newServerHooks(t)
	defer cleanup()

	if err := h.SendBody(nil, []byte("hello")); err != nil {
		t.Fatalf("SendBody: %v", err)
	}

	buf := make([]byte, 64)
	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Fatalf("unexpected frame payload: %q", buf[:n])
	}
}

func TestSendEndClosesConnection(t *testing.T) {
	h, client, cleanup := newServerHooks(t)
	defer cleanup()

	if err := h.SendEnd(nil); err != nil {
		t.Fatalf("SendEnd: %v", err)
	}

	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 8)
	if _, err := client.Read(buf); err == nil {
		t.Fatal("expected read to fail after server closed connection")
	}
}
