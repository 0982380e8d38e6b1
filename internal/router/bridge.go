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

// Package router is the message-bus bridge: the concrete NATS-backed
// realization of the spec's abstract router socket. Outbound frames publish
// to a per-dealer subject; inbound frames arrive on one shared subject and
// are handed to a Deliver callback for dispatch by session UUID.
package router

import (
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/customwebapps/blastbeat/internal/sht"
	"github.com/customwebapps/blastbeat/log"
)

var logRouter = log.New("router")

// DealerTouch is called for every inbound frame, before dispatch, so the
// dealer pool can update last_seen and revive a previously-demoted dealer —
// regardless of the frame's command, per §4.8's last-seen contract.
type DealerTouch func(identity string)

// Deliver receives a decoded inbound frame for dispatch by session UUID; it
// runs on the subscription's goroutine. The spec's "drop silently if missing" contract means this
// function never needs to report failure back to the bridge.
type Deliver func(key sht.Key, command string, payload []byte)

// Bridge owns the NATS connection and the single inbound subscription.
type Bridge struct {
	mu   sync.Mutex
	conn *nats.Conn
	sub  *nats.Subscription
}

// New returns an unconnected Bridge.
func New() *Bridge {
	return &Bridge{}
}

// Start connects to the bus at url and subscribes to the shared inbound
// subject, invoking touch then deliver for each message. Mirrors the
// teacher's component Start/Init shape: connect, then arm the one
// subscription this component owns.
func (b *Bridge) Start(url string, touch DealerTouch, deliver Deliver) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := nats.Connect(url)
	if err != nil {
		return ErrorConnect.Error(err)
	}

	sub, err := conn.Subscribe(inboundSubject, func(msg *nats.Msg) {
		frame, ferr := decodeInbound(msg.Data)
		if ferr != nil {
			logRouter.Errorf("decode inbound frame: %v", ferr)
			return
		}
		if touch != nil {
			touch(frame.DealerIdentity)
		}
		if deliver != nil {
			deliver(frame.Key, frame.Command, frame.Payload)
		}
	})
	if err != nil {
		conn.Close()
		return ErrorConnect.Error(err)
	}

	b.conn = conn
	b.sub = sub
	return nil
}

// Stop unsubscribes and closes the connection. Safe to call on an already
// stopped or never-started Bridge.
func (b *Bridge) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sub != nil {
		_ = b.sub.Unsubscribe()
		b.sub = nil
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// IsConnected reports whether the bridge currently holds a live connection.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil && b.conn.IsConnected()
}

// Publish sends one framed message to the dealer identified by identity.
// Publish builds the full payload via encodeOutbound first, so the send
// itself is a single atomic bus operation, per §5.
func (b *Bridge) Publish(identity string, key sht.Key, command string, payload []byte) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()

	if conn == nil {
		return ErrorNotConnected.Error(nil)
	}

	buf, err := encodeOutbound(key, command, payload)
	if err != nil {
		return err
	}

	if err := conn.Publish(outboundSubject(identity), buf); err != nil {
		return ErrorPublish.Error(err)
	}
	return nil
}

// EmitEnd implements session.EmitEnd: the four-frame "end" message sent when
// a non-stealth session with an attached dealer closes.
func (b *Bridge) EmitEnd(identity string, key sht.Key) error {
	return b.Publish(identity, key, "end", nil)
}

// EmitPing implements the pinger's probe send, per §4.5.
func (b *Bridge) EmitPing(identity string, key sht.Key) error {
	return b.Publish(identity, key, "ping", nil)
}
