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

package router

import (
	"encoding/binary"
	"testing"

	"github.com/customwebapps/blastbeat/internal/sht"
)

func TestEncodeOutboundLayout(t *testing.T) {
	key := sht.Key{Hi: 0x0102030405060708, Lo: 0x1112131415161718}
	buf, err := encodeOutbound(key, "push", []byte("payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := binary.BigEndian.Uint64(buf[0:8]); got != key.Hi {
		t.Fatalf("uuid-hi mismatch: got %x", got)
	}
	if got := binary.BigEndian.Uint64(buf[8:16]); got != key.Lo {
		t.Fatalf("uuid-lo mismatch: got %x", got)
	}
	if got := binary.BigEndian.Uint16(buf[16:18]); got != 4 {
		t.Fatalf("command length mismatch: got %d", got)
	}
	if string(buf[18:22]) != "push" {
		t.Fatalf("command mismatch: got %q", buf[18:22])
	}
	if string(buf[22:]) != "payload" {
		t.Fatalf("payload mismatch: got %q", buf[22:])
	}
}

func TestDecodeInboundRoundTrip(t *testing.T) {
	key := sht.Key{Hi: 42, Lo: 7}

	identity := "dealer-A"
	body, err := encodeOutbound(key, "reply", []byte("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame := make([]byte, 2+len(identity)+len(body))
	binary.BigEndian.PutUint16(frame[0:2], uint16(len(identity)))
	copy(frame[2:2+len(identity)], identity)
	copy(frame[2+len(identity):], body)

	f, err := decodeInbound(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.DealerIdentity != identity {
		t.Fatalf("expected identity %q, got %q", identity, f.DealerIdentity)
	}
	if f.Key != key {
		t.Fatalf("expected key %+v, got %+v", key, f.Key)
	}
	if f.Command != "reply" {
		t.Fatalf("expected command %q, got %q", "reply", f.Command)
	}
	if string(f.Payload) != "hello" {
		t.Fatalf("expected payload %q, got %q", "hello", f.Payload)
	}
}

func TestDecodeInboundRejectsShortFrame(t *testing.T) {
	if _, err := decodeInbound([]byte{0, 1}); err == nil {
		t.Fatalf("expected an error for a truncated frame")
	}
}
