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

package gateway

import (
	"strconv"

	"github.com/customwebapps/blastbeat/internal/orchestrator"
	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/internal/sht"
)

// Dealer-originated commands a session's hooks know how to render. A
// dealer sends zero or more "headers"/"body" frames followed by one "end".
// "join"/"leave"/"broadcast" are the §4.9 group-broadcast commands: a
// dealer moves a session in or out of a named group, or fans a payload out
// to everyone currently in one.
const (
	CommandHeaders   = "headers"
	CommandBody      = "body"
	CommandEnd       = "end"
	CommandJoin      = "join"
	CommandLeave     = "leave"
	CommandBroadcast = "broadcast"
)

// headersPayload is the wire encoding of a "headers" frame: a decimal
// status code, a newline, then "Key: Value\n" lines — simple enough that
// a dealer implementation needs no shared library to produce it.
func decodeHeadersPayload(payload []byte) (status int, headers []headerPair) {
	lines := splitLines(payload)
	if len(lines) == 0 {
		return 200, nil
	}
	status, _ = strconv.Atoi(string(lines[0]))
	if status == 0 {
		status = 200
	}
	for _, line := range lines[1:] {
		k, v, ok := splitHeaderLine(line)
		if ok {
			headers = append(headers, headerPair{k, v})
		}
	}
	return status, headers
}

type headerPair struct {
	Key   string
	Value string
}

func splitLines(b []byte) [][]byte {
	var out [][]byte
	start := 0
	for i, c := range b {
		if c == '\n' {
			out = append(out, b[start:i])
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, b[start:])
	}
	return out
}

func splitHeaderLine(b []byte) (key, value string, ok bool) {
	for i, c := range b {
		if c == ':' {
			key = string(b[:i])
			value = string(trimLeadingSpace(b[i+1:]))
			return key, value, true
		}
	}
	return "", "", false
}

func trimLeadingSpace(b []byte) []byte {
	for len(b) > 0 && b[0] == ' ' {
		b = b[1:]
	}
	return b
}

func toSessionHeaders(in []headerPair) []session.Header {
	out := make([]session.Header, len(in))
	for i, h := range in {
		out[i] = session.Header{Key: h.Key, Value: h.Value}
	}
	return out
}

// splitBroadcastPayload decodes a "broadcast" command's payload: the
// target group name, a newline, then the raw bytes to fan out.
func splitBroadcastPayload(payload []byte) (name string, data []byte) {
	for i, c := range payload {
		if c == '\n' {
			return string(payload[:i]), payload[i+1:]
		}
	}
	return string(payload), nil
}

// Dispatch builds the router.Deliver-compatible closure that routes an
// inbound dealer frame to the session it targets, per §4.8's "dispatch by
// session-UUID frame, drop silently if missing" contract. Session lookup
// reads the SHT directly — a concurrency-safe structure by construction —
// rather than going through the orchestrator, since rendering a reply is
// I/O that must never run on the reactor goroutine (§5).
func (g *Gateway) Dispatch(ctx *orchestrator.Context) func(key sht.Key, command string, payload []byte) {
	return func(key sht.Key, command string, payload []byte) {
		s, ok := ctx.Sessions.Get(key)
		if !ok {
			return
		}

		switch command {
		case CommandHeaders:
			status, headers := decodeHeadersPayload(payload)
			if err := s.Hooks.SendHeaders(s, status, toSessionHeaders(headers)); err != nil {
				logGateway.WithField("session", key.Hi).Errorf("send headers: %v", err)
			}
		case CommandBody:
			if err := s.Hooks.SendBody(s, payload); err != nil {
				logGateway.WithField("session", key.Hi).Errorf("send body: %v", err)
			}
		case CommandEnd:
			if err := s.Hooks.SendEnd(s); err != nil {
				logGateway.WithField("session", key.Hi).Errorf("send end: %v", err)
			}
			g.closeSession(s)
			g.closeByKey(key)
		case CommandJoin:
			name := string(payload)
			s.Join(name)
			if g.Groups != nil {
				g.Groups.Join(key.Hi, key.Lo, name)
			}
		case CommandLeave:
			name := string(payload)
			s.Leave(name)
			if g.Groups != nil {
				g.Groups.Leave(key.Hi, key.Lo, name)
			}
		case CommandBroadcast:
			if g.Groups != nil {
				name, data := splitBroadcastPayload(payload)
				g.Groups.Broadcast(ctx.Sessions, name, data)
			}
		}
	}
}
