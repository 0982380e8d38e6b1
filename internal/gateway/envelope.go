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
	"bufio"
	"io"
	"net/http"
	"strings"
)

// encodeRequestEnvelope serializes the parts of an inbound HTTP request a
// dealer needs to decide how to answer it: the request line and headers,
// in their original wire form, followed by the body. This is the Go
// equivalent of the original's uwsgi packet assembled from the http_parser
// callbacks (§4.3) — here net/http has already parsed the request, so the
// envelope is reconstructed from the parsed fields instead of captured
// byte-for-byte off the wire.
func encodeRequestEnvelope(r *http.Request) []byte {
	var b strings.Builder

	b.WriteString(r.Method)
	b.WriteByte(' ')
	b.WriteString(r.URL.RequestURI())
	b.WriteString(" HTTP/1.1\r\n")

	b.WriteString("Host: ")
	b.WriteString(r.Host)
	b.WriteString("\r\n")

	for key, values := range r.Header {
		for _, v := range values {
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	b.WriteString("\r\n")

	if r.Body != nil {
		body, _ := io.ReadAll(r.Body)
		return append([]byte(b.String()), body...)
	}

	return []byte(b.String())
}

// drainRemainingBuffered flushes whatever bufio.Reader bytes net/http has
// already pulled off the hijacked connection's socket before returning it,
// so those bytes are not silently dropped by a second reader layered on
// top. Returned nil when nothing was buffered.
func drainRemainingBuffered(rw *bufio.ReadWriter) []byte {
	if rw == nil || rw.Reader == nil {
		return nil
	}
	n := rw.Reader.Buffered()
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	_, _ = io.ReadFull(rw.Reader, buf)
	return buf
}
