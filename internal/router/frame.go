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
	"math"

	"github.com/customwebapps/blastbeat/internal/sht"
)

// outboundSubject derives the per-dealer publish subject from its routing
// identity, per §6's bus protocol.
func outboundSubject(identity string) string {
	return "blastbeat.dealer." + identity
}

// inboundSubject is the single shared subject every dealer publishes replies
// to; the bridge subscribes to it once at Start.
const inboundSubject = "blastbeat.inbound"

// encodeOutbound builds the wire payload for a frame sent to a dealer:
// [uuid-hi(8)][uuid-lo(8)][command-len(2)][command][payload], per §6.
func encodeOutbound(key sht.Key, command string, payload []byte) ([]byte, error) {
	if len(command) > math.MaxUint16 {
		return nil, ErrorFrameCommandTooLong.Error(nil)
	}

	buf := make([]byte, 8+8+2+len(command)+len(payload))
	binary.BigEndian.PutUint64(buf[0:8], key.Hi)
	binary.BigEndian.PutUint64(buf[8:16], key.Lo)
	binary.BigEndian.PutUint16(buf[16:18], uint16(len(command)))
	copy(buf[18:18+len(command)], command)
	copy(buf[18+len(command):], payload)

	return buf, nil
}

// inboundFrame is a decoded message published by a dealer on inboundSubject.
type inboundFrame struct {
	DealerIdentity string
	Key            sht.Key
	Command        string
	Payload        []byte
}

// decodeInbound parses the leading-dealer-identity variant of the frame:
// [identity-len(2)][identity][uuid-hi(8)][uuid-lo(8)][command-len(2)][command][payload].
func decodeInbound(b []byte) (inboundFrame, error) {
	var f inboundFrame

	if len(b) < 2 {
		return f, ErrorFrameTooShort.Error(nil)
	}
	idLen := int(binary.BigEndian.Uint16(b[0:2]))
	b = b[2:]

	if len(b) < idLen+8+8+2 {
		return f, ErrorFrameTooShort.Error(nil)
	}
	f.DealerIdentity = string(b[:idLen])
	b = b[idLen:]

	f.Key.Hi = binary.BigEndian.Uint64(b[0:8])
	f.Key.Lo = binary.BigEndian.Uint64(b[8:16])
	b = b[16:]

	cmdLen := int(binary.BigEndian.Uint16(b[0:2]))
	b = b[2:]

	if len(b) < cmdLen {
		return f, ErrorFrameTooShort.Error(nil)
	}
	f.Command = string(b[:cmdLen])
	f.Payload = b[cmdLen:]

	return f, nil
}
