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

// Package gwerr implements the gateway-wide error taxonomy: a small numeric
// CodeError per package, offset from a reserved base, with a registered
// human message and optional wrapped parent error.
package gwerr

import "strconv"

// CodeError is a small numeric error code, namespaced per package by a
// MinPkgXxx base constant.
type CodeError uint16

const (
	// UnknownError is returned when no specific code applies.
	UnknownError CodeError = 0
)

const (
	MinPkgConfig CodeError = 100 * (iota + 1)
	MinPkgSHT
	MinPkgSession
	MinPkgConnection
	MinPkgDealer
	MinPkgVHost
	MinPkgAcceptor
	MinPkgRouter
	MinPkgPinger
	MinPkgGroup
	MinPkgPrivilege
	MinPkgHTTP1
	MinPkgWebSocket
	MinPkgSocketIO
	MinPkgSPDY
	MinPkgGateway
)

var registry = make(map[CodeError]func() string)

// RegisterIdFctMessage binds the message function for every code from base
// to base+99, called once from each package's init().
func RegisterIdFctMessage(base CodeError, fct func(code CodeError) string) {
	// the registry stores a closure per concrete code so Error() never needs
	// the originating package's switch statement in scope.
	for c := base; c < base+100; c++ {
		code := c
		if msg := fct(code); msg != "" {
			registry[code] = func() string { return msg }
		}
	}
}

func (c CodeError) String() string {
	return strconv.Itoa(int(c))
}

func (c CodeError) message() string {
	if f, ok := registry[c]; ok {
		return f()
	}
	return "unknown error"
}

// Error builds an Error value from this code and an optional parent cause.
func (c CodeError) Error(parent error) Error {
	return &codeErr{code: c, parent: parent}
}

// Errorf is Error with a formatted detail string appended to the message.
func (c CodeError) Errorf(parent error, detail string) Error {
	return &codeErr{code: c, parent: parent, detail: detail}
}
