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

package gwerr

// Error is the gateway's error interface: a code, a human message, an
// optional free-form detail, and an optional wrapped parent.
type Error interface {
	error
	IsCode(code CodeError) bool
	Code() CodeError
	Unwrap() error
}

type codeErr struct {
	code   CodeError
	detail string
	parent error
}

func (e *codeErr) Error() string {
	msg := e.code.message()

	if e.detail != "" {
		msg += ": " + e.detail
	}

	if e.parent != nil {
		msg += ": " + e.parent.Error()
	}

	return msg
}

func (e *codeErr) IsCode(code CodeError) bool {
	return e != nil && e.code == code
}

func (e *codeErr) Code() CodeError {
	return e.code
}

func (e *codeErr) Unwrap() error {
	return e.parent
}

// Is reports whether err is a gwerr.Error carrying the given code.
func Is(err error, code CodeError) bool {
	if e, ok := err.(Error); ok {
		return e.IsCode(code)
	}
	return false
}
