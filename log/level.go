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

// Package log is the gateway's structured logging layer: a logrus-backed
// instance Logger plus a package-level Level type offering static helpers
// for call sites that only need "log this at this level".
package log

import (
	"github.com/sirupsen/logrus"
)

// Level is a uint8 log severity with static logging helpers.
type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	NilLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warning"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	case PanicLevel:
		return "panic"
	case NilLevel:
		return ""
	}

	return "unknown"
}

func (l Level) logrus() logrus.Level {
	switch l {
	case DebugLevel:
		return logrus.DebugLevel
	case InfoLevel:
		return logrus.InfoLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case FatalLevel:
		return logrus.FatalLevel
	case PanicLevel:
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// Logf logs a formatted message at this level on the default logger.
func (l Level) Logf(format string, args ...interface{}) {
	std.WithField("level", l.String()).Logf(l.logrus(), format, args...)
}

// Log logs args at this level on the default logger.
func (l Level) Log(args ...interface{}) {
	std.WithField("level", l.String()).Log(l.logrus(), args...)
}

// LogErrorCtxf logs a formatted message with an attached error, tagged with
// a free-form context label (pass "" when no extra context label applies).
func (l Level) LogErrorCtxf(ctx string, err error, format string, args ...interface{}) {
	e := std.WithField("level", l.String())
	if ctx != "" {
		e = e.WithField("context", ctx)
	}
	if err != nil {
		e = e.WithField("error", err.Error())
	}
	e.Logf(l.logrus(), format, args...)
}
