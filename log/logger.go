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

package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stderr)
	std.SetLevel(logrus.InfoLevel)
}

// SetLevel sets the minimum level the default logger emits.
func SetLevel(l Level) {
	std.SetLevel(l.logrus())
}

// Logger is the instance-based logging facade threaded through components
// that need to attach stable structured fields (session uuid, dealer
// identity, connection id) to every line they emit.
type Logger interface {
	WithField(key string, value interface{}) Logger
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logger struct {
	e *logrus.Entry
}

// New returns a Logger rooted at the default backend with a component tag.
func New(component string) Logger {
	return &logger{e: std.WithField("component", component)}
}

func (l *logger) WithField(key string, value interface{}) Logger {
	return &logger{e: l.e.WithField(key, value)}
}

func (l *logger) Debugf(format string, args ...interface{}) { l.e.Debugf(format, args...) }
func (l *logger) Infof(format string, args ...interface{})  { l.e.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...interface{})  { l.e.Warnf(format, args...) }
func (l *logger) Errorf(format string, args ...interface{}) { l.e.Errorf(format, args...) }
