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

// Package privilege drops root privileges after binding sockets, mirroring
// the original's drop_privileges: setgid before setuid, skipped entirely
// when not running as root.
package privilege

import (
	"os"

	"golang.org/x/sys/unix"
)

// Drop sets the process gid then uid, in that order, matching the
// original's ordering (setgid while still root still has permission to
// change the uid afterward; the reverse order would lose that permission
// first). A no-op when the process is not running as root, per the
// original's "if (getuid() != 0) goto print" early return.
func Drop(uid, gid int) error {
	if os.Getuid() != 0 {
		return nil
	}

	if gid != 0 {
		if err := unix.Setgid(gid); err != nil {
			return ErrorSetgid.Error(err)
		}
	}

	if uid != 0 {
		if err := unix.Setuid(uid); err != nil {
			return ErrorSetuid.Error(err)
		}
	}

	return nil
}
