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

package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/customwebapps/blastbeat/internal/dealer"
	"github.com/customwebapps/blastbeat/internal/session"
	"github.com/customwebapps/blastbeat/internal/sht"
)

func newTestOrchestrator() (*Orchestrator, context.CancelFunc) {
	domain := &Context{
		Sessions: sht.New[*session.Session](16),
		Dealers:  dealer.NewPool(),
	}
	o := New(domain, 16)

	ctx, cancel := context.WithCancel(context.Background())
	go o.Run(ctx)
	return o, cancel
}

func TestCallBlocksUntilCommandRuns(t *testing.T) {
	o, cancel := newTestOrchestrator()
	defer cancel()

	o.Call(func(ctx *Context) {
		if _, err := ctx.Dealers.Add("D1"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	var got bool
	o.Call(func(ctx *Context) {
		got = ctx.Dealers.Has("D1")
	})

	if !got {
		t.Fatalf("expected D1 registered by the time Call returned")
	}
}

func TestCommandsRunSeriallyUnderConcurrentSubmitters(t *testing.T) {
	o, cancel := newTestOrchestrator()
	defer cancel()

	o.Call(func(ctx *Context) {
		_, _ = ctx.Dealers.Add("D1")
	})

	var wg sync.WaitGroup
	runs := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.Submit(func(ctx *Context) {
				d, _ := ctx.Dealers.Get("D1")
				_ = d.Load()
				// every command runs on the single orchestrator goroutine,
				// so this plain, non-atomic read/increment pair is safe.
				runs++
			})
		}()
	}
	wg.Wait()

	done := make(chan struct{})
	o.Submit(func(ctx *Context) { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for submitted commands to drain")
	}

	if runs != 100 {
		t.Fatalf("expected all 100 commands to run exactly once, got %d", runs)
	}
}
