// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package reactor

import (
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrUnknownHandle is returned by SetPriority for a handle that was never
// registered or has already been cancelled. Cancel returns nil for such a
// handle and IsPending reports false.
var ErrUnknownHandle = errors.New("reactor: unknown handle")

type registration struct {
	conn       net.Conn
	dir        Direction
	persistent bool
	timeout    time.Duration
	handler    Handler
	priority   int

	mu      sync.Mutex
	pending bool
	done    chan struct{}
}

// goReactor is a reference Reactor that dedicates one goroutine per
// registration and arms readiness via net.Conn's deadline rather than a
// platform polling primitive, matching spec §6's contract while staying
// free of any fd-level portability shim (explicitly out of scope).
type goReactor struct {
	mu     sync.Mutex
	regs   map[Handle]*registration
	nextID Handle
}

// New returns a ready-to-use reference Reactor.
func New() Reactor {
	return &goReactor{regs: make(map[Handle]*registration)}
}

func (r *goReactor) RegisterFD(conn net.Conn, dir Direction, persistent bool, timeout time.Duration, handler Handler) (Handle, error) {
	if conn == nil || handler == nil {
		return 0, errors.New("reactor: conn and handler are required")
	}
	reg := &registration{
		conn:       conn,
		dir:        dir,
		persistent: persistent,
		timeout:    timeout,
		handler:    handler,
		done:       make(chan struct{}),
	}

	r.mu.Lock()
	r.nextID++
	h := r.nextID
	r.regs[h] = reg
	r.mu.Unlock()

	go r.runLoop(h, reg)
	return h, nil
}

func (r *goReactor) runLoop(h Handle, reg *registration) {
	for {
		select {
		case <-reg.done:
			return
		default:
		}

		deadline := time.Time{}
		if reg.timeout > 0 {
			deadline = time.Now().Add(reg.timeout)
		}
		if reg.dir == DirRead {
			reg.conn.SetReadDeadline(deadline)
		} else {
			reg.conn.SetWriteDeadline(deadline)
		}

		reg.mu.Lock()
		reg.pending = true
		reg.mu.Unlock()

		reg.handler(reg.conn, reg.dir)

		reg.mu.Lock()
		reg.pending = false
		reg.mu.Unlock()

		if !reg.persistent {
			r.mu.Lock()
			delete(r.regs, h)
			r.mu.Unlock()
			return
		}

		select {
		case <-reg.done:
			return
		default:
		}
	}
}

func (r *goReactor) Cancel(h Handle) error {
	r.mu.Lock()
	reg, ok := r.regs[h]
	if ok {
		delete(r.regs, h)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-reg.done:
	default:
		close(reg.done)
	}
	return nil
}

func (r *goReactor) SetPriority(h Handle, level int) error {
	r.mu.Lock()
	reg, ok := r.regs[h]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}
	reg.mu.Lock()
	reg.priority = level
	reg.mu.Unlock()
	return nil
}

func (r *goReactor) IsPending(h Handle, dir Direction) bool {
	r.mu.Lock()
	reg, ok := r.regs[h]
	r.mu.Unlock()
	if !ok {
		return false
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.pending && reg.dir == dir
}
