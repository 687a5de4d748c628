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

// Package reactor defines the event-reactor contract that spec §6 treats
// as an external collaborator (out of scope to implement fully: no
// platform-specific epoll/kqueue shim is built here) plus one concrete,
// portable reference implementation used by transport/socket and by this
// repository's own tests.
package reactor

import (
	"net"
	"time"
)

// Direction selects which half of a net.Conn a registration watches.
type Direction int

const (
	DirRead Direction = 1 << iota
	DirWrite
)

// Handler is invoked once readiness is armed for a registration. It
// receives the conn and the direction so one handler can serve both
// read and write registrations; the handler is responsible for the
// actual Read/Write call and for distinguishing a deadline-exceeded
// error (this registration's timeout firing) from any other outcome —
// the reactor itself only arms the deadline and calls back.
type Handler func(conn net.Conn, dir Direction)

// Handle identifies one registration, returned by RegisterFD and
// consumed by Cancel/SetPriority/IsPending.
type Handle uint64

// Reactor is the contract consumed by transport/socket, matching spec
// §6: register a conn for read- or write-readiness with an optional
// timeout and a persistent flag, cancel a registration, adjust its
// priority, and query whether it currently has a callback in flight.
type Reactor interface {
	// RegisterFD arms conn for dir. If persistent, handler fires
	// repeatedly (once per readiness/timeout) until Cancel; otherwise it
	// fires at most once. timeout == 0 means no deadline.
	RegisterFD(conn net.Conn, dir Direction, persistent bool, timeout time.Duration, handler Handler) (Handle, error)
	// Cancel stops further firing of h. Safe to call more than once.
	Cancel(h Handle) error
	// SetPriority is a scheduling hint; the reference implementation
	// records it but does not reorder dispatch across registrations.
	SetPriority(h Handle, level int) error
	// IsPending reports whether h currently has a handler invocation in
	// flight for dir.
	IsPending(h Handle, dir Direction) bool
}
