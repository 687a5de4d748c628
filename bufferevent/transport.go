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

package bufferevent

import "time"

// Transport is the vtable a BufferedEvent delegates I/O scheduling to.
// The source models this as a closed set of two implementations (a
// socket transport and a filter transport bound to another
// BufferedEvent); this interface captures exactly their shared surface
// so neither caller code nor BufferedEvent needs to know which one it
// has.
type Transport interface {
	// Enable arms readiness delivery for the given direction(s).
	Enable(which Direction) error
	// Disable cancels readiness delivery for the given direction(s).
	Disable(which Direction) error
	// Destruct releases any resources the transport holds (reactor
	// registrations, an owned underlying BufferedEvent, an fd) and is
	// called exactly once, from BufferedEvent.Free.
	Destruct() error
	// AdjustTimeouts re-arms any pending readiness registration with new
	// per-direction timeouts.
	AdjustTimeouts(read, write time.Duration) error
	// Flush pushes buffered data for the given direction(s) with mode as
	// a hint; transports that cannot flush return (0, nil).
	Flush(which Direction, mode FlushMode) (int, error)
}
