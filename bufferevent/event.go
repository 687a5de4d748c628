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

// Package bufferevent implements the duplex buffered-event abstraction
// built on top of chainbuffer: a BufferedEvent owns an input and output
// ChainBuffer, read/write watermarks and timeouts, and delegates actual
// I/O scheduling to a Transport (a socket, or another BufferedEvent
// wrapped by a filter).
package bufferevent

import (
	"time"

	"github.com/pkg/errors"
	"github.com/xtaci/evbuffer/chainbuffer"
)

// ReadCallback, WriteCallback and ErrorCallback are the user-facing hooks
// a BufferedEvent invokes. arg is whatever was passed to SetCallbacks.
type ReadCallback func(be *BufferedEvent, arg interface{})
type WriteCallback func(be *BufferedEvent, arg interface{})
type ErrorCallback func(be *BufferedEvent, flags EventFlag, arg interface{})

// BufferedEvent is the duplex stream abstraction described in spec §4.2:
// two ChainBuffers, a Transport, watermarks, timeouts and user callbacks.
type BufferedEvent struct {
	Input  *chainbuffer.ChainBuffer
	Output *chainbuffer.ChainBuffer

	transport Transport

	enabled       Direction
	readSuspended bool

	readLow, readHigh   int
	writeLow, writeHigh int

	readTimeout, writeTimeout time.Duration

	readCB  ReadCallback
	writeCB WriteCallback
	errorCB ErrorCallback
	cbArg   interface{}

	readWatermarkCB *chainbuffer.CallbackEntry
}

// New allocates a BufferedEvent with empty input/output buffers and binds
// it to a transport produced by newTransport, which receives the
// (not yet fully initialized, but buffer-complete) BufferedEvent so the
// transport can register its own change-notifications on Input/Output.
// Per spec, writes are armed by default (Write is enabled) while reads
// require an explicit Enable(Read).
func New(newTransport func(*BufferedEvent) Transport) *BufferedEvent {
	be := &BufferedEvent{
		Input:  chainbuffer.New(),
		Output: chainbuffer.New(),
		enabled: Write,
	}
	be.transport = newTransport(be)
	return be
}

// SetCallbacks installs the user-facing read/write/error callbacks and
// the opaque argument passed to each.
func (be *BufferedEvent) SetCallbacks(readCB ReadCallback, writeCB WriteCallback, errorCB ErrorCallback, arg interface{}) {
	be.readCB = readCB
	be.writeCB = writeCB
	be.errorCB = errorCB
	be.cbArg = arg
}

// Enabled reports which directions the user currently has enabled.
func (be *BufferedEvent) Enabled() Direction { return be.enabled }

// IsReadSuspended reports whether the read-watermark policy has
// currently suspended reads regardless of user intent.
func (be *BufferedEvent) IsReadSuspended() bool { return be.readSuspended }

// Enable arms the given direction(s). Enable(Read) is masked out while
// the read-watermark policy has suspended reads; the suspension's clear
// transition later re-issues the transport enable.
func (be *BufferedEvent) Enable(which Direction) error {
	be.enabled |= which
	if which.has(Read) && !be.readSuspended {
		if err := be.transport.Enable(Read); err != nil {
			return errors.Wrap(err, "bufferevent: enable read")
		}
	}
	if which.has(Write) {
		if err := be.transport.Enable(Write); err != nil {
			return errors.Wrap(err, "bufferevent: enable write")
		}
	}
	return nil
}

// Disable clears the given direction(s) and always delegates to the
// transport, independent of suspension state.
func (be *BufferedEvent) Disable(which Direction) error {
	be.enabled &^= which
	if err := be.transport.Disable(which); err != nil {
		return errors.Wrap(err, "bufferevent: disable")
	}
	return nil
}

// Write appends p to the output buffer.
func (be *BufferedEvent) Write(p []byte) error {
	return be.Output.Append(p)
}

// WriteBuffer moves src's entire contents onto the output buffer.
func (be *BufferedEvent) WriteBuffer(src *chainbuffer.ChainBuffer) error {
	return be.Output.AddBuffer(src)
}

// Read drains up to len(p) bytes from the input buffer into p, returning
// the number of bytes actually read.
func (be *BufferedEvent) Read(p []byte) (int, error) {
	return be.Input.Remove(p)
}

// ReadBuffer moves the entire input buffer's contents onto dst.
func (be *BufferedEvent) ReadBuffer(dst *chainbuffer.ChainBuffer) (int, error) {
	return be.Input.RemoveTo(dst, be.Input.Len())
}

// SetWatermarks installs new low/high thresholds for the given
// direction(s). A READ high of 0 means unlimited; a positive READ high
// arms the read-suspend state machine described in spec §4.2.
func (be *BufferedEvent) SetWatermarks(which Direction, low, high int) {
	if which.has(Read) {
		be.readLow, be.readHigh = low, high
		be.installReadWatermark()
	}
	if which.has(Write) {
		be.writeLow, be.writeHigh = low, high
	}
}

// ReadWatermarks returns the current read low/high thresholds.
func (be *BufferedEvent) ReadWatermarks() (low, high int) { return be.readLow, be.readHigh }

// WriteWatermarks returns the current write low/high thresholds.
func (be *BufferedEvent) WriteWatermarks() (low, high int) { return be.writeLow, be.writeHigh }

// SetTimeouts stores new per-direction timeouts and, if the transport is
// currently armed, re-arms it with the new values.
func (be *BufferedEvent) SetTimeouts(read, write time.Duration) error {
	be.readTimeout, be.writeTimeout = read, write
	return be.transport.AdjustTimeouts(read, write)
}

// Timeouts returns the currently configured read/write timeouts.
func (be *BufferedEvent) Timeouts() (read, write time.Duration) {
	return be.readTimeout, be.writeTimeout
}

// Flush delegates to the transport. Transports that cannot flush return
// (0, nil).
func (be *BufferedEvent) Flush(which Direction, mode FlushMode) (int, error) {
	return be.transport.Flush(which, mode)
}

// Free destroys the transport (cancelling any reactor registrations),
// clears both buffers without firing their change callbacks, and leaves
// be ready for garbage collection. Per spec §5, a BufferedEvent may only
// be freed outside the dispatch of one of its own callbacks.
func (be *BufferedEvent) Free() error {
	if err := be.transport.Destruct(); err != nil {
		return errors.Wrap(err, "bufferevent: destruct transport")
	}
	be.Input.Reset()
	be.Output.Reset()
	return nil
}

// InvokeReadCB calls the user read callback if one is set.
func (be *BufferedEvent) InvokeReadCB() {
	if be.readCB != nil {
		be.readCB(be, be.cbArg)
	}
}

// InvokeWriteCB calls the user write callback if one is set.
func (be *BufferedEvent) InvokeWriteCB() {
	if be.writeCB != nil {
		be.writeCB(be, be.cbArg)
	}
}

// InvokeErrorCB calls the user error callback if one is set.
func (be *BufferedEvent) InvokeErrorCB(flags EventFlag) {
	if be.errorCB != nil {
		be.errorCB(be, flags, be.cbArg)
	}
}
