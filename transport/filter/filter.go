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

// Package filter implements spec §4.4's FilterTransport: a
// bufferevent.Transport that wraps another BufferedEvent (the
// "underlying" one) and interposes user-supplied input/output byte
// transforms between it and the wrapping BufferedEvent's own buffers.
package filter

import (
	"time"

	"github.com/pkg/errors"
	"github.com/xtaci/evbuffer/bufferevent"
	"github.com/xtaci/evbuffer/chainbuffer"
)

// Filter transforms bytes from src into dst. byteLimit < 0 means
// unbounded. mode is the flush-mode hint described in spec §4.4.
// Returning FilterError is treated as fatal on the direction being
// pumped.
type Filter func(src, dst *chainbuffer.ChainBuffer, byteLimit int, mode bufferevent.FlushMode, ctx interface{}) (bufferevent.FilterResult, error)

// ReleaseFunc releases a Filter's opaque context when its Transport is
// destructed.
type ReleaseFunc func(ctx interface{})

// Transport is the concrete bufferevent.Transport that pumps bytes
// through a pair of Filters between an underlying BufferedEvent and the
// wrapping one.
type Transport struct {
	underlying *bufferevent.BufferedEvent
	be         *bufferevent.BufferedEvent

	inputFilter, outputFilter Filter
	ctx                       interface{}
	release                   ReleaseFunc

	closeOnFree bool
	gotEOF      bool

	pumpingOutput bool
	selfOutputCB  *chainbuffer.CallbackEntry
}

// Wrap creates a BufferedEvent whose input is fed by running underlying's
// input through inputFilter, and whose output is drained by running it
// through outputFilter into underlying's output.
func Wrap(underlying *bufferevent.BufferedEvent, inputFilter, outputFilter Filter, ctx interface{}, release ReleaseFunc, opts ...bufferevent.Option) *bufferevent.BufferedEvent {
	var optBits bufferevent.Option
	for _, o := range opts {
		optBits |= o
	}
	return bufferevent.New(func(be *bufferevent.BufferedEvent) bufferevent.Transport {
		t := &Transport{
			underlying:   underlying,
			be:           be,
			inputFilter:  inputFilter,
			outputFilter: outputFilter,
			ctx:          ctx,
			release:      release,
			closeOnFree:  optBits&bufferevent.CloseOnFree != 0,
		}
		underlying.SetCallbacks(t.onUnderlyingRead, t.onUnderlyingWrite, t.onUnderlyingError, nil)
		t.selfOutputCB = be.Output.AddCallback(t.onSelfOutputChanged, nil)
		return t
	})
}

func (t *Transport) onSelfOutputChanged(oldLen, newLen int, _ interface{}) {
	if newLen > oldLen {
		t.pumpOutput(bufferevent.FlushNormal)
	}
}

func (t *Transport) onUnderlyingRead(_ *bufferevent.BufferedEvent, _ interface{}) {
	mode := bufferevent.FlushNormal
	if t.gotEOF {
		mode = bufferevent.FlushFinished
	}
	t.pumpInput(mode)
}

func (t *Transport) onUnderlyingWrite(_ *bufferevent.BufferedEvent, _ interface{}) {
	t.pumpOutput(bufferevent.FlushNormal)
}

// onUnderlyingError forwards an error event unchanged to the user's
// error callback. On EOF it first records got_eof and pumps any input
// still sitting in underlying.Input with FINISHED mode, so bytes that
// arrived just before EOF still reach the user's read callback ahead of
// the error callback that reports the EOF.
func (t *Transport) onUnderlyingError(_ *bufferevent.BufferedEvent, flags bufferevent.EventFlag, _ interface{}) {
	if flags&bufferevent.EvEOF != 0 {
		t.gotEOF = true
		t.pumpInput(bufferevent.FlushFinished)
	}
	t.be.InvokeErrorCB(flags)
}

// Enable implements bufferevent.Transport: enabling READ attempts an
// immediate input pump (data may already be sitting in underlying.Input
// from before READ was enabled); enabling WRITE attempts an immediate
// output pump.
func (t *Transport) Enable(which bufferevent.Direction) error {
	if which&bufferevent.Read != 0 {
		mode := bufferevent.FlushNormal
		if t.gotEOF {
			mode = bufferevent.FlushFinished
		}
		t.pumpInput(mode)
	}
	if which&bufferevent.Write != 0 {
		t.pumpOutput(bufferevent.FlushNormal)
	}
	return nil
}

// Disable implements bufferevent.Transport. Pumps already re-check
// be.Enabled() on every iteration, so disabling needs no extra action.
func (t *Transport) Disable(bufferevent.Direction) error {
	return nil
}

// AdjustTimeouts implements bufferevent.Transport by propagating to the
// underlying BufferedEvent, which owns the actual I/O timeouts.
func (t *Transport) AdjustTimeouts(read, write time.Duration) error {
	return t.underlying.SetTimeouts(read, write)
}

// Flush implements bufferevent.Transport: pumps the indicated side(s)
// with mode, then delegates to the underlying transport's Flush.
func (t *Transport) Flush(which bufferevent.Direction, mode bufferevent.FlushMode) (int, error) {
	if which&bufferevent.Read != 0 {
		t.pumpInput(mode)
	}
	if which&bufferevent.Write != 0 {
		t.pumpOutput(mode)
	}
	return t.underlying.Flush(which, mode)
}

// Destruct implements bufferevent.Transport: releases the filter context
// and, if CloseOnFree was set, frees the underlying BufferedEvent too.
func (t *Transport) Destruct() error {
	if t.release != nil {
		t.release(t.ctx)
	}
	if t.closeOnFree {
		if err := t.underlying.Free(); err != nil {
			return errors.Wrap(err, "filter: free underlying")
		}
	}
	return nil
}
