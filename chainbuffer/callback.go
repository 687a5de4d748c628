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

package chainbuffer

// CallbackFunc is invoked after a ChainBuffer mutation that changed its
// total length, once invariants are restored. oldLen and newLen are the
// sizes immediately before and after the mutation.
type CallbackFunc func(oldLen, newLen int, arg interface{})

// CallbackEntry is the handle returned by AddCallback; pass it to
// RemoveCallback or SetCallbackEnabled to manage a previously registered
// callback.
type CallbackEntry struct {
	fn      CallbackFunc
	arg     interface{}
	enabled bool
}

// AddCallback registers fn to be invoked on every size-changing mutation
// of b. The returned entry may be disabled, re-enabled, or removed; a
// callback is free to do any of these to itself or to other entries
// while it runs, since dispatch iterates over a snapshot of the registry
// taken before the first callback is invoked (an entry removed
// mid-dispatch is still invoked in that dispatch if it is enabled).
func (b *ChainBuffer) AddCallback(fn CallbackFunc, arg interface{}) *CallbackEntry {
	e := &CallbackEntry{fn: fn, arg: arg, enabled: true}
	b.callbacks = append(b.callbacks, e)
	return e
}

// RemoveCallback unregisters e. It is safe to call from inside the
// callback it refers to, or from inside any other callback on b.
func (b *ChainBuffer) RemoveCallback(e *CallbackEntry) {
	for i, c := range b.callbacks {
		if c == e {
			b.callbacks = append(b.callbacks[:i:i], b.callbacks[i+1:]...)
			return
		}
	}
}

// SetCallbackEnabled toggles dispatch of e without removing it from the
// registry, matching the source's enabled_flag on CallbackEntry.
func (b *ChainBuffer) SetCallbackEnabled(e *CallbackEntry, enabled bool) {
	e.enabled = enabled
}

// fireCallbacks dispatches every enabled, currently-registered callback
// with (oldLen, newLen), iterating over a snapshot so a callback that
// mutates b.callbacks (removing itself or another entry) is safe.
func (b *ChainBuffer) fireCallbacks(oldLen, newLen int) {
	if oldLen == newLen || len(b.callbacks) == 0 {
		return
	}
	snapshot := make([]*CallbackEntry, len(b.callbacks))
	copy(snapshot, b.callbacks)
	for _, e := range snapshot {
		if e.enabled {
			e.fn(oldLen, newLen, e.arg)
		}
	}
}
