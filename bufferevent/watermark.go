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

// installReadWatermark (re)registers the input-buffer change-notification
// that drives the read-suspend state machine from spec §4.2's table, or
// removes its effect when the high watermark is cleared (high == 0).
func (be *BufferedEvent) installReadWatermark() {
	if be.readHigh > 0 {
		if be.readWatermarkCB == nil {
			be.readWatermarkCB = be.Input.AddCallback(be.onInputSizeChanged, nil)
		} else {
			be.Input.SetCallbackEnabled(be.readWatermarkCB, true)
		}
		// Input may already be over (or under) the new high watermark
		// from bytes that arrived before it was installed; catch up
		// immediately rather than waiting for the next size change.
		be.onInputSizeChanged(0, be.Input.Len(), nil)
		return
	}

	if be.readWatermarkCB != nil {
		be.Input.SetCallbackEnabled(be.readWatermarkCB, false)
	}
	if be.readSuspended {
		be.readSuspended = false
		if be.enabled.has(Read) {
			be.transport.Enable(Read)
		}
	}
}

// onInputSizeChanged implements the NotSuspended<->Suspended transitions:
// crossing up to >= high disables transport reads; dropping back below
// high re-enables them only if the user still has Read enabled.
func (be *BufferedEvent) onInputSizeChanged(_, newLen int, _ interface{}) {
	if be.readHigh <= 0 {
		return
	}
	switch {
	case !be.readSuspended && newLen >= be.readHigh:
		be.readSuspended = true
		be.transport.Disable(Read)
	case be.readSuspended && newLen < be.readHigh:
		be.readSuspended = false
		if be.enabled.has(Read) {
			be.transport.Enable(Read)
		}
	}
}
