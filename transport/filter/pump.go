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

package filter

import "github.com/xtaci/evbuffer/bufferevent"

// pumpInput drives inputFilter from underlying.Input into self.Input,
// per spec §4.4's pump_input: skipped in NORMAL mode if READ isn't
// enabled or self.Input is already at/over its high watermark; each
// iteration's byte limit is the remaining room under self's read high
// watermark (or unbounded); stops when the filter stops making
// progress, returns non-OK, READ gets disabled mid-loop, underlying
// empties, or self.Input reaches its high watermark. After any forward
// progress, the user read callback fires if self.Input has reached its
// read low watermark.
func (t *Transport) pumpInput(mode bufferevent.FlushMode) {
	progressed := false

	for {
		if mode == bufferevent.FlushNormal {
			if t.be.Enabled()&bufferevent.Read == 0 {
				break
			}
			_, high := t.be.ReadWatermarks()
			if high > 0 && t.be.Input.Len() >= high {
				break
			}
		}

		limit := -1
		if _, high := t.be.ReadWatermarks(); high > 0 {
			limit = high - t.be.Input.Len()
			if limit <= 0 {
				break
			}
		}

		if t.underlying.Input.Len() == 0 {
			break
		}

		beforeSelf := t.be.Input.Len()
		result, err := t.inputFilter(t.underlying.Input, t.be.Input, limit, mode, t.ctx)
		if err != nil || result == bufferevent.FilterError {
			t.be.InvokeErrorCB(bufferevent.EvError | bufferevent.EvRead)
			break
		}
		if t.be.Input.Len() > beforeSelf {
			progressed = true
		}
		if result != bufferevent.FilterOK {
			break
		}
		if t.be.Input.Len() == beforeSelf {
			// no bytes moved this round; avoid spinning forever.
			break
		}
	}

	// FINISHED means no more input can ever arrive, so whatever is
	// already sitting in self.Input (even from an earlier round that
	// didn't clear the low watermark) must be delivered now.
	deliverRegardless := mode == bufferevent.FlushFinished && t.be.Input.Len() > 0
	if progressed || deliverRegardless {
		low, _ := t.be.ReadWatermarks()
		if t.be.Input.Len() >= low || deliverRegardless {
			t.be.InvokeReadCB()
		}
	}
}

// pumpOutput drives outputFilter from self.Output into underlying.Output,
// per spec §4.4's pump_output: skipped in NORMAL mode if WRITE isn't
// enabled, self.Output is empty, or underlying.Output is at/over its
// high watermark. The self-output change-notification is disabled for
// the duration of the pump, and a guard flag makes nested calls return
// at once, so Appends into self.Output made during the pump (for example
// by the user write callback) do not recurse back into pumpOutput. After a batch
// that leaves self.Output at/under its write low watermark, the user
// write callback fires; if it enqueues more data and conditions still
// hold, the loop continues.
func (t *Transport) pumpOutput(mode bufferevent.FlushMode) {
	if t.pumpingOutput {
		return
	}
	t.pumpingOutput = true
	t.be.Output.SetCallbackEnabled(t.selfOutputCB, false)
	defer func() {
		t.be.Output.SetCallbackEnabled(t.selfOutputCB, true)
		t.pumpingOutput = false
	}()

	for {
		if mode == bufferevent.FlushNormal {
			if t.be.Enabled()&bufferevent.Write == 0 {
				return
			}
			if t.be.Output.Len() == 0 {
				return
			}
			_, high := t.underlying.WriteWatermarks()
			if high > 0 && t.underlying.Output.Len() >= high {
				return
			}
		}
		if t.be.Output.Len() == 0 {
			return
		}

		limit := -1
		if _, high := t.underlying.WriteWatermarks(); high > 0 {
			limit = high - t.underlying.Output.Len()
			if limit <= 0 {
				return
			}
		}

		beforeUnderlying := t.underlying.Output.Len()
		result, err := t.outputFilter(t.be.Output, t.underlying.Output, limit, mode, t.ctx)
		if err != nil || result == bufferevent.FilterError {
			t.be.InvokeErrorCB(bufferevent.EvError | bufferevent.EvWrite)
			return
		}
		progressed := t.underlying.Output.Len() > beforeUnderlying

		writeLow, _ := t.be.WriteWatermarks()
		if progressed && t.be.Output.Len() <= writeLow {
			t.be.InvokeWriteCB()
		}

		if result != bufferevent.FilterOK {
			return
		}
		if !progressed {
			return
		}
	}
}
