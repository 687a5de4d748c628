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

// Direction is a bitset over the two directions a BufferedEvent can be
// enabled/disabled/watermarked on independently.
type Direction int

const (
	Read Direction = 1 << iota
	Write
)

func (d Direction) has(bit Direction) bool { return d&bit != 0 }

// EventFlag values OR-combine in calls to an error callback.
type EventFlag int

const (
	EvRead EventFlag = 1 << iota
	EvWrite
	EvTimeout
	EvEOF
	EvError
	EvConnected
)

// FlushMode is the hint passed to Flush and to filter functions,
// indicating whether more input can still arrive.
type FlushMode int

const (
	// FlushNormal is a no-op hint: flush if convenient.
	FlushNormal FlushMode = iota
	// FlushFlush requests that buffered data be pushed out now.
	FlushFlush
	// FlushFinished signals that no more input will arrive on this side.
	FlushFinished
)

// Option bits configure transport construction.
type Option int

const (
	// CloseOnFree lets a transport close its underlying fd or
	// BufferedEvent when its owning BufferedEvent is freed.
	CloseOnFree Option = 1 << iota
	// DeferCallbacks is reserved; not implemented by any transport here.
	DeferCallbacks
)

// FilterResult is returned by a Filter after one invocation.
type FilterResult int

const (
	FilterOK FilterResult = iota
	FilterNeedMore
	FilterError
)
