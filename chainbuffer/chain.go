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

// Package chainbuffer implements a segmented, variable-length byte queue
// optimized for socket I/O: a singly-linked list of fixed backing chains
// that supports cheap append, cheap prepend (via a reusable misaligned
// prefix), zero-copy splicing between buffers, and scatter/gather I/O
// vector preparation.
package chainbuffer

// chain is one contiguous backing region. Useful bytes live in
// buf[misalign : misalign+off); buf[misalign+off:] is free trailing space
// available to Append, and buf[:misalign] is free leading space available
// to Prepend without a new allocation.
type chain struct {
	buf      []byte
	misalign int
	off      int
	next     *chain
}

func (c *chain) bufferLen() int {
	return len(c.buf)
}

func (c *chain) spaceLen() int {
	return len(c.buf) - c.misalign - c.off
}

func (c *chain) spacePtr() []byte {
	return c.buf[c.misalign+c.off:]
}

func (c *chain) data() []byte {
	return c.buf[c.misalign : c.misalign+c.off]
}

const (
	// minChainSize is the smallest backing allocation a chain ever gets,
	// matching the source's MIN_BUFFER_SIZE floor.
	minChainSize = 256
	// maxAutoSize caps the doubling growth used for streaming appends; a
	// request larger than the cap gets a chain sized for the request
	// itself (then rounded up by newChain).
	maxAutoSize = 4096
	// chainOverhead approximates the fixed bookkeeping cost the source
	// pays per chain (its header struct) so size rounding behaves the
	// same whether or not the language needs a literal header.
	chainOverhead = 16
)

// newChain allocates a chain whose backing array is at least requested
// bytes, rounded up to the next power of two no smaller than minChainSize.
func newChain(requested int) *chain {
	size := requested + chainOverhead
	if size < minChainSize {
		size = minChainSize
	}
	size = nextPow2(size)
	return &chain{buf: make([]byte, size)}
}

// growthSize computes the size of the chain to allocate when appending
// past the tail's free space, following the source's doubling-with-cap
// policy: max(requested, min(2*lastBufferLen, maxAutoSize)).
func growthSize(requested, lastBufferLen int) int {
	doubled := lastBufferLen * 2
	if doubled > maxAutoSize {
		doubled = maxAutoSize
	}
	if requested > doubled {
		return requested
	}
	return doubled
}

func nextPow2(n int) int {
	if n <= 0 {
		return minChainSize
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
