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

import "github.com/pkg/errors"

// Sentinel errors returned by ChainBuffer operations. Callers should use
// errors.Is against these rather than matching on message text.
var (
	// ErrShortBuffer is returned by Pullup when asked for more bytes than
	// the buffer currently holds.
	ErrShortBuffer = errors.New("chainbuffer: fewer bytes available than requested")
	// ErrNoEOL is returned by ReadLine when no line terminator is present.
	ErrNoEOL = errors.New("chainbuffer: no line terminator found")
	// ErrCommitOverrun is returned by Commit when the caller claims to
	// have written more than Reserve made available.
	ErrCommitOverrun = errors.New("chainbuffer: commit exceeds reservation")
	// ErrNotFound is returned by Search when needle does not occur.
	ErrNotFound = errors.New("chainbuffer: needle not found")
)

// ChainBuffer is a singly-linked list of chains plus aggregate state. It
// owns its chains exclusively: once a chain is linked into a ChainBuffer
// it must not be referenced by another one, except transiently during
// AddBuffer/PrependBuffer/RemoveTo splices.
type ChainBuffer struct {
	first, last     *chain
	previousToLast  *chain
	totalLen        int
	callbacks       []*CallbackEntry
	reservedWindow  []byte // outstanding Reserve() window, cleared by Commit
	reservedInChain *chain
}

// New returns an empty ChainBuffer.
func New() *ChainBuffer {
	return &ChainBuffer{}
}

// Len returns the total number of valid bytes currently queued.
func (b *ChainBuffer) Len() int {
	return b.totalLen
}

// Reset discards all chains and callback registrations without firing
// any change callback, for use during teardown of an owner that is
// itself being destroyed (see BufferedEvent.Free).
func (b *ChainBuffer) Reset() {
	b.first = nil
	b.last = nil
	b.previousToLast = nil
	b.totalLen = 0
	b.callbacks = nil
	b.reservedWindow = nil
	b.reservedInChain = nil
}

// linkLast appends a freshly allocated chain to the tail of the list,
// maintaining the previousToLast cache.
func (b *ChainBuffer) linkLast(c *chain) {
	if b.first == nil {
		b.first = c
		b.last = c
		b.previousToLast = nil
		return
	}
	b.previousToLast = b.last
	b.last.next = c
	b.last = c
}

// Append writes p to the tail of the buffer, reusing trailing space in
// the current last chain, realigning it if its prefix alone has enough
// room, or else allocating a new chain (split across two chains if the
// tail's remaining room only covers part of p).
func (b *ChainBuffer) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	oldLen := b.totalLen
	remaining := p

	if b.last != nil {
		if b.last.spaceLen() < len(remaining) && b.last.misalign >= len(remaining) {
			b.realign(b.last)
		}
		if n := b.last.spaceLen(); n > 0 {
			w := n
			if w > len(remaining) {
				w = len(remaining)
			}
			copy(b.last.spacePtr(), remaining[:w])
			b.last.off += w
			b.totalLen += w
			remaining = remaining[w:]
		}
	}

	for len(remaining) > 0 {
		lastSize := minChainSize
		if b.last != nil {
			lastSize = b.last.bufferLen()
		}
		c := newChain(growthSize(len(remaining), lastSize))
		w := c.spaceLen()
		if w > len(remaining) {
			w = len(remaining)
		}
		copy(c.buf, remaining[:w])
		c.off = w
		b.linkLast(c)
		b.totalLen += w
		remaining = remaining[w:]
	}

	b.fireCallbacks(oldLen, b.totalLen)
	return nil
}

// realign moves a chain's valid bytes back to offset 0, reclaiming its
// misalign prefix as trailing space. Used when append needs room that
// only exists in the (unused) prefix.
func (b *ChainBuffer) realign(c *chain) {
	if c.misalign == 0 {
		return
	}
	copy(c.buf, c.buf[c.misalign:c.misalign+c.off])
	c.misalign = 0
}

// Prepend writes p to the head of the buffer, reusing misalign space in
// the current first chain, or else allocating a new chain whose misalign
// is set so that further prepends keep coalescing into it.
func (b *ChainBuffer) Prepend(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	oldLen := b.totalLen
	remaining := p

	if b.first != nil && b.first.misalign > 0 {
		n := b.first.misalign
		if n > len(remaining) {
			n = len(remaining)
		}
		tail := remaining[len(remaining)-n:]
		copy(b.first.buf[b.first.misalign-n:b.first.misalign], tail)
		b.first.misalign -= n
		b.first.off += n
		b.totalLen += n
		remaining = remaining[:len(remaining)-n]
	}

	for len(remaining) > 0 {
		size := growthSize(len(remaining), minChainSize)
		c := newChain(size)
		bufLen := c.bufferLen()
		n := bufLen
		if n > len(remaining) {
			n = len(remaining)
		}
		c.misalign = bufLen - n
		c.off = n
		copy(c.buf[c.misalign:], remaining[len(remaining)-n:])
		remaining = remaining[:len(remaining)-n]

		if b.first == nil {
			b.first = c
			b.last = c
			b.previousToLast = nil
		} else {
			c.next = b.first
			b.first = c
		}
		b.totalLen += n
	}

	b.fireCallbacks(oldLen, b.totalLen)
	return nil
}

// Drain discards the first n bytes. n >= Len() empties the buffer
// entirely; the partially consumed head chain (if any) has its misalign
// advanced and off shrunk rather than being copied.
func (b *ChainBuffer) Drain(n int) error {
	if n <= 0 {
		return nil
	}
	oldLen := b.totalLen
	if n >= b.totalLen {
		b.first = nil
		b.last = nil
		b.previousToLast = nil
		b.totalLen = 0
		b.fireCallbacks(oldLen, 0)
		return nil
	}

	remaining := n
	var prev *chain
	c := b.first
	for remaining > 0 {
		if remaining < c.off {
			c.misalign += remaining
			c.off -= remaining
			remaining = 0
			break
		}
		remaining -= c.off
		c.off = 0
		next := c.next
		if next == nil {
			// fully drained a buffer that summed to exactly n; handled
			// by the n >= totalLen branch above, kept defensively.
			break
		}
		prev = c
		c = next
	}
	b.first = c
	if prev != nil {
		b.recomputePreviousToLast()
	}
	b.totalLen -= n
	b.fireCallbacks(oldLen, b.totalLen)
	return nil
}

// recomputePreviousToLast walks the chain list to restore the
// previousToLast cache after a structural change whose cheap incremental
// update would be error-prone; O(chains) but chains are few in practice.
func (b *ChainBuffer) recomputePreviousToLast() {
	if b.first == nil || b.first == b.last {
		b.previousToLast = nil
		return
	}
	c := b.first
	for c.next != b.last {
		c = c.next
	}
	b.previousToLast = c
}

// Remove copies up to len(p) bytes from the front of the buffer into p
// and drains them, returning the number of bytes actually copied (bounded
// by Len()).
func (b *ChainBuffer) Remove(p []byte) (int, error) {
	n := len(p)
	if n > b.totalLen {
		n = b.totalLen
	}
	if n == 0 {
		return 0, nil
	}
	copied := 0
	c := b.first
	for copied < n {
		take := c.off
		if take > n-copied {
			take = n - copied
		}
		copy(p[copied:], c.data()[:take])
		copied += take
		c = c.next
	}
	if err := b.Drain(n); err != nil {
		return 0, err
	}
	return copied, nil
}

// Copyout copies up to len(dst) bytes from the front of the buffer into
// dst without draining them; a second Copyout or Remove will see the
// same bytes again. Returns the number of bytes copied.
func (b *ChainBuffer) Copyout(dst []byte) (int, error) {
	n := len(dst)
	if n > b.totalLen {
		n = b.totalLen
	}
	copied := 0
	for c := b.first; copied < n; c = c.next {
		take := c.off
		if take > n-copied {
			take = n - copied
		}
		copy(dst[copied:], c.data()[:take])
		copied += take
	}
	return copied, nil
}

// Expand guarantees that the next Append of up to n bytes will not need
// to allocate a new chain, without writing any data and without firing a
// change callback (Len() is unaffected).
func (b *ChainBuffer) Expand(n int) error {
	if n <= 0 {
		return nil
	}
	if b.last != nil {
		if b.last.spaceLen() >= n {
			return nil
		}
		if b.last.bufferLen()-b.last.off >= n {
			b.realign(b.last)
			return nil
		}
	}
	c := newChain(growthSize(n, minChainSize))
	b.linkLast(c)
	return nil
}

// AddBuffer splices src's entire chain list onto the tail of b in O(1);
// src becomes empty. Change callbacks fire on both buffers: src's first
// (seeing its own old/new length going to zero), then b's.
func (b *ChainBuffer) AddBuffer(src *ChainBuffer) error {
	if src.totalLen == 0 {
		return nil
	}
	srcOld := src.totalLen
	dstOld := b.totalLen

	if b.first == nil {
		b.first = src.first
		b.last = src.last
		b.previousToLast = src.previousToLast
	} else {
		b.last.next = src.first
		b.previousToLast = b.last
		b.last = src.last
		if src.previousToLast != nil {
			b.previousToLast = src.previousToLast
		}
	}
	b.totalLen += src.totalLen

	src.first = nil
	src.last = nil
	src.previousToLast = nil
	src.totalLen = 0

	src.fireCallbacks(srcOld, 0)
	b.fireCallbacks(dstOld, b.totalLen)
	return nil
}

// PrependBuffer splices src's entire chain list onto the head of b in
// O(1); src becomes empty. Change callbacks fire source-then-destination,
// as AddBuffer's do.
func (b *ChainBuffer) PrependBuffer(src *ChainBuffer) error {
	if src.totalLen == 0 {
		return nil
	}
	srcOld := src.totalLen
	dstOld := b.totalLen

	if b.first == nil {
		b.first = src.first
		b.last = src.last
		b.previousToLast = src.previousToLast
	} else {
		src.last.next = b.first
		if b.first == b.last {
			b.previousToLast = src.last
		}
		b.first = src.first
	}
	b.totalLen += src.totalLen

	src.first = nil
	src.last = nil
	src.previousToLast = nil
	src.totalLen = 0

	src.fireCallbacks(srcOld, 0)
	b.fireCallbacks(dstOld, b.totalLen)
	return nil
}

// RemoveTo moves up to n bytes from the front of src onto the tail of
// dst. Whole chains are spliced (zero-copy); only the single chain
// straddling the n-byte boundary, if any, is copied byte-wise. When n >=
// src.Len() the entire src is transferred and src becomes empty.
func (b *ChainBuffer) RemoveTo(dst *ChainBuffer, n int) (int, error) {
	src := b
	if n >= src.totalLen {
		moved := src.totalLen
		if moved == 0 {
			return 0, nil
		}
		return moved, dst.AddBuffer(src)
	}
	if n <= 0 {
		return 0, nil
	}

	srcOld := src.totalLen
	dstOld := dst.totalLen
	moved := 0

	for moved < n {
		c := src.first
		if c.off <= n-moved {
			// whole chain transfers without copying.
			next := c.next
			src.first = next
			if next == nil {
				src.last = nil
			}
			c.next = nil
			dst.linkLast(c)
			moved += c.off
			continue
		}
		// boundary chain: copy the remaining piece byte-wise.
		take := n - moved
		dst.appendNoCallback(c.data()[:take])
		c.misalign += take
		c.off -= take
		moved += take
	}
	src.recomputePreviousToLast()

	src.totalLen -= moved
	dst.totalLen += moved
	src.fireCallbacks(srcOld, src.totalLen)
	dst.fireCallbacks(dstOld, dst.totalLen)
	return moved, nil
}

// appendNoCallback is Append's data-moving logic without firing change
// callbacks itself; used by RemoveTo, whose caller fires a single
// aggregate callback for the whole move.
func (b *ChainBuffer) appendNoCallback(p []byte) {
	remaining := p
	if b.last != nil {
		if n := b.last.spaceLen(); n > 0 {
			w := n
			if w > len(remaining) {
				w = len(remaining)
			}
			copy(b.last.spacePtr(), remaining[:w])
			b.last.off += w
			remaining = remaining[w:]
		}
	}
	for len(remaining) > 0 {
		lastSize := minChainSize
		if b.last != nil {
			lastSize = b.last.bufferLen()
		}
		c := newChain(growthSize(len(remaining), lastSize))
		w := c.spaceLen()
		if w > len(remaining) {
			w = len(remaining)
		}
		copy(c.buf, remaining[:w])
		c.off = w
		b.linkLast(c)
		remaining = remaining[w:]
	}
}

// Search returns the byte offset of the first occurrence of needle,
// scanning across chain boundaries. ErrNotFound if absent.
func (b *ChainBuffer) Search(needle []byte) (int, error) {
	if len(needle) == 0 {
		return 0, nil
	}
	// Linearizing is the simplest correct implementation across chain
	// boundaries and matches the source's fall-back strategy for the
	// general (non-single-chain) case.
	buf, err := b.Pullup(b.totalLen)
	if err != nil && b.totalLen > 0 {
		return 0, err
	}
	idx := indexBytes(buf, needle)
	if idx < 0 {
		return 0, ErrNotFound
	}
	return idx, nil
}

func indexBytes(haystack, needle []byte) int {
	n, m := len(haystack), len(needle)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if string(haystack[i:i+m]) == string(needle) {
			return i
		}
	}
	return -1
}
