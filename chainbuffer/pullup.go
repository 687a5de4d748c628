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

// Pullup linearizes the first n bytes into one contiguous region and
// returns a slice over them; n == -1 means "all currently queued bytes".
// Fails with ErrShortBuffer if n exceeds Len(), leaving the buffer
// unmodified. If first.off already covers n, the region is returned
// in place with no copying.
func (b *ChainBuffer) Pullup(n int) ([]byte, error) {
	if n == -1 {
		n = b.totalLen
	}
	if n == 0 {
		return nil, nil
	}
	if n > b.totalLen {
		return nil, ErrShortBuffer
	}
	if b.first.off >= n {
		return b.first.data()[:n], nil
	}

	// Determine whether first has enough room (trailing + prefix) to
	// absorb the following chains' bytes in place, else allocate fresh.
	needed := n - b.first.off
	if b.first.spaceLen()+b.first.misalign >= needed {
		b.consolidateInPlace(n)
		return b.first.data()[:n], nil
	}

	newC := newChain(n)
	copied := 0
	c := b.first
	for copied < n {
		take := c.off
		if take > n-copied {
			take = n - copied
		}
		copy(newC.buf[copied:], c.data()[:take])
		copied += take
		if take == c.off {
			c = c.next
		} else {
			// boundary chain partially absorbed; shrink it in place and
			// stop, it becomes the new first's successor.
			c.misalign += take
			c.off -= take
			break
		}
	}
	newC.off = n
	newC.next = c
	b.first = newC
	if b.first.next == nil {
		b.last = newC
		b.previousToLast = nil
	} else {
		b.recomputePreviousToLast()
	}
	return newC.data()[:n], nil
}

// consolidateInPlace absorbs successor chains' bytes into first using
// first's own trailing/prefix room, freeing any chain it fully drains.
func (b *ChainBuffer) consolidateInPlace(n int) {
	first := b.first
	if first.misalign > 0 {
		b.realign(first)
	}
	c := first.next
	for first.off < n {
		take := c.off
		if take > n-first.off {
			take = n - first.off
		}
		copy(first.spacePtr()[:take], c.data()[:take])
		first.off += take
		if take == c.off {
			c = c.next
		} else {
			c.misalign += take
			c.off -= take
			break
		}
	}
	first.next = c
	if c == nil {
		b.last = first
		b.previousToLast = nil
	} else {
		b.recomputePreviousToLast()
	}
}

// Reserve returns a writable window of at least n bytes of trailing
// space in the tail chain, growing it if necessary, without yet
// accounting any bytes as valid. Exactly one outstanding Reserve is
// allowed at a time; call Commit to finalize it. No change callback
// fires until Commit.
func (b *ChainBuffer) Reserve(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if b.last == nil || b.last.spaceLen() < n {
		if b.last != nil && b.last.misalign >= n {
			b.realign(b.last)
		} else {
			lastSize := minChainSize
			if b.last != nil {
				lastSize = b.last.bufferLen()
			}
			c := newChain(growthSize(n, lastSize))
			b.linkLast(c)
		}
	}
	b.reservedInChain = b.last
	b.reservedWindow = b.last.spacePtr()
	return b.reservedWindow, nil
}

// Commit finalizes a previous Reserve, marking actual bytes (which must
// not exceed the reserved window) as valid data and firing change
// callbacks. ErrCommitOverrun if actual exceeds what Reserve offered.
func (b *ChainBuffer) Commit(actual int) error {
	if b.reservedInChain == nil {
		if actual == 0 {
			return nil
		}
		return ErrCommitOverrun
	}
	if actual > len(b.reservedWindow) {
		return ErrCommitOverrun
	}
	oldLen := b.totalLen
	b.reservedInChain.off += actual
	b.totalLen += actual
	b.reservedWindow = nil
	b.reservedInChain = nil
	b.fireCallbacks(oldLen, b.totalLen)
	return nil
}
