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

// maxGatherVecs bounds how many chains PrepareWriteVectors will walk in
// one call, matching typical syscall.Writev/net.Buffers practical limits.
const maxGatherVecs = 16

// PrepareReadVectors ensures room for at least minBytes is reachable in
// up to the last two chains without copying existing data, and returns
// writable windows into them in the order a scatter read should fill
// them. If the tail chain is empty it is realigned in place; otherwise a
// new chain sized for the shortfall is appended.
func (b *ChainBuffer) PrepareReadVectors(minBytes int) ([][]byte, error) {
	if minBytes <= 0 {
		minBytes = 1
	}

	var vecs [][]byte
	if b.last != nil && b.last.spaceLen() > 0 {
		vecs = append(vecs, b.last.spacePtr())
	} else if b.last != nil && b.last.off == 0 && b.last.misalign > 0 {
		b.realign(b.last)
		vecs = append(vecs, b.last.spacePtr())
	}

	have := 0
	for _, v := range vecs {
		have += len(v)
	}
	if have < minBytes {
		c := newChain(growthSize(minBytes-have, minChainSize))
		b.linkLast(c)
		vecs = append(vecs, c.spacePtr())
	}
	return vecs, nil
}

// AccountRead distributes n bytes (as actually read by a scatter read
// against the vectors PrepareReadVectors returned) across those chains
// in the order they were offered, firing one change callback for the
// whole accounting.
func (b *ChainBuffer) AccountRead(n int) error {
	if n <= 0 {
		return nil
	}
	oldLen := b.totalLen
	remaining := n

	// Walk from the tail backwards over however many trailing chains
	// were offered (at most two): PrepareReadVectors only ever appended
	// to the existing last chain and/or a brand new one, so the chains
	// with spare capacity are exactly last and previousToLast==last's
	// predecessor when two were offered. We instead walk forward from
	// first to find chains with unfilled space, which is equivalent and
	// avoids tracking offer state explicitly.
	for c := b.first; c != nil && remaining > 0; c = c.next {
		free := c.spaceLen()
		if free == 0 {
			continue
		}
		take := free
		if take > remaining {
			take = remaining
		}
		c.off += take
		remaining -= take
	}
	b.totalLen += n - remaining
	b.fireCallbacks(oldLen, b.totalLen)
	return nil
}

// PrepareWriteVectors walks chains from head producing up to maxGatherVecs
// iovec-like windows summing to at most max bytes (max < 0 means
// unbounded), for a gather write. Drain the buffer by the number of bytes
// actually written once the syscall returns.
func (b *ChainBuffer) PrepareWriteVectors(max int) [][]byte {
	var vecs [][]byte
	remaining := max
	for c := b.first; c != nil && len(vecs) < maxGatherVecs; c = c.next {
		if c.off == 0 {
			continue
		}
		data := c.data()
		if max >= 0 {
			if remaining <= 0 {
				break
			}
			if len(data) > remaining {
				data = data[:remaining]
			}
			remaining -= len(data)
		}
		vecs = append(vecs, data)
	}
	return vecs
}
