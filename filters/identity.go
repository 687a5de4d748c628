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

// Package filters provides concrete Filter implementations for
// transport/filter.Transport: a pass-through identity filter used by
// tests and loopback pipelines, and a framed snappy compressor/
// decompressor demonstrating a real third-party codec wired through the
// Filter interface.
//
// Per spec §1's Non-goals, these are demonstrations of the Filter
// interface, not hardened codecs: Snappy in particular trades robustness
// against adversarial input for a simple, self-delimited framing that is
// easy to reason about across repeated partial pumps.
package filters

import (
	"github.com/xtaci/evbuffer/bufferevent"
	"github.com/xtaci/evbuffer/chainbuffer"
)

// Identity moves up to byteLimit bytes (or all of them, if byteLimit <
// 0) from src to dst unchanged, via a zero-copy chain splice.
func Identity(src, dst *chainbuffer.ChainBuffer, byteLimit int, _ bufferevent.FlushMode, _ interface{}) (bufferevent.FilterResult, error) {
	n := src.Len()
	if byteLimit >= 0 && n > byteLimit {
		n = byteLimit
	}
	if n == 0 {
		return bufferevent.FilterOK, nil
	}
	if _, err := src.RemoveTo(dst, n); err != nil {
		return bufferevent.FilterError, err
	}
	return bufferevent.FilterOK, nil
}
