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

package filters

import (
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/xtaci/evbuffer/bufferevent"
	"github.com/xtaci/evbuffer/chainbuffer"
)

// frameHeaderLen is the size of the little-endian length prefix
// SnappyEncode writes ahead of every compressed block, letting
// SnappyDecode tell when a complete frame has arrived without relying on
// a continuous stream the way std/comp.go's CompStream (a net.Conn
// wrapper around snappy.Writer/Reader) could.
const frameHeaderLen = 4

// SnappyEncode compresses everything currently in src as one snappy
// block per call, prefixed with its length, and appends the frame to
// dst. byteLimit is honored as an upper bound on how much of src is
// folded into the frame.
func SnappyEncode(src, dst *chainbuffer.ChainBuffer, byteLimit int, _ bufferevent.FlushMode, _ interface{}) (bufferevent.FilterResult, error) {
	n := src.Len()
	if n == 0 {
		return bufferevent.FilterOK, nil
	}
	if byteLimit >= 0 && n > byteLimit {
		n = byteLimit
	}

	raw := make([]byte, n)
	if _, err := src.Copyout(raw); err != nil {
		return bufferevent.FilterError, err
	}
	compressed := snappy.Encode(nil, raw)

	var hdr [frameHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(compressed)))
	if err := dst.Append(hdr[:]); err != nil {
		return bufferevent.FilterError, err
	}
	if err := dst.Append(compressed); err != nil {
		return bufferevent.FilterError, err
	}
	if err := src.Drain(n); err != nil {
		return bufferevent.FilterError, err
	}
	return bufferevent.FilterOK, nil
}

// SnappyDecode reassembles frames SnappyEncode produced. It returns
// FilterNeedMore until a complete length-prefixed frame has arrived in
// src, then decodes it into dst and drains exactly that frame.
func SnappyDecode(src, dst *chainbuffer.ChainBuffer, _ int, _ bufferevent.FlushMode, _ interface{}) (bufferevent.FilterResult, error) {
	if src.Len() < frameHeaderLen {
		return bufferevent.FilterNeedMore, nil
	}

	var hdr [frameHeaderLen]byte
	if _, err := src.Copyout(hdr[:]); err != nil {
		return bufferevent.FilterError, err
	}
	frameLen := int(binary.LittleEndian.Uint32(hdr[:]))
	total := frameHeaderLen + frameLen
	if src.Len() < total {
		return bufferevent.FilterNeedMore, nil
	}

	full := make([]byte, total)
	if _, err := src.Copyout(full); err != nil {
		return bufferevent.FilterError, err
	}
	decoded, err := snappy.Decode(nil, full[frameHeaderLen:])
	if err != nil {
		return bufferevent.FilterError, err
	}
	if err := dst.Append(decoded); err != nil {
		return bufferevent.FilterError, err
	}
	if err := src.Drain(total); err != nil {
		return bufferevent.FilterError, err
	}
	return bufferevent.FilterOK, nil
}
