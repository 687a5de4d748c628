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

import "fmt"

// EOLStyle selects how ReadLine finds and strips a line terminator.
type EOLStyle int

const (
	// EOLAny stops at the first \r or \n and drains the whole following
	// run of \r/\n characters as the terminator.
	EOLAny EOLStyle = iota
	// EOLCRLFStrict requires an exact "\r\n" sequence.
	EOLCRLFStrict
	// EOLCRLF finds \n and additionally strips one immediately preceding
	// \r, tolerating bare \n as well.
	EOLCRLF
	// EOLLF finds a bare \n only.
	EOLLF
)

// ReadLine scans for a line terminator per style, and if found returns
// the line content (terminator stripped) and drains the line plus its
// terminator from the buffer. If no terminator is present, the buffer is
// left unmodified and ErrNoEOL is returned.
func (b *ChainBuffer) ReadLine(style EOLStyle) ([]byte, error) {
	if b.totalLen == 0 {
		return nil, ErrNoEOL
	}
	buf, err := b.Pullup(b.totalLen)
	if err != nil {
		return nil, err
	}

	switch style {
	case EOLCRLFStrict:
		idx := indexBytes(buf, []byte("\r\n"))
		if idx < 0 {
			return nil, ErrNoEOL
		}
		line := append([]byte(nil), buf[:idx]...)
		if err := b.Drain(idx + 2); err != nil {
			return nil, err
		}
		return line, nil

	case EOLLF:
		idx := indexByte(buf, '\n')
		if idx < 0 {
			return nil, ErrNoEOL
		}
		line := append([]byte(nil), buf[:idx]...)
		if err := b.Drain(idx + 1); err != nil {
			return nil, err
		}
		return line, nil

	case EOLCRLF:
		idx := indexByte(buf, '\n')
		if idx < 0 {
			return nil, ErrNoEOL
		}
		end := idx
		if end > 0 && buf[end-1] == '\r' {
			end--
		}
		line := append([]byte(nil), buf[:end]...)
		if err := b.Drain(idx + 1); err != nil {
			return nil, err
		}
		return line, nil

	case EOLAny:
		idx := -1
		for i, c := range buf {
			if c == '\r' || c == '\n' {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, ErrNoEOL
		}
		line := append([]byte(nil), buf[:idx]...)
		end := idx
		for end < len(buf) && (buf[end] == '\r' || buf[end] == '\n') {
			end++
		}
		if err := b.Drain(end); err != nil {
			return nil, err
		}
		return line, nil
	}
	return nil, ErrNoEOL
}

func indexByte(buf []byte, c byte) int {
	for i, b := range buf {
		if b == c {
			return i
		}
	}
	return -1
}

// Printf appends the formatted result of format/args to the buffer.
func (b *ChainBuffer) Printf(format string, args ...interface{}) error {
	s := fmt.Sprintf(format, args...)
	return b.Append([]byte(s))
}
