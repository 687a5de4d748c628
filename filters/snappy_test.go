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
	"bytes"
	"testing"

	"github.com/xtaci/evbuffer/bufferevent"
	"github.com/xtaci/evbuffer/chainbuffer"
)

func TestSnappyRoundTrip(t *testing.T) {
	plain := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)

	raw := chainbuffer.New()
	framed := chainbuffer.New()
	raw.Append(plain)

	if _, err := SnappyEncode(raw, framed, -1, bufferevent.FlushNormal, nil); err != nil {
		t.Fatal(err)
	}
	if raw.Len() != 0 {
		t.Fatalf("raw.Len() = %d, want 0 after encode", raw.Len())
	}
	if framed.Len() == 0 {
		t.Fatal("framed buffer is empty after encode")
	}

	out := chainbuffer.New()
	result, err := SnappyDecode(framed, out, -1, bufferevent.FlushNormal, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result != bufferevent.FilterOK {
		t.Fatalf("result = %v, want FilterOK", result)
	}
	if framed.Len() != 0 {
		t.Fatalf("framed.Len() = %d, want 0 after decode", framed.Len())
	}

	got := make([]byte, out.Len())
	out.Remove(got)
	if !bytes.Equal(got, plain) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(plain))
	}
}

func TestSnappyDecodeNeedsMoreOnPartialFrame(t *testing.T) {
	plain := []byte("short message")
	raw := chainbuffer.New()
	framed := chainbuffer.New()
	raw.Append(plain)

	if _, err := SnappyEncode(raw, framed, -1, bufferevent.FlushNormal, nil); err != nil {
		t.Fatal(err)
	}

	full := make([]byte, framed.Len())
	framed.Copyout(full)

	partial := chainbuffer.New()
	partial.Append(full[:2]) // not even a full length header

	out := chainbuffer.New()
	result, err := SnappyDecode(partial, out, -1, bufferevent.FlushNormal, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result != bufferevent.FilterNeedMore {
		t.Fatalf("result = %v, want FilterNeedMore", result)
	}
	if partial.Len() != 2 {
		t.Fatalf("partial.Len() = %d, want unchanged at 2", partial.Len())
	}
	if out.Len() != 0 {
		t.Fatalf("out.Len() = %d, want 0", out.Len())
	}

	// Feed the rest of the frame and confirm it now decodes.
	partial.Append(full[2:])
	result, err = SnappyDecode(partial, out, -1, bufferevent.FlushNormal, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result != bufferevent.FilterOK {
		t.Fatalf("result = %v, want FilterOK", result)
	}
	got := make([]byte, out.Len())
	out.Remove(got)
	if !bytes.Equal(got, plain) {
		t.Fatalf("got %q, want %q", got, plain)
	}
}

func TestSnappyEncodeHonorsByteLimit(t *testing.T) {
	raw := chainbuffer.New()
	framed := chainbuffer.New()
	raw.Append([]byte("0123456789"))

	if _, err := SnappyEncode(raw, framed, 4, bufferevent.FlushNormal, nil); err != nil {
		t.Fatal(err)
	}
	if raw.Len() != 6 {
		t.Fatalf("raw.Len() = %d, want 6 remaining", raw.Len())
	}

	out := chainbuffer.New()
	if _, err := SnappyDecode(framed, out, -1, bufferevent.FlushNormal, nil); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, out.Len())
	out.Remove(got)
	if string(got) != "0123" {
		t.Fatalf("got %q, want %q", got, "0123")
	}
}
