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

import (
	"bytes"
	"math/rand"
	"testing"
)

// TestInvariantTotalLenMatchesContent exercises a long pseudo-random
// sequence of append/prepend/drain/remove/addBuffer/pullup operations and
// checks that Len() always matches a parallel reference []byte, that the
// bytes returned by Remove and Pullup agree with the reference, and that
// the final contents equal it.
func TestInvariantTotalLenMatchesContent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	b := New()
	var ref []byte

	for i := 0; i < 2000; i++ {
		switch rng.Intn(6) {
		case 0:
			p := randBytes(rng, rng.Intn(50))
			b.Append(p)
			ref = append(ref, p...)
		case 1:
			p := randBytes(rng, rng.Intn(20))
			b.Prepend(p)
			ref = append(append([]byte(nil), p...), ref...)
		case 2:
			n := rng.Intn(len(ref) + 1)
			b.Drain(n)
			if n > len(ref) {
				n = len(ref)
			}
			ref = ref[n:]
		case 3:
			n := rng.Intn(len(ref) + 1)
			out := make([]byte, n)
			got, err := b.Remove(out)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(out[:got], ref[:got]) {
				t.Fatalf("Remove mismatch at step %d", i)
			}
			ref = ref[got:]
		case 4:
			if len(ref) > 0 {
				n := rng.Intn(len(ref)) + 1
				region, err := b.Pullup(n)
				if err != nil {
					t.Fatal(err)
				}
				if !bytes.Equal(region, ref[:n]) {
					t.Fatalf("Pullup(%d) mismatch at step %d: %q vs %q", n, i, region, ref[:n])
				}
			}
		case 5:
			other := New()
			p := randBytes(rng, rng.Intn(30))
			other.Append(p)
			b.AddBuffer(other)
			ref = append(ref, p...)
			if other.Len() != 0 {
				t.Fatalf("AddBuffer left src non-empty")
			}
		}

		if b.Len() != len(ref) {
			t.Fatalf("step %d: Len() = %d, want %d", i, b.Len(), len(ref))
		}
	}

	final := make([]byte, b.Len())
	n, err := b.Remove(final)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(final[:n], ref) {
		t.Fatalf("final content mismatch")
	}
}

func randBytes(rng *rand.Rand, n int) []byte {
	p := make([]byte, n)
	rng.Read(p)
	return p
}
