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

package socket

import (
	"net"
	"testing"
	"time"

	"github.com/xtaci/evbuffer/bufferevent"
	"github.com/xtaci/evbuffer/reactor"
)

func TestSocketTransportReadPath(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	react := reactor.New()
	be := Bind(server, react)
	defer be.Free()

	got := make(chan []byte, 1)
	be.SetCallbacks(func(be *bufferevent.BufferedEvent, _ interface{}) {
		buf := make([]byte, be.Input.Len())
		be.Input.Remove(buf)
		got <- buf
	}, nil, nil, nil)
	be.Enable(bufferevent.Read)

	go client.Write([]byte("hello"))

	select {
	case b := <-got:
		if string(b) != "hello" {
			t.Fatalf("got %q, want hello", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("read callback never fired")
	}
}

func TestSocketTransportWritePath(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	react := reactor.New()
	be := Bind(server, react)
	defer be.Free()

	be.Write([]byte("PING"))

	buf := make([]byte, 4)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "PING" {
		t.Fatalf("got %q, want PING", buf[:n])
	}
}

func TestSocketTransportEOF(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	react := reactor.New()
	be := Bind(server, react)
	defer be.Free()

	errFlags := make(chan bufferevent.EventFlag, 1)
	be.SetCallbacks(nil, nil, func(_ *bufferevent.BufferedEvent, flags bufferevent.EventFlag, _ interface{}) {
		errFlags <- flags
	}, nil)
	be.Enable(bufferevent.Read)

	client.Close()

	select {
	case flags := <-errFlags:
		if flags&bufferevent.EvEOF == 0 {
			t.Fatalf("flags = %v, want EvEOF set", flags)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error callback never fired")
	}
}
