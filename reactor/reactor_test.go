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

package reactor

import (
	"net"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegisterFDFiresOnData(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	r := New()
	var fired int32
	done := make(chan struct{})
	h, err := r.RegisterFD(server, DirRead, false, 0, func(conn net.Conn, dir Direction) {
		buf := make([]byte, 4)
		conn.Read(buf)
		atomic.StoreInt32(&fired, 1)
		close(done)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Cancel(h)

	client.Write([]byte("ping"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never fired")
	}
	if atomic.LoadInt32(&fired) != 1 {
		t.Fatal("handler did not run")
	}
}

func TestRegisterFDTimeout(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	r := New()
	done := make(chan error, 1)
	h, err := r.RegisterFD(server, DirRead, false, 20*time.Millisecond, func(conn net.Conn, dir Direction) {
		buf := make([]byte, 1)
		_, err := conn.Read(buf)
		done <- err
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Cancel(h)

	select {
	case err := <-done:
		ne, ok := err.(net.Error)
		if !ok || !ne.Timeout() {
			t.Fatalf("expected a timeout error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler never fired")
	}
}

func TestCancelStopsPersistentLoop(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	r := New()
	var calls int32
	h, err := r.RegisterFD(server, DirRead, true, 10*time.Millisecond, func(conn net.Conn, dir Direction) {
		buf := make([]byte, 1)
		conn.Read(buf)
		atomic.AddInt32(&calls, 1)
	})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)
	r.Cancel(h)
	after := atomic.LoadInt32(&calls)
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&calls) > after+1 {
		t.Fatalf("handler kept firing after Cancel: before=%d after=%d", after, atomic.LoadInt32(&calls))
	}
}
