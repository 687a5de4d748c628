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

// Package socket implements spec §4.3's SocketTransport: a
// bufferevent.Transport bound to a net.Conn, scheduling read/write
// readiness through a reactor.Reactor. Each read readiness does one
// conn.Read into the first vector PrepareReadVectors returns (reads are
// not scattered over several vectors); writes are gathered from the
// output chainbuffer with net.Buffers.
package socket

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/xtaci/evbuffer/bufferevent"
	"github.com/xtaci/evbuffer/chainbuffer"
	"github.com/xtaci/evbuffer/reactor"
)

// Transport is the concrete bufferevent.Transport bound to a net.Conn.
type Transport struct {
	conn  net.Conn
	react reactor.Reactor
	be    *bufferevent.BufferedEvent

	closeOnFree bool
	outputCB    *chainbuffer.CallbackEntry

	mu          sync.Mutex
	readHandle  reactor.Handle
	writeHandle reactor.Handle
	readArmed   bool
	writeArmed  bool
}

// Bind creates a BufferedEvent whose I/O is driven by conn through react.
func Bind(conn net.Conn, react reactor.Reactor, opts ...bufferevent.Option) *bufferevent.BufferedEvent {
	var optBits bufferevent.Option
	for _, o := range opts {
		optBits |= o
	}
	return bufferevent.New(func(be *bufferevent.BufferedEvent) bufferevent.Transport {
		t := &Transport{
			conn:        conn,
			react:       react,
			be:          be,
			closeOnFree: optBits&bufferevent.CloseOnFree != 0,
		}
		// Arms write-readiness whenever output grows and WRITE is
		// enabled but not already armed, per spec §4.3.
		t.outputCB = be.Output.AddCallback(t.onOutputChanged, nil)
		return t
	})
}

func (t *Transport) onOutputChanged(oldLen, newLen int, _ interface{}) {
	if newLen <= oldLen {
		return
	}
	t.mu.Lock()
	armed := t.writeArmed
	enabled := t.be.Enabled()&bufferevent.Write != 0
	t.mu.Unlock()
	if enabled && !armed {
		t.Enable(bufferevent.Write)
	}
}

// Enable implements bufferevent.Transport.
func (t *Transport) Enable(which bufferevent.Direction) error {
	var err error
	if which&bufferevent.Read != 0 {
		err = t.armRead()
	}
	if which&bufferevent.Write != 0 {
		if werr := t.armWrite(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// Disable implements bufferevent.Transport.
func (t *Transport) Disable(which bufferevent.Direction) error {
	if which&bufferevent.Read != 0 {
		t.disarmRead()
	}
	if which&bufferevent.Write != 0 {
		t.disarmWrite()
	}
	return nil
}

func (t *Transport) armRead() error {
	t.mu.Lock()
	if t.readArmed {
		t.mu.Unlock()
		return nil
	}
	readTimeout, _ := t.be.Timeouts()
	t.mu.Unlock()

	h, err := t.react.RegisterFD(t.conn, reactor.DirRead, true, readTimeout, t.onReadReady)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.readHandle = h
	t.readArmed = true
	t.mu.Unlock()
	return nil
}

func (t *Transport) armWrite() error {
	t.mu.Lock()
	if t.writeArmed {
		t.mu.Unlock()
		return nil
	}
	_, writeTimeout := t.be.Timeouts()
	t.mu.Unlock()

	h, err := t.react.RegisterFD(t.conn, reactor.DirWrite, true, writeTimeout, t.onWriteReady)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.writeHandle = h
	t.writeArmed = true
	t.mu.Unlock()
	return nil
}

func (t *Transport) disarmRead() {
	t.mu.Lock()
	if !t.readArmed {
		t.mu.Unlock()
		return
	}
	h := t.readHandle
	t.readArmed = false
	t.mu.Unlock()
	t.react.Cancel(h)
}

func (t *Transport) disarmWrite() {
	t.mu.Lock()
	if !t.writeArmed {
		t.mu.Unlock()
		return
	}
	h := t.writeHandle
	t.writeArmed = false
	t.mu.Unlock()
	t.react.Cancel(h)
}

// onReadReady is the reactor-invoked read callback of spec §4.3.
func (t *Transport) onReadReady(conn net.Conn, _ reactor.Direction) {
	low, high := t.readWatermarks()

	howmuch := -1
	if high > 0 {
		howmuch = high - t.be.Input.Len()
		if howmuch <= 0 {
			return
		}
	}

	vecs, err := t.be.Input.PrepareReadVectors(howmuch)
	if err != nil || len(vecs) == 0 {
		return
	}

	n, rerr := conn.Read(vecs[0])
	if rerr != nil {
		if isTimeout(rerr) {
			t.disarmRead()
			t.be.InvokeErrorCB(bufferevent.EvTimeout | bufferevent.EvRead)
			return
		}
		if rerr == io.EOF {
			t.disarmRead()
			t.be.InvokeErrorCB(bufferevent.EvEOF | bufferevent.EvRead)
			return
		}
		t.disarmRead()
		t.be.InvokeErrorCB(bufferevent.EvError | bufferevent.EvRead)
		return
	}
	if n == 0 {
		t.disarmRead()
		t.be.InvokeErrorCB(bufferevent.EvEOF | bufferevent.EvRead)
		return
	}

	t.be.Input.AccountRead(n)
	if t.be.Input.Len() >= low {
		t.be.InvokeReadCB()
	}
}

// onWriteReady is the reactor-invoked write callback of spec §4.3.
func (t *Transport) onWriteReady(conn net.Conn, _ reactor.Direction) {
	if t.be.Output.Len() == 0 {
		t.disarmWrite()
		return
	}

	bufs := net.Buffers(t.be.Output.PrepareWriteVectors(-1))
	written, werr := bufs.WriteTo(conn)
	if werr != nil {
		if isTimeout(werr) {
			t.disarmWrite()
			t.be.InvokeErrorCB(bufferevent.EvTimeout | bufferevent.EvWrite)
			return
		}
		t.disarmWrite()
		t.be.InvokeErrorCB(bufferevent.EvError | bufferevent.EvWrite)
		return
	}

	t.be.Output.Drain(int(written))
	if t.be.Output.Len() == 0 {
		t.disarmWrite()
	}

	writeLow, _ := t.be.WriteWatermarks()
	if t.be.Output.Len() <= writeLow {
		t.be.InvokeWriteCB()
	}
}

func (t *Transport) readWatermarks() (low, high int) {
	return t.be.ReadWatermarks()
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// AdjustTimeouts implements bufferevent.Transport: armed registrations
// are cancelled and re-armed with the new deadlines.
func (t *Transport) AdjustTimeouts(read, write time.Duration) error {
	t.mu.Lock()
	wasRead, wasWrite := t.readArmed, t.writeArmed
	t.mu.Unlock()
	if wasRead {
		t.disarmRead()
		if err := t.armRead(); err != nil {
			return err
		}
	}
	if wasWrite {
		t.disarmWrite()
		if err := t.armWrite(); err != nil {
			return err
		}
	}
	return nil
}

// Flush implements bufferevent.Transport: a direct, synchronous gather
// write of the queued output, covering at most the first 16 chains (the
// PrepareWriteVectors limit). mode is accepted for interface
// conformance; a socket has no staged-filter state to distinguish FLUSH
// from FINISHED.
func (t *Transport) Flush(which bufferevent.Direction, mode bufferevent.FlushMode) (int, error) {
	if which&bufferevent.Write == 0 || t.be.Output.Len() == 0 {
		return 0, nil
	}
	bufs := net.Buffers(t.be.Output.PrepareWriteVectors(-1))
	written, err := bufs.WriteTo(t.conn)
	if err != nil {
		return int(written), err
	}
	t.be.Output.Drain(int(written))
	return int(written), nil
}

// Destruct implements bufferevent.Transport: cancels any armed
// registrations and, if CloseOnFree was set, closes the underlying conn.
func (t *Transport) Destruct() error {
	t.disarmRead()
	t.disarmWrite()
	if t.closeOnFree {
		return t.conn.Close()
	}
	return nil
}
