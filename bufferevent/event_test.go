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

package bufferevent

import (
	"testing"
	"time"
)

// fakeTransport records Enable/Disable calls and Destruct for assertions,
// standing in for the spec's SocketTransport/FilterTransport collaborators.
type fakeTransport struct {
	enabledCalls  []Direction
	disabledCalls []Direction
	destructed    bool
}

func (f *fakeTransport) Enable(which Direction) error {
	f.enabledCalls = append(f.enabledCalls, which)
	return nil
}
func (f *fakeTransport) Disable(which Direction) error {
	f.disabledCalls = append(f.disabledCalls, which)
	return nil
}
func (f *fakeTransport) Destruct() error                              { f.destructed = true; return nil }
func (f *fakeTransport) AdjustTimeouts(read, write time.Duration) error { return nil }
func (f *fakeTransport) Flush(which Direction, mode FlushMode) (int, error) {
	return 0, nil
}

func newTestEvent() (*BufferedEvent, *fakeTransport) {
	var ft *fakeTransport
	be := New(func(*BufferedEvent) Transport {
		ft = &fakeTransport{}
		return ft
	})
	return be, ft
}

// S4: read-watermark suspend/resume.
func TestS4WatermarkSuspend(t *testing.T) {
	be, ft := newTestEvent()
	be.SetWatermarks(Read, 0, 10)
	be.Enable(Read)

	be.Input.Append(make([]byte, 10))
	if !be.IsReadSuspended() {
		t.Fatal("expected read_suspended = true at high watermark")
	}
	if len(ft.disabledCalls) == 0 || ft.disabledCalls[len(ft.disabledCalls)-1] != Read {
		t.Fatalf("expected transport.Disable(Read), calls=%v", ft.disabledCalls)
	}

	enabledBefore := len(ft.enabledCalls)
	be.Input.Drain(1)
	if be.IsReadSuspended() {
		t.Fatal("expected read_suspended = false after dropping below high watermark")
	}
	if len(ft.enabledCalls) <= enabledBefore {
		t.Fatal("expected transport.Enable(Read) on resume since user had Read enabled")
	}
}

func TestWatermarkDoesNotResumeIfUserDisabledRead(t *testing.T) {
	be, ft := newTestEvent()
	be.SetWatermarks(Read, 0, 10)
	be.Enable(Read)
	be.Input.Append(make([]byte, 10))
	be.Disable(Read)

	enabledBefore := len(ft.enabledCalls)
	be.Input.Drain(5)
	if be.IsReadSuspended() {
		t.Fatal("expected suspension to clear regardless of user intent")
	}
	if len(ft.enabledCalls) != enabledBefore {
		t.Fatal("must not re-enable transport reads: user has Read disabled")
	}
}

func TestEnableReadMaskedWhileSuspended(t *testing.T) {
	be, ft := newTestEvent()
	be.SetWatermarks(Read, 0, 5)
	be.Input.Append(make([]byte, 5))
	if !be.IsReadSuspended() {
		t.Fatal("expected suspension")
	}

	enabledBefore := len(ft.enabledCalls)
	be.Enable(Read)
	if len(ft.enabledCalls) != enabledBefore {
		t.Fatal("Enable(Read) while suspended must not reach the transport")
	}

	be.Input.Drain(1)
	if len(ft.enabledCalls) <= enabledBefore {
		t.Fatal("once unsuspended, the earlier Enable(Read) should take effect")
	}
}

func TestWriteDefaultEnabledReadRequiresOptIn(t *testing.T) {
	be, _ := newTestEvent()
	if !be.Enabled().has(Write) {
		t.Fatal("Write must be enabled by default")
	}
	if be.Enabled().has(Read) {
		t.Fatal("Read must require an explicit Enable call")
	}
}

func TestFreeDestructsTransportAndClearsBuffers(t *testing.T) {
	be, ft := newTestEvent()
	be.Write([]byte("queued"))
	if err := be.Free(); err != nil {
		t.Fatal(err)
	}
	if !ft.destructed {
		t.Fatal("expected transport.Destruct() to have been called")
	}
	if be.Output.Len() != 0 {
		t.Fatal("expected output buffer cleared on Free")
	}
}
