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

// Command evecho is a small TCP echo server demonstrating the
// bufferevent/transport stack: every accepted connection gets a
// socket-backed BufferedEvent, optionally wrapped in a snappy-framed
// FilterTransport, and everything read from it is written straight back.
package main

import (
	"log"
	"net"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/xtaci/evbuffer/bufferevent"
	"github.com/xtaci/evbuffer/filters"
	"github.com/xtaci/evbuffer/reactor"
	"github.com/xtaci/evbuffer/transport/filter"
	"github.com/xtaci/evbuffer/transport/socket"
)

// VERSION is injected by buildflags.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "evecho"
	myApp.Usage = "bufferevent demo: TCP echo server"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "listenaddr,l",
			Value: ":7900",
			Usage: "local listen address",
		},
		cli.IntFlag{
			Name:  "readlow",
			Value: 1,
			Usage: "read low watermark, in bytes",
		},
		cli.IntFlag{
			Name:  "readhigh",
			Value: 65536,
			Usage: "read high watermark, in bytes (0 disables suspend-on-fill)",
		},
		cli.IntFlag{
			Name:  "writelow",
			Value: 0,
			Usage: "write low watermark, in bytes",
		},
		cli.BoolFlag{
			Name:  "compress",
			Usage: "wrap each connection in a snappy-framed FilterTransport",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "suppress per-connection open/close logging",
		},
	}
	myApp.Action = run
	if err := myApp.Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(c *cli.Context) error {
	listenAddr := c.String("listenaddr")
	readLow := c.Int("readlow")
	readHigh := c.Int("readhigh")
	writeLow := c.Int("writelow")
	compress := c.Bool("compress")
	quiet := c.Bool("quiet")

	addr, err := net.ResolveTCPAddr("tcp", listenAddr)
	if err != nil {
		return errors.Wrap(err, "resolve listen address")
	}
	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}

	color.Cyan("evecho version: %v", VERSION)
	color.Cyan("listening on: %v", listener.Addr())
	color.Cyan("read watermarks: low=%d high=%d", readLow, readHigh)
	color.Cyan("compress: %v", compress)

	react := reactor.New()
	for {
		conn, err := listener.Accept()
		if err != nil {
			return errors.Wrap(err, "accept")
		}
		go handleConn(conn, react, readLow, readHigh, writeLow, compress, quiet)
	}
}

func handleConn(conn net.Conn, react reactor.Reactor, readLow, readHigh, writeLow int, compress, quiet bool) {
	logln := func(v ...interface{}) {
		if !quiet {
			log.Println(v...)
		}
	}

	remote := conn.RemoteAddr()
	logln("connection opened:", remote)
	defer logln("connection closed:", remote)

	be := socket.Bind(conn, react, bufferevent.CloseOnFree)
	if compress {
		be = filter.Wrap(be, filters.SnappyDecode, filters.SnappyEncode, nil, nil, bufferevent.CloseOnFree)
	}

	done := make(chan struct{})
	be.SetWatermarks(bufferevent.Read, readLow, readHigh)
	be.SetWatermarks(bufferevent.Write, writeLow, 0)
	be.SetCallbacks(onRead, nil, onError(done), done)
	be.Enable(bufferevent.Read | bufferevent.Write)

	<-done
}

func onRead(be *bufferevent.BufferedEvent, _ interface{}) {
	buf := make([]byte, be.Input.Len())
	if _, err := be.Read(buf); err != nil {
		log.Println("read:", err)
		return
	}
	if err := be.Write(buf); err != nil {
		log.Println("write:", err)
	}
}

// onError returns an ErrorCallback that frees be and signals done,
// closing over the per-connection channel handleConn blocks on.
func onError(done chan struct{}) bufferevent.ErrorCallback {
	return func(be *bufferevent.BufferedEvent, flags bufferevent.EventFlag, _ interface{}) {
		switch {
		case flags&bufferevent.EvEOF != 0:
			log.Println("peer closed connection")
		case flags&bufferevent.EvTimeout != 0:
			log.Println("connection timed out")
		default:
			log.Println("connection error:", flags)
		}
		if err := be.Free(); err != nil {
			log.Println("free:", err)
		}
		close(done)
	}
}
