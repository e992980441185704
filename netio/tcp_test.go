package netio

import (
	"net"
	"testing"
	"time"

	"github.com/kelthar/nebula/asyncio"
	"github.com/kelthar/nebula/runtime"
)

func TestTcpSocketConnectAndRoundtrip(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write(buf)
	}()

	rt, err := runtime.New()
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	defer rt.Close()

	sock, err := NewV4TcpSocket(rt.Reactor())
	if err != nil {
		t.Fatalf("NewV4TcpSocket: %v", err)
	}

	addr := ln.Addr().(*net.TCPAddr)
	connFut := sock.Connect(addr)
	connected := runtime.BlockOn[ConnectResult](rt, connFut)
	if connected.Err != nil {
		t.Fatalf("connect failed: %v", connected.Err)
	}
	stream := connected.Stream
	defer stream.Close()

	writeFut := stream.Write([]byte("hello"))
	writeResult := runtime.BlockOn[asyncio.Result](rt, writeFut)
	if writeResult.Err != nil {
		t.Fatalf("write failed: %v", writeResult.Err)
	}

	buf := make([]byte, 5)
	readFut := stream.Read(buf)
	readResult := runtime.BlockOn[asyncio.Result](rt, readFut)
	if readResult.Err != nil {
		t.Fatalf("read failed: %v", readResult.Err)
	}
	got := string(buf[:readResult.N])
	if got != "hello" {
		t.Fatalf("expected echoed \"hello\", got %q", got)
	}

	select {
	case <-serverDone:
	case <-time.After(2 * time.Second):
		t.Fatal("server goroutine did not finish")
	}
}
