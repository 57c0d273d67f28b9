package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"deadline", context.DeadlineExceeded, ErrTimeout},
		{"refused", syscall.ECONNREFUSED, ErrRefused},
		{"reset", syscall.ECONNRESET, ErrRefused},
		{"host unreachable", syscall.EHOSTUNREACH, ErrRefused},
		{"anything else", errors.New("short write"), ErrProtocol},
	}

	for _, tc := range cases {
		got := classify("192.0.2.1:9100", tc.err)
		if got.Kind != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got.Kind, tc.want)
		}
		if !errors.Is(got, tc.err) {
			t.Errorf("%s: classified error must unwrap to the original", tc.name)
		}
	}
}

func TestSendWritesBody(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	tr := NewTCP()
	body := []byte("=== ORDER TICKET ===\n1x Espresso\n")
	if err := tr.Send(context.Background(), ln.Addr().String(), body); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case got := <-received:
		if string(got) != string(body) {
			t.Fatalf("body mismatch: %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("server never received the ticket")
	}
}

func TestProbeSucceedsAgainstListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	tr := NewTCP()
	if err := tr.Probe(context.Background(), ln.Addr().String()); err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
}

func TestProbeRefused(t *testing.T) {
	// Grab a port and close it again so nothing is listening
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	tr := NewTCP()
	err = tr.Probe(context.Background(), addr)
	if err == nil {
		t.Fatalf("expected probe failure")
	}

	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if terr.Kind != ErrRefused {
		t.Fatalf("expected refused, got %s", terr.Kind)
	}
}
