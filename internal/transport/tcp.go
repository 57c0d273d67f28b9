package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"time"
)

// TCP sends tickets over a raw socket, the mechanism used by port-9100
// network receipt printers. The rendered ticket body is written as-is;
// byte-level formatting belongs to whoever rendered the ticket.
type TCP struct {
	// DialTimeout bounds connection establishment separately from the
	// caller's context deadline
	DialTimeout time.Duration

	// WriteTimeout bounds writing one ticket body
	WriteTimeout time.Duration
}

// NewTCP creates a TCP transport with conservative timeouts
func NewTCP() *TCP {
	return &TCP{
		DialTimeout:  3 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// Send connects to the printer and writes the ticket body
func (t *TCP) Send(ctx context.Context, addr string, body []byte) error {
	conn, err := t.dial(ctx, addr)
	if err != nil {
		return classify(addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	} else {
		_ = conn.SetWriteDeadline(time.Now().Add(t.WriteTimeout))
	}

	if _, err := conn.Write(body); err != nil {
		return classify(addr, err)
	}

	return nil
}

// Probe checks that the printer accepts a TCP connection
func (t *TCP) Probe(ctx context.Context, addr string) error {
	conn, err := t.dial(ctx, addr)
	if err != nil {
		return classify(addr, err)
	}
	return conn.Close()
}

func (t *TCP) dial(ctx context.Context, addr string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: t.DialTimeout}
	return dialer.DialContext(ctx, "tcp", addr)
}

// classify maps a socket error onto the transport error taxonomy
func classify(addr string, err error) *Error {
	kind := ErrProtocol

	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded):
		kind = ErrTimeout
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		kind = ErrRefused
	}

	return &Error{Kind: kind, Addr: addr, Err: err}
}
