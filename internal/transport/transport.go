package transport

import (
	"context"
	"fmt"
)

// ErrorKind classifies transport failures for retry accounting
type ErrorKind string

const (
	ErrTimeout  ErrorKind = "timeout"
	ErrRefused  ErrorKind = "refused"
	ErrProtocol ErrorKind = "protocol"
)

// Error is a per-attempt transport failure. Attempts that fail with a
// transport error are retried by the dispatch engine up to its bound.
type Error struct {
	Kind ErrorKind
	Addr string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s: %s: %v", e.Kind, e.Addr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport delivers rendered tickets to a printer and probes printer
// reachability. Address and wire encoding are owned by the transport, not
// the routing engine.
type Transport interface {
	// Send delivers one ticket body to the printer at addr
	Send(ctx context.Context, addr string, body []byte) error

	// Probe checks reachability of the printer at addr
	Probe(ctx context.Context, addr string) error
}
