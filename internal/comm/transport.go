// Package comm implements the device communication layer: the byte-stream
// transport, the line protocol codec, and the connection manager that owns
// the reader goroutine.
package comm

import "errors"

// Transport is a byte-stream device link. Implementations must make
// ReadAvailable non-blocking: it returns 0 bytes when nothing is pending.
// Open on an already-open transport and Close on an already-closed one are
// no-op successes.
type Transport interface {
	Open(selector string) error
	Close() error
	// ReadAvailable reads whatever is pending into buf without blocking
	// beyond the driver's short poll interval.
	ReadAvailable(buf []byte) (int, error)
	Write(data []byte) error
	IsOpen() bool
}

var (
	// ErrNotConnected is returned by operations that require an open link.
	ErrNotConnected = errors.New("comm: not connected")
	// ErrNoPorts is returned when no serial ports are present.
	ErrNoPorts = errors.New("comm: no serial ports found")
)
