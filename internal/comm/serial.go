package comm

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// SerialTransport is the production Transport over a serial port.
//
// The non-blocking read contract is implemented with a short driver read
// timeout: a timed-out read reports zero bytes, which callers treat as
// "nothing pending".
type SerialTransport struct {
	mu          sync.Mutex
	port        serial.Port
	portName    string
	baudRate    int
	readTimeout time.Duration
}

// NewSerialTransport creates a closed transport with the given link settings.
func NewSerialTransport(baudRate int, readTimeout time.Duration) *SerialTransport {
	if readTimeout <= 0 {
		readTimeout = 5 * time.Millisecond
	}
	return &SerialTransport{
		baudRate:    baudRate,
		readTimeout: readTimeout,
	}
}

// ListPorts enumerates the serial ports present on the host.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	if len(ports) == 0 {
		return nil, ErrNoPorts
	}
	return ports, nil
}

// Open opens the named port. Opening while already open is a no-op success.
func (t *SerialTransport) Open(selector string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port != nil {
		return nil
	}

	mode := &serial.Mode{BaudRate: t.baudRate}
	port, err := serial.Open(selector, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", selector, err)
	}
	if err := port.SetReadTimeout(t.readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", selector, err)
	}

	t.port = port
	t.portName = selector
	fmt.Printf("[Comm] Serial port %s opened\n", selector)
	return nil
}

// Close closes the port. Closing while already closed is a no-op success.
func (t *SerialTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}

	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", t.portName, err)
	}
	fmt.Printf("[Comm] Serial port %s closed\n", t.portName)
	return nil
}

// ReadAvailable reads pending bytes into buf. A driver timeout with no data
// returns (0, nil).
func (t *SerialTransport) ReadAvailable(buf []byte) (int, error) {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return 0, ErrNotConnected
	}
	return port.Read(buf)
}

// Write sends data over the port.
func (t *SerialTransport) Write(data []byte) error {
	t.mu.Lock()
	port := t.port
	t.mu.Unlock()
	if port == nil {
		return ErrNotConnected
	}
	if _, err := port.Write(data); err != nil {
		return fmt.Errorf("failed to write to serial port %s: %w", t.portName, err)
	}
	return nil
}

// IsOpen reports whether the port is open.
func (t *SerialTransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port != nil
}
