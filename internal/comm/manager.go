package comm

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dweggg/libreScope/internal/dispatch"
	"github.com/dweggg/libreScope/internal/models"
)

// DefaultIdleSleep is how long the reader loop sleeps when no bytes are
// pending, to avoid busy-spinning the transport.
const DefaultIdleSleep = 5 * time.Millisecond

// Manager owns the connection lifecycle and the reader goroutine. It is the
// single writer of the connection state; the API goroutines only read it
// through Status.
type Manager struct {
	transport Transport
	codec     *Codec
	hub       *dispatch.Hub
	idleSleep time.Duration

	mu            sync.Mutex
	state         models.ConnectionState
	portName      string
	lastHeartbeat time.Time
	lastError     error
	stopCh        chan struct{}
	doneCh        chan struct{}

	linesParsed    atomic.Uint64
	linesDiscarded atomic.Uint64
}

// ConnectionStatus is a point-in-time snapshot of the link health.
type ConnectionStatus struct {
	State          models.ConnectionState `json:"state"`
	Port           string                 `json:"port,omitempty"`
	LastHeartbeat  time.Time              `json:"lastHeartbeat"`
	HeartbeatAge   float64                `json:"heartbeatAge"`
	LinesParsed    uint64                 `json:"linesParsed"`
	LinesDiscarded uint64                 `json:"linesDiscarded"`
	LastError      string                 `json:"lastError,omitempty"`
}

// NewManager creates a Manager over the given transport, dispatching parsed
// events to hub.
func NewManager(transport Transport, hub *dispatch.Hub) *Manager {
	return &Manager{
		transport: transport,
		codec:     NewCodec(),
		hub:       hub,
		idleSleep: DefaultIdleSleep,
		state:     models.ConnectionIdle,
	}
}

// Connect opens the transport on the selected port and starts the reader
// goroutine. Connecting while already open is a no-op success.
func (m *Manager) Connect(port string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == models.ConnectionOpen {
		return nil
	}
	if m.state == models.ConnectionClosing {
		return fmt.Errorf("comm: disconnect in progress")
	}

	m.state = models.ConnectionConnecting
	if err := m.transport.Open(port); err != nil {
		m.state = models.ConnectionIdle
		m.lastError = err
		return err
	}

	m.state = models.ConnectionOpen
	m.portName = port
	m.lastHeartbeat = time.Now()
	m.lastError = nil
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	go m.readLoop(m.stopCh, m.doneCh)
	return nil
}

// Disconnect cooperatively stops the reader goroutine, waits for its
// in-flight iteration to finish, then closes the transport. Disconnecting
// while idle is a no-op success.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	if m.state == models.ConnectionIdle {
		m.mu.Unlock()
		return nil
	}
	stopCh, doneCh := m.stopCh, m.doneCh
	m.state = models.ConnectionClosing
	m.stopCh = nil
	m.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	if doneCh != nil {
		<-doneCh
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	err := m.transport.Close()
	m.state = models.ConnectionIdle
	return err
}

// Toggle connects when idle and disconnects when open. It returns the
// resulting connected state.
func (m *Manager) Toggle(port string) (bool, error) {
	if m.IsConnected() {
		return false, m.Disconnect()
	}
	if err := m.Connect(port); err != nil {
		return false, err
	}
	return true, nil
}

// Send encodes a key/value pair and writes it to the device. A write error
// is fatal for the session: the link is torn down before returning it.
func (m *Manager) Send(key string, value float64) error {
	m.mu.Lock()
	connected := m.state == models.ConnectionOpen
	m.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	if err := m.transport.Write(m.codec.Encode(key, value)); err != nil {
		fmt.Printf("[Comm] Error sending data: %v\n", err)
		m.mu.Lock()
		m.lastError = err
		m.mu.Unlock()
		m.Disconnect()
		return err
	}
	return nil
}

// IsConnected reports whether the link is open.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == models.ConnectionOpen
}

// HeartbeatAge returns seconds since the last "OK" line was received.
func (m *Manager) HeartbeatAge() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastHeartbeat.IsZero() {
		return 0
	}
	return time.Since(m.lastHeartbeat).Seconds()
}

// Status returns a snapshot of the connection state and throughput counters.
func (m *Manager) Status() ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := ConnectionStatus{
		State:          m.state,
		Port:           m.portName,
		LastHeartbeat:  m.lastHeartbeat,
		LinesParsed:    m.linesParsed.Load(),
		LinesDiscarded: m.linesDiscarded.Load(),
	}
	if !m.lastHeartbeat.IsZero() {
		status.HeartbeatAge = time.Since(m.lastHeartbeat).Seconds()
	}
	if m.lastError != nil {
		status.LastError = m.lastError.Error()
	}
	return status
}

// readLoop continuously pulls bytes from the transport, decodes them, and
// forwards signal events to the hub. It terminates on a stop request or on
// a fatal transport error.
func (m *Manager) readLoop(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	buf := make([]byte, 4096)

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		n, err := m.transport.ReadAvailable(buf)
		if err != nil {
			m.fatal(err)
			return
		}
		if n == 0 {
			time.Sleep(m.idleSleep)
			continue
		}

		for _, line := range m.codec.SplitLines(buf[:n]) {
			event, kind := m.codec.DecodeLine(line)
			switch kind {
			case LineHeartbeat:
				m.touchHeartbeat()
			case LineSignal:
				m.linesParsed.Add(1)
				m.hub.Dispatch(event)
			case LineDiscard:
				if strings.TrimSpace(line) != "" {
					m.linesDiscarded.Add(1)
				}
			}
		}
	}
}

// fatal tears the link down after a transport error surfaced in the reader.
// If a cooperative disconnect is already closing the link, the reader just
// exits and leaves the close to it.
func (m *Manager) fatal(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != models.ConnectionOpen {
		return
	}
	fmt.Printf("[Comm] Error reading from serial port: %v. The port will be closed.\n", err)
	m.lastError = err
	m.transport.Close()
	m.state = models.ConnectionIdle
	m.stopCh = nil
}

func (m *Manager) touchHeartbeat() {
	m.mu.Lock()
	m.lastHeartbeat = time.Now()
	m.mu.Unlock()
}
