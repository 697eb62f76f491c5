package comm

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dweggg/libreScope/internal/dispatch"
	"github.com/dweggg/libreScope/internal/models"
)

// fakeTransport feeds scripted chunks to the reader loop and records every
// interaction, flagging any read or write after close.
type fakeTransport struct {
	mu            sync.Mutex
	open          bool
	chunks        [][]byte
	readErr       error
	writeErr      error
	written       []byte
	usedWhenClose bool
}

func (f *fakeTransport) Open(selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = true
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	return nil
}

func (f *fakeTransport) ReadAvailable(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		f.usedWhenClose = true
		return 0, ErrNotConnected
	}
	if f.readErr != nil {
		err := f.readErr
		f.readErr = nil
		return 0, err
	}
	if len(f.chunks) == 0 {
		return 0, nil
	}
	chunk := f.chunks[0]
	f.chunks = f.chunks[1:]
	return copy(buf, chunk), nil
}

func (f *fakeTransport) Write(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		f.usedWhenClose = true
		return ErrNotConnected
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, data...)
	return nil
}

func (f *fakeTransport) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeTransport) feed(chunks ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range chunks {
		f.chunks = append(f.chunks, []byte(c))
	}
}

type collected struct {
	mu     sync.Mutex
	events []models.SignalEvent
}

func (c *collected) callback(event models.SignalEvent) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
}

func (c *collected) snapshot() []models.SignalEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.SignalEvent, len(c.events))
	copy(out, c.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for condition")
}

func newTestManager() (*Manager, *fakeTransport, *collected) {
	ft := &fakeTransport{}
	hub := dispatch.NewHub()
	sink := &collected{}
	hub.Subscribe("test", sink.callback)
	m := NewManager(ft, hub)
	m.idleSleep = time.Millisecond
	return m, ft, sink
}

func TestConnectReceiveDisconnect(t *testing.T) {
	m, ft, sink := newTestManager()
	ft.feed("VBAT:12.50\r\nTEMP:-3.25\r\nOK\r\ngarbage\r\n")

	if err := m.Connect("/dev/ttyUSB0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !m.IsConnected() {
		t.Fatal("Expected connected state after Connect")
	}

	waitFor(t, func() bool { return len(sink.snapshot()) == 2 })

	events := sink.snapshot()
	if events[0].Key != "VBAT" || events[0].Value != 12.5 {
		t.Errorf("First event = %+v", events[0])
	}
	if events[1].Key != "TEMP" || events[1].Value != -3.25 {
		t.Errorf("Second event = %+v", events[1])
	}

	status := m.Status()
	if status.LinesParsed != 2 {
		t.Errorf("Expected 2 parsed lines, got %d", status.LinesParsed)
	}
	if status.LinesDiscarded != 1 {
		t.Errorf("Expected 1 discarded line, got %d", status.LinesDiscarded)
	}

	if err := m.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if m.IsConnected() {
		t.Error("Expected idle state after Disconnect")
	}
	if ft.IsOpen() {
		t.Error("Expected transport closed after Disconnect")
	}
	if ft.usedWhenClose {
		t.Error("Transport was used after close")
	}
}

func TestConnectWhileOpenIsNoop(t *testing.T) {
	m, _, _ := newTestManager()
	if err := m.Connect("/dev/ttyUSB0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer m.Disconnect()

	if err := m.Connect("/dev/ttyUSB1"); err != nil {
		t.Errorf("Expected no-op success connecting while open, got %v", err)
	}
	if m.Status().Port != "/dev/ttyUSB0" {
		t.Errorf("Expected original port retained, got %s", m.Status().Port)
	}
}

func TestDisconnectWhileIdleIsNoop(t *testing.T) {
	m, _, _ := newTestManager()
	if err := m.Disconnect(); err != nil {
		t.Errorf("Expected idempotent disconnect, got %v", err)
	}
	if err := m.Disconnect(); err != nil {
		t.Errorf("Expected repeated disconnect to succeed, got %v", err)
	}
}

func TestHeartbeatUpdatesWithoutDispatch(t *testing.T) {
	m, ft, sink := newTestManager()
	ft.feed("OK\r\nOK\r\n")

	if err := m.Connect("/dev/ttyUSB0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer m.Disconnect()

	waitFor(t, func() bool { return !m.Status().LastHeartbeat.IsZero() })
	time.Sleep(10 * time.Millisecond)

	if len(sink.snapshot()) != 0 {
		t.Errorf("Heartbeats must not produce data events, got %d", len(sink.snapshot()))
	}
	if age := m.HeartbeatAge(); age > 1.0 {
		t.Errorf("Expected fresh heartbeat, age %v", age)
	}
}

func TestReadErrorForcesDisconnect(t *testing.T) {
	m, ft, _ := newTestManager()
	if err := m.Connect("/dev/ttyUSB0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	ft.mu.Lock()
	ft.readErr = errors.New("device unplugged")
	ft.mu.Unlock()

	waitFor(t, func() bool { return !m.IsConnected() })

	if ft.IsOpen() {
		t.Error("Expected transport closed after fatal read error")
	}
	if m.Status().LastError == "" {
		t.Error("Expected fatal error surfaced in status")
	}

	// Disconnect after a fatal error stays a no-op success
	if err := m.Disconnect(); err != nil {
		t.Errorf("Disconnect after fatal error should succeed, got %v", err)
	}
}

func TestSend(t *testing.T) {
	m, ft, _ := newTestManager()

	if err := m.Send("SETP", 1.5); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected sending while idle, got %v", err)
	}

	if err := m.Connect("/dev/ttyUSB0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer m.Disconnect()

	if err := m.Send("SETP", 1.5); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	ft.mu.Lock()
	written := string(ft.written)
	ft.mu.Unlock()
	if written != "SETP:1.50\r\n" {
		t.Errorf("Expected wire bytes %q, got %q", "SETP:1.50\r\n", written)
	}
}

func TestSendErrorTearsDownLink(t *testing.T) {
	m, ft, _ := newTestManager()
	if err := m.Connect("/dev/ttyUSB0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	ft.mu.Lock()
	ft.writeErr = errors.New("broken pipe")
	ft.mu.Unlock()

	if err := m.Send("SETP", 1.5); err == nil {
		t.Fatal("Expected write error to surface")
	}
	if m.IsConnected() {
		t.Error("Expected disconnect after write error")
	}
	if ft.IsOpen() {
		t.Error("Expected transport closed after write error")
	}
}

func TestEventOrderPreserved(t *testing.T) {
	m, ft, sink := newTestManager()
	ft.feed("A:1.00\r\nA:2.00\r\n", "A:3.00\r\nA:4.00\r\n")

	if err := m.Connect("/dev/ttyUSB0"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer m.Disconnect()

	waitFor(t, func() bool { return len(sink.snapshot()) == 4 })
	for i, ev := range sink.snapshot() {
		if ev.Value != float64(i+1) {
			t.Errorf("Event %d out of order: %+v", i, ev)
		}
	}
}

func TestToggle(t *testing.T) {
	m, _, _ := newTestManager()

	connected, err := m.Toggle("/dev/ttyUSB0")
	if err != nil || !connected {
		t.Fatalf("Toggle from idle: connected=%v err=%v", connected, err)
	}
	connected, err = m.Toggle("/dev/ttyUSB0")
	if err != nil || connected {
		t.Fatalf("Toggle from open: connected=%v err=%v", connected, err)
	}
}
