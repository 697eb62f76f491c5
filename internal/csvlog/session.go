// Package csvlog implements the durable CSV logger: an exclusive logging
// session that snapshots selected signals on a fixed cadence, and an
// independent replay loader for previously written files.
package csvlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dweggg/libreScope/internal/models"
	"github.com/dweggg/libreScope/internal/store"
)

// ErrAlreadyActive is returned when starting a session while one is active.
var ErrAlreadyActive = errors.New("csvlog: logging session already active")

// Logger runs at most one logging session at a time. Rows are time-stamped
// relative to the session start, not the store's anchor; replay depends on
// that, so the two anchors are never unified.
type Logger struct {
	store *store.Store

	mu         sync.Mutex
	active     bool
	sessionID  string
	filePath   string
	file       *os.File
	writer     *csv.Writer
	signalKeys []string
	startTime  time.Time
	rows       int
}

// Status is a snapshot of the logging session.
type Status struct {
	State     models.LoggingState `json:"state"`
	SessionID string              `json:"sessionId,omitempty"`
	File      string              `json:"file,omitempty"`
	Signals   []string            `json:"signals,omitempty"`
	Rows      int                 `json:"rows"`
}

// NewLogger creates a Logger reading values from st.
func NewLogger(st *store.Store) *Logger {
	return &Logger{store: st}
}

// Start opens the sink and begins a session sampling signalKeys in the
// given fixed order. The header row is written once, immediately. Starting
// while active fails without touching the running session.
func (l *Logger) Start(signalKeys []string, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.active {
		return ErrAlreadyActive
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}

	writer := csv.NewWriter(file)
	header := append([]string{"t"}, signalKeys...)
	if err := writer.Write(header); err != nil {
		file.Close()
		return fmt.Errorf("could not write log header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return fmt.Errorf("could not write log header: %w", err)
	}

	l.active = true
	l.sessionID = uuid.New().String()
	l.filePath = path
	l.file = file
	l.writer = writer
	l.signalKeys = append([]string(nil), signalKeys...)
	l.startTime = time.Now()
	l.rows = 0
	fmt.Printf("[CSVLog] Session %s logging %d signals to %s\n", l.sessionID[:8], len(signalKeys), path)
	return nil
}

// Stop ends the session and closes the sink. Stopping while inactive is a
// no-op success.
func (l *Logger) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopLocked()
}

func (l *Logger) stopLocked() error {
	if !l.active {
		return nil
	}
	l.active = false
	l.writer = nil
	err := l.file.Close()
	l.file = nil
	fmt.Printf("[CSVLog] Session %s stopped after %d rows\n", l.sessionID[:8], l.rows)
	if err != nil {
		return fmt.Errorf("could not close log file: %w", err)
	}
	return nil
}

// Tick writes one row: elapsed seconds since session start, then the latest
// value of each sampled signal in header order, blank for signals with no
// recorded value yet. Every row is flushed to the sink. A write failure is
// fatal to the session: it is stopped and the error returned. Ticking while
// inactive is a no-op.
func (l *Logger) Tick() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.active {
		return nil
	}

	elapsed := time.Since(l.startTime).Seconds()
	row := make([]string, 0, len(l.signalKeys)+1)
	row = append(row, strconv.FormatFloat(elapsed, 'g', -1, 64))
	for _, key := range l.signalKeys {
		if value, ok := l.store.Latest(key); ok {
			row = append(row, strconv.FormatFloat(value, 'g', -1, 64))
		} else {
			row = append(row, "")
		}
	}

	if err := l.writer.Write(row); err != nil {
		l.stopLocked()
		return fmt.Errorf("log row write failed: %w", err)
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.stopLocked()
		return fmt.Errorf("log row flush failed: %w", err)
	}
	l.rows++
	return nil
}

// Active reports whether a session is running.
func (l *Logger) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Status returns a snapshot of the session.
func (l *Logger) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	status := Status{State: models.LoggingInactive, Rows: l.rows}
	if l.active {
		status.State = models.LoggingActive
		status.SessionID = l.sessionID
		status.File = l.filePath
		status.Signals = append([]string(nil), l.signalKeys...)
	}
	return status
}
