// Package logfiles manages the directory of CSV session logs written by the
// durable logger. Names are resolved against the managed directory only, so
// the replay endpoint can never be pointed at arbitrary paths.
package logfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes one managed log file.
type FileInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Manager owns a directory of CSV log files.
type Manager struct {
	dir string
}

// NewManager creates a Manager over dir, creating it if needed.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// NewSessionPath returns a fresh timestamped path for a logging session.
func (m *Manager) NewSessionPath() string {
	name := fmt.Sprintf("log_%s.csv", time.Now().Format("20060102_150405"))
	return filepath.Join(m.dir, name)
}

// List returns the managed log files, newest first.
func (m *Manager) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading log directory: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})
	return files, nil
}

// Resolve maps a managed file name to its path. Names with path separators
// or traversal elements are rejected.
func (m *Manager) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid log file name: %s", name)
	}
	path := filepath.Join(m.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("log file not found: %s", name)
	}
	return path, nil
}

// Delete removes a managed log file.
func (m *Manager) Delete(name string) error {
	path, err := m.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting log file: %w", err)
	}
	return nil
}
