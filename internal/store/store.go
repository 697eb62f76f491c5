// Package store implements the bounded per-signal time-series history.
//
// Each signal holds at most maxPoints samples; appending past the bound
// evicts from the front (oldest first). Elapsed times are seconds from the
// store's creation instant. The store is shared between the reader goroutine
// (appends) and the API/logging goroutines (queries, clear), so every
// operation takes the store lock.
package store

import (
	"sync"
	"time"

	"github.com/dweggg/libreScope/internal/models"
)

// Store holds the bounded history for every signal.
type Store struct {
	mu        sync.RWMutex
	series    map[string][]models.DataPoint
	maxPoints int
	startTime time.Time
}

// New creates a Store bounded at maxPoints samples per signal.
func New(maxPoints int) *Store {
	if maxPoints <= 0 {
		maxPoints = 1
	}
	return &Store{
		series:    make(map[string][]models.DataPoint),
		maxPoints: maxPoints,
		startTime: time.Now(),
	}
}

// InitializeSignals creates an empty series for each known key so consumers
// can enumerate signals before any data arrives. Existing data is dropped.
func (s *Store) InitializeSignals(keys []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string][]models.DataPoint, len(keys))
	for _, key := range keys {
		s.series[key] = nil
	}
}

// Append records value for key at the current elapsed time, creating the
// series if absent and evicting the oldest points past the bound.
func (s *Store) Append(key string, value float64) {
	elapsed := time.Since(s.startTime).Seconds()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(key, models.DataPoint{Value: value, Elapsed: elapsed})
}

func (s *Store) appendLocked(key string, point models.DataPoint) {
	points := append(s.series[key], point)
	if len(points) > s.maxPoints {
		points = points[len(points)-s.maxPoints:]
	}
	s.series[key] = points
}

// Latest returns the most recent value for key, or false if the series is
// empty or unknown.
func (s *Store) Latest(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	points := s.series[key]
	if len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Value, true
}

// Series returns a copy of the points for key, empty if unknown.
func (s *Store) Series(key string) []models.DataPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	points := s.series[key]
	out := make([]models.DataPoint, len(points))
	copy(out, points)
	return out
}

// Keys returns every key that has a series, including pre-initialized
// empty ones.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.series))
	for key := range s.series {
		keys = append(keys, key)
	}
	return keys
}

// Clear empties every series in place. The start-time anchor and the bound
// are preserved.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.series {
		s.series[key] = nil
	}
}

// Elapsed returns seconds since the store was created.
func (s *Store) Elapsed() float64 {
	return time.Since(s.startTime).Seconds()
}

// MaxPoints returns the per-signal bound.
func (s *Store) MaxPoints() int {
	return s.maxPoints
}

// Replace swaps in externally loaded contents (log replay). Times in the
// replacement points are taken as-is; they are session-relative, not
// relative to this store's anchor.
func (s *Store) Replace(contents map[string][]models.DataPoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = make(map[string][]models.DataPoint, len(contents))
	for key, points := range contents {
		if len(points) > s.maxPoints {
			points = points[len(points)-s.maxPoints:]
		}
		s.series[key] = points
	}
}
