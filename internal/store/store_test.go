package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dweggg/libreScope/internal/models"
)

func TestAppendAndLatest(t *testing.T) {
	s := New(100)

	if _, ok := s.Latest("VBAT"); ok {
		t.Error("Expected no latest value for unknown signal")
	}

	s.Append("VBAT", 1.0)
	s.Append("VBAT", 2.0)
	s.Append("VBAT", 3.0)

	v, ok := s.Latest("VBAT")
	if !ok || v != 3.0 {
		t.Errorf("Expected latest 3.0, got %v (ok=%v)", v, ok)
	}

	points := s.Series("VBAT")
	if len(points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(points))
	}
	for i, want := range []float64{1.0, 2.0, 3.0} {
		if points[i].Value != want {
			t.Errorf("Point %d: expected value %v, got %v", i, want, points[i].Value)
		}
		if points[i].Elapsed < 0 {
			t.Errorf("Point %d: negative elapsed time %v", i, points[i].Elapsed)
		}
	}
	// Insertion order is chronological order
	for i := 1; i < len(points); i++ {
		if points[i].Elapsed < points[i-1].Elapsed {
			t.Errorf("Elapsed times not non-decreasing: %v then %v", points[i-1].Elapsed, points[i].Elapsed)
		}
	}
}

func TestFIFOEviction(t *testing.T) {
	s := New(5)
	for i := 0; i < 12; i++ {
		s.Append("X", float64(i))
	}

	points := s.Series("X")
	if len(points) != 5 {
		t.Fatalf("Expected series capped at 5, got %d", len(points))
	}
	// Oldest dropped, newest kept
	for i, p := range points {
		if want := float64(7 + i); p.Value != want {
			t.Errorf("Point %d: expected %v, got %v", i, want, p.Value)
		}
	}
}

func TestSeriesReturnsCopy(t *testing.T) {
	s := New(10)
	s.Append("X", 1.0)

	points := s.Series("X")
	points[0].Value = 99.0

	fresh := s.Series("X")
	if fresh[0].Value != 1.0 {
		t.Error("Series must return a copy, not a view into internal state")
	}
}

func TestClearPreservesKeysAndAnchor(t *testing.T) {
	s := New(10)
	s.InitializeSignals([]string{"A", "B"})
	s.Append("A", 1.0)
	before := s.Elapsed()

	s.Clear()

	if len(s.Series("A")) != 0 {
		t.Error("Expected empty series after Clear")
	}
	if len(s.Keys()) != 2 {
		t.Errorf("Expected keys preserved after Clear, got %v", s.Keys())
	}
	if s.Elapsed() < before {
		t.Error("Clear must not reset the start-time anchor")
	}
}

func TestReplace(t *testing.T) {
	s := New(3)
	s.Append("OLD", 1.0)

	s.Replace(map[string][]models.DataPoint{
		"NEW": {
			{Value: 1.0, Elapsed: 0.0},
			{Value: 2.0, Elapsed: 0.5},
			{Value: 3.0, Elapsed: 1.0},
			{Value: 4.0, Elapsed: 1.5},
		},
	})

	if len(s.Series("OLD")) != 0 {
		t.Error("Replace must drop previous contents")
	}
	points := s.Series("NEW")
	if len(points) != 3 {
		t.Fatalf("Expected replacement capped at max points, got %d", len(points))
	}
	if points[0].Value != 2.0 {
		t.Errorf("Expected oldest replacement points evicted, got first value %v", points[0].Value)
	}
}

func TestConcurrentAppendAndQuery(t *testing.T) {
	s := New(50)
	var wg sync.WaitGroup

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			key := fmt.Sprintf("SIG%d", g)
			for i := 0; i < 200; i++ {
				s.Append(key, float64(i))
				s.Latest(key)
				s.Series(key)
			}
		}(g)
	}
	wg.Wait()

	for g := 0; g < 4; g++ {
		key := fmt.Sprintf("SIG%d", g)
		if got := len(s.Series(key)); got != 50 {
			t.Errorf("%s: expected 50 points after concurrent appends, got %d", key, got)
		}
		v, ok := s.Latest(key)
		if !ok || v != 199.0 {
			t.Errorf("%s: expected latest 199, got %v (ok=%v)", key, v, ok)
		}
	}
}
