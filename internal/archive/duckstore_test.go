package archive

import (
	"context"
	"testing"

	"github.com/dweggg/libreScope/internal/models"
)

func createTestArchive(t *testing.T) *DuckStore {
	t.Helper()
	a, err := NewDuckStore(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAddAndQuery(t *testing.T) {
	a := createTestArchive(t)

	for i := 0; i < 25; i++ {
		a.Add(models.SignalEvent{Key: "VBAT", Value: float64(i), Timestamp: float64(i)})
	}
	a.Add(models.SignalEvent{Key: "TEMP", Value: -3.25, Timestamp: 100})

	if a.Count() != 26 {
		t.Errorf("Expected 26 points accepted, got %d", a.Count())
	}

	points, err := a.Query(context.Background(), "VBAT", -1, -1)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(points) != 25 {
		t.Fatalf("Expected 25 VBAT points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].T < points[i-1].T {
			t.Errorf("Points out of time order at %d", i)
		}
	}
	if points[0].Value != 0 || points[24].Value != 24 {
		t.Errorf("Unexpected boundary values: first=%v last=%v", points[0].Value, points[24].Value)
	}

	points, err = a.Query(context.Background(), "TEMP", -1, -1)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(points) != 1 || points[0].Value != -3.25 {
		t.Errorf("Unexpected TEMP points: %+v", points)
	}
}

func TestQueryUnknownKey(t *testing.T) {
	a := createTestArchive(t)
	a.Add(models.SignalEvent{Key: "X", Value: 1})

	points, err := a.Query(context.Background(), "NOPE", -1, -1)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("Expected no points for unknown key, got %d", len(points))
	}
}

func TestQueryTimeRange(t *testing.T) {
	a := createTestArchive(t)
	for i := 0; i < 5; i++ {
		a.Add(models.SignalEvent{Key: "X", Value: float64(i)})
	}

	all, err := a.Query(context.Background(), "X", -1, -1)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Expected 5 points, got %d", len(all))
	}

	// Bounded query around the middle point's time
	mid := all[2].T
	ranged, err := a.Query(context.Background(), "X", mid, mid)
	if err != nil {
		t.Fatalf("Ranged query failed: %v", err)
	}
	if len(ranged) < 1 {
		t.Error("Expected at least the middle point in range")
	}
	for _, p := range ranged {
		if p.T < mid || p.T > mid {
			t.Errorf("Point outside requested range: %+v", p)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	a, err := NewDuckStore(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Errorf("Second close should be a no-op, got %v", err)
	}
	// Add after close must be a silent no-op
	a.Add(models.SignalEvent{Key: "X", Value: 1})
}
