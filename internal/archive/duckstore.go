// Package archive persists every dispatched signal event into a DuckDB
// file, keeping history beyond the bounded in-memory store's window. The
// archive is an optional hub subscriber: its failures disable it and are
// logged, they never affect the reader or the store.
package archive

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/dweggg/libreScope/internal/models"
)

const defaultBatchSize = 500

// Point is one archived sample.
type Point struct {
	Value  float64 `json:"value"`
	T      float64 `json:"t"`
	WallTs int64   `json:"wallTs"`
}

// DuckStore is the DuckDB-backed telemetry archive.
type DuckStore struct {
	mu        sync.Mutex
	db        *sql.DB
	dbPath    string
	batch     []archiveRow
	batchSize int
	count     int
	failed    bool
	startTime time.Time
}

type archiveRow struct {
	key    string
	value  float64
	t      float64
	wallTs int64
}

// NewDuckStore creates (or reuses) an archive database in dir. One file per
// process start, named by timestamp, so restarts never mix archives.
func NewDuckStore(dir string, batchSize int) (*DuckStore, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	dbPath := filepath.Join(dir, fmt.Sprintf("archive_%s.duckdb", time.Now().Format("20060102_150405")))

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS points (
			key     VARCHAR NOT NULL,
			value   DOUBLE NOT NULL,
			t       DOUBLE NOT NULL,
			wall_ts BIGINT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create points table: %w", err)
	}

	fmt.Printf("[Archive] Database ready at %s\n", dbPath)
	return &DuckStore{
		db:        db,
		dbPath:    dbPath,
		batchSize: batchSize,
		batch:     make([]archiveRow, 0, batchSize),
		startTime: time.Now(),
	}, nil
}

// Add records one signal event. Rows are batched; a flush failure disables
// the archive permanently for this session.
func (a *DuckStore) Add(event models.SignalEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.failed || a.db == nil {
		return
	}

	a.batch = append(a.batch, archiveRow{
		key:    event.Key,
		value:  event.Value,
		t:      time.Since(a.startTime).Seconds(),
		wallTs: int64(event.Timestamp * 1000),
	})
	a.count++

	if len(a.batch) >= a.batchSize {
		if err := a.flushLocked(); err != nil {
			fmt.Printf("[Archive] Flush failed, archive disabled: %v\n", err)
			a.failed = true
		}
	}
}

// flushLocked writes the batch using the native Appender API.
func (a *DuckStore) flushLocked() error {
	if len(a.batch) == 0 {
		return nil
	}

	conn, err := a.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "points")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, row := range a.batch {
			if err := appender.AppendRow(row.key, row.value, row.t, row.wallTs); err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return err
	}

	a.batch = a.batch[:0]
	return nil
}

// Query returns archived points for key with t in [from, to], in time order.
// A negative bound means unbounded on that side.
func (a *DuckStore) Query(ctx context.Context, key string, from, to float64) ([]Point, error) {
	a.mu.Lock()
	if a.failed || a.db == nil {
		a.mu.Unlock()
		return nil, fmt.Errorf("archive unavailable")
	}
	if err := a.flushLocked(); err != nil {
		a.failed = true
		a.mu.Unlock()
		return nil, err
	}
	db := a.db
	a.mu.Unlock()

	query := "SELECT value, t, wall_ts FROM points WHERE key = ?"
	args := []interface{}{key}
	if from >= 0 {
		query += " AND t >= ?"
		args = append(args, from)
	}
	if to >= 0 {
		query += " AND t <= ?"
		args = append(args, to)
	}
	query += " ORDER BY t"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive query failed: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Value, &p.T, &p.WallTs); err != nil {
			return nil, fmt.Errorf("archive scan failed: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Count returns the number of points accepted so far (including unflushed).
func (a *DuckStore) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Failed reports whether the archive has been disabled by a write failure.
func (a *DuckStore) Failed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed
}

// Close flushes the remaining batch and closes the database.
func (a *DuckStore) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db == nil {
		return nil
	}
	if !a.failed {
		if err := a.flushLocked(); err != nil {
			fmt.Printf("[Archive] Final flush failed: %v\n", err)
		}
	}
	err := a.db.Close()
	a.db = nil
	return err
}
