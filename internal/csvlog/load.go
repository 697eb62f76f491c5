package csvlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dweggg/libreScope/internal/models"
	"github.com/dweggg/libreScope/internal/store"
)

// LoadFile parses a previously written log file into per-signal point
// series. The first row must be a header; its first column name is ignored
// and the remaining columns become signal keys. Fields that are empty or
// fail numeric parsing are skipped per-field; a row whose time value does
// not parse is skipped whole. A missing header aborts the load.
func LoadFile(path string) (map[string][]models.DataPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("log file has no header row: %w", err)
	}
	if len(header) < 1 {
		return nil, fmt.Errorf("log file header is empty")
	}
	keys := header[1:]

	contents := make(map[string][]models.DataPoint, len(keys))
	for _, key := range keys {
		contents[key] = nil
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("log file read failed: %w", err)
		}
		if len(row) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			continue
		}

		for i, key := range keys {
			col := i + 1
			if col >= len(row) || row[col] == "" {
				continue
			}
			value, err := strconv.ParseFloat(row[col], 64)
			if err != nil {
				continue
			}
			contents[key] = append(contents[key], models.DataPoint{Value: value, Elapsed: t})
		}
	}

	return contents, nil
}

// LoadIntoStore replays a log file, replacing the store's current contents.
// The store is untouched when the load fails.
func LoadIntoStore(path string, st *store.Store) error {
	contents, err := LoadFile(path)
	if err != nil {
		return err
	}
	st.Replace(contents)
	return nil
}
