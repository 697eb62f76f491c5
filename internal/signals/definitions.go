// Package signals loads the static signal definition table consumed at
// startup. The table maps each wire key to its direction and a
// human-readable name; the core never mutates it.
package signals

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dweggg/libreScope/internal/models"
)

// databaseFile is the on-disk shape of the definition table:
// {"signal_keys": [{"key": "...", "dir": "RX", "name": "..."}]}
type databaseFile struct {
	SignalKeys []models.SignalDefinition `json:"signal_keys"`
}

// Definitions is a read-only key -> metadata lookup.
type Definitions struct {
	byKey map[string]models.SignalDefinition
	order []string
}

// Load reads the definition table from a JSON file. A missing or malformed
// file is not fatal: it logs the problem and returns an empty table, so the
// application still runs with unknown signals.
func Load(path string) *Definitions {
	defs := &Definitions{byKey: make(map[string]models.SignalDefinition)}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("[Signals] Error loading signal database %s: %v\n", path, err)
		return defs
	}

	var db databaseFile
	if err := json.Unmarshal(data, &db); err != nil {
		fmt.Printf("[Signals] Error parsing signal database %s: %v\n", path, err)
		return defs
	}

	for _, def := range db.SignalKeys {
		if _, dup := defs.byKey[def.Key]; dup {
			continue
		}
		defs.byKey[def.Key] = def
		defs.order = append(defs.order, def.Key)
	}
	return defs
}

// Direction returns the direction for a key, or false if the key is unknown.
func (d *Definitions) Direction(key string) (models.Direction, bool) {
	def, ok := d.byKey[key]
	if !ok {
		return "", false
	}
	return def.Dir, true
}

// Name returns the human-readable name for a key, falling back to the key
// itself when the signal is not in the table.
func (d *Definitions) Name(key string) string {
	if def, ok := d.byKey[key]; ok {
		return def.Name
	}
	return key
}

// Keys returns all defined keys in file order.
func (d *Definitions) Keys() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// All returns every definition in file order.
func (d *Definitions) All() []models.SignalDefinition {
	out := make([]models.SignalDefinition, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.byKey[key])
	}
	return out
}
