// Package layout persists the plot layout: an ordered list of plot
// descriptors, each carrying the signal keys assigned to it. The core does
// not interpret geometry; consumers rebuild their plots by re-appending the
// saved keys.
package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// Plot is one plot descriptor.
type Plot struct {
	Signals []string `json:"signals"`
}

// Layout is the persisted file shape: {"plots": [{"signals": [...]}]}.
type Layout struct {
	Plots []Plot `json:"plots"`
}

// Load reads a layout file. A missing "plots" field yields an empty layout.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read layout file: %w", err)
	}

	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("could not parse layout file: %w", err)
	}
	if l.Plots == nil {
		l.Plots = []Plot{}
	}
	return &l, nil
}

// Save writes the layout pretty-printed.
func Save(path string, l *Layout) error {
	if l.Plots == nil {
		l.Plots = []Plot{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write layout file: %w", err)
	}
	return nil
}

// Validate checks the descriptor shape: every plot carries a signal list
// (possibly empty) of non-empty keys.
func Validate(l *Layout) error {
	for i, plot := range l.Plots {
		for _, key := range plot.Signals {
			if key == "" {
				return fmt.Errorf("plot %d has an empty signal key", i)
			}
		}
	}
	return nil
}
