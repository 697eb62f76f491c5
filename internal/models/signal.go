// Package models contains domain types for the libreScope backend.
package models

// Direction indicates whether a signal flows from the device to the host
// or from the host to the device.
type Direction string

const (
	// DirectionRX is device-to-host telemetry.
	DirectionRX Direction = "RX"
	// DirectionTX is host-to-device commands.
	DirectionTX Direction = "TX"
)

// SignalDefinition describes one signal from the static definition table.
type SignalDefinition struct {
	Key  string    `json:"key"`
	Dir  Direction `json:"dir"`
	Name string    `json:"name"`
}

// SignalEvent is one parsed telemetry update as it leaves the codec.
// Timestamp is the Unix time (seconds, fractional) captured at the moment
// of successful parse.
type SignalEvent struct {
	Key       string  `json:"key"`
	Value     float64 `json:"value"`
	Timestamp float64 `json:"timestamp"`
}
