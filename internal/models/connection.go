package models

// ConnectionState represents the lifecycle state of the device link.
type ConnectionState string

const (
	ConnectionIdle       ConnectionState = "idle"
	ConnectionConnecting ConnectionState = "connecting"
	ConnectionOpen       ConnectionState = "open"
	ConnectionClosing    ConnectionState = "closing"
)

// LoggingState represents the CSV logging session state machine.
type LoggingState string

const (
	LoggingInactive LoggingState = "inactive"
	LoggingActive   LoggingState = "active"
)
