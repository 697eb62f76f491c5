// handlers_connection.go - Device link handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dweggg/libreScope/internal/comm"
	"github.com/dweggg/libreScope/internal/models"
	"github.com/dweggg/libreScope/internal/signals"
)

// heartbeatStaleAfter is how long without an "OK" line before the link is
// reported stale. Matches the original indicator threshold.
const heartbeatStaleAfter = 1.0

// ConnectionHandlerImpl implements the ConnectionHandler interface
type ConnectionHandlerImpl struct {
	manager *comm.Manager
	defs    *signals.Definitions
	ports   func() ([]string, error)
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(manager *comm.Manager, defs *signals.Definitions) ConnectionHandler {
	return &ConnectionHandlerImpl{
		manager: manager,
		defs:    defs,
		ports:   comm.ListPorts,
	}
}

// HandleListPorts enumerates serial ports present on the host
func (h *ConnectionHandlerImpl) HandleListPorts(c echo.Context) error {
	ports, err := h.ports()
	if err != nil {
		if errors.Is(err, comm.ErrNoPorts) {
			return c.JSON(http.StatusOK, map[string]interface{}{"ports": []string{}})
		}
		return NewInternalError("failed to enumerate serial ports", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ports": ports})
}

type connectRequest struct {
	Port string `json:"port"`
}

// HandleConnect opens the link and starts the reader
func (h *ConnectionHandlerImpl) HandleConnect(c echo.Context) error {
	var req connectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid connect request", err)
	}
	if req.Port == "" {
		return NewBadRequestError("port is required", nil)
	}

	if err := h.manager.Connect(req.Port); err != nil {
		return NewInternalError("failed to open serial port", err)
	}
	return c.JSON(http.StatusOK, h.statusPayload())
}

// HandleDisconnect cooperatively stops the reader and closes the link.
// Idempotent: disconnecting while idle succeeds.
func (h *ConnectionHandlerImpl) HandleDisconnect(c echo.Context) error {
	if err := h.manager.Disconnect(); err != nil {
		return NewInternalError("failed to close serial port", err)
	}
	return c.JSON(http.StatusOK, h.statusPayload())
}

// HandleConnectionStatus returns link state and throughput counters
func (h *ConnectionHandlerImpl) HandleConnectionStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.statusPayload())
}

type sendRequest struct {
	Key   string   `json:"key"`
	Value *float64 `json:"value"`
}

// HandleSend encodes and writes one key/value message to the device
func (h *ConnectionHandlerImpl) HandleSend(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid send request", err)
	}
	if req.Key == "" || req.Value == nil {
		return NewBadRequestError("key and value are required", nil)
	}

	// Only TX signals may be written to the device
	if dir, ok := h.defs.Direction(req.Key); ok && dir != models.DirectionTX {
		return NewBadRequestError("signal is not writable: "+req.Key, nil)
	}

	if err := h.manager.Send(req.Key, *req.Value); err != nil {
		if errors.Is(err, comm.ErrNotConnected) {
			return NewConflictError("serial port is not open")
		}
		return NewInternalError("failed to send data", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"sent": true})
}

func (h *ConnectionHandlerImpl) statusPayload() map[string]interface{} {
	status := h.manager.Status()
	stale := status.LastHeartbeat.IsZero() || status.HeartbeatAge > heartbeatStaleAfter
	return map[string]interface{}{
		"state":          status.State,
		"port":           status.Port,
		"lastHeartbeat":  status.LastHeartbeat,
		"heartbeatStale": stale,
		"linesParsed":    status.LinesParsed,
		"linesDiscarded": status.LinesDiscarded,
		"lastError":      status.LastError,
	}
}
