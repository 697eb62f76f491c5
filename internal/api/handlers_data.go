// handlers_data.go - Store query handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/dweggg/libreScope/internal/signals"
	"github.com/dweggg/libreScope/internal/store"
)

// DataHandlerImpl implements the DataHandler interface
type DataHandlerImpl struct {
	store *store.Store
	defs  *signals.Definitions
}

// NewDataHandler creates a new data handler
func NewDataHandler(st *store.Store, defs *signals.Definitions) DataHandler {
	return &DataHandlerImpl{store: st, defs: defs}
}

// HandleGetSignals returns the signal definition table
func (h *DataHandlerImpl) HandleGetSignals(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"signals": h.defs.All(),
	})
}

func (h *DataHandlerImpl) seriesPayload(key string) map[string]interface{} {
	points := h.store.Series(key)
	payload := map[string]interface{}{
		"key":    key,
		"name":   h.defs.Name(key),
		"points": points,
	}
	if latest, ok := h.store.Latest(key); ok {
		payload["latest"] = latest
	}
	return payload
}

// HandleGetSeries returns the bounded history for one signal
func (h *DataHandlerImpl) HandleGetSeries(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return NewBadRequestError("signal key is required", nil)
	}
	return c.JSON(http.StatusOK, h.seriesPayload(key))
}

// HandleGetSeriesMsgpack returns the same payload msgpack-encoded for bulk
// consumers
func (h *DataHandlerImpl) HandleGetSeriesMsgpack(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return NewBadRequestError("signal key is required", nil)
	}

	data, err := msgpack.Marshal(h.seriesPayload(key))
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetElapsed returns seconds since the store was created
func (h *DataHandlerImpl) HandleGetElapsed(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"elapsed": h.store.Elapsed(),
	})
}

// HandleClear empties every series, preserving the time anchor and bound
func (h *DataHandlerImpl) HandleClear(c echo.Context) error {
	h.store.Clear()
	return c.JSON(http.StatusOK, map[string]interface{}{"cleared": true})
}
