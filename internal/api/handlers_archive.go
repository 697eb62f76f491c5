// handlers_archive.go - Telemetry archive query handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dweggg/libreScope/internal/archive"
)

// ArchiveHandlerImpl implements the ArchiveHandler interface
type ArchiveHandlerImpl struct {
	archive *archive.DuckStore
}

// NewArchiveHandler creates a new archive handler; archive may be nil when
// archiving is disabled
func NewArchiveHandler(a *archive.DuckStore) ArchiveHandler {
	return &ArchiveHandlerImpl{archive: a}
}

// HandleQueryArchive returns archived points for a signal; from/to query
// parameters bound the time range in elapsed seconds
func (h *ArchiveHandlerImpl) HandleQueryArchive(c echo.Context) error {
	if h.archive == nil {
		return NewNotFoundError("archive", "disabled")
	}
	key := c.Param("key")
	if key == "" {
		return NewBadRequestError("signal key is required", nil)
	}

	from, to := -1.0, -1.0
	if raw := c.QueryParam("from"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return NewBadRequestError("invalid from parameter", err)
		}
		from = v
	}
	if raw := c.QueryParam("to"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return NewBadRequestError("invalid to parameter", err)
		}
		to = v
	}

	points, err := h.archive.Query(c.Request().Context(), key, from, to)
	if err != nil {
		return NewInternalError("archive query failed", err)
	}
	if points == nil {
		points = []archive.Point{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"key":    key,
		"points": points,
	})
}
