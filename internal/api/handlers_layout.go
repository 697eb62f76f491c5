// handlers_layout.go - Plot layout persistence handlers
package api

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/dweggg/libreScope/internal/layout"
)

// LayoutHandlerImpl implements the LayoutHandler interface
type LayoutHandlerImpl struct {
	path string
}

// NewLayoutHandler creates a new layout handler backed by the given file
func NewLayoutHandler(path string) LayoutHandler {
	return &LayoutHandlerImpl{path: path}
}

// HandleGetLayout returns the persisted layout; a missing file is an empty
// layout, not an error
func (h *LayoutHandlerImpl) HandleGetLayout(c echo.Context) error {
	if _, err := os.Stat(h.path); os.IsNotExist(err) {
		return c.JSON(http.StatusOK, &layout.Layout{Plots: []layout.Plot{}})
	}

	l, err := layout.Load(h.path)
	if err != nil {
		return NewInternalError("failed to load layout", err)
	}
	return c.JSON(http.StatusOK, l)
}

// HandlePutLayout validates and persists a layout
func (h *LayoutHandlerImpl) HandlePutLayout(c echo.Context) error {
	var l layout.Layout
	if err := c.Bind(&l); err != nil {
		return NewBadRequestError("invalid layout", err)
	}
	if err := layout.Validate(&l); err != nil {
		return NewBadRequestError("invalid layout", err)
	}

	if err := layout.Save(h.path, &l); err != nil {
		return NewInternalError("failed to save layout", err)
	}
	return c.JSON(http.StatusOK, &l)
}
