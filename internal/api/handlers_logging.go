// handlers_logging.go - CSV logging session and replay handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dweggg/libreScope/internal/csvlog"
	"github.com/dweggg/libreScope/internal/logfiles"
	"github.com/dweggg/libreScope/internal/store"
)

// LoggingHandlerImpl implements the LoggingHandler interface
type LoggingHandlerImpl struct {
	logger *csvlog.Logger
	files  *logfiles.Manager
	store  *store.Store
}

// NewLoggingHandler creates a new logging handler
func NewLoggingHandler(logger *csvlog.Logger, files *logfiles.Manager, st *store.Store) LoggingHandler {
	return &LoggingHandlerImpl{logger: logger, files: files, store: st}
}

type startLoggingRequest struct {
	Signals []string `json:"signals"`
}

// HandleStartLogging opens a new CSV session in the managed log directory
func (h *LoggingHandlerImpl) HandleStartLogging(c echo.Context) error {
	var req startLoggingRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid logging request", err)
	}
	if len(req.Signals) == 0 {
		return NewBadRequestError("at least one signal is required", nil)
	}
	for _, key := range req.Signals {
		if key == "" {
			return NewBadRequestError("empty signal key", nil)
		}
	}

	path := h.files.NewSessionPath()
	if err := h.logger.Start(req.Signals, path); err != nil {
		if errors.Is(err, csvlog.ErrAlreadyActive) {
			return NewConflictError("a logging session is already active")
		}
		return NewInternalError("failed to start logging", err)
	}
	return c.JSON(http.StatusCreated, h.logger.Status())
}

// HandleStopLogging ends the session; stopping while inactive succeeds
func (h *LoggingHandlerImpl) HandleStopLogging(c echo.Context) error {
	if err := h.logger.Stop(); err != nil {
		return NewInternalError("failed to stop logging", err)
	}
	return c.JSON(http.StatusOK, h.logger.Status())
}

// HandleLoggingStatus returns the session snapshot
func (h *LoggingHandlerImpl) HandleLoggingStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.logger.Status())
}

// HandleListLogFiles lists managed CSV log files, newest first
func (h *LoggingHandlerImpl) HandleListLogFiles(c echo.Context) error {
	files, err := h.files.List()
	if err != nil {
		return NewInternalError("failed to list log files", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"files": files})
}

type replayRequest struct {
	File string `json:"file"`
}

// HandleReplay loads a managed log file back into the store, replacing its
// contents
func (h *LoggingHandlerImpl) HandleReplay(c echo.Context) error {
	var req replayRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid replay request", err)
	}

	path, err := h.files.Resolve(req.File)
	if err != nil {
		return NewNotFoundError("log file", req.File)
	}

	if err := csvlog.LoadIntoStore(path, h.store); err != nil {
		return NewBadRequestError("failed to load log file", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"loaded":  req.File,
		"signals": h.store.Keys(),
	})
}
