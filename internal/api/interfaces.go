// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// HealthHandler handles the health check
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ConnectionHandler handles device link operations
type ConnectionHandler interface {
	HandleListPorts(c echo.Context) error
	HandleConnect(c echo.Context) error
	HandleDisconnect(c echo.Context) error
	HandleConnectionStatus(c echo.Context) error
	HandleSend(c echo.Context) error
}

// DataHandler handles store queries
type DataHandler interface {
	HandleGetSignals(c echo.Context) error
	HandleGetSeries(c echo.Context) error
	HandleGetSeriesMsgpack(c echo.Context) error
	HandleGetElapsed(c echo.Context) error
	HandleClear(c echo.Context) error
}

// LoggingHandler handles the CSV logging session and replay
type LoggingHandler interface {
	HandleStartLogging(c echo.Context) error
	HandleStopLogging(c echo.Context) error
	HandleLoggingStatus(c echo.Context) error
	HandleListLogFiles(c echo.Context) error
	HandleReplay(c echo.Context) error
}

// LayoutHandler handles plot layout persistence
type LayoutHandler interface {
	HandleGetLayout(c echo.Context) error
	HandlePutLayout(c echo.Context) error
}

// ArchiveHandler handles archive range queries
type ArchiveHandler interface {
	HandleQueryArchive(c echo.Context) error
}
