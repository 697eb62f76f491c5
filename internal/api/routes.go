// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/dweggg/libreScope/internal/archive"
	"github.com/dweggg/libreScope/internal/comm"
	"github.com/dweggg/libreScope/internal/csvlog"
	"github.com/dweggg/libreScope/internal/dispatch"
	"github.com/dweggg/libreScope/internal/logfiles"
	"github.com/dweggg/libreScope/internal/signals"
	"github.com/dweggg/libreScope/internal/store"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Manager    *comm.Manager
	Hub        *dispatch.Hub
	Store      *store.Store
	Logger     *csvlog.Logger
	LogFiles   *logfiles.Manager
	Defs       *signals.Definitions
	Archive    *archive.DuckStore // nil when archiving is disabled
	LayoutFile string
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health     HealthHandler
	Connection ConnectionHandler
	Data       DataHandler
	Logging    LoggingHandler
	Layout     LayoutHandler
	Archive    ArchiveHandler
	Live       *LiveStreamHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(deps.Version),
		Connection: NewConnectionHandler(deps.Manager, deps.Defs),
		Data:       NewDataHandler(deps.Store, deps.Defs),
		Logging:    NewLoggingHandler(deps.Logger, deps.LogFiles, deps.Store),
		Layout:     NewLayoutHandler(deps.LayoutFile),
		Archive:    NewArchiveHandler(deps.Archive),
		Live:       NewLiveStreamHandler(deps.Hub),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	api := e.Group("/api")

	// Device link
	api.GET("/ports", handlers.Connection.HandleListPorts)
	api.GET("/connection", handlers.Connection.HandleConnectionStatus)
	api.POST("/connection", handlers.Connection.HandleConnect)
	api.DELETE("/connection", handlers.Connection.HandleDisconnect)
	api.POST("/send", handlers.Connection.HandleSend)

	// Store queries
	api.GET("/signals", handlers.Data.HandleGetSignals)
	api.GET("/series/:key", handlers.Data.HandleGetSeries)
	api.GET("/series/:key/msgpack", handlers.Data.HandleGetSeriesMsgpack)
	api.GET("/elapsed", handlers.Data.HandleGetElapsed)
	api.POST("/clear", handlers.Data.HandleClear)

	// Logging session and replay
	api.GET("/logging", handlers.Logging.HandleLoggingStatus)
	api.POST("/logging", handlers.Logging.HandleStartLogging)
	api.DELETE("/logging", handlers.Logging.HandleStopLogging)
	api.GET("/logfiles", handlers.Logging.HandleListLogFiles)
	api.POST("/replay", handlers.Logging.HandleReplay)

	// Layout persistence
	api.GET("/layout", handlers.Layout.HandleGetLayout)
	api.PUT("/layout", handlers.Layout.HandlePutLayout)

	// Archive queries
	api.GET("/archive/:key", handlers.Archive.HandleQueryArchive)

	// Live telemetry stream
	e.GET("/ws/live", handlers.Live.HandleLiveStream)
}
