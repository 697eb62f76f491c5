package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dweggg/libreScope/internal/api"
	"github.com/dweggg/libreScope/internal/archive"
	"github.com/dweggg/libreScope/internal/comm"
	"github.com/dweggg/libreScope/internal/config"
	"github.com/dweggg/libreScope/internal/csvlog"
	"github.com/dweggg/libreScope/internal/dispatch"
	"github.com/dweggg/libreScope/internal/logfiles"
	"github.com/dweggg/libreScope/internal/models"
	"github.com/dweggg/libreScope/internal/signals"
	"github.com/dweggg/libreScope/internal/store"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Resolve the config next to the executable
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	configPath := filepath.Join(filepath.Dir(exePath), "librescope.yaml")
	if env := os.Getenv("LIBRESCOPE_CONFIG"); env != "" {
		configPath = env
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Signal definition table and the bounded store
	defs := signals.Load(cfg.Data.DatabaseFile)
	st := store.New(cfg.Data.MaxPoints)
	st.InitializeSignals(defs.Keys())

	// Fan-out hub; the store is the first subscriber so it always sees
	// events before any external consumer
	hub := dispatch.NewHub()
	hub.Subscribe("store", func(event models.SignalEvent) {
		st.Append(event.Key, event.Value)
	})

	// Optional DuckDB archive
	var arch *archive.DuckStore
	if cfg.Archive.Enabled {
		arch, err = archive.NewDuckStore(cfg.Archive.Directory, cfg.Archive.BatchSize)
		if err != nil {
			fmt.Printf("Warning: archive disabled: %v\n", err)
		} else {
			defer arch.Close()
			hub.Subscribe("archive", arch.Add)
		}
	}

	// Device link
	transport := comm.NewSerialTransport(cfg.Serial.BaudRate, time.Duration(cfg.Serial.ReadTimeoutMs)*time.Millisecond)
	manager := comm.NewManager(transport, hub)
	defer manager.Disconnect()

	// CSV logging session machinery and its periodic tick
	logFiles, err := logfiles.NewManager(cfg.Data.LogDirectory)
	if err != nil {
		fmt.Printf("Failed to initialize log directory: %v\n", err)
		os.Exit(1)
	}
	logger := csvlog.NewLogger(st)
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Data.LogTickIntervalMs) * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			if err := logger.Tick(); err != nil {
				fmt.Printf("[CSVLog] Session aborted: %v\n", err)
			}
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Status polls and the live stream would flood the log
			path := c.Request().URL.Path
			return path == "/health" ||
				strings.HasPrefix(path, "/ws/") ||
				path == "/api/connection" && c.Request().Method == http.MethodGet
		},
	}))
	e.Use(middleware.Recover())

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Manager:    manager,
		Hub:        hub,
		Store:      st,
		Logger:     logger,
		LogFiles:   logFiles,
		Defs:       defs,
		Archive:    arch,
		LayoutFile: cfg.Data.DefaultLayoutFile,
		Version:    Version,
	})
	api.RegisterRoutes(e, handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)
	fmt.Printf("libreScope backend %s (built %s)\n", Version, BuildTime)
	fmt.Printf("Config:  %s\n", configPath)
	fmt.Printf("Signals: %d defined\n", len(defs.Keys()))
	fmt.Printf("Listen:  http://%s\n", addr)

	e.Logger.Fatal(e.Start(addr))
}
