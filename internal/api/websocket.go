// websocket.go - Live telemetry stream
//
// Each connected client is registered as a dispatch hub subscriber. The hub
// callback runs on the reader goroutine, so it only enqueues into a bounded
// per-client buffer; a dedicated writer goroutine drains the buffer to the
// socket. A client that cannot keep up is unsubscribed and closed rather
// than stalling ingestion.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/dweggg/libreScope/internal/dispatch"
	"github.com/dweggg/libreScope/internal/models"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsBufferSize   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced at the Echo middleware level
	},
}

// liveMessage is one signal event as sent to websocket clients
type liveMessage struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	T     float64 `json:"t"`
}

// LiveStreamHandler upgrades connections and fans telemetry out to them
type LiveStreamHandler struct {
	hub *dispatch.Hub
}

// NewLiveStreamHandler creates a new live stream handler
func NewLiveStreamHandler(hub *dispatch.Hub) *LiveStreamHandler {
	return &LiveStreamHandler{hub: hub}
}

// HandleLiveStream handles one websocket client for its whole lifetime
func (h *LiveStreamHandler) HandleLiveStream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	subscriberID := "ws-" + uuid.New().String()
	events := make(chan liveMessage, wsBufferSize)
	overflow := make(chan struct{})

	h.hub.Subscribe(subscriberID, func(event models.SignalEvent) {
		msg := liveMessage{Key: event.Key, Value: event.Value, T: event.Timestamp}
		select {
		case events <- msg:
		default:
			// Client buffer full: drop the client, never block the reader
			select {
			case <-overflow:
			default:
				close(overflow)
			}
		}
	})
	defer h.hub.Unsubscribe(subscriberID)

	fmt.Printf("[WS] Client %s connected\n", subscriberID[:11])

	// Reader goroutine: clients send nothing meaningful, but reading is
	// required to process close frames
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer conn.Close()
	for {
		select {
		case msg := <-events:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				fmt.Printf("[WS] Client %s write failed: %v\n", subscriberID[:11], err)
				return nil
			}
		case <-overflow:
			fmt.Printf("[WS] Client %s too slow, dropping\n", subscriberID[:11])
			return nil
		case <-done:
			fmt.Printf("[WS] Client %s disconnected\n", subscriberID[:11])
			return nil
		}
	}
}
