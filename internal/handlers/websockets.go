package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"trafficsense/internal/logger"
	"trafficsense/internal/services/dashboard"
	"trafficsense/internal/services/websocket"

	gorilla "github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var Upgrader = gorilla.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler sends the current snapshot to a new viewer and then registers it
// for every following refresh.
func ViewWebsocketHandler(hub *websocket.HubService, reader *dashboard.Reader, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(512)
		connection.SetReadDeadline(time.Now().Add(pongWait))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		if msg, err := json.Marshal(reader.Last()); err == nil {
			if err := connection.WriteMessage(gorilla.TextMessage, msg); err != nil {
				logger.Warning("⚠️  Failed to send initial snapshot: %v", err)
				connection.Close()
				return
			}
		}

		hub.Register(connection)
		defer hub.Unregister(connection)

		done := make(chan struct{})
		defer close(done)
		go keepAlive(connection, done)

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				if gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) {
					logger.Debug("Viewer disconnected normally")
				} else {
					logger.Debug("Viewer disconnected: %v", err)
				}
				break
			}
		}
	}
}

// keepAlive pings the viewer until done is closed. WriteControl may run next to hub writes.
func keepAlive(connection *gorilla.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := connection.WriteControl(gorilla.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
