package controllers

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"fmd/internal/providers"
	"fmd/internal/services"
	"fmd/internal/store"
)

const (
	streamSendBuffer = 16
	writeWait        = 10 * time.Second
	pingInterval     = 30 * time.Second
)

// StreamController pushes live tree changes over websockets. Each client
// holds exactly one subscription on its watched path; the subscription is
// released on every exit path, so an abandoned tab never leaks a handler.
type StreamController struct {
	logger   providers.Logger
	auth     services.AuthServiceInterface
	store    store.RealtimeStore
	metrics  providers.MetricsProviderInterface
	upgrader websocket.Upgrader
}

type streamEvent struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func NewStreamController(logger providers.Logger, auth services.AuthServiceInterface, st store.RealtimeStore, metrics providers.MetricsProviderInterface) *StreamController {
	return &StreamController{
		logger:  logger,
		auth:    auth,
		store:   st,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from its own origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// streamToken reads the session token. Browsers cannot set headers on a
// websocket handshake, so the query parameter wins over the header.
func streamToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return bearerToken(r)
}

func (sc *StreamController) Watch(w http.ResponseWriter, r *http.Request) {
	if _, err := sc.auth.CurrentUser(streamToken(r)); err != nil {
		serviceError(w, err)
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path parameter required", http.StatusBadRequest)
		return
	}

	conn, err := sc.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sc.logger.Warnf(providers.TypeHTTP, "Websocket upgrade failed: %s", err)
		return
	}

	sc.metrics.IncStreamClients()
	defer sc.metrics.DecStreamClients()
	defer conn.Close()

	updates := make(chan any, streamSendBuffer)
	unsubscribe := sc.store.Subscribe(path, func(value any) {
		select {
		case updates <- value:
		default:
			// A stalled client misses intermediate states; the next update
			// it does receive is still the current value.
		}
	})
	defer unsubscribe()

	// Reader goroutine: the client sends nothing meaningful, but reading is
	// what surfaces close frames and dead connections.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Current value first, so the client never renders from nothing.
	current, _ := sc.store.Fetch(path)
	if err := sc.writeEvent(conn, path, current); err != nil {
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case value := <-updates:
			if err := sc.writeEvent(conn, path, value); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (sc *StreamController) writeEvent(conn *websocket.Conn, path string, value any) error {
	gson, err := json.Marshal(streamEvent{Path: path, Value: value})
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, gson)
}
