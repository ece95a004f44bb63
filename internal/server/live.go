package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kavete/health-monitor/internal/charts"
	"github.com/kavete/health-monitor/internal/logger"
)

// liveMessage is one live feed frame: every chart mutation produced by
// a single apply on one dashboard.
type liveMessage struct {
	Dashboard string          `json:"dashboard"`
	Charts    []charts.Update `json:"charts"`
}

// Hub fans applied chart updates out to connected dashboard pages.
// Broadcast is best effort: a client that cannot be written to is
// dropped and the page reconnects on its own.
type Hub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]string
}

// NewHub creates an empty hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Pages are served from the same host; no cross-origin use.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]string),
	}
}

// HandleLive upgrades the connection and subscribes it to one
// dashboard's updates, selected by the dashboard query parameter.
func (h *Hub) HandleLive(w http.ResponseWriter, r *http.Request) {
	dashboard := r.URL.Query().Get("dashboard")
	if dashboard == "" {
		http.Error(w, "missing dashboard parameter", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = dashboard
	count := len(h.clients)
	h.mu.Unlock()
	h.log.Debug("live client connected", map[string]interface{}{
		"dashboard": dashboard,
		"clients":   count,
	})

	// Reads are discarded; the loop exists to detect the close.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Publish sends one dashboard's applied updates to its subscribers.
func (h *Hub) Publish(dashboard string, updates []charts.Update) {
	msg := liveMessage{Dashboard: dashboard, Charts: updates}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn, subscribed := range h.clients {
		if subscribed == dashboard {
			conns = append(conns, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug("dropping live client", map[string]interface{}{"dashboard": dashboard})
			h.drop(conn)
		}
	}
}

// ClientCount reports the number of connected live clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
