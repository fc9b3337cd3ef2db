package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marketpulse/backend/internal/contracts"
	"github.com/marketpulse/backend/pkg/logger"
)

// Hub fans notifications out to connected websocket clients. Dashboard
// frontends subscribe at /ws instead of polling the notification list.
type Hub struct {
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	log      *logger.Logger
}

// NewHub creates a websocket hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Same-origin dashboards only; the API sits behind the app proxy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
		log:     log,
	}
}

// Handle upgrades the connection and keeps it registered until the
// client disconnects.
// GET /ws
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.log.WithField("clients", count).Debug("Websocket client connected")

	// Drain the read side; clients only receive.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Broadcast sends one payload to every connected client, dropping
// connections that fail to write.
func (h *Hub) Broadcast(payload interface{}) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(payload); err != nil {
			h.remove(conn)
		}
	}
}

// NotificationStreamer pushes newly created notifications to the hub.
// The scheduler writes notifications from its own process, so the API
// tails the store instead of hooking creation directly.
type NotificationStreamer struct {
	hub           *Hub
	notifications contracts.NotificationRepository
	interval      time.Duration
	lastSeen      time.Time
	log           *logger.Logger
}

// NewNotificationStreamer creates a streamer polling at interval.
func NewNotificationStreamer(hub *Hub, notifications contracts.NotificationRepository, interval time.Duration, log *logger.Logger) *NotificationStreamer {
	return &NotificationStreamer{
		hub:           hub,
		notifications: notifications,
		interval:      interval,
		lastSeen:      time.Now().UTC(),
		log:           log,
	}
}

// Run polls until ctx is cancelled. Call in its own goroutine.
func (s *NotificationStreamer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.push(ctx)
		}
	}
}

func (s *NotificationStreamer) push(ctx context.Context) {
	notifications, err := s.notifications.ListUnread(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Notification poll failed")
		return
	}

	var newest time.Time
	for _, n := range notifications {
		if !n.CreatedAt.After(s.lastSeen) {
			continue
		}
		s.hub.Broadcast(map[string]interface{}{
			"event": "notification",
			"data":  n,
		})
		if n.CreatedAt.After(newest) {
			newest = n.CreatedAt
		}
	}
	if !newest.IsZero() {
		s.lastSeen = newest
	}
}
