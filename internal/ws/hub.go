package ws

import (
	"encoding/json"
	"sync"

	"taskboard/internal/logger"
)

// Hub tracks open sockets per user so a change made in one tab can be
// announced to the user's other tabs.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(set))
}

// Unregister removes c and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	logger.Debug("ws client unregistered", "user_id", c.UserID, "connections", len(set))
}

// Connections returns how many sockets userID has open.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Invalidate tells every socket of userID except skip to refetch procedure.
// skip may be nil.
func (h *Hub) Invalidate(userID int64, skip *Client, procedure string) {
	data, err := json.Marshal(Message{Type: MsgInvalidate, Procedure: procedure})
	if err != nil {
		logger.Error("ws marshal invalidate", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		if c == skip {
			continue
		}
		select {
		case c.Send <- data:
		default:
			logger.Warn("ws send queue full, dropping invalidate", "user_id", userID)
		}
	}
}

// CloseAll disconnects every socket, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make([]*Client, 0)
	for _, set := range h.clients {
		for c := range set {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.Conn.Close()
	}
}
