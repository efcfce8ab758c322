package main

import (
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 64
)

// Hub tracks live sockets and applies the transport connection limits that
// sit in front of the game's own player cap
type Hub struct {
	game *Game

	mu      sync.RWMutex
	clients map[*Client]bool

	// Connection limiting (accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a Hub in front of game
func NewHub(game *Game) *Hub {
	return &Hub{
		game:    game,
		clients: make(map[*Client]bool),
		ipConns: make(map[string]int),
	}
}

// CanAccept reports whether another socket from ip fits the limits
func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Admit hands a freshly upgraded socket to the game. A rejected socket has
// already been sent serverFull and closed by the game.
func (h *Hub) Admit(c *Client) error {
	h.TrackConnect(c.remoteAddr)
	id, err := h.game.Connect(c)
	if err != nil {
		h.TrackDisconnect(c.remoteAddr)
		return err
	}
	c.playerID = id

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return nil
}

// Unregister drops a client whose read pump has ended and removes its player
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if !ok {
		return
	}

	h.TrackDisconnect(c.remoteAddr)
	c.Close()
	h.game.Disconnect(c.playerID)
	log.Debug().Str("player", c.playerID).Str("remote", c.remoteAddr).Msg("socket closed")
}

// CloseAll closes every live socket, used on shutdown
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.Close()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
