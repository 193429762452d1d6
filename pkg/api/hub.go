package api

import (
	"sync"

	"github.com/D3nizG/sennet/pkg/engine"
	"github.com/D3nizG/sennet/pkg/match"
)

// Hub fans orchestrator notifications out to the connected WebSocket
// clients and SSE streams of each game. It also implements the
// orchestrator's Seats contract: user-to-seat mapping plus reachability.
type Hub struct {
	mu      sync.RWMutex
	seats   map[string]map[string]engine.Player
	clients map[string]map[*WSClient]*engine.Player // nil seat = spectator
	streams map[string]map[chan match.Notification]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		seats:   make(map[string]map[string]engine.Player),
		clients: make(map[string]map[*WSClient]*engine.Player),
		streams: make(map[string]map[chan match.Notification]struct{}),
	}
}

// AssignSeat records which user occupies a seat of a game.
func (h *Hub) AssignSeat(gameID, userID string, p engine.Player) {
	if userID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.seats[gameID] == nil {
		h.seats[gameID] = make(map[string]engine.Player)
	}
	h.seats[gameID][userID] = p
}

// Seat implements match.Seats.
func (h *Hub) Seat(gameID, userID string) (engine.Player, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.seats[gameID][userID]
	return p, ok
}

// Reachable implements match.Seats: a seat is reachable while a WebSocket
// client holds it.
func (h *Hub) Reachable(gameID string, p engine.Player) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, seat := range h.clients[gameID] {
		if seat != nil && *seat == p {
			return true
		}
	}
	return false
}

// Notify implements match.Notifier, broadcasting to every attached client
// and stream of the game. Slow consumers are skipped, never waited on.
// Delivery happens outside the hub lock: dropping a stalled client
// re-enters the hub to unregister it.
func (h *Hub) Notify(n match.Notification) {
	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients[n.GameID]))
	for c := range h.clients[n.GameID] {
		clients = append(clients, c)
	}
	streams := make([]chan match.Notification, 0, len(h.streams[n.GameID]))
	for ch := range h.streams[n.GameID] {
		streams = append(streams, ch)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		nc := n
		c.send(WSResponse{Type: "notification", Notification: &nc})
	}
	for _, ch := range streams {
		select {
		case ch <- n:
		default:
		}
	}
}

func (h *Hub) register(gameID string, c *WSClient, seat *engine.Player) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[gameID] == nil {
		h.clients[gameID] = make(map[*WSClient]*engine.Player)
	}
	h.clients[gameID][c] = seat
}

func (h *Hub) unregister(gameID string, c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[gameID], c)
	if len(h.clients[gameID]) == 0 {
		delete(h.clients, gameID)
	}
}

func (h *Hub) subscribe(gameID string) chan match.Notification {
	ch := make(chan match.Notification, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streams[gameID] == nil {
		h.streams[gameID] = make(map[chan match.Notification]struct{})
	}
	h.streams[gameID][ch] = struct{}{}
	return ch
}

func (h *Hub) unsubscribe(gameID string, ch chan match.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.streams[gameID], ch)
	if len(h.streams[gameID]) == 0 {
		delete(h.streams, gameID)
	}
}

// DropGame clears all per-game hub state after cleanup.
func (h *Hub) DropGame(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.seats, gameID)
	delete(h.clients, gameID)
	delete(h.streams, gameID)
}
