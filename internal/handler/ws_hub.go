package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gridarena/server/pkg/arena"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type    string `json:"type"`
	MatchID int64  `json:"match_id,omitempty"`
	Data    any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action  string `json:"action"` // "subscribe" or "unsubscribe"
	MatchID int64  `json:"match_id"`
}

// WSConn wraps a WebSocket connection with its player and subscriptions.
type WSConn struct {
	conn     *websocket.Conn
	playerID int64
	send     chan []byte
}

// Hub manages WebSocket connections and match-channel subscriptions. It
// implements service.Broadcaster; clients still poll GET /state as the
// authoritative read, the push channel just saves them the polling interval.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	matches     map[int64]map[*WSConn]bool
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		matches:     make(map[int64]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	for matchID, conns := range h.matches {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.matches, matchID)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a match channel.
func (h *Hub) Subscribe(c *WSConn, matchID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.matches[matchID] == nil {
		h.matches[matchID] = make(map[*WSConn]bool)
	}
	h.matches[matchID][c] = true
}

// Unsubscribe removes a connection from a match channel.
func (h *Hub) Unsubscribe(c *WSConn, matchID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.matches[matchID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.matches, matchID)
		}
	}
}

// matchUpdate is the payload pushed after every committed action batch.
type matchUpdate struct {
	Status        arena.Status  `json:"status"`
	CurrentPlayer int64         `json:"current_player_id"`
	WinnerID      int64         `json:"winner_id,omitempty"`
	Draw          bool          `json:"draw,omitempty"`
	Round         int           `json:"round"`
	Events        []arena.Event `json:"events"`
}

// BroadcastMatch pushes the committed events and the headline state to every
// connection subscribed to the match.
func (h *Hub) BroadcastMatch(matchID int64, state *arena.State, events []arena.Event) {
	data, err := json.Marshal(WSEvent{
		Type:    "match_updated",
		MatchID: matchID,
		Data: matchUpdate{
			Status:        state.Status,
			CurrentPlayer: state.Current,
			WinnerID:      state.Winner,
			Draw:          state.Draw,
			Round:         state.Round,
			Events:        events,
		},
	})
	if err != nil {
		log.Error().Err(err).Int64("matchId", matchID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.matches[matchID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Int64("playerId", c.playerID).Int64("matchId", matchID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// MatchSubscriberCount returns the number of connections subscribed to a match.
func (h *Hub) MatchSubscriberCount(matchID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.matches[matchID])
}
