// Package api provides the HTTP/JSON, WebSocket, and SSE gateway over the
// turn orchestrator. It contains no game-rule logic.
package api

import (
	"time"

	"github.com/D3nizG/sennet/pkg/engine"
	"github.com/D3nizG/sennet/pkg/match"
)

// ============================================================================
// Request Types
// ============================================================================

// CreateGameRequest is the request body for creating a game.
type CreateGameRequest struct {
	Mode       string `json:"mode"`                 // "two_player" or "versus_ai"
	HumanSeat  string `json:"human_seat,omitempty"` // "A" or "B" (versus_ai, default "A")
	Difficulty string `json:"difficulty,omitempty"` // "easy", "medium", "hard" (versus_ai)
	UserA      string `json:"user_a,omitempty"`     // user id seated as player A
	UserB      string `json:"user_b,omitempty"`     // user id seated as player B
	GameID     string `json:"game_id,omitempty"`    // optional explicit id
	AutoStart  bool   `json:"auto_start,omitempty"` // start the faceoff immediately
}

// SeatRequest carries the acting seat for roll/resign/faceoff commands.
type SeatRequest struct {
	Player string `json:"player"` // "A" or "B"
}

// MoveCommandRequest proposes a move for the acting seat.
type MoveCommandRequest struct {
	Player  string `json:"player"`
	PieceID int    `json:"piece_id"`
	To      int    `json:"to"` // destination square, 30 = bear off
}

// ============================================================================
// Response Types
// ============================================================================

// GameResponse is the common game-state payload.
type GameResponse struct {
	GameID     string           `json:"game_id"`
	State      engine.GameState `json:"state"`
	LegalMoves []engine.Move    `json:"legal_moves,omitempty"`
	BorneOffA  int              `json:"borne_off_a"`
	BorneOffB  int              `json:"borne_off_b"`
	Deadline   *time.Time       `json:"deadline,omitempty"`
}

// MovesResponse lists the active player's legal moves.
type MovesResponse struct {
	GameID string        `json:"game_id"`
	Moves  []engine.Move `json:"moves"`
}

// ErrorResponse is the error payload for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Pool    *PoolStats `json:"pool,omitempty"`
}

// WSMessage is a client-to-server WebSocket message.
type WSMessage struct {
	Type    string `json:"type"` // "roll", "move", "resign", "faceoff_roll", "state", "ping"
	ID      string `json:"id"`   // request id for correlating responses
	PieceID int    `json:"piece_id,omitempty"`
	To      int    `json:"to,omitempty"`
}

// WSResponse is a server-to-client WebSocket message.
type WSResponse struct {
	Type         string              `json:"type"` // "ack", "error", "state", "notification", "pong"
	ID           string              `json:"id,omitempty"`
	Game         *GameResponse       `json:"game,omitempty"`
	Notification *match.Notification `json:"notification,omitempty"`
	Error        string              `json:"error,omitempty"`
	Code         string              `json:"code,omitempty"`
}
