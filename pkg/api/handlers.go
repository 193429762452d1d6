package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/D3nizG/sennet/pkg/ai"
	"github.com/D3nizG/sennet/pkg/engine"
	"github.com/D3nizG/sennet/pkg/match"
)

// Handlers holds the HTTP handlers and their collaborators. Seat lookup
// and reachability go through the match.Seats contract, which the hub
// implements.
type Handlers struct {
	orch    *match.Orchestrator
	hub     *Hub
	seats   match.Seats
	pool    *WorkerPool
	version string
}

// NewHandlers creates a Handlers instance.
func NewHandlers(orch *match.Orchestrator, hub *Hub, pool *WorkerPool, version string) *Handlers {
	return &Handlers{orch: orch, hub: hub, seats: hub, pool: pool, version: version}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// writeMatchError translates an orchestrator rejection into HTTP terms.
func writeMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, match.ErrNoActiveGame):
		writeError(w, http.StatusNotFound, err.Error(), "no_active_game")
	case errors.Is(err, match.ErrNotYourTurn):
		writeError(w, http.StatusConflict, err.Error(), "not_your_turn")
	case errors.Is(err, match.ErrWrongPhase):
		writeError(w, http.StatusConflict, err.Error(), "wrong_phase")
	case errors.Is(err, match.ErrAlreadyRolled):
		writeError(w, http.StatusConflict, err.Error(), "already_rolled")
	case errors.Is(err, match.ErrGameExists):
		writeError(w, http.StatusConflict, err.Error(), "game_exists")
	case errors.Is(err, engine.ErrIllegalMove):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), "illegal_move")
	default:
		writeError(w, http.StatusInternalServerError, "command failed", "internal")
	}
}

// errorCode maps an orchestrator rejection to its wire code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, match.ErrNoActiveGame):
		return "no_active_game"
	case errors.Is(err, match.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, match.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, match.ErrAlreadyRolled):
		return "already_rolled"
	case errors.Is(err, match.ErrGameExists):
		return "game_exists"
	case errors.Is(err, engine.ErrIllegalMove):
		return "illegal_move"
	default:
		return "internal"
	}
}

func parseSeat(s string) (engine.Player, error) {
	switch s {
	case "A", "a":
		return engine.PlayerA, nil
	case "B", "b":
		return engine.PlayerB, nil
	}
	return 0, fmt.Errorf("unknown seat %q", s)
}

// gameResponse assembles the common game payload from the orchestrator's
// read accessors.
func (h *Handlers) gameResponse(id string) (GameResponse, error) {
	state, err := h.orch.State(id)
	if err != nil {
		return GameResponse{}, err
	}
	moves, err := h.orch.LegalMoves(id)
	if err != nil {
		return GameResponse{}, err
	}
	offA, offB, err := h.orch.BorneOff(id)
	if err != nil {
		return GameResponse{}, err
	}
	resp := GameResponse{
		GameID:     id,
		State:      state,
		LegalMoves: moves,
		BorneOffA:  offA,
		BorneOffB:  offB,
	}
	if deadline, ok, err := h.orch.Deadline(id); err == nil && ok {
		resp.Deadline = &deadline
	}
	return resp, nil
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: h.version}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateGame handles POST /api/games
func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireCreate(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "busy")
			return
		}
		defer h.pool.ReleaseCreate()
	}

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}

	var state engine.GameState
	var err error
	switch req.Mode {
	case "two_player", "":
		state, err = h.orch.CreateTwoPlayer(req.GameID)
	case "versus_ai":
		human := engine.PlayerA
		if req.HumanSeat != "" {
			if human, err = parseSeat(req.HumanSeat); err != nil {
				writeError(w, http.StatusBadRequest, err.Error(), "bad_request")
				return
			}
		}
		level := ai.Medium
		if req.Difficulty != "" {
			if level, err = ai.ParseDifficulty(req.Difficulty); err != nil {
				writeError(w, http.StatusBadRequest, err.Error(), "bad_request")
				return
			}
		}
		state, err = h.orch.CreateVersusAI(req.GameID, human, level)
	default:
		writeError(w, http.StatusBadRequest, "unknown mode", "bad_request")
		return
	}
	if err != nil {
		writeMatchError(w, err)
		return
	}

	h.hub.AssignSeat(state.ID, req.UserA, engine.PlayerA)
	h.hub.AssignSeat(state.ID, req.UserB, engine.PlayerB)

	if req.AutoStart {
		if err := h.orch.StartFaceoff(state.ID); err != nil {
			writeMatchError(w, err)
			return
		}
	}

	resp, err := h.gameResponse(state.ID)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetGame handles GET /api/games/{id}
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	resp, err := h.gameResponse(r.PathValue("id"))
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetMoves handles GET /api/games/{id}/moves
func (h *Handlers) GetMoves(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	moves, err := h.orch.LegalMoves(id)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MovesResponse{GameID: id, Moves: moves})
}

// StartFaceoff handles POST /api/games/{id}/faceoff
func (h *Handlers) StartFaceoff(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(id string, _ engine.Player) error {
		return h.orch.StartFaceoff(id)
	}, false)
}

// FaceoffRoll handles POST /api/games/{id}/faceoff/roll
func (h *Handlers) FaceoffRoll(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(id string, p engine.Player) error {
		return h.orch.SubmitFaceoffRoll(id, p)
	}, true)
}

// Roll handles POST /api/games/{id}/roll
func (h *Handlers) Roll(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(id string, p engine.Player) error {
		return h.orch.SubmitRoll(id, p)
	}, true)
}

// Resign handles POST /api/games/{id}/resign
func (h *Handlers) Resign(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(id string, p engine.Player) error {
		return h.orch.SubmitResign(id, p)
	}, true)
}

// Move handles POST /api/games/{id}/move
func (h *Handlers) Move(w http.ResponseWriter, r *http.Request) {
	if h.pool != nil {
		if err := h.pool.AcquireCommand(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "busy")
			return
		}
		defer h.pool.ReleaseCommand()
	}
	id := r.PathValue("id")
	var req MoveCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
		return
	}
	seat, err := parseSeat(req.Player)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "bad_request")
		return
	}
	if err := h.orch.SubmitMove(id, seat, req.PieceID, req.To); err != nil {
		writeMatchError(w, err)
		return
	}
	resp, err := h.gameResponse(id)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// command is the shared body of the seat-only command endpoints.
func (h *Handlers) command(w http.ResponseWriter, r *http.Request, fn func(string, engine.Player) error, needSeat bool) {
	if h.pool != nil {
		if err := h.pool.AcquireCommand(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server busy", "busy")
			return
		}
		defer h.pool.ReleaseCommand()
	}
	id := r.PathValue("id")
	var seat engine.Player
	if needSeat {
		var req SeatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", "bad_request")
			return
		}
		var err error
		if seat, err = parseSeat(req.Player); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "bad_request")
			return
		}
	}
	if err := fn(id, seat); err != nil {
		writeMatchError(w, err)
		return
	}
	resp, err := h.gameResponse(id)
	if err != nil {
		writeMatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
