package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/D3nizG/sennet/internal/dice"
	"github.com/D3nizG/sennet/pkg/engine"
	"github.com/D3nizG/sennet/pkg/match"
)

// scriptSource replays fixed rolls, then falls back to 2.
type scriptSource struct {
	mu    sync.Mutex
	rolls []int
	i     int
}

func (s *scriptSource) Roll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.i >= len(s.rolls) {
		return 2
	}
	v := s.rolls[s.i]
	s.i++
	return v
}

// newTestServer spins up the full route stack over a scripted orchestrator.
func newTestServer(t *testing.T, rolls ...int) *httptest.Server {
	t.Helper()
	hub := NewHub()
	orch := match.New(match.DefaultConfig(), hub, nil,
		match.WithDice(func() dice.Source { return &scriptSource{rolls: rolls} }))
	t.Cleanup(orch.Close)
	srv := NewServer(orch, hub, DefaultConfig(), "test")
	ts := httptest.NewServer(srv.setupRoutes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeGame(t *testing.T, resp *http.Response) GameResponse {
	t.Helper()
	defer resp.Body.Close()
	var game GameResponse
	if err := json.NewDecoder(resp.Body).Decode(&game); err != nil {
		t.Fatalf("decode game response: %v", err)
	}
	return game
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	defer resp.Body.Close()
	var e ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

func TestHealthHandler(t *testing.T) {
	h := NewHandlers(nil, NewHub(), nil, "test-version")

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	h.Health(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Status = %q, want %q", health.Status, "ok")
	}
	if health.Version != "test-version" {
		t.Errorf("Version = %q, want %q", health.Version, "test-version")
	}
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g1"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	game := decodeGame(t, resp)
	if game.GameID != "g1" {
		t.Errorf("GameID = %q, want %q", game.GameID, "g1")
	}
	if game.State.Phase != engine.PhaseInitialRoll {
		t.Errorf("Phase = %v, want initial_roll", game.State.Phase)
	}

	// Duplicate id is rejected.
	resp = postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g1"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	if e := decodeError(t, resp); e.Code != "game_exists" {
		t.Errorf("Code = %q, want game_exists", e.Code)
	}

	resp = postJSON(t, ts.URL+"/api/games", CreateGameRequest{Mode: "chess"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad mode status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	resp.Body.Close()
}

func TestCreateGameVersusAIValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{Mode: "versus_ai", Difficulty: "impossible"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/games", CreateGameRequest{Mode: "versus_ai", HumanSeat: "B", Difficulty: "hard"})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	resp.Body.Close()
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/games/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if e := decodeError(t, resp); e.Code != "no_active_game" {
		t.Errorf("Code = %q, want no_active_game", e.Code)
	}
}

func TestGameFlow(t *testing.T) {
	// Faceoff (1, 3) hands A the first turn; the follow-up roll is a 2.
	ts := newTestServer(t, 1, 3, 2)

	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/games/g/faceoff", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("faceoff status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/games/g/faceoff/roll", SeatRequest{Player: "A"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/games/g/faceoff/roll", SeatRequest{Player: "B"})
	game := decodeGame(t, resp)
	if game.State.Phase != engine.PhasePlaying {
		t.Fatalf("Phase = %v, want playing", game.State.Phase)
	}
	if game.State.Current != engine.PlayerA {
		t.Fatalf("Current = %v, want A", game.State.Current)
	}
	if game.Deadline == nil {
		t.Error("no roll deadline on the response")
	}

	// Wrong seat cannot roll.
	resp = postJSON(t, ts.URL+"/api/games/g/roll", SeatRequest{Player: "B"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("wrong seat status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	if e := decodeError(t, resp); e.Code != "not_your_turn" {
		t.Errorf("Code = %q, want not_your_turn", e.Code)
	}

	resp = postJSON(t, ts.URL+"/api/games/g/roll", SeatRequest{Player: "A"})
	game = decodeGame(t, resp)
	if game.State.TurnPhase != engine.TurnMove {
		t.Fatalf("TurnPhase = %v, want move", game.State.TurnPhase)
	}
	if len(game.LegalMoves) == 0 {
		t.Fatal("no legal moves in move phase")
	}

	// The moves endpoint serves the same set.
	mresp, err := http.Get(ts.URL + "/api/games/g/moves")
	if err != nil {
		t.Fatalf("GET moves: %v", err)
	}
	var moves MovesResponse
	if err := json.NewDecoder(mresp.Body).Decode(&moves); err != nil {
		t.Fatalf("decode moves: %v", err)
	}
	mresp.Body.Close()
	if len(moves.Moves) != len(game.LegalMoves) {
		t.Errorf("moves endpoint returned %d moves, want %d", len(moves.Moves), len(game.LegalMoves))
	}

	// An off-book proposal is rejected without state change.
	resp = postJSON(t, ts.URL+"/api/games/g/move", MoveCommandRequest{Player: "A", PieceID: 9, To: 25})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("illegal move status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
	}
	if e := decodeError(t, resp); e.Code != "illegal_move" {
		t.Errorf("Code = %q, want illegal_move", e.Code)
	}

	resp = postJSON(t, ts.URL+"/api/games/g/move", MoveCommandRequest{Player: "A", PieceID: 9, To: 11})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	game = decodeGame(t, resp)
	if game.State.Current != engine.PlayerB {
		t.Errorf("Current = %v, want B after the move", game.State.Current)
	}
	if game.State.Turn != 2 {
		t.Errorf("Turn = %d, want 2", game.State.Turn)
	}
}

func TestResignEndpoint(t *testing.T) {
	ts := newTestServer(t, 1, 3)

	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g", AutoStart: true})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/games/g/faceoff/roll", SeatRequest{Player: "A"})
	resp.Body.Close()
	resp = postJSON(t, ts.URL+"/api/games/g/faceoff/roll", SeatRequest{Player: "B"})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/games/g/resign", SeatRequest{Player: "A"})
	game := decodeGame(t, resp)
	if game.State.Phase != engine.PhaseFinished {
		t.Fatalf("Phase = %v, want finished", game.State.Phase)
	}
	if game.State.Winner == nil || *game.State.Winner != engine.PlayerB {
		t.Errorf("Winner = %v, want B", game.State.Winner)
	}

	// Finished games reject further commands.
	resp = postJSON(t, ts.URL+"/api/games/g/roll", SeatRequest{Player: "B"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("post-finish status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestBadRequestBody(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g"})
	resp.Body.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/api/games/g/roll", bytes.NewBufferString("{broken"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	resp.Body.Close()
}
