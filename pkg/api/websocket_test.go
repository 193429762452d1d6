package api

import (
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, httpURL, path string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(httpURL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) WSResponse {
	t.Helper()
	var resp WSResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("read: %v", err)
	}
	return resp
}

func TestWebSocketStateAndPing(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g"})
	resp.Body.Close()

	conn := dialWS(t, ts.URL, "/api/ws/g?seat=A")

	// The server pushes the current state on connect.
	first := readWS(t, conn)
	if first.Type != "state" || first.Game == nil {
		t.Fatalf("first message = %+v, want pushed state", first)
	}
	if first.Game.GameID != "g" {
		t.Errorf("GameID = %q, want g", first.Game.GameID)
	}

	if err := conn.WriteJSON(WSMessage{Type: "ping", ID: "p1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	pong := readWS(t, conn)
	if pong.Type != "pong" || pong.ID != "p1" {
		t.Errorf("got %+v, want pong p1", pong)
	}

	if err := conn.WriteJSON(WSMessage{Type: "nonsense", ID: "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	bad := readWS(t, conn)
	if bad.Type != "error" || bad.Code != "bad_request" {
		t.Errorf("got %+v, want bad_request error", bad)
	}
}

func TestWebSocketSpectatorCannotAct(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g"})
	resp.Body.Close()

	conn := dialWS(t, ts.URL, "/api/ws/g")
	if first := readWS(t, conn); first.Type != "state" {
		t.Fatalf("first message type = %q, want state", first.Type)
	}

	if err := conn.WriteJSON(WSMessage{Type: "roll", ID: "r1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := readWS(t, conn)
	if got.Type != "error" || got.Code != "not_your_turn" {
		t.Errorf("got %+v, want not_your_turn error", got)
	}
}

func TestWebSocketSeatHeldElsewhere(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g"})
	resp.Body.Close()

	first := dialWS(t, ts.URL, "/api/ws/g?seat=A")
	if msg := readWS(t, first); msg.Type != "state" {
		t.Fatalf("first message type = %q, want state", msg.Type)
	}

	// Seat A is held by a live connection, so a second claim of the
	// same seat joins as a spectator.
	second := dialWS(t, ts.URL, "/api/ws/g?seat=A")
	if msg := readWS(t, second); msg.Type != "state" {
		t.Fatalf("first message type = %q, want state", msg.Type)
	}
	if err := second.WriteJSON(WSMessage{Type: "resign", ID: "r1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := readWS(t, second)
	if got.Type != "error" || got.Code != "not_your_turn" {
		t.Errorf("got %+v, want not_your_turn error", got)
	}
}

func TestWebSocketCommandPhaseGate(t *testing.T) {
	ts := newTestServer(t)
	resp := postJSON(t, ts.URL+"/api/games", CreateGameRequest{GameID: "g"})
	resp.Body.Close()

	conn := dialWS(t, ts.URL, "/api/ws/g?seat=A")
	if first := readWS(t, conn); first.Type != "state" {
		t.Fatalf("first message type = %q, want state", first.Type)
	}

	// Rolling before the faceoff is a phase error, delivered in-band.
	if err := conn.WriteJSON(WSMessage{Type: "roll", ID: "r1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := readWS(t, conn)
	if got.Type != "error" || got.Code != "wrong_phase" {
		t.Errorf("got %+v, want wrong_phase error", got)
	}
}

func TestWebSocketUnknownGame(t *testing.T) {
	ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws/missing"
	if _, _, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Error("dial to an unknown game succeeded")
	}
}
