package api

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/D3nizG/sennet/pkg/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins - configure properly in production
	},
}

// WSClient represents one WebSocket connection attached to a game. A
// client either holds a seat (and may issue commands) or spectates.
type WSClient struct {
	conn     *websocket.Conn
	handlers *Handlers
	gameID   string
	seat     *engine.Player
	sendChan chan WSResponse
	once     sync.Once
}

// WebSocket handles GET /api/ws/{id}?seat=A&user=...
//
// The seat is resolved from the seat assignment recorded at game creation
// when a user id is given, otherwise from the explicit seat parameter. An
// explicit claim is honored only while no live connection already holds
// that seat. Connections without a seat spectate.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if _, err := h.orch.State(gameID); err != nil {
		writeMatchError(w, err)
		return
	}

	var seat *engine.Player
	if user := r.URL.Query().Get("user"); user != "" {
		if p, ok := h.seats.Seat(gameID, user); ok {
			seat = &p
		}
	} else if q := r.URL.Query().Get("seat"); q != "" {
		if p, err := parseSeat(q); err == nil && !h.seats.Reachable(gameID, p) {
			seat = &p
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	client := &WSClient{
		conn:     conn,
		handlers: h,
		gameID:   gameID,
		seat:     seat,
		sendChan: make(chan WSResponse, 256),
	}
	h.hub.register(gameID, client, seat)
	go client.writePump()
	client.sendState("")
	client.readPump()
}

// send queues a message without blocking; a stalled client is dropped
// rather than waited on.
func (c *WSClient) send(msg WSResponse) {
	select {
	case c.sendChan <- msg:
	default:
		c.close()
	}
}

func (c *WSClient) close() {
	c.once.Do(func() {
		c.handlers.hub.unregister(c.gameID, c)
		if c.conn != nil {
			c.conn.Close()
		}
		close(c.sendChan)
	})
}

func (c *WSClient) writePump() {
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer c.close()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "state":
		c.sendState(msg.ID)
	case "ping":
		c.send(WSResponse{Type: "pong", ID: msg.ID})
	case "roll", "move", "resign", "faceoff_roll":
		c.handleCommand(msg)
	default:
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type", Code: "bad_request"})
	}
}

func (c *WSClient) handleCommand(msg WSMessage) {
	if c.seat == nil {
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: "spectators cannot act", Code: "not_your_turn"})
		return
	}
	orch := c.handlers.orch
	var err error
	switch msg.Type {
	case "roll":
		err = orch.SubmitRoll(c.gameID, *c.seat)
	case "move":
		err = orch.SubmitMove(c.gameID, *c.seat, msg.PieceID, msg.To)
	case "resign":
		err = orch.SubmitResign(c.gameID, *c.seat)
	case "faceoff_roll":
		err = orch.SubmitFaceoffRoll(c.gameID, *c.seat)
	}
	if err != nil {
		c.send(WSResponse{Type: "error", ID: msg.ID, Error: err.Error(), Code: errorCode(err)})
		return
	}
	c.send(WSResponse{Type: "ack", ID: msg.ID})
}

func (c *WSClient) sendState(id string) {
	resp, err := c.handlers.gameResponse(c.gameID)
	if err != nil {
		c.send(WSResponse{Type: "error", ID: id, Error: err.Error(), Code: errorCode(err)})
		return
	}
	c.send(WSResponse{Type: "state", ID: id, Game: &resp})
}
