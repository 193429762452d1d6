package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// StreamGame handles Server-Sent Events for spectating a game.
// GET /api/games/{id}/events
//
// The stream carries one "notification" event per state-affecting step
// and closes when the client disconnects or the game finishes.
func (h *Handlers) StreamGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if _, err := h.orch.State(gameID); err != nil {
		writeMatchError(w, err)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeSSEError(w, "streaming not supported")
		return
	}

	// Replay the current state first so late joiners are not blind.
	if resp, err := h.gameResponse(gameID); err == nil {
		writeSSEEvent(w, "state", resp)
		flusher.Flush()
	}

	ch := h.hub.subscribe(gameID)
	defer h.hub.unsubscribe(gameID, ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case n := <-ch:
			writeSSEEvent(w, "notification", n)
			flusher.Flush()
			if n.State.Winner != nil {
				writeSSEEvent(w, "done", nil)
				flusher.Flush()
				return
			}
		}
	}
}

// writeSSEEvent writes a Server-Sent Event to the response.
func writeSSEEvent(w http.ResponseWriter, event string, data interface{}) {
	fmt.Fprintf(w, "event: %s\n", event)
	if data != nil {
		jsonData, _ := json.Marshal(data)
		fmt.Fprintf(w, "data: %s\n", jsonData)
	}
	fmt.Fprintf(w, "\n")
}

// writeSSEError writes an error event and closes the stream.
func writeSSEError(w http.ResponseWriter, message string) {
	writeSSEEvent(w, "error", map[string]string{"error": message})
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
