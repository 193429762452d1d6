package match

import (
	"log"

	"github.com/D3nizG/sennet/pkg/engine"
)

// Notification is emitted after every state-affecting step: the resulting
// state, the legal-move set when the game entered move phase, and the
// event tag of the transition, if any.
type Notification struct {
	GameID     string           `json:"game_id"`
	State      engine.GameState `json:"state"`
	LegalMoves []engine.Move    `json:"legal_moves,omitempty"`
	Event      engine.Event     `json:"event,omitempty"`
}

// Notifier receives notifications. Implementations must not block; the
// orchestrator calls Notify outside its per-game lock but on the command
// path.
type Notifier interface {
	Notify(n Notification)
}

// Sink persists game snapshots. Saves are fire-and-forget from the core's
// perspective: errors are logged, never propagated into game flow. The
// snapshot payload is opaque to the sink.
type Sink interface {
	Save(gameID string, snapshot []byte, finished bool) error
}

// GameDropper is implemented by notifiers that keep per-game fanout
// state and want it cleared when a finished game is retired.
type GameDropper interface {
	DropGame(gameID string)
}

// Seats is the collaborator contract mapping authenticated users to the
// two seats of a game, with a reachability check used to decide whether a
// participant should be notified.
type Seats interface {
	Seat(gameID, userID string) (engine.Player, bool)
	Reachable(gameID string, p engine.Player) bool
}

// notification derives the outbound payload for the transition prev->next.
func notification(prev, next engine.GameState) Notification {
	n := Notification{GameID: next.ID, State: next}
	if len(next.Log) > len(prev.Log) {
		n.Event = next.Log[len(next.Log)-1].Event
	}
	if next.Phase == engine.PhasePlaying && next.TurnPhase == engine.TurnMove && next.Roll != nil {
		n.LegalMoves = engine.LegalMoves(next, next.Current, *next.Roll)
	}
	return n
}

func (o *Orchestrator) emit(n Notification) {
	if o.notifier != nil {
		o.notifier.Notify(n)
	}
}

func (o *Orchestrator) persist(s engine.GameState, finished bool) {
	if o.sink == nil {
		return
	}
	data, err := engine.Snapshot(s)
	if err != nil {
		log.Printf("match %s: snapshot: %v", s.ID, err)
		return
	}
	if err := o.sink.Save(s.ID, data, finished); err != nil {
		log.Printf("match %s: persist: %v", s.ID, err)
	}
}
