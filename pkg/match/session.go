package match

import (
	"math/rand"
	"sync"
	"time"

	"github.com/D3nizG/sennet/internal/dice"
	"github.com/D3nizG/sennet/pkg/ai"
	"github.com/D3nizG/sennet/pkg/engine"
)

// Mode distinguishes two-seat human games from single-human games against
// the automated opponent.
type Mode uint8

const (
	ModeTwoPlayer Mode = iota
	ModeVersusAI
)

func (m Mode) String() string {
	if m == ModeVersusAI {
		return "versus_ai"
	}
	return "two_player"
}

// session is the orchestrator-owned per-game state that lives outside the
// GameState: deadline bookkeeping, faceoff round rolls, and the automation
// guard. One session exists per active game, from creation to cleanup.
//
// All fields below mu are guarded by it. Command handlers and deadline
// callbacks run one at a time per session; the pacing sleeps of the AI
// loop happen with the lock released.
type session struct {
	id      string
	mode    Mode
	aiSide  engine.Player
	aiLevel ai.Difficulty

	mu       sync.Mutex
	state    engine.GameState
	dice     dice.Source
	rng      *rand.Rand
	roundA   *int // current faceoff round rolls, nil = not rolled
	roundB   *int
	timer    *time.Timer
	timerGen uint64
	deadline time.Time
	busy     bool // an automated loop (faceoff or turn) is running
	closed   bool
}

// claimBusy marks the session's automated loop as running. It reports
// false when another loop already runs or the session is closed, so
// re-entrant triggers are dropped.
func (s *session) claimBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy || s.closed {
		return false
	}
	s.busy = true
	return true
}

func (s *session) releaseBusy() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// stopTimerLocked cancels any armed deadline and invalidates in-flight
// callbacks. Idempotent; callers hold s.mu.
func (s *session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
	s.deadline = time.Time{}
}

// armTimerLocked replaces the session's deadline. Callers hold s.mu.
func (s *session) armTimerLocked(d time.Duration, fn func(gen uint64)) {
	s.stopTimerLocked()
	gen := s.timerGen
	s.deadline = time.Now().Add(d)
	s.timer = time.AfterFunc(d, func() { fn(gen) })
}

// closeLocked makes the session terminal: no further commands, no pending
// deadline. Safe to call more than once.
func (s *session) closeLocked() {
	s.stopTimerLocked()
	s.closed = true
}
