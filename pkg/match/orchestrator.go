// Package match orchestrates live games: it owns the per-game sessions,
// serializes command handling, drives deadlines and the automated
// opponent, and emits the notification contract after every
// state-affecting step. All rule decisions are delegated to pkg/engine.
package match

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/D3nizG/sennet/internal/dice"
	"github.com/D3nizG/sennet/pkg/ai"
	"github.com/D3nizG/sennet/pkg/engine"
)

// Orchestrator coordinates every active game. One command or deadline
// callback is processed to completion per game at a time; distinct games
// never contend with each other.
type Orchestrator struct {
	cfg      Config
	notifier Notifier
	sink     Sink
	newDice  func() dice.Source
	aiSeed   int64

	mu       sync.RWMutex
	sessions map[string]*session
	created  int64
}

// Option adjusts orchestrator construction.
type Option func(*Orchestrator)

// WithDice swaps the per-game die source factory. Tests and replays use a
// seeded source; live play defaults to the crypto source.
func WithDice(f func() dice.Source) Option {
	return func(o *Orchestrator) { o.newDice = f }
}

// WithAISeed fixes the seed of the AI selection randomness, making easy
// and medium tiers reproducible.
func WithAISeed(seed int64) Option {
	return func(o *Orchestrator) { o.aiSeed = seed }
}

// New creates an orchestrator. notifier and sink may be nil.
func New(cfg Config, notifier Notifier, sink Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg.withDefaults(),
		notifier: notifier,
		sink:     sink,
		newDice:  dice.NewCrypto,
		aiSeed:   dice.RandomSeed(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateTwoPlayer registers a new interactive game. An empty id gets a
// generated one.
func (o *Orchestrator) CreateTwoPlayer(id string) (engine.GameState, error) {
	return o.create(id, ModeTwoPlayer, 0, 0)
}

// CreateVersusAI registers a new single-human game; the automated side is
// the opposite seat.
func (o *Orchestrator) CreateVersusAI(id string, human engine.Player, level ai.Difficulty) (engine.GameState, error) {
	return o.create(id, ModeVersusAI, human.Opponent(), level)
}

func (o *Orchestrator) create(id string, mode Mode, aiSide engine.Player, level ai.Difficulty) (engine.GameState, error) {
	if id == "" {
		id = uuid.NewString()
	}
	o.mu.Lock()
	if _, dup := o.sessions[id]; dup {
		o.mu.Unlock()
		return engine.GameState{}, ErrGameExists
	}
	o.created++
	s := &session{
		id:      id,
		mode:    mode,
		aiSide:  aiSide,
		aiLevel: level,
		state:   engine.NewGame(id),
		dice:    o.newDice(),
		rng:     rand.New(rand.NewSource(o.aiSeed + o.created)),
	}
	o.sessions[id] = s
	o.mu.Unlock()
	return s.state.Clone(), nil
}

// Resume reinstalls an unfinished game from a persisted snapshot and
// re-arms whatever activity its phase calls for. The mode and seating are
// supplied by the caller; the snapshot holds only the game core.
func (o *Orchestrator) Resume(state engine.GameState, mode Mode, human engine.Player, level ai.Difficulty) error {
	if state.ID == "" || state.Phase == engine.PhaseFinished {
		return ErrWrongPhase
	}
	var aiSide engine.Player
	if mode == ModeVersusAI {
		aiSide = human.Opponent()
	}
	o.mu.Lock()
	if _, dup := o.sessions[state.ID]; dup {
		o.mu.Unlock()
		return ErrGameExists
	}
	o.created++
	s := &session{
		id:      state.ID,
		mode:    mode,
		aiSide:  aiSide,
		aiLevel: level,
		state:   state.Clone(),
		dice:    o.newDice(),
		rng:     rand.New(rand.NewSource(o.aiSeed + o.created)),
	}
	o.sessions[state.ID] = s
	o.mu.Unlock()

	s.mu.Lock()
	switch {
	case s.state.Phase == engine.PhaseInitialRoll:
		if mode == ModeVersusAI {
			s.mu.Unlock()
			go o.autoFaceoff(s)
			return nil
		}
		s.armTimerLocked(o.cfg.FaceoffTimeout, func(gen uint64) { o.onDeadline(s, gen) })
	case s.state.TurnPhase == engine.TurnRoll:
		if mode == ModeVersusAI && s.state.Current == aiSide {
			s.mu.Unlock()
			go o.runAI(s)
			return nil
		}
		o.armRollDeadlineLocked(s)
	default:
		if mode == ModeVersusAI && s.state.Current == aiSide {
			s.mu.Unlock()
			go o.runAI(s)
			return nil
		}
		// Mid-move: no deadline while the human chooses.
	}
	s.mu.Unlock()
	return nil
}

func (o *Orchestrator) session(id string) (*session, error) {
	o.mu.RLock()
	s, ok := o.sessions[id]
	o.mu.RUnlock()
	if !ok {
		return nil, ErrNoActiveGame
	}
	return s, nil
}

// State returns a copy of the game's current state.
func (o *Orchestrator) State(id string) (engine.GameState, error) {
	s, err := o.session(id)
	if err != nil {
		return engine.GameState{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

// LegalMoves returns the active player's legal set, which is non-empty
// only in move phase.
func (o *Orchestrator) LegalMoves(id string) ([]engine.Move, error) {
	s, err := o.session(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.Phase != engine.PhasePlaying || st.TurnPhase != engine.TurnMove || st.Roll == nil {
		return nil, nil
	}
	return engine.LegalMoves(st, st.Current, *st.Roll), nil
}

// BorneOff returns the exited-piece counts for both seats.
func (o *Orchestrator) BorneOff(id string) (a, b int, err error) {
	s, err := o.session(id)
	if err != nil {
		return 0, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.BorneOff(engine.PlayerA), s.state.BorneOff(engine.PlayerB), nil
}

// Deadline reports the pending roll or faceoff deadline, if one is armed.
func (o *Orchestrator) Deadline(id string) (time.Time, bool, error) {
	s, err := o.session(id)
	if err != nil {
		return time.Time{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline, !s.deadline.IsZero(), nil
}

// StartFaceoff begins the initial-roll faceoff. Single-human games run it
// automatically with pacing; interactive games arm the shared round
// deadline and wait for submissions.
func (o *Orchestrator) StartFaceoff(id string) error {
	s, err := o.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNoActiveGame
	}
	if s.state.Phase != engine.PhaseInitialRoll {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	if s.mode == ModeVersusAI {
		s.mu.Unlock()
		go o.autoFaceoff(s)
		return nil
	}
	s.armTimerLocked(o.cfg.FaceoffTimeout, func(gen uint64) { o.onDeadline(s, gen) })
	notif := Notification{GameID: s.id, State: s.state.Clone()}
	s.mu.Unlock()
	o.emit(notif)
	return nil
}

// SubmitFaceoffRoll records one side's roll for the current faceoff round
// of an interactive game. The round resolves as soon as both sides have
// rolled.
func (o *Orchestrator) SubmitFaceoffRoll(id string, p engine.Player) error {
	s, err := o.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNoActiveGame
	}
	if s.mode == ModeVersusAI || s.state.Phase != engine.PhaseInitialRoll {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	slot := &s.roundA
	if p == engine.PlayerB {
		slot = &s.roundB
	}
	if *slot != nil {
		s.mu.Unlock()
		return ErrAlreadyRolled
	}
	v := s.dice.Roll()
	*slot = &v
	if s.roundA == nil || s.roundB == nil {
		s.mu.Unlock()
		return nil
	}
	notif, startAI, ok := o.resolveRoundLocked(s)
	state := s.state
	s.mu.Unlock()
	if ok {
		o.emit(notif)
		o.persist(state, false)
		if startAI {
			go o.runAI(s)
		}
	}
	return nil
}

// resolveRoundLocked consumes the stored round rolls and applies the
// faceoff transition. On decision it schedules normal play; otherwise it
// arms the next round's deadline after the restart delay. Callers hold
// s.mu and must emit/persist after unlocking.
func (o *Orchestrator) resolveRoundLocked(s *session) (Notification, bool, bool) {
	a, b := *s.roundA, *s.roundB
	s.roundA, s.roundB = nil, nil
	next, err := engine.ResolveFaceoff(s.state, a, b)
	if err != nil {
		log.Printf("match %s: resolve faceoff: %v", s.id, err)
		return Notification{}, false, false
	}
	prev := s.state
	s.state = next
	s.stopTimerLocked()

	startAI := false
	if next.Faceoff.Decided {
		if s.mode == ModeVersusAI && next.Current == s.aiSide {
			startAI = true
		} else {
			o.armRollDeadlineLocked(s)
		}
	} else if s.mode == ModeTwoPlayer {
		s.armTimerLocked(o.cfg.FaceoffRestartDelay+o.cfg.FaceoffTimeout, func(gen uint64) { o.onDeadline(s, gen) })
	}
	return notification(prev, next), startAI, true
}

// autoFaceoff rolls both sides with pacing until the faceoff is decided.
// Used for single-human games.
func (o *Orchestrator) autoFaceoff(s *session) {
	if !s.claimBusy() {
		return
	}
	for round := 0; round < o.cfg.AIMaxSteps; round++ {
		time.Sleep(o.cfg.FaceoffRestartDelay)
		s.mu.Lock()
		if s.closed || s.state.Phase != engine.PhaseInitialRoll {
			s.mu.Unlock()
			s.releaseBusy()
			return
		}
		a, b := s.dice.Roll(), s.dice.Roll()
		s.roundA, s.roundB = &a, &b
		notif, startAI, ok := o.resolveRoundLocked(s)
		state := s.state
		decided := state.Faceoff.Decided
		s.mu.Unlock()
		if !ok {
			s.releaseBusy()
			return
		}
		o.emit(notif)
		o.persist(state, false)
		if decided {
			// Release exactly once before the turn loop claims the guard
			// afresh. A competing trigger that claims first wins; this
			// loop never touches the flag again.
			s.releaseBusy()
			if startAI {
				o.runAI(s)
			}
			return
		}
	}
	s.releaseBusy()
	log.Printf("match %s: faceoff hit round cap", s.id)
}

// SubmitRoll performs a roll for the player whose turn it is. A manual
// roll clears the pending deadline.
func (o *Orchestrator) SubmitRoll(id string, p engine.Player) error {
	s, err := o.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if err := validateCommand(s, p, engine.TurnRoll); err != nil {
		s.mu.Unlock()
		return err
	}
	notif, startAI, ok := o.rollLocked(s)
	state := s.state
	s.mu.Unlock()
	if !ok {
		return ErrInternal
	}
	o.emit(notif)
	o.persist(state, false)
	if startAI {
		go o.runAI(s)
	}
	return nil
}

// rollLocked rolls the die and applies the transition, then schedules
// whatever follows: a fresh deadline for a human roll phase, or the AI
// loop when the turn now belongs to the automated side.
func (o *Orchestrator) rollLocked(s *session) (Notification, bool, bool) {
	die := s.dice.Roll()
	next, err := engine.ApplyRoll(s.state, die)
	if err != nil {
		// Pre-validated commands should never trip the engine contract.
		log.Printf("match %s: apply roll: %v", s.id, err)
		return Notification{}, false, false
	}
	prev := s.state
	s.state = next
	s.stopTimerLocked()

	startAI := false
	switch {
	case next.TurnPhase == engine.TurnMove:
		// No deadline while choosing a move.
	case s.mode == ModeVersusAI && next.Current == s.aiSide:
		startAI = true
	default:
		o.armRollDeadlineLocked(s)
	}
	return notification(prev, next), startAI, true
}

// SubmitMove applies a proposed move (piece id + destination) for the
// player whose turn it is. Illegal proposals are rejected without any
// state change.
func (o *Orchestrator) SubmitMove(id string, p engine.Player, pieceID, dest int) error {
	s, err := o.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if err := validateCommand(s, p, engine.TurnMove); err != nil {
		s.mu.Unlock()
		return err
	}
	next, err := engine.ApplyMove(s.state, engine.Move{PieceID: pieceID, To: dest})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	prev := s.state
	s.state = next
	s.stopTimerLocked()

	finished := next.Phase == engine.PhaseFinished
	startAI := false
	switch {
	case finished:
		s.closeLocked()
	case s.mode == ModeVersusAI && next.Current == s.aiSide:
		startAI = true
	default:
		o.armRollDeadlineLocked(s)
	}
	notif := notification(prev, next)
	s.mu.Unlock()

	o.emit(notif)
	o.persist(next, finished)
	if finished {
		o.retire(s.id)
	}
	if startAI {
		go o.runAI(s)
	}
	return nil
}

// SubmitResign ends the game in favor of the opponent. Terminal: the game
// accepts no further commands.
func (o *Orchestrator) SubmitResign(id string, p engine.Player) error {
	s, err := o.session(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrNoActiveGame
	}
	if s.mode == ModeVersusAI && p == s.aiSide {
		s.mu.Unlock()
		return ErrNotYourTurn
	}
	next, err := engine.Resign(s.state, p)
	if err != nil {
		s.mu.Unlock()
		return ErrWrongPhase
	}
	prev := s.state
	s.state = next
	s.closeLocked()
	notif := notification(prev, next)
	s.mu.Unlock()

	o.emit(notif)
	o.persist(next, true)
	o.retire(s.id)
	return nil
}

// retire schedules a finished game for removal after the grace period,
// so late readers still see the final state before it is dropped. The
// notifier's per-game fanout state is cleared along with the session.
func (o *Orchestrator) retire(id string) {
	time.AfterFunc(o.cfg.RetireDelay, func() {
		o.Remove(id)
		if d, ok := o.notifier.(GameDropper); ok {
			d.DropGame(id)
		}
	})
}

// Remove drops a session from the registry. Cleanup is idempotent.
func (o *Orchestrator) Remove(id string) {
	o.mu.Lock()
	s, ok := o.sessions[id]
	delete(o.sessions, id)
	o.mu.Unlock()
	if ok {
		s.mu.Lock()
		s.closeLocked()
		s.mu.Unlock()
	}
}

// Close shuts down every session. Safe to call more than once.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	sessions := make([]*session, 0, len(o.sessions))
	for _, s := range o.sessions {
		sessions = append(sessions, s)
	}
	o.sessions = make(map[string]*session)
	o.mu.Unlock()
	for _, s := range sessions {
		s.mu.Lock()
		s.closeLocked()
		s.mu.Unlock()
	}
}

// validateCommand gates a turn command. Callers hold s.mu.
func validateCommand(s *session, p engine.Player, want engine.TurnPhase) error {
	if s.closed {
		return ErrNoActiveGame
	}
	if s.state.Phase != engine.PhasePlaying {
		return ErrWrongPhase
	}
	if s.mode == ModeVersusAI && p == s.aiSide {
		return ErrNotYourTurn
	}
	if p != s.state.Current {
		return ErrNotYourTurn
	}
	if s.state.TurnPhase != want {
		return ErrWrongPhase
	}
	return nil
}

// armRollDeadlineLocked arms the roll deadline for a human turn. Never
// armed for the automated side. Callers hold s.mu.
func (o *Orchestrator) armRollDeadlineLocked(s *session) {
	if s.mode == ModeVersusAI && s.state.Current == s.aiSide {
		return
	}
	s.armTimerLocked(o.cfg.RollTimeout, func(gen uint64) { o.onDeadline(s, gen) })
}

// onDeadline handles deadline expiry. The generation check drops stale
// callbacks; the phase re-validation covers the remaining races between
// expiry and a concurrent manual action.
func (o *Orchestrator) onDeadline(s *session, gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.timerGen {
		s.mu.Unlock()
		return
	}
	s.timer = nil

	switch {
	case s.state.Phase == engine.PhaseInitialRoll && s.mode == ModeTwoPlayer:
		// Auto-roll any side that missed the round deadline.
		if s.roundA == nil {
			v := s.dice.Roll()
			s.roundA = &v
		}
		if s.roundB == nil {
			v := s.dice.Roll()
			s.roundB = &v
		}
		notif, startAI, ok := o.resolveRoundLocked(s)
		state := s.state
		s.mu.Unlock()
		if ok {
			o.emit(notif)
			o.persist(state, false)
			if startAI {
				go o.runAI(s)
			}
		}
	case s.state.Phase == engine.PhasePlaying && s.state.TurnPhase == engine.TurnRoll:
		if s.mode == ModeVersusAI && s.state.Current == s.aiSide {
			s.mu.Unlock()
			return
		}
		notif, startAI, ok := o.rollLocked(s)
		state := s.state
		s.mu.Unlock()
		if ok {
			o.emit(notif)
			o.persist(state, false)
			if startAI {
				go o.runAI(s)
			}
		}
	default:
		s.mu.Unlock()
	}
}

// runAI drives the automated side: roll, then select and apply a move,
// repeating while the turn still belongs to the automated side. Each step
// is paced, and the chain is hard-capped as a safety valve against
// runaway extra-roll sequences. State is re-read after every pacing delay
// so a resignation arriving mid-turn is observed.
func (o *Orchestrator) runAI(s *session) {
	if !s.claimBusy() {
		return
	}
	defer s.releaseBusy()
	for step := 0; step < o.cfg.AIMaxSteps; step++ {
		time.Sleep(o.cfg.AIPacing)
		s.mu.Lock()
		st := s.state
		if s.closed || st.Phase != engine.PhasePlaying || st.Current != s.aiSide {
			s.mu.Unlock()
			return
		}

		var (
			next engine.GameState
			err  error
		)
		if st.TurnPhase == engine.TurnRoll {
			next, err = engine.ApplyRoll(st, s.dice.Roll())
		} else {
			mv, ok := ai.Choose(st, s.aiSide, *st.Roll, s.aiLevel, s.rng)
			if !ok {
				// The engine never enters move phase with an empty set.
				s.mu.Unlock()
				log.Printf("match %s: ai has no move in move phase", s.id)
				return
			}
			next, err = engine.ApplyMove(st, mv)
		}
		if err != nil {
			s.mu.Unlock()
			log.Printf("match %s: ai step: %v", s.id, err)
			return
		}
		s.state = next

		finished := next.Phase == engine.PhaseFinished
		handback := !finished && next.Current != s.aiSide
		switch {
		case finished:
			s.closeLocked()
		case handback:
			o.armRollDeadlineLocked(s)
		}
		notif := notification(st, next)
		s.mu.Unlock()

		o.emit(notif)
		o.persist(next, finished)
		if finished {
			o.retire(s.id)
		}
		if finished || handback {
			return
		}
	}
	log.Printf("match %s: ai loop hit step cap", s.id)
}
