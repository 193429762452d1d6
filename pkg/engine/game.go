package engine

import "fmt"

// Phase is the lifecycle phase of a game. Transitions are one-way:
// initial_roll -> playing -> finished.
type Phase uint8

const (
	PhaseInitialRoll Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialRoll:
		return "initial_roll"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// TurnPhase is the sub-phase within a playing turn.
type TurnPhase uint8

const (
	TurnRoll TurnPhase = iota
	TurnMove
)

func (t TurnPhase) String() string {
	if t == TurnRoll {
		return "roll"
	}
	return "move"
}

// Event tags state transitions for the move log and the notification
// contract.
type Event string

const (
	EventNone     Event = ""
	EventRolled6  Event = "rolled_6"
	EventBlocked  Event = "blocked"
	EventCapture  Event = "capture"
	EventBearOff  Event = "bear_off"
	EventNetting  Event = "house_of_netting"
	EventWaters   Event = "waters_of_chaos"
	EventBonus    Event = "bonus_square"
	EventResigned Event = "resigned"
)

// LogEntry is one ordered entry of the append-only move log.
type LogEntry struct {
	Turn   int    `json:"turn"`
	Player Player `json:"player"`
	Die    int    `json:"die,omitempty"`
	Move   *Move  `json:"move,omitempty"`
	Event  Event  `json:"event,omitempty"`
}

// FaceoffRound records both sides' rolls for one initial-roll round.
// A nil entry means that side has not rolled yet.
type FaceoffRound struct {
	A *int `json:"a,omitempty"`
	B *int `json:"b,omitempty"`
}

// Faceoff tracks the initial-roll history. The faceoff is decided when
// exactly one side rolls a 1 in a round.
type Faceoff struct {
	Rounds  []FaceoffRound `json:"rounds"`
	Decided bool           `json:"decided"`
	Winner  Player         `json:"winner,omitempty"`
}

// GameState is the complete state of one game. Transitions never mutate a
// state in place: every Apply* function returns a fresh value, so holders
// of an earlier snapshot are unaffected.
type GameState struct {
	ID         string     `json:"id"`
	Phase      Phase      `json:"phase"`
	Pieces     []Piece    `json:"pieces"`
	Current    Player     `json:"current"`
	TurnPhase  TurnPhase  `json:"turn_phase"`
	Roll       *int       `json:"roll,omitempty"`
	Turn       int        `json:"turn"`
	Log        []LogEntry `json:"log"`
	Winner     *Player    `json:"winner,omitempty"`
	ExtraRolls int        `json:"extra_rolls"`
	Faceoff    Faceoff    `json:"faceoff"`
}

// NewGame returns the initial state for a game: no pieces placed, waiting
// on the initial-roll faceoff.
func NewGame(id string) GameState {
	return GameState{
		ID:    id,
		Phase: PhaseInitialRoll,
	}
}

// Clone returns a deep copy of the state.
func (s GameState) Clone() GameState {
	ns := s
	ns.Pieces = make([]Piece, len(s.Pieces))
	copy(ns.Pieces, s.Pieces)
	ns.Log = make([]LogEntry, len(s.Log))
	for i, e := range s.Log {
		if e.Move != nil {
			mv := *e.Move
			e.Move = &mv
		}
		ns.Log[i] = e
	}
	if s.Roll != nil {
		r := *s.Roll
		ns.Roll = &r
	}
	if s.Winner != nil {
		w := *s.Winner
		ns.Winner = &w
	}
	ns.Faceoff.Rounds = make([]FaceoffRound, len(s.Faceoff.Rounds))
	for i, r := range s.Faceoff.Rounds {
		if r.A != nil {
			a := *r.A
			r.A = &a
		}
		if r.B != nil {
			b := *r.B
			r.B = &b
		}
		ns.Faceoff.Rounds[i] = r
	}
	return ns
}

// BorneOff returns how many of p's pieces have exited the board.
func (s GameState) BorneOff(p Player) int {
	n := 0
	for _, pc := range s.Pieces {
		if pc.Owner == p && pc.Exited() {
			n++
		}
	}
	return n
}

// Winner returns the winning player once all of their pieces are borne
// off. It reports false for every other state.
func Winner(s GameState) (Player, bool) {
	for _, p := range []Player{PlayerA, PlayerB} {
		if len(s.Pieces) > 0 && s.BorneOff(p) == PiecesPerPlayer {
			return p, true
		}
	}
	return 0, false
}

// ResolveFaceoff applies one faceoff round. The round is appended to the
// history; the faceoff is decided iff exactly one side rolled a 1. On
// decision the pieces are placed (faceoff winner on the odd squares 1..9,
// the other side on the even squares 0..8) and normal play begins with the
// winner on roll.
func ResolveFaceoff(s GameState, rollA, rollB int) (GameState, error) {
	if s.Phase != PhaseInitialRoll {
		return s, fmt.Errorf("resolve faceoff in phase %s: %w", s.Phase, ErrContractViolation)
	}
	if rollA < 1 || rollA > 6 || rollB < 1 || rollB > 6 {
		return s, fmt.Errorf("faceoff rolls %d/%d: %w", rollA, rollB, ErrInvalidDie)
	}
	ns := s.Clone()
	a, b := rollA, rollB
	ns.Faceoff.Rounds = append(ns.Faceoff.Rounds, FaceoffRound{A: &a, B: &b})

	if (rollA == 1) == (rollB == 1) {
		// Tie, double 1, or neither: another round runs.
		return ns, nil
	}
	winner := PlayerB
	if rollA == 1 {
		winner = PlayerA
	}
	ns.Pieces = placePieces(winner)
	ns.Faceoff.Decided = true
	ns.Faceoff.Winner = winner
	ns.Phase = PhasePlaying
	ns.Current = winner
	ns.TurnPhase = TurnRoll
	ns.Turn = 1
	return ns, nil
}

// placePieces lays out the ten opening pieces on squares 0..9, the faceoff
// winner on the odd squares. Piece IDs equal their starting square.
func placePieces(winner Player) []Piece {
	pieces := make([]Piece, 0, 2*PiecesPerPlayer)
	for sq := 0; sq < 2*PiecesPerPlayer; sq++ {
		owner := winner.Opponent()
		if sq%2 == 1 {
			owner = winner
		}
		pieces = append(pieces, Piece{ID: sq, Owner: owner, Pos: sq})
	}
	return pieces
}

// ApplyRoll applies a die roll for the current player.
//
// A 6 never moves: the same player stays in roll phase and re-rolls. Any
// other value either enters move phase, or, when the player has no legal
// move, skips the turn entirely.
func ApplyRoll(s GameState, die int) (GameState, error) {
	if s.Phase != PhasePlaying || s.TurnPhase != TurnRoll {
		return s, fmt.Errorf("apply roll in phase %s/%s: %w", s.Phase, s.TurnPhase, ErrContractViolation)
	}
	if die < 1 || die > 6 {
		return s, fmt.Errorf("die %d: %w", die, ErrInvalidDie)
	}
	ns := s.Clone()
	if die == 6 {
		ns.Log = append(ns.Log, LogEntry{Turn: ns.Turn, Player: ns.Current, Die: die, Event: EventRolled6})
		return ns, nil
	}
	if len(LegalMoves(s, s.Current, die)) == 0 {
		ns.Log = append(ns.Log, LogEntry{Turn: ns.Turn, Player: ns.Current, Die: die, Event: EventBlocked})
		ns.Current = ns.Current.Opponent()
		ns.Turn++
		ns.ExtraRolls = 0
		return ns, nil
	}
	d := die
	ns.Roll = &d
	ns.TurnPhase = TurnMove
	return ns, nil
}

// ApplyMove applies a proposed move for the current player. The proposal
// is matched by piece ID and destination against a freshly computed legal
// set; anything else is rejected with ErrIllegalMove and the state is
// returned unchanged.
func ApplyMove(s GameState, mv Move) (GameState, error) {
	if s.Phase != PhasePlaying || s.TurnPhase != TurnMove || s.Roll == nil {
		return s, fmt.Errorf("apply move in phase %s/%s: %w", s.Phase, s.TurnPhase, ErrContractViolation)
	}
	die := *s.Roll

	var applied Move
	found := false
	for _, legal := range LegalMoves(s, s.Current, die) {
		if legal.PieceID == mv.PieceID && legal.To == mv.To {
			applied = legal
			found = true
			break
		}
	}
	if !found {
		return s, fmt.Errorf("piece %d to %d: %w", mv.PieceID, mv.To, ErrIllegalMove)
	}

	ns := s.Clone()
	actor := ns.Current
	turnNo := ns.Turn

	mover := -1
	for i := range ns.Pieces {
		if ns.Pieces[i].ID == applied.PieceID {
			mover = i
			break
		}
	}

	event := EventNone
	switch applied.Kind {
	case MoveBearOff:
		ns.Pieces[mover].Pos = BearOff
		event = EventBearOff
	case MoveCapture:
		// Capture is a swap: the captured piece is sent back to the
		// mover's origin square.
		for i := range ns.Pieces {
			if ns.Pieces[i].Pos == applied.To && ns.Pieces[i].Owner != actor {
				ns.Pieces[i].Pos = applied.From
				break
			}
		}
		ns.Pieces[mover].Pos = applied.To
		event = EventCapture
	default:
		ns.Pieces[mover].Pos = applied.To
	}

	// Special-square effects apply to on-board destinations only, in
	// fixed precedence: waters, netting, bonus. The two traps force the
	// turn to end and wipe pending extras, overriding bonus dice.
	forcedEnd := false
	if applied.Kind != MoveBearOff {
		switch applied.To {
		case SquareWaters:
			ns.Pieces[mover].Pos = washDestination(BuildIndex(ns.Pieces))
			forcedEnd = true
			ns.ExtraRolls = 0
			event = EventWaters
		case SquareNetting:
			forcedEnd = true
			ns.ExtraRolls = 0
			event = EventNetting
		case SquareBonus, SquareBonusLate:
			ns.ExtraRolls++
			event = EventBonus
		}
	}

	ns.Roll = nil
	ns.TurnPhase = TurnRoll
	if forcedEnd {
		ns.Current = actor.Opponent()
		ns.Turn++
	} else {
		if die == 1 || die == 4 || die == 5 {
			ns.ExtraRolls++
		}
		if ns.ExtraRolls > 0 {
			ns.ExtraRolls--
		} else {
			ns.Current = actor.Opponent()
			ns.Turn++
		}
	}

	entry := applied
	ns.Log = append(ns.Log, LogEntry{Turn: turnNo, Player: actor, Die: die, Move: &entry, Event: event})

	if ns.BorneOff(actor) == PiecesPerPlayer {
		w := actor
		ns.Winner = &w
		ns.Phase = PhaseFinished
	}
	return ns, nil
}

// washDestination picks the square a piece washed by the waters of chaos
// lands on: square 13 if free, else 0, else the first free square
// scanning upward from 1.
func washDestination(idx Index) int {
	if _, ok := idx[SquareNetting]; !ok {
		return SquareNetting
	}
	if _, ok := idx[0]; !ok {
		return 0
	}
	for sq := 1; sq < BoardSize; sq++ {
		if _, ok := idx[sq]; !ok {
			return sq
		}
	}
	return 0 // unreachable: ten pieces cannot fill thirty squares
}

// Resign ends the game immediately in favor of the opponent.
func Resign(s GameState, p Player) (GameState, error) {
	if s.Phase == PhaseFinished {
		return s, fmt.Errorf("resign after finish: %w", ErrContractViolation)
	}
	ns := s.Clone()
	w := p.Opponent()
	ns.Winner = &w
	ns.Phase = PhaseFinished
	ns.Log = append(ns.Log, LogEntry{Turn: ns.Turn, Player: p, Event: EventResigned})
	return ns, nil
}
