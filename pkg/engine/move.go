package engine

// MoveKind classifies a legal move.
type MoveKind uint8

const (
	MoveNormal MoveKind = iota
	MoveCapture
	MoveBearOff
)

func (k MoveKind) String() string {
	switch k {
	case MoveNormal:
		return "normal"
	case MoveCapture:
		return "capture"
	case MoveBearOff:
		return "bear_off"
	default:
		return "unknown"
	}
}

// Move is a single piece relocation produced by LegalMoves. A Move is a
// proposal: ApplyMove re-validates it against a freshly computed legal set
// before applying it.
type Move struct {
	PieceID  int      `json:"piece_id"`
	From     int      `json:"from"`
	To       int      `json:"to"` // BearOff for exits
	Kind     MoveKind `json:"kind"`
	Backward bool     `json:"backward,omitempty"`
}

// LegalMoves enumerates the legal moves for player with the given die.
// Forward moves are preferred: the backward set is computed only when no
// forward move exists (the forced-backward rule). An empty result means
// the turn is blocked. Move order follows piece discovery order; callers
// needing determinism must sort.
func LegalMoves(s GameState, player Player, die int) []Move {
	idx := BuildIndex(s.Pieces)
	if fwd := candidateMoves(s.Pieces, idx, player, die, false); len(fwd) > 0 {
		return fwd
	}
	return candidateMoves(s.Pieces, idx, player, die, true)
}

func candidateMoves(pieces []Piece, idx Index, player Player, die int, backward bool) []Move {
	var moves []Move
	for _, p := range pieces {
		if p.Owner != player || p.Exited() {
			continue
		}
		target := p.Pos + die
		if backward {
			target = p.Pos - die
			if target < 0 {
				continue
			}
		}
		if target > BoardSize {
			// Overshoot: bear-off requires an exact roll.
			continue
		}
		if target == BoardSize {
			if backward || RowOf(p.Pos) != Rows-1 {
				continue
			}
			if PathBlocked(idx, p.Pos, BoardSize-1, p.ID) {
				continue
			}
			moves = append(moves, Move{PieceID: p.ID, From: p.Pos, To: BearOff, Kind: MoveBearOff})
			continue
		}
		if PathBlocked(idx, p.Pos, target, p.ID) {
			continue
		}
		occ, occupied := idx[target]
		if !occupied {
			moves = append(moves, Move{PieceID: p.ID, From: p.Pos, To: target, Kind: MoveNormal, Backward: backward})
			continue
		}
		if occ.Owner == player {
			continue // no stacking
		}
		if target >= SquareSafeFirst {
			continue // safe squares shelter their occupant
		}
		if Protected(idx, target) {
			continue
		}
		moves = append(moves, Move{PieceID: p.ID, From: p.Pos, To: target, Kind: MoveCapture, Backward: backward})
	}
	return moves
}
