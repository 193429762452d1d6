// Package engine implements the rules core for sennet: board geometry,
// move legality, and the turn state machine.
package engine

// Board layout: 30 squares in three rows of ten, traversed boustrophedon.
// Squares 0-9 form row 0 (left to right), 10-19 row 1 (right to left),
// 20-29 row 2 (left to right). A piece that advances past square 29 with
// an exact roll leaves the board (BearOff).
const (
	Rows      = 3
	RowLength = 10
	BoardSize = 30
	BearOff   = 30 // sentinel position for exited pieces
)

// Special squares.
const (
	SquareNetting   = 13 // trap: ends the turn, zeroes pending extra rolls
	SquareBonus     = 14 // grants one pending extra roll
	SquareBonusLate = 25 // grants one pending extra roll
	SquareWaters    = 26 // washes the piece back toward the start
	SquareSafeFirst = 27 // squares 27-29: occupants cannot be captured
)

// PiecesPerPlayer is the number of pieces each side plays with.
const PiecesPerPlayer = 5

// Player identifies one of the two sides.
type Player uint8

const (
	PlayerA Player = iota
	PlayerB
)

// Opponent returns the other side.
func (p Player) Opponent() Player {
	if p == PlayerA {
		return PlayerB
	}
	return PlayerA
}

func (p Player) String() string {
	if p == PlayerA {
		return "A"
	}
	return "B"
}

// Piece is a single playing piece. ID is stable for the lifetime of the
// game; Pos is a board square or BearOff once the piece has exited.
type Piece struct {
	ID    int    `json:"id"`
	Owner Player `json:"owner"`
	Pos   int    `json:"pos"`
}

// Exited reports whether the piece has been borne off.
func (p Piece) Exited() bool { return p.Pos == BearOff }

// RowOf returns the row index of a board square, or -1 for positions that
// are not on the board (including BearOff).
func RowOf(pos int) int {
	if pos < 0 || pos >= BoardSize {
		return -1
	}
	return pos / RowLength
}

// SameRowAdjacent reports whether two squares sit next to each other within
// one row. Squares 9/10 and 19/20 are numerically adjacent but belong to
// different rows, so they are never same-row adjacent.
func SameRowAdjacent(a, b int) bool {
	d := a - b
	if d != 1 && d != -1 {
		return false
	}
	ra, rb := RowOf(a), RowOf(b)
	return ra >= 0 && ra == rb
}

// Index maps occupied board squares to the piece sitting on them. Exited
// pieces do not appear.
type Index map[int]Piece

// BuildIndex creates a position index from a piece list.
func BuildIndex(pieces []Piece) Index {
	idx := make(Index, len(pieces))
	for _, p := range pieces {
		if p.Pos >= 0 && p.Pos < BoardSize {
			idx[p.Pos] = p
		}
	}
	return idx
}

func (idx Index) clone() Index {
	cp := make(Index, len(idx))
	for k, v := range idx {
		cp[k] = v
	}
	return cp
}

// RunLength returns the length of the contiguous run of owner's pieces
// through pos, scanning both directions within the row. It returns 0 when
// pos is unoccupied or occupied by the other side.
func RunLength(idx Index, pos int, owner Player) int {
	p, ok := idx[pos]
	if !ok || p.Owner != owner {
		return 0
	}
	n := 1
	for sq := pos - 1; SameRowAdjacent(sq+1, sq); sq-- {
		q, ok := idx[sq]
		if !ok || q.Owner != owner {
			break
		}
		n++
	}
	for sq := pos + 1; SameRowAdjacent(sq-1, sq); sq++ {
		q, ok := idx[sq]
		if !ok || q.Owner != owner {
			break
		}
		n++
	}
	return n
}

// Protected reports whether the piece on pos is part of a run of two or
// more and therefore cannot be captured.
func Protected(idx Index, pos int) bool {
	p, ok := idx[pos]
	if !ok {
		return false
	}
	return RunLength(idx, pos, p.Owner) >= 2
}

// BlockadeMember reports whether the piece on pos is part of a run of
// three or more. Blockades stop enemy pieces from passing over or landing
// on any square of the run.
func BlockadeMember(idx Index, pos int) bool {
	p, ok := idx[pos]
	if !ok {
		return false
	}
	return RunLength(idx, pos, p.Owner) >= 3
}

// PathBlocked reports whether the path from `from` (exclusive) to `to`
// (inclusive) crosses a square held by a blockade. The moving piece is
// ignored, since it vacates its square as part of the move. A two-piece
// run does not block passage; only runs of three or more do. The same
// check covers the bear-off path when `to` is the last on-board square.
func PathBlocked(idx Index, from, to int, movingID int) bool {
	if from == to {
		return false
	}
	work := idx.clone()
	for sq, p := range work {
		if p.ID == movingID {
			delete(work, sq)
			break
		}
	}
	step := 1
	if to < from {
		step = -1
	}
	for sq := from + step; ; sq += step {
		if BlockadeMember(work, sq) {
			return true
		}
		if sq == to {
			return false
		}
	}
}
