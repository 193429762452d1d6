// Package ai selects moves for the automated opponent. All difficulty
// tiers share one heuristic score function; difficulty only changes how a
// move is picked from the scored set.
package ai

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/D3nizG/sennet/pkg/engine"
)

// Difficulty selects how the scored candidate set is sampled.
type Difficulty int

const (
	Easy   Difficulty = iota // uniform random legal move
	Medium                   // argmax over noised scores
	Hard                     // deterministic argmax
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseDifficulty maps a difficulty name to its tier.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

// Score weights. Tuned by self-play; relative order matters more than the
// absolute values.
const (
	bearOffScore    = 1000.0
	captureScore    = 400.0
	progressWeight  = 10.0
	backwardPenalty = 250.0
	watersPenalty   = 500.0
	nettingPenalty  = 200.0
	safeBonus       = 120.0
	bonusSquare     = 80.0
	pairBonus       = 60.0
	blockadeBonus   = 150.0
	mediumNoise     = 90.0
)

// Choose picks a move for player from the legal set for the given die.
// It reports false when there is no legal move (the turn must be skipped).
// A single legal move is returned unconditionally.
func Choose(s engine.GameState, player engine.Player, die int, d Difficulty, rng *rand.Rand) (engine.Move, bool) {
	moves := engine.LegalMoves(s, player, die)
	if len(moves) == 0 {
		return engine.Move{}, false
	}
	if len(moves) == 1 {
		return moves[0], true
	}
	if d == Easy {
		return moves[rng.Intn(len(moves))], true
	}

	idx := engine.BuildIndex(s.Pieces)
	scores := make([]float64, len(moves))
	for i, mv := range moves {
		scores[i] = Score(idx, player, mv)
	}
	if d == Medium {
		for i := range scores {
			scores[i] += (rng.Float64()*2 - 1) * mediumNoise
		}
	}
	return moves[floats.MaxIdx(scores)], true
}

// Score rates one candidate move against the current board index. Higher
// is better for the moving player.
func Score(idx engine.Index, player engine.Player, mv engine.Move) float64 {
	if mv.Kind == engine.MoveBearOff {
		return bearOffScore
	}

	score := float64(mv.To-mv.From)*progressWeight + float64(mv.To)
	if mv.Backward {
		score -= backwardPenalty
	}
	if mv.Kind == engine.MoveCapture {
		// Deeper captures throw the opponent further back.
		score += captureScore + float64(mv.To)
	}

	switch mv.To {
	case engine.SquareWaters:
		score -= watersPenalty
	case engine.SquareNetting:
		score -= nettingPenalty
	case engine.SquareBonus, engine.SquareBonusLate:
		score += bonusSquare
	}
	if mv.To >= engine.SquareSafeFirst {
		score += safeBonus
	}

	if run := landedRun(idx, player, mv); run >= 3 {
		score += blockadeBonus
	} else if run == 2 {
		score += pairBonus
	}
	return score
}

// landedRun computes the same-owner run length at the destination after
// the move, with the mover lifted from its origin square.
func landedRun(idx engine.Index, player engine.Player, mv engine.Move) int {
	work := make(engine.Index, len(idx)+1)
	for sq, p := range idx {
		if p.ID == mv.PieceID {
			continue
		}
		work[sq] = p
	}
	work[mv.To] = engine.Piece{ID: mv.PieceID, Owner: player, Pos: mv.To}
	return engine.RunLength(work, mv.To, player)
}
