package engine

import "errors"

// ErrContractViolation marks a transition invoked outside its required
// phase. External commands are pre-validated before they reach the engine,
// so this error always indicates a caller bug, never bad user input.
var ErrContractViolation = errors.New("engine: contract violation")

// ErrIllegalMove is returned when a proposed move is not in the freshly
// recomputed legal set. The game state is left unchanged.
var ErrIllegalMove = errors.New("engine: illegal move")

// ErrInvalidDie is returned for die values outside 1..6.
var ErrInvalidDie = errors.New("engine: die out of range")
