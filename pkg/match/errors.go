package match

import "errors"

// Command rejections. All are surfaced to the submitter without mutating
// game state.
var (
	// ErrNoActiveGame means the game id is unknown, or the game has
	// finished and accepts no further commands.
	ErrNoActiveGame = errors.New("match: no active game")

	// ErrNotYourTurn rejects a command from the side not on turn.
	ErrNotYourTurn = errors.New("match: not your turn")

	// ErrWrongPhase rejects a command that does not fit the game's
	// current phase.
	ErrWrongPhase = errors.New("match: wrong phase")

	// ErrAlreadyRolled rejects a second faceoff submission within the
	// same round.
	ErrAlreadyRolled = errors.New("match: already rolled this round")

	// ErrGameExists rejects creating a game under an id already in use.
	ErrGameExists = errors.New("match: game already exists")

	// ErrInternal is reported when the engine rejects a pre-validated
	// command. It signals an orchestrator bug, not bad input; the game
	// itself stays intact.
	ErrInternal = errors.New("match: internal error")
)
