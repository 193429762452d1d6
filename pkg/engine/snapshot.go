package engine

import (
	"encoding/json"
	"fmt"
)

// Snapshot serializes the state for persistence or transport. The format
// is plain JSON; a round trip through Snapshot and RestoreSnapshot yields
// a state with identical piece positions, phase, and move log.
func Snapshot(s GameState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot game %s: %w", s.ID, err)
	}
	return data, nil
}

// RestoreSnapshot rebuilds a GameState from a Snapshot payload.
func RestoreSnapshot(data []byte) (GameState, error) {
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return GameState{}, fmt.Errorf("restore snapshot: %w", err)
	}
	return s, nil
}
