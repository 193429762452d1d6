package match

import "time"

// Config sets the orchestrator's timing and safety parameters.
type Config struct {
	RollTimeout         time.Duration // human roll deadline before auto-roll
	FaceoffTimeout      time.Duration // shared deadline per interactive faceoff round
	FaceoffRestartDelay time.Duration // pause before an undecided round restarts
	AIPacing            time.Duration // delay between automated steps
	AIMaxSteps          int           // hard cap on one AI turn chain
	RetireDelay         time.Duration // grace before a finished game is dropped
}

// DefaultConfig returns the production timing parameters.
func DefaultConfig() Config {
	return Config{
		RollTimeout:         30 * time.Second,
		FaceoffTimeout:      20 * time.Second,
		FaceoffRestartDelay: 1200 * time.Millisecond,
		AIPacing:            900 * time.Millisecond,
		AIMaxSteps:          64,
		RetireDelay:         time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RollTimeout <= 0 {
		c.RollTimeout = d.RollTimeout
	}
	if c.FaceoffTimeout <= 0 {
		c.FaceoffTimeout = d.FaceoffTimeout
	}
	if c.FaceoffRestartDelay <= 0 {
		c.FaceoffRestartDelay = d.FaceoffRestartDelay
	}
	if c.AIPacing <= 0 {
		c.AIPacing = d.AIPacing
	}
	if c.AIMaxSteps <= 0 {
		c.AIMaxSteps = d.AIMaxSteps
	}
	if c.RetireDelay <= 0 {
		c.RetireDelay = d.RetireDelay
	}
	return c
}
