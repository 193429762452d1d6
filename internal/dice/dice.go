// Package dice provides the die-roll sources used by the game core: a
// cryptographically strong source for live authoritative play and a
// seed-reproducible source for tests, replays, and self-play.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
)

// Sides is the number of faces on a game die.
const Sides = 6

// Source produces uniform die values in 1..Sides.
type Source interface {
	Roll() int
}

type cryptoSource struct{}

// NewCrypto returns a Source backed by the operating system's CSPRNG.
// Rolls are never client-supplied and never predictable.
func NewCrypto() Source {
	return cryptoSource{}
}

func (cryptoSource) Roll() int {
	// Rejection sampling keeps the distribution uniform.
	for {
		var buf [1]byte
		if _, err := crand.Read(buf[:]); err != nil {
			panic("dice: entropy source failed: " + err.Error())
		}
		v := int(buf[0] & 0x07)
		if v < Sides {
			return v + 1
		}
	}
}

type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded returns a reproducible Source: the same seed always yields the
// same roll sequence. Safe for concurrent use.
func NewSeeded(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *seededSource) Roll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(Sides) + 1
}

// RandomSeed draws a seed from the CSPRNG, for callers that want a
// reproducible source without choosing the seed themselves.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("dice: entropy source failed: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
