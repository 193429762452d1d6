// Command selfplay pits the built-in opponents against each other and
// reports win rates and game lengths per difficulty pairing.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/D3nizG/sennet/internal/dice"
	"github.com/D3nizG/sennet/pkg/ai"
	"github.com/D3nizG/sennet/pkg/engine"
)

// turnCap stops runaway games. Senet games normally finish well under 200
// turns, so hitting the cap indicates an engine or opponent bug.
const turnCap = 2000

func main() {
	games := flag.Int("games", 100, "Games per difficulty pairing")
	seed := flag.Int64("seed", 0, "Base random seed (0 picks one)")
	levelA := flag.String("a", "", "Difficulty for player A (easy, medium, hard; empty runs all pairings)")
	levelB := flag.String("b", "", "Difficulty for player B when -a is set")
	flag.Parse()

	base := *seed
	if base == 0 {
		base = dice.RandomSeed()
	}

	fmt.Println("=== Senet Self-Play Harness ===")
	fmt.Printf("Base seed: %d\n", base)
	fmt.Println()

	pairings := allPairings()
	if *levelA != "" {
		da, err := ai.ParseDifficulty(*levelA)
		if err != nil {
			log.Fatalf("Bad -a value: %v", err)
		}
		db, err := ai.ParseDifficulty(*levelB)
		if err != nil {
			log.Fatalf("Bad -b value: %v", err)
		}
		pairings = [][2]ai.Difficulty{{da, db}}
	}

	for _, p := range pairings {
		runPairing(p[0], p[1], *games, base)
	}
}

func allPairings() [][2]ai.Difficulty {
	levels := []ai.Difficulty{ai.Easy, ai.Medium, ai.Hard}
	var out [][2]ai.Difficulty
	for _, a := range levels {
		for _, b := range levels {
			out = append(out, [2]ai.Difficulty{a, b})
		}
	}
	return out
}

func runPairing(da, db ai.Difficulty, games int, base int64) {
	fmt.Printf("%s vs %s (%d games)\n", da, db, games)

	winsA := 0
	totalTurns := 0
	minTurns, maxTurns := turnCap, 0
	for i := 0; i < games; i++ {
		winner, turns, err := playGame(fmt.Sprintf("selfplay-%d", i), da, db, base+int64(i))
		if err != nil {
			fmt.Printf("   FAIL: game %d: %v\n", i, err)
			os.Exit(1)
		}
		if winner == engine.PlayerA {
			winsA++
		}
		totalTurns += turns
		if turns < minTurns {
			minTurns = turns
		}
		if turns > maxTurns {
			maxTurns = turns
		}
	}

	fmt.Printf("   A wins: %d (%.1f%%)\n", winsA, 100*float64(winsA)/float64(games))
	fmt.Printf("   Turns: avg %.1f, min %d, max %d\n",
		float64(totalTurns)/float64(games), minTurns, maxTurns)
	fmt.Println()
}

func playGame(id string, da, db ai.Difficulty, seed int64) (engine.Player, int, error) {
	src := dice.NewSeeded(seed)
	rng := rand.New(rand.NewSource(seed))
	s := engine.NewGame(id)

	for s.Phase == engine.PhaseInitialRoll {
		var err error
		s, err = engine.ResolveFaceoff(s, src.Roll(), src.Roll())
		if err != nil {
			return 0, 0, err
		}
	}

	for steps := 0; s.Phase == engine.PhasePlaying; steps++ {
		if steps > turnCap {
			return 0, 0, fmt.Errorf("game %s exceeded %d steps", id, turnCap)
		}
		if s.TurnPhase == engine.TurnRoll {
			var err error
			s, err = engine.ApplyRoll(s, src.Roll())
			if err != nil {
				return 0, 0, err
			}
			continue
		}
		level := da
		if s.Current == engine.PlayerB {
			level = db
		}
		mv, ok := ai.Choose(s, s.Current, *s.Roll, level, rng)
		if !ok {
			return 0, 0, fmt.Errorf("game %s: no move in move phase", id)
		}
		var err error
		s, err = engine.ApplyMove(s, mv)
		if err != nil {
			return 0, 0, err
		}
	}

	winner, ok := engine.Winner(s)
	if !ok {
		return 0, 0, fmt.Errorf("game %s finished without a winner", id)
	}
	return winner, s.Turn, nil
}
