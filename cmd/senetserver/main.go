// Command senetserver runs the Senet game server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/D3nizG/sennet/internal/store"
	"github.com/D3nizG/sennet/pkg/ai"
	"github.com/D3nizG/sennet/pkg/api"
	"github.com/D3nizG/sennet/pkg/engine"
	"github.com/D3nizG/sennet/pkg/match"
)

const version = "0.1.0"

// envConfig holds the environment overrides. Flags take their defaults from
// here, so SENNET_PORT=9000 and -port 9000 mean the same thing and the flag
// wins when both are set.
type envConfig struct {
	Host        string        `env:"SENNET_HOST" envDefault:"localhost"`
	Port        int           `env:"SENNET_PORT" envDefault:"8080"`
	DBPath      string        `env:"SENNET_DB" envDefault:"data/senet.db"`
	RollTimeout time.Duration `env:"SENNET_ROLL_TIMEOUT" envDefault:"30s"`
}

func main() {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		log.Fatalf("Failed to parse environment: %v", err)
	}

	// Command line flags
	host := flag.String("host", ec.Host, "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", ec.Port, "Port to listen on")
	dbPath := flag.String("db", ec.DBPath, "Path to the SQLite game database")
	rollTimeout := flag.Duration("roll-timeout", ec.RollTimeout, "Deadline before an idle player's roll is made for them")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	aiPacing := flag.Duration("ai-pacing", 900*time.Millisecond, "Delay between automated opponent actions")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("Senet Server v%s\n", version)
		os.Exit(0)
	}

	// Print startup banner
	log.Printf("Senet Server v%s", version)
	log.Printf("Opening game database at %s...", *dbPath)

	db, err := store.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	hub := api.NewHub()

	matchCfg := match.DefaultConfig()
	matchCfg.RollTimeout = *rollTimeout
	matchCfg.AIPacing = *aiPacing

	orch := match.New(matchCfg, hub, db)

	// Reinstall games that were interrupted mid-play. The store keeps only
	// the game core, so recovered games come back as two-player sessions.
	ids, err := db.Unfinished()
	if err != nil {
		log.Fatalf("Failed to list unfinished games: %v", err)
	}
	for _, id := range ids {
		snapshot, _, err := db.Load(id)
		if err != nil {
			log.Printf("Skipping unrecoverable game %s: %v", id, err)
			continue
		}
		state, err := engine.RestoreSnapshot(snapshot)
		if err != nil {
			log.Printf("Skipping corrupt snapshot for game %s: %v", id, err)
			continue
		}
		if err := orch.Resume(state, match.ModeTwoPlayer, engine.PlayerA, ai.Medium); err != nil {
			log.Printf("Skipping game %s: %v", id, err)
			continue
		}
		log.Printf("Resumed game %s (turn %d)", id, state.Turn)
	}

	// Create server config
	config := api.DefaultConfig()
	config.Host = *host
	config.Port = *port
	config.ReadTimeout = *readTimeout

	// Create and start server
	server := api.NewServer(orch, hub, config, version)

	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
