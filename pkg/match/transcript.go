package match

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/D3nizG/sennet/pkg/engine"
)

// Transcript is a plain-text record of a game's move log.
// Example:
//
//	; [Game "7d9f1c42"]
//	; [Winner "A"]
//	 1) A 3: 9/12
//	 2) B 2: 0/2*
//	 3) A 6: -- [rolled_6]
//	 3) A 1: 29/off
//
// A move is from/to, "*" marks a capture, "off" marks a bear-off, and
// entries without a move carry their event tag in brackets.
type Transcript struct {
	GameID  string
	Winner  *engine.Player
	Entries []engine.LogEntry
}

var (
	transcriptTagRE  = regexp.MustCompile(`\[(\w+)\s+"([^"]*)"\]`)
	transcriptLineRE = regexp.MustCompile(`^\s*(\d+)\)\s+([AB])\s+(\d):\s+(\S+)(?:\s+\[([a-z_0-9]+)\])?`)
	transcriptMoveRE = regexp.MustCompile(`^(\d+)/(off|\d+)(\*?)$`)
)

// ExportTranscript writes the game's transcript.
func ExportTranscript(w io.Writer, s engine.GameState) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "; [Game %q]\n", s.ID)
	if s.Winner != nil {
		fmt.Fprintf(bw, "; [Winner %q]\n", s.Winner.String())
	}
	fmt.Fprintln(bw)
	for _, e := range s.Log {
		fmt.Fprintf(bw, "%2d) %s %d: %s", e.Turn, e.Player, e.Die, formatTranscriptMove(e.Move))
		if e.Event != engine.EventNone && moveEventTag(e) {
			fmt.Fprintf(bw, " [%s]", e.Event)
		}
		fmt.Fprintln(bw)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}

// moveEventTag filters tags that the move notation already expresses.
func moveEventTag(e engine.LogEntry) bool {
	switch e.Event {
	case engine.EventCapture, engine.EventBearOff:
		return false
	}
	return true
}

func formatTranscriptMove(m *engine.Move) string {
	if m == nil {
		return "--"
	}
	if m.Kind == engine.MoveBearOff {
		return fmt.Sprintf("%d/off", m.From)
	}
	suffix := ""
	if m.Kind == engine.MoveCapture {
		suffix = "*"
	}
	return fmt.Sprintf("%d/%d%s", m.From, m.To, suffix)
}

// ImportTranscript parses a transcript back into its entries.
func ImportTranscript(r io.Reader) (*Transcript, error) {
	scanner := bufio.NewScanner(r)
	t := &Transcript{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ";") {
			if m := transcriptTagRE.FindStringSubmatch(line); m != nil {
				switch strings.ToLower(m[1]) {
				case "game":
					t.GameID = m[2]
				case "winner":
					if p, err := parsePlayer(m[2]); err == nil {
						w := p
						t.Winner = &w
					}
				}
			}
			continue
		}
		m := transcriptLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		turn, _ := strconv.Atoi(m[1])
		player, _ := parsePlayer(m[2])
		die, _ := strconv.Atoi(m[3])
		entry := engine.LogEntry{Turn: turn, Player: player, Die: die, Event: engine.Event(m[5])}
		if mv, ok := parseTranscriptMove(m[4]); ok {
			entry.Move = &mv
			if entry.Event == engine.EventNone {
				switch mv.Kind {
				case engine.MoveCapture:
					entry.Event = engine.EventCapture
				case engine.MoveBearOff:
					entry.Event = engine.EventBearOff
				}
			}
		}
		t.Entries = append(t.Entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	return t, nil
}

func parsePlayer(s string) (engine.Player, error) {
	switch s {
	case "A":
		return engine.PlayerA, nil
	case "B":
		return engine.PlayerB, nil
	}
	return 0, fmt.Errorf("unknown player %q", s)
}

func parseTranscriptMove(token string) (engine.Move, bool) {
	m := transcriptMoveRE.FindStringSubmatch(token)
	if m == nil {
		return engine.Move{}, false
	}
	from, _ := strconv.Atoi(m[1])
	mv := engine.Move{From: from}
	if m[2] == "off" {
		mv.To = engine.BearOff
		mv.Kind = engine.MoveBearOff
		return mv, true
	}
	to, _ := strconv.Atoi(m[2])
	mv.To = to
	if m[3] == "*" {
		mv.Kind = engine.MoveCapture
	}
	mv.Backward = to < from
	return mv, true
}
