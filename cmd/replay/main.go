package main

import (
	"flag"
	"fmt"
	"os"

	persistlog "termsnake.ai/internal/persistence/log"
	"termsnake.ai/internal/sim/game"
)

func main() {
	var (
		recPath = flag.String("recording", "", "path to <session>.jsonl.zst")
		toTick  = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *recPath == "" {
		fmt.Fprintln(os.Stderr, "missing -recording")
		os.Exit(2)
	}

	rec, err := persistlog.ReadRecordingFile(*recPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read recording:", err)
		os.Exit(1)
	}
	h := rec.Header
	fmt.Printf("recording v%d session=%s seed=%d world=%dx%d ticks=%d inputs=%d\n",
		h.Version, h.SessionID, h.Seed, h.Width, h.Height, len(rec.Ticks), rec.InputCount())

	sum, err := replayRecording(rec, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: ticks=%d score=%d over=%v\n", sum.Checked, sum.Score, sum.Over)
}

type replaySummary struct {
	Checked uint64
	Score   uint64
	Over    bool
}

// replayRecording rebuilds the game from the header and steps it once per
// entry, applying that entry's inputs first. Every digest must match.
func replayRecording(rec *persistlog.Recording, toTick uint64) (replaySummary, error) {
	var sum replaySummary
	h := rec.Header
	if h.Version != persistlog.RecordingVersion {
		return sum, fmt.Errorf("unsupported recording version %d", h.Version)
	}
	g, err := game.New(h.Width, h.Height, h.Seed)
	if err != nil {
		return sum, err
	}

	for _, entry := range rec.Ticks {
		if toTick != 0 && entry.Tick > toTick {
			break
		}
		for i, in := range entry.Inputs {
			if err := in.Apply(g); err != nil {
				return sum, fmt.Errorf("tick %d input %d: %w", entry.Tick, i, err)
			}
		}
		res := g.Update()
		if !res.Moved {
			return sum, fmt.Errorf("tick %d recorded after game over", entry.Tick)
		}
		if res.Tick != entry.Tick {
			return sum, fmt.Errorf("tick mismatch: stepped=%d entry=%d", res.Tick, entry.Tick)
		}
		if got := g.Digest(); got != entry.Digest {
			return sum, fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", entry.Tick, got, entry.Digest)
		}
		if g.Score() != entry.Score || g.Over() != entry.GameOver {
			return sum, fmt.Errorf("state mismatch at tick %d: score=%d over=%v want score=%d over=%v",
				entry.Tick, g.Score(), g.Over(), entry.Score, entry.GameOver)
		}
		sum.Checked++
	}
	sum.Score = g.Score()
	sum.Over = g.Over()
	return sum, nil
}
