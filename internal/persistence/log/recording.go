package log

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"termsnake.ai/internal/sim/game"
	"termsnake.ai/internal/sim/grid"
)

const RecordingVersion = 1

const (
	lineHeader = "header"
	lineTick   = "tick"
)

type Header struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	SessionID string `json:"session_id"`
	Seed      uint64 `json:"seed"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	StartedAt string `json:"started_at,omitempty"`
}

// Input is one player action applied between two ticks. Exactly one field is set.
type Input struct {
	Dir    string  `json:"dir,omitempty"`
	Resize *[2]int `json:"resize,omitempty"`
}

func DirInput(d grid.Dir) Input { return Input{Dir: d.String()} }

func ResizeInput(w, h int) Input { return Input{Resize: &[2]int{w, h}} }

// Apply replays the input against g. Rejected direction changes are not errors.
func (in Input) Apply(g *game.Game) error {
	switch {
	case in.Resize != nil:
		return g.Resize(in.Resize[0], in.Resize[1])
	case in.Dir != "":
		d, err := grid.ParseDir(in.Dir)
		if err != nil {
			return err
		}
		g.ChangeDirection(d)
		return nil
	default:
		return fmt.Errorf("empty input")
	}
}

type TickEntry struct {
	Type     string  `json:"type"`
	Tick     uint64  `json:"tick"`
	Inputs   []Input `json:"inputs"`
	Digest   string  `json:"digest"`
	Score    uint64  `json:"score"`
	GameOver bool    `json:"game_over"`
	Cause    string  `json:"cause,omitempty"`
}

func NewSessionID() string { return uuid.NewString() }

// RecordingPath is where a session's journal lives under dir.
func RecordingPath(dir, sessionID string) string {
	return filepath.Join(dir, "recordings", sessionID+".jsonl.zst")
}

// Recorder journals the inputs of one session. Inputs added between ticks are
// attached to the next tick entry.
type Recorder struct {
	w *JSONLZstdWriter

	mu      sync.Mutex
	pending []Input
	ticks   uint64
}

// NewRecorder creates the recording file for g and writes its header.
func NewRecorder(dir, sessionID string, g *game.Game, startedAt time.Time) (*Recorder, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	w := NewJSONLZstdWriter(RecordingPath(dir, sessionID))
	world := g.World()
	h := Header{
		Type:      lineHeader,
		Version:   RecordingVersion,
		SessionID: sessionID,
		Seed:      g.Seed(),
		Width:     world.Width,
		Height:    world.Height,
		StartedAt: startedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := w.Write(h); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("recording: write header: %w", err)
	}
	return &Recorder{w: w}, nil
}

func (r *Recorder) Path() string { return r.w.Path() }

func (r *Recorder) AddInput(in Input) {
	r.mu.Lock()
	r.pending = append(r.pending, in)
	r.mu.Unlock()
}

func (r *Recorder) WriteTick(e TickEntry) error {
	r.mu.Lock()
	e.Type = lineTick
	e.Inputs = r.pending
	if e.Inputs == nil {
		e.Inputs = []Input{}
	}
	r.pending = nil
	r.ticks++
	r.mu.Unlock()
	return r.w.Write(e)
}

func (r *Recorder) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

func (r *Recorder) Close() error { return r.w.Close() }
