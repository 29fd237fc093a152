package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"termsnake.ai/internal/persistence/indexdb"
	persistlog "termsnake.ai/internal/persistence/log"
)

func TestFormatSession(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := indexdb.Session{
		ID:        "abc",
		Width:     39,
		Height:    19,
		StartedAt: now.Add(-3 * time.Minute),
		EndedAt:   now.Add(-1 * time.Minute),
		Ticks:     1200,
		Score:     14,
		Reason:    "game_over",
		Cause:     "self",
	}
	got := formatSession(s, now)
	for _, want := range []string{"abc", "3 minutes ago", "2m0s", "score=14", "ticks=1,200", "39x19", "game_over/self"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}

	s.EndedAt = time.Time{}
	s.Reason, s.Cause = "", ""
	got = formatSession(s, now)
	if !strings.Contains(got, "unfinished") || !strings.Contains(got, " - ") {
		t.Fatalf("unfinished session: %q", got)
	}
	if sessionJSON(s).EndedAt != "" {
		t.Fatalf("ended_at should be empty for an unfinished session")
	}
}

func TestPrintInspect(t *testing.T) {
	rec := &persistlog.Recording{
		Header: persistlog.Header{SessionID: "s1", Version: 1, Seed: 0xDEADBEEF, Width: 10, Height: 8},
		Ticks: []persistlog.TickEntry{
			{Tick: 1, Inputs: []persistlog.Input{{Dir: "UP"}}},
			{Tick: 2, Score: 1, GameOver: true, Cause: "boundary"},
		},
	}
	var buf bytes.Buffer
	printInspect(&buf, rec, 2048)
	out := buf.String()
	for _, want := range []string{"session:  s1", "0xdeadbeef", "world:    10x8", "2.0 kB", "inputs:   1", "game over (boundary) at tick 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFilterMetrics(t *testing.T) {
	in := "# HELP snake_ticks_total x\nsnake_ticks_total 3\ngo_goroutines 9\nsnake_score 1\n"
	var buf bytes.Buffer
	if err := filterMetrics(&buf, strings.NewReader(in), false); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if buf.String() != "snake_ticks_total 3\nsnake_score 1\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestShowSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.sqlite")
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	idx.RecordSessionStart(indexdb.SessionStart{ID: "s9", Seed: 0xDEADBEEF, Width: 20, Height: 10, StartedAt: now.Add(-time.Hour), RecordingPath: "/r/s9.jsonl.zst"})
	idx.RecordSessionEnd(indexdb.SessionEnd{ID: "s9", EndedAt: now.Add(-59 * time.Minute), Score: 5, Ticks: 600, Length: 9, Reason: "quit"})
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	idx, err = indexdb.OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	var buf bytes.Buffer
	if err := showSession(ctx, &buf, idx, "s9", now); err != nil {
		t.Fatalf("showSession: %v", err)
	}
	for _, want := range []string{"s9", "1 hour ago", "score=5", "0xdeadbeef", "length:    9", "recording: /r/s9.jsonl.zst"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %q in:\n%s", want, buf.String())
		}
	}

	if err := showSession(ctx, &buf, idx, "nope", now); !errors.Is(err, indexdb.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
