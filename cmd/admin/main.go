package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"termsnake.ai/internal/persistence/indexdb"
	persistlog "termsnake.ai/internal/persistence/log"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "sessions":
			sessionsCmd(os.Args[2:])
			return
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "metrics":
			metricsCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

// listCmd prints the recordings on disk, newest first.
func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	dir := filepath.Join(*dataDir, "recordings")
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	type file struct {
		name string
		size int64
		mod  time.Time
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl.zst") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{name: e.Name(), size: info.Size(), mod: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })
	now := time.Now()
	for _, f := range files {
		fmt.Printf("%-48s %10s  %s\n", f.name, humanize.Bytes(uint64(f.size)), humanize.RelTime(f.mod, now, "ago", "from now"))
	}
}

func sessionsCmd(args []string) {
	fs := flag.NewFlagSet("sessions", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "sqlite db path (default: <data>/index/sessions.sqlite)")
	limit := fs.Int("limit", 20, "result limit")
	asJSON := fs.Bool("json", false, "print one JSON object per session")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		path = filepath.Join(*dataDir, "index", "sessions.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer idx.Close()

	ctx := context.Background()
	if fs.NArg() > 0 {
		if err := showSession(ctx, os.Stdout, idx, strings.TrimSpace(fs.Arg(0)), time.Now()); err != nil {
			fmt.Fprintln(os.Stderr, "session:", err)
			os.Exit(1)
		}
		return
	}
	list, err := idx.ListSessions(ctx, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		for _, s := range list {
			_ = enc.Encode(sessionJSON(s))
		}
		return
	}
	now := time.Now()
	for _, s := range list {
		fmt.Println(formatSession(s, now))
	}
	if best, err := idx.BestScore(ctx); err == nil && len(list) > 0 {
		fmt.Printf("best score: %s\n", humanize.Comma(int64(best)))
	}
}

// showSession prints one indexed session; unknown ids return
// indexdb.ErrSessionNotFound.
func showSession(ctx context.Context, w io.Writer, idx *indexdb.SQLiteIndex, id string, now time.Time) error {
	s, err := idx.GetSession(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, formatSession(s, now))
	fmt.Fprintf(w, "seed:      %d (%#x)\n", s.Seed, s.Seed)
	fmt.Fprintf(w, "length:    %d\n", s.Length)
	if s.RecordingPath != "" {
		fmt.Fprintf(w, "recording: %s\n", s.RecordingPath)
	}
	return nil
}

type sessionRow struct {
	ID            string `json:"id"`
	Seed          uint64 `json:"seed"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	StartedAt     string `json:"started_at"`
	EndedAt       string `json:"ended_at,omitempty"`
	Ticks         uint64 `json:"ticks"`
	Score         uint64 `json:"score"`
	Length        int    `json:"length"`
	Reason        string `json:"reason"`
	Cause         string `json:"cause,omitempty"`
	RecordingPath string `json:"recording_path,omitempty"`
}

func sessionJSON(s indexdb.Session) sessionRow {
	r := sessionRow{
		ID:            s.ID,
		Seed:          s.Seed,
		Width:         s.Width,
		Height:        s.Height,
		StartedAt:     s.StartedAt.Format(time.RFC3339),
		Ticks:         s.Ticks,
		Score:         s.Score,
		Length:        s.Length,
		Reason:        s.Reason,
		Cause:         s.Cause,
		RecordingPath: s.RecordingPath,
	}
	if !s.EndedAt.IsZero() {
		r.EndedAt = s.EndedAt.Format(time.RFC3339)
	}
	return r
}

func formatSession(s indexdb.Session, now time.Time) string {
	outcome := s.Reason
	if outcome == "" {
		outcome = "unfinished"
	}
	if s.Cause != "" {
		outcome += "/" + s.Cause
	}
	dur := "-"
	if d := s.Duration(); d > 0 {
		dur = d.Round(time.Second).String()
	}
	return fmt.Sprintf("%s  %-14s %6s  score=%-5s ticks=%-7s %dx%d  %s",
		s.ID,
		humanize.RelTime(s.StartedAt, now, "ago", "from now"),
		dur,
		humanize.Comma(int64(s.Score)),
		humanize.Comma(int64(s.Ticks)),
		s.Width, s.Height,
		outcome,
	)
}

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	recPath := fs.String("recording", "", "recording path (or pass a session id as argument)")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*recPath)
	if path == "" && fs.NArg() > 0 {
		path = persistlog.RecordingPath(*dataDir, strings.TrimSpace(fs.Arg(0)))
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "missing -recording or session id")
		os.Exit(2)
	}
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "stat:", err)
		os.Exit(1)
	}
	rec, err := persistlog.ReadRecordingFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read recording:", err)
		os.Exit(1)
	}
	printInspect(os.Stdout, rec, uint64(info.Size()))
}

func printInspect(w io.Writer, rec *persistlog.Recording, size uint64) {
	h := rec.Header
	fin := rec.Final()
	fmt.Fprintf(w, "session:  %s\n", h.SessionID)
	fmt.Fprintf(w, "version:  %d\n", h.Version)
	fmt.Fprintf(w, "seed:     %d (%#x)\n", h.Seed, h.Seed)
	fmt.Fprintf(w, "world:    %dx%d\n", h.Width, h.Height)
	if h.StartedAt != "" {
		fmt.Fprintf(w, "started:  %s\n", h.StartedAt)
	}
	fmt.Fprintf(w, "size:     %s\n", humanize.Bytes(size))
	fmt.Fprintf(w, "ticks:    %s\n", humanize.Comma(int64(len(rec.Ticks))))
	fmt.Fprintf(w, "inputs:   %s\n", humanize.Comma(int64(rec.InputCount())))
	fmt.Fprintf(w, "score:    %d\n", fin.Score)
	if fin.GameOver {
		fmt.Fprintf(w, "outcome:  game over (%s) at tick %d\n", fin.Cause, fin.Tick)
	} else {
		fmt.Fprintf(w, "outcome:  running or quit at tick %d\n", fin.Tick)
	}
}
