package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"termsnake.ai/internal/observability"
	persistlog "termsnake.ai/internal/persistence/log"
	"termsnake.ai/internal/session"
	"termsnake.ai/internal/sim/game"
	"termsnake.ai/internal/sim/tuning"
	"termsnake.ai/internal/transport/term"
)

func main() {
	var (
		tuningPath  = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml (missing file: built-in defaults)")
		seed        = flag.Uint64("seed", 0, "rng seed (default: tuning seed)")
		dataDir     = flag.String("data", "./data", "runtime data directory")
		record      = flag.Bool("record", true, "write a session recording to <data>/recordings")
		disableDB   = flag.Bool("disable_db", false, "disable the sqlite session index")
		metricsAddr = flag.String("metrics_addr", "", "prometheus listen address (empty to disable)")
		logPath     = flag.String("log", "", "log file (default: <data>/snake.log, \"-\" to disable)")
	)
	flag.Parse()

	logOut, closeLog, err := openLogOutput(*logPath, *dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open log:", err)
		os.Exit(1)
	}
	logger := log.New(logOut, "[snake] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if !os.IsNotExist(err) {
			closeLog()
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
		logger.Printf("tuning not found (%s); using defaults", *tuningPath)
		tune = tuning.Defaults()
	}
	if flagWasSet("seed") {
		tune.Seed = *seed
	}

	code := run(runConfig{
		Tuning:      tune,
		DataDir:     *dataDir,
		Record:      *record,
		DisableDB:   *disableDB,
		MetricsAddr: strings.TrimSpace(*metricsAddr),
	}, logger)
	closeLog()
	os.Exit(code)
}

type runConfig struct {
	Tuning      tuning.Tuning
	DataDir     string
	Record      bool
	DisableDB   bool
	MetricsAddr string
}

func run(cfg runConfig, logger *log.Logger) int {
	ctx, cancel := signalContext()
	defer cancel()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "terminal:", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "terminal init:", err)
		return 1
	}
	finished := false
	fini := func() {
		if !finished {
			finished = true
			screen.Fini()
		}
	}
	defer fini()
	screen.HideCursor()

	cols, rows := screen.Size()
	w, h := term.WorldFromTerminal(cols, rows, cfg.Tuning.HeaderRows)
	g, err := game.New(w, h, cfg.Tuning.Seed)
	if err != nil {
		fini()
		fmt.Fprintln(os.Stderr, "game:", err)
		return 1
	}

	sessionID := persistlog.NewSessionID()
	startedAt := time.Now()
	logger.Printf("session %s start seed=%#x world=%dx%d term=%dx%d", sessionID, g.Seed(), w, h, cols, rows)

	var (
		rec     session.Recorder
		recFile *persistlog.Recorder
	)
	if cfg.Record {
		recFile, err = persistlog.NewRecorder(cfg.DataDir, sessionID, g, startedAt)
		if err != nil {
			fini()
			fmt.Fprintln(os.Stderr, "recording:", err)
			return 1
		}
		rec = recFile
	}

	idx := openIndex(cfg.DataDir, cfg.DisableDB, logger)
	if idx != nil {
		defer idx.Close()
		path := ""
		if recFile != nil {
			path = recFile.Path()
		}
		idx.RecordSessionStart(indexStart(sessionID, g, startedAt, path))
	}

	var (
		obs       session.Observer
		collector *observability.SessionCollector
	)
	if cfg.MetricsAddr != "" {
		collector, err = observability.NewSessionCollector(nil)
		if err != nil {
			fini()
			fmt.Fprintln(os.Stderr, "metrics:", err)
			return 1
		}
		obs = collector
		stop := serveMetrics(cfg.MetricsAddr, collector, logger)
		defer stop()
	}

	events := term.StartEventLoop(ctx, term.NewScreenPoller(screen), cfg.Tuning.TickDuration(), cfg.Tuning.PollWait(), cfg.Tuning.EventBuffer)
	sess := session.New(session.Config{
		Game:       g,
		Events:     events,
		Renderer:   term.NewRenderer(screen, cfg.Tuning.HeaderRows),
		Recorder:   rec,
		Observer:   obs,
		Logger:     logger,
		HeaderRows: cfg.Tuning.HeaderRows,
	})

	res, runErr := sess.Run(ctx)
	fini()

	if errors.Is(runErr, context.Canceled) {
		res.Reason = session.ReasonQuit
		runErr = nil
	}
	if recFile != nil {
		if err := recFile.Close(); err != nil && runErr == nil {
			runErr = fmt.Errorf("close recording: %w", err)
		}
	}
	if idx != nil {
		idx.RecordSessionEnd(indexEnd(sessionID, res, time.Now()))
		closeIndex(idx, logger)
	}
	collector.ObserveSessionEnd(string(res.Reason), res.Score)

	logger.Print(sessionEndLine(sessionID, res, recFile))
	if runErr != nil {
		logger.Printf("session %s error: %v", sessionID, runErr)
		fmt.Fprintln(os.Stderr, runErr)
		return 1
	}

	switch res.Reason {
	case session.ReasonGameOver:
		fmt.Printf("game over (%s): score=%d length=%d ticks=%d\n", res.Cause, res.Score, res.Length, res.Ticks)
	default:
		fmt.Printf("bye: score=%d length=%d ticks=%d\n", res.Score, res.Length, res.Ticks)
	}
	if recFile != nil {
		fmt.Printf("recording: %s\n", recFile.Path())
	}
	return 0
}

func openLogOutput(path, dataDir string) (io.Writer, func(), error) {
	path = strings.TrimSpace(path)
	if path == "-" {
		return io.Discard, func() {}, nil
	}
	if path == "" {
		path = filepath.Join(dataDir, "snake.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func sessionEndLine(id string, res session.Result, rec *persistlog.Recorder) string {
	line := fmt.Sprintf("session %s end reason=%s score=%d ticks=%d", id, res.Reason, res.Score, res.Ticks)
	if rec != nil {
		line += fmt.Sprintf(" recorded_ticks=%d", rec.Ticks())
	}
	return line
}
