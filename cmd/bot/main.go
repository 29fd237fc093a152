package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"

	"termsnake.ai/internal/observability"
	persistlog "termsnake.ai/internal/persistence/log"
	"termsnake.ai/internal/session"
	"termsnake.ai/internal/sim/game"
)

func main() {
	var (
		games    = flag.Int("games", 10, "number of games to play")
		seed     = flag.Uint64("seed", 1, "seed of the first game; game i uses seed+i")
		width    = flag.Int("width", 30, "world width in cells")
		height   = flag.Int("height", 15, "world height in cells")
		maxTicks = flag.Uint64("max_ticks", 5000, "quit a game after this many ticks (0: no limit)")
		recDir   = flag.String("record_dir", "", "write recordings under <dir>/recordings (empty to disable)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	collector, err := observability.NewSessionCollector(prometheus.NewRegistry())
	if err != nil {
		logger.Fatalf("metrics: %v", err)
	}

	var best, total uint64
	start := time.Now()
	for i := 0; i < *games && ctx.Err() == nil; i++ {
		res, path, err := playGame(ctx, botConfig{
			Seed:     *seed + uint64(i),
			Width:    *width,
			Height:   *height,
			MaxTicks: *maxTicks,
			RecDir:   *recDir,
			Observer: collector,
		})
		if err != nil {
			logger.Fatalf("game %d: %v", i, err)
		}
		collector.ObserveSessionEnd(string(res.Reason), res.Score)
		total += res.Score
		if res.Score > best {
			best = res.Score
		}
		line := fmt.Sprintf("game %d seed=%d reason=%s score=%d length=%d ticks=%s", i, *seed+uint64(i), res.Reason, res.Score, res.Length, humanize.Comma(int64(res.Ticks)))
		if res.Cause != game.CauseNone {
			line += " cause=" + string(res.Cause)
		}
		if path != "" {
			line += " recording=" + path
		}
		logger.Print(line)
	}
	if *games > 0 {
		logger.Printf("done: games=%d best=%d mean=%.2f elapsed=%s", *games, best, float64(total)/float64(*games), time.Since(start).Round(time.Millisecond))
	}
}

type botConfig struct {
	Seed     uint64
	Width    int
	Height   int
	MaxTicks uint64
	RecDir   string
	Observer session.Observer
}

func playGame(ctx context.Context, cfg botConfig) (session.Result, string, error) {
	g, err := game.New(cfg.Width, cfg.Height, cfg.Seed)
	if err != nil {
		return session.Result{}, "", err
	}

	var (
		rec  session.Recorder
		file *persistlog.Recorder
	)
	if cfg.RecDir != "" {
		file, err = persistlog.NewRecorder(cfg.RecDir, "", g, time.Now())
		if err != nil {
			return session.Result{}, "", err
		}
		rec = file
	}

	sess := session.New(session.Config{
		Game:     g,
		Events:   &autopilot{g: g, maxTicks: cfg.MaxTicks},
		Renderer: nullRenderer{},
		Recorder: rec,
		Observer: cfg.Observer,
	})
	res, err := sess.Run(ctx)
	path := ""
	if file != nil {
		path = file.Path()
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return res, path, err
}
