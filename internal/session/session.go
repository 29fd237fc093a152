package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	persistlog "termsnake.ai/internal/persistence/log"
	"termsnake.ai/internal/sim/game"
	"termsnake.ai/internal/transport/term"
)

type Events interface {
	Recv(ctx context.Context) (term.Event, error)
}

// Renderer gets a copy of the game state for the duration of one call.
type Renderer interface {
	Draw(v game.View, elapsedSecs int64)
}

// Resyncer is implemented by renderers that must repaint everything after
// the terminal changes size.
type Resyncer interface {
	Resync()
}

type Recorder interface {
	AddInput(in persistlog.Input)
	WriteTick(e persistlog.TickEntry) error
}

type Observer interface {
	ObserveTick(res game.TickResult, v game.View)
	ObserveTurn(accepted bool)
	ObserveResize()
}

type Reason string

const (
	ReasonQuit     Reason = "quit"
	ReasonGameOver Reason = "game_over"
	ReasonError    Reason = "error"
)

type Result struct {
	Reason Reason
	Score  uint64
	Ticks  uint64
	Length int
	Cause  game.Cause
}

type Config struct {
	Game       *game.Game
	Events     Events
	Renderer   Renderer
	Recorder   Recorder // optional
	Observer   Observer // optional
	Logger     *log.Logger
	HeaderRows int
	Now        func() time.Time
}

// Session is the control loop. It is the only code that mutates the game.
type Session struct {
	game       *game.Game
	events     Events
	renderer   Renderer
	rec        Recorder
	obs        Observer
	logger     *log.Logger
	headerRows int
	now        func() time.Time
}

func New(cfg Config) *Session {
	s := &Session{
		game:       cfg.Game,
		events:     cfg.Events,
		renderer:   cfg.Renderer,
		rec:        cfg.Recorder,
		obs:        cfg.Observer,
		logger:     cfg.Logger,
		headerRows: cfg.HeaderRows,
		now:        cfg.Now,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard, "", 0)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Run handles events until the player quits, the game ends or input fails.
// Game over is a normal result, not an error.
func (s *Session) Run(ctx context.Context) (Result, error) {
	start := s.now()
	s.draw(start)

	for {
		ev, err := s.events.Recv(ctx)
		if err != nil {
			return s.result(ReasonError), fmt.Errorf("session: recv: %w", err)
		}

		switch ev.Kind {
		case term.EventError:
			return s.result(ReasonError), fmt.Errorf("session: input: %w", ev.Err)

		case term.EventTick:
			res := s.game.Update()
			if err := s.record(res); err != nil {
				return s.result(ReasonError), err
			}
			if s.obs != nil {
				s.obs.ObserveTick(res, s.game.Snapshot())
			}
			if res.Ate {
				s.logger.Printf("tick=%d ate food score=%d len=%d", res.Tick, s.game.Score(), s.game.Len())
			}
			if res.Died {
				s.logger.Printf("tick=%d game over cause=%s score=%d", res.Tick, res.Cause, s.game.Score())
				return s.result(ReasonGameOver), nil
			}

		case term.EventKey:
			if isQuit(ev) {
				s.logger.Printf("tick=%d quit score=%d", s.game.Tick(), s.game.Score())
				return s.result(ReasonQuit), nil
			}
			d, ok := dirForKey(ev)
			if !ok {
				break
			}
			accepted := s.game.ChangeDirection(d)
			if s.rec != nil {
				s.rec.AddInput(persistlog.DirInput(d))
			}
			if s.obs != nil {
				s.obs.ObserveTurn(accepted)
			}

		case term.EventResize:
			w, h := term.WorldFromTerminal(ev.Cols, ev.Rows, s.headerRows)
			if err := s.game.Resize(w, h); err != nil {
				return s.result(ReasonError), fmt.Errorf("session: %w", err)
			}
			if s.rec != nil {
				s.rec.AddInput(persistlog.ResizeInput(w, h))
			}
			if s.obs != nil {
				s.obs.ObserveResize()
			}
			if rs, ok := s.renderer.(Resyncer); ok {
				rs.Resync()
			}
			s.logger.Printf("resize term=%dx%d world=%dx%d", ev.Cols, ev.Rows, w, h)
		}

		s.draw(start)
	}
}

func (s *Session) record(res game.TickResult) error {
	if s.rec == nil || !res.Moved {
		return nil
	}
	err := s.rec.WriteTick(persistlog.TickEntry{
		Tick:     res.Tick,
		Digest:   s.game.Digest(),
		Score:    s.game.Score(),
		GameOver: s.game.Over(),
		Cause:    string(res.Cause),
	})
	if err != nil {
		return fmt.Errorf("session: record tick %d: %w", res.Tick, err)
	}
	return nil
}

func (s *Session) draw(start time.Time) {
	elapsed := int64(s.now().Sub(start) / time.Second)
	s.renderer.Draw(s.game.Snapshot(), elapsed)
}

func (s *Session) result(r Reason) Result {
	return Result{
		Reason: r,
		Score:  s.game.Score(),
		Ticks:  s.game.Tick(),
		Length: s.game.Len(),
		Cause:  s.game.Cause(),
	}
}
