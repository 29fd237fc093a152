package session

import (
	"context"
	"errors"
	"testing"
	"time"

	persistlog "termsnake.ai/internal/persistence/log"
	"termsnake.ai/internal/sim/game"
	"termsnake.ai/internal/sim/grid"
	"termsnake.ai/internal/transport/term"
)

type scriptedEvents struct {
	evs []term.Event
}

func (s *scriptedEvents) Recv(ctx context.Context) (term.Event, error) {
	if len(s.evs) == 0 {
		return term.Event{}, term.ErrEventLoopClosed
	}
	ev := s.evs[0]
	s.evs = s.evs[1:]
	return ev, nil
}

type captureRenderer struct {
	draws   int
	last    game.View
	elapsed []int64
}

func (r *captureRenderer) Draw(v game.View, elapsedSecs int64) {
	r.draws++
	r.last = v
	r.elapsed = append(r.elapsed, elapsedSecs)
}

type resyncRenderer struct {
	captureRenderer
	resyncs int
}

func (r *resyncRenderer) Resync() { r.resyncs++ }

type memRecorder struct {
	pending []persistlog.Input
	ticks   []persistlog.TickEntry
	err     error
}

func (m *memRecorder) AddInput(in persistlog.Input) { m.pending = append(m.pending, in) }

func (m *memRecorder) WriteTick(e persistlog.TickEntry) error {
	if m.err != nil {
		return m.err
	}
	e.Inputs = m.pending
	m.pending = nil
	m.ticks = append(m.ticks, e)
	return nil
}

type countObserver struct {
	ticks, accepted, rejected, resizes int
}

func (o *countObserver) ObserveTick(game.TickResult, game.View) { o.ticks++ }
func (o *countObserver) ObserveTurn(ok bool) {
	if ok {
		o.accepted++
	} else {
		o.rejected++
	}
}
func (o *countObserver) ObserveResize() { o.resizes++ }

func newSession(t *testing.T, evs ...term.Event) (*Session, *game.Game, *captureRenderer) {
	t.Helper()
	g, err := game.New(20, 10, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	r := &captureRenderer{}
	s := New(Config{
		Game:       g,
		Events:     &scriptedEvents{evs: evs},
		Renderer:   r,
		HeaderRows: 3,
	})
	return s, g, r
}

func TestRun_QuitKeys(t *testing.T) {
	for _, ev := range []term.Event{term.RunePress('q'), term.RunePress('Q'), term.KeyPress(term.KeyEscape), term.KeyPress(term.KeyInterrupt)} {
		s, _, r := newSession(t, term.Tick(), ev, term.Tick())
		res, err := s.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if res.Reason != ReasonQuit {
			t.Fatalf("reason: got %q want quit", res.Reason)
		}
		if res.Ticks != 1 {
			t.Fatalf("ticks: got %d want 1", res.Ticks)
		}
		// Initial draw plus one after the tick.
		if r.draws != 2 {
			t.Fatalf("draws: got %d want 2", r.draws)
		}
	}
}

func TestRun_GameOverAtBoundary(t *testing.T) {
	evs := make([]term.Event, 15)
	for i := range evs {
		evs[i] = term.Tick()
	}
	s, g, _ := newSession(t, evs...)
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// Head starts at x=10 on a 20-wide board facing right.
	if res.Reason != ReasonGameOver || res.Cause != game.CauseBoundary {
		t.Fatalf("result: %+v", res)
	}
	if res.Ticks != 10 || !g.Over() {
		t.Fatalf("ticks: got %d over=%v", res.Ticks, g.Over())
	}
}

func TestRun_DirectionKeysAndRecording(t *testing.T) {
	g, err := game.New(20, 10, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	rec := &memRecorder{}
	obs := &countObserver{}
	r := &captureRenderer{}
	s := New(Config{
		Game: g,
		Events: &scriptedEvents{evs: []term.Event{
			term.KeyPress(term.KeyLeft), // reversal, rejected
			term.RunePress('w'),
			term.Tick(),
			term.RunePress('x'),
			term.Tick(),
			term.RunePress('q'),
		}},
		Renderer:   r,
		Recorder:   rec,
		Observer:   obs,
		HeaderRows: 3,
	})
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Reason != ReasonQuit {
		t.Fatalf("reason: %q", res.Reason)
	}
	if g.Head() != (grid.Coord{X: 10, Y: 3}) {
		t.Fatalf("head: got %v want (10,3)", g.Head())
	}
	if obs.accepted != 1 || obs.rejected != 1 || obs.ticks != 2 {
		t.Fatalf("observer: %+v", obs)
	}
	if len(rec.ticks) != 2 {
		t.Fatalf("recorded ticks: %d", len(rec.ticks))
	}
	in := rec.ticks[0].Inputs
	if len(in) != 2 || in[0].Dir != "LEFT" || in[1].Dir != "UP" {
		t.Fatalf("first tick inputs: %+v", in)
	}
	if len(rec.ticks[1].Inputs) != 0 {
		t.Fatalf("second tick inputs: %+v", rec.ticks[1].Inputs)
	}
	if rec.ticks[1].Digest != g.Digest() {
		t.Fatalf("digest mismatch")
	}
	if r.last.Head() != g.Head() {
		t.Fatalf("last view head %v, game head %v", r.last.Head(), g.Head())
	}
}

func TestRun_Resize(t *testing.T) {
	obs := &countObserver{}
	rec := &memRecorder{}
	g, err := game.New(20, 10, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	s := New(Config{
		Game:       g,
		Events:     &scriptedEvents{evs: []term.Event{term.Resize(30, 13), term.Tick(), term.KeyPress(term.KeyEscape)}},
		Renderer:   &captureRenderer{},
		Recorder:   rec,
		Observer:   obs,
		HeaderRows: 3,
	})
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if w := g.World(); w.Width != 14 || w.Height != 8 {
		t.Fatalf("world: got %dx%d want 14x8", w.Width, w.Height)
	}
	if obs.resizes != 1 {
		t.Fatalf("resizes: %d", obs.resizes)
	}
	in := rec.ticks[0].Inputs
	if len(in) != 1 || in[0].Resize == nil || *in[0].Resize != [2]int{14, 8} {
		t.Fatalf("resize input: %+v", in)
	}
}

func TestRun_TinyTerminalKeepsOneCell(t *testing.T) {
	s, g, _ := newSession(t, term.Resize(1, 1), term.RunePress('q'))
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if w := g.World(); w.Width != 1 || w.Height != 1 {
		t.Fatalf("world: got %dx%d want 1x1", w.Width, w.Height)
	}
}

func TestRun_Errors(t *testing.T) {
	boom := errors.New("tty gone")

	s, _, _ := newSession(t, term.Tick(), term.Event{Kind: term.EventError, Err: boom})
	res, err := s.Run(context.Background())
	if !errors.Is(err, boom) || res.Reason != ReasonError {
		t.Fatalf("event error: res=%+v err=%v", res, err)
	}

	s, _, _ = newSession(t, term.Tick())
	if _, err := s.Run(context.Background()); !errors.Is(err, term.ErrEventLoopClosed) {
		t.Fatalf("closed: got %v", err)
	}

	g, _ := game.New(20, 10, 1)
	disk := errors.New("disk full")
	s = New(Config{
		Game:     g,
		Events:   &scriptedEvents{evs: []term.Event{term.Tick()}},
		Renderer: &captureRenderer{},
		Recorder: &memRecorder{err: disk},
	})
	if _, err := s.Run(context.Background()); !errors.Is(err, disk) {
		t.Fatalf("recorder: got %v", err)
	}
}

func TestRun_ElapsedSeconds(t *testing.T) {
	g, _ := game.New(20, 10, 1)
	base := time.Unix(1000, 0)
	calls := 0
	r := &captureRenderer{}
	s := New(Config{
		Game:     g,
		Events:   &scriptedEvents{evs: []term.Event{term.Tick(), term.Tick(), term.RunePress('q')}},
		Renderer: r,
		Now: func() time.Time {
			calls++
			return base.Add(time.Duration(calls-1) * 1500 * time.Millisecond)
		},
	})
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// start=0s; draws at 1.5s, 3.0s, 4.5s.
	want := []int64{1, 3, 4}
	if len(r.elapsed) != len(want) {
		t.Fatalf("draws: %v", r.elapsed)
	}
	for i := range want {
		if r.elapsed[i] != want[i] {
			t.Fatalf("elapsed[%d]: got %d want %d", i, r.elapsed[i], want[i])
		}
	}
}

func TestRun_ResizeResyncsRenderer(t *testing.T) {
	g, err := game.New(20, 10, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	r := &resyncRenderer{}
	s := New(Config{
		Game:       g,
		Events:     &scriptedEvents{evs: []term.Event{term.Tick(), term.Resize(40, 20), term.Resize(30, 13), term.RunePress('q')}},
		Renderer:   r,
		HeaderRows: 3,
	})
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.resyncs != 2 {
		t.Fatalf("resyncs: got %d want 2", r.resyncs)
	}
	// Initial draw, tick, two resizes.
	if r.draws != 4 {
		t.Fatalf("draws: got %d want 4", r.draws)
	}
}
