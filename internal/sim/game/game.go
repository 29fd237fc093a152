package game

import (
	"fmt"

	"golang.org/x/exp/rand"

	"termsnake.ai/internal/sim/grid"
	"termsnake.ai/internal/sim/snake"
)

const (
	StartLength = 4
	StartDir    = grid.Right
)

type Cause string

const (
	CauseNone     Cause = ""
	CauseBoundary Cause = "boundary"
	CauseSelf     Cause = "self"
)

// TickResult reports what a single Update did.
type TickResult struct {
	Tick  uint64
	Moved bool
	Ate   bool
	Died  bool
	Cause Cause
}

// Game is the single-player simulation. It is not safe for concurrent use:
// one control loop owns it and mutates it once per event.
type Game struct {
	world grid.World
	body  *snake.Body
	food  grid.Coord
	score uint64
	over  bool
	cause Cause
	tick  uint64

	seed uint64
	rng  *rand.Rand
}

func New(width, height int, seed uint64) (*Game, error) {
	w, err := grid.NewWorld(width, height)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g := &Game{
		world: w,
		body:  snake.New(grid.Coord{X: width / 2, Y: height / 2}, StartLength, StartDir),
		seed:  seed,
		rng:   rand.New(rand.NewSource(seed)),
	}
	if c, ok := g.randFreeCell(); ok {
		g.food = c
	}
	return g, nil
}

func (g *Game) Update() TickResult {
	if g.over {
		return TickResult{Tick: g.tick}
	}
	g.tick++
	res := TickResult{Tick: g.tick, Moved: true}

	g.body.Step()
	head := g.body.Head()

	switch {
	case !g.world.Contains(head):
		g.cause = CauseBoundary
	case g.body.HitsSelf():
		g.cause = CauseSelf
	}
	if g.cause != CauseNone {
		g.over = true
		res.Died = true
		res.Cause = g.cause
		return res
	}

	if head == g.food {
		g.body.Grow()
		g.score++
		res.Ate = true
		if c, ok := g.randFreeCell(); ok {
			g.food = c
		}
	}
	return res
}

// ChangeDirection buffers a turn for the next tick. It reports whether the
// request was kept; reversals and requests after game over are dropped.
func (g *Game) ChangeDirection(d grid.Dir) bool {
	if g.over {
		return false
	}
	return g.body.RequestDir(d)
}

// Resize swaps in new bounds and clamps the body and food per axis. The
// result is not re-validated: cells may overlap and food may sit under the
// body until the next tick sorts it out.
func (g *Game) Resize(width, height int) error {
	w, err := grid.NewWorld(width, height)
	if err != nil {
		return fmt.Errorf("game: resize: %w", err)
	}
	g.world = w
	g.body.ClampInto(w)
	g.food = w.Clamp(g.food)
	return nil
}

func (g *Game) World() grid.World  { return g.world }
func (g *Game) Food() grid.Coord   { return g.food }
func (g *Game) Score() uint64      { return g.score }
func (g *Game) Over() bool         { return g.over }
func (g *Game) Cause() Cause       { return g.cause }
func (g *Game) Tick() uint64       { return g.tick }
func (g *Game) Seed() uint64       { return g.seed }
func (g *Game) Head() grid.Coord   { return g.body.Head() }
func (g *Game) Len() int           { return g.body.Len() }
func (g *Game) Dir() grid.Dir      { return g.body.Dir() }
func (g *Game) Body() []grid.Coord { return g.body.Cells() }

// Growing reports whether the next step keeps the tail.
func (g *Game) Growing() bool { return g.body.GrowPending() }
