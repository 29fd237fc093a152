package main

import (
	"context"

	"termsnake.ai/internal/sim/game"
	"termsnake.ai/internal/sim/grid"
	"termsnake.ai/internal/transport/term"
)

// autopilot feeds a session the same events a player would produce: one
// steering key, then one tick, until the tick budget runs out.
type autopilot struct {
	g        *game.Game
	maxTicks uint64
	tickNext bool
}

func (a *autopilot) Recv(ctx context.Context) (term.Event, error) {
	if err := ctx.Err(); err != nil {
		return term.Event{}, err
	}
	if a.maxTicks != 0 && a.g.Tick() >= a.maxTicks {
		return term.RunePress('q'), nil
	}
	if a.tickNext {
		a.tickNext = false
		return term.Tick(), nil
	}
	a.tickNext = true
	return term.KeyPress(keyFor(chooseDir(a.g))), nil
}

func keyFor(d grid.Dir) term.Key {
	switch d {
	case grid.Up:
		return term.KeyUp
	case grid.Down:
		return term.KeyDown
	case grid.Left:
		return term.KeyLeft
	default:
		return term.KeyRight
	}
}

type nullRenderer struct{}

func (nullRenderer) Draw(game.View, int64) {}
