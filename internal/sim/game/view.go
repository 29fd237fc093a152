package game

import "termsnake.ai/internal/sim/grid"

// View is a copy of everything a renderer may look at. Holding on to it
// does not pin or expose the live game.
type View struct {
	Width    int
	Height   int
	Body     []grid.Coord
	Food     grid.Coord
	Score    uint64
	GameOver bool
	Cause    Cause
	Tick     uint64
}

func (v View) Head() grid.Coord { return v.Body[0] }

func (g *Game) Snapshot() View {
	return View{
		Width:    g.world.Width,
		Height:   g.world.Height,
		Body:     g.body.Cells(),
		Food:     g.food,
		Score:    g.score,
		GameOver: g.over,
		Cause:    g.cause,
		Tick:     g.tick,
	}
}
