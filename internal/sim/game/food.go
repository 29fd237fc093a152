package game

import "termsnake.ai/internal/sim/grid"

const minSampleAttempts = 64

// randFreeCell draws uniform cells until one is off the body. Draws are
// capped; past the cap a row-major scan from a random offset picks the first
// free cell so a crowded or shrunken board cannot spin forever. ok is false
// only when the body covers every cell.
func (g *Game) randFreeCell() (grid.Coord, bool) {
	w := g.world
	attempts := 4 * w.Cells()
	if attempts < minSampleAttempts {
		attempts = minSampleAttempts
	}
	for i := 0; i < attempts; i++ {
		c := grid.Coord{X: g.rng.Intn(w.Width), Y: g.rng.Intn(w.Height)}
		if !g.body.Occupies(c) {
			return c, true
		}
	}
	return g.scanFreeCell()
}

func (g *Game) scanFreeCell() (grid.Coord, bool) {
	w := g.world
	n := w.Cells()
	off := g.rng.Intn(n)
	for i := 0; i < n; i++ {
		k := (off + i) % n
		c := grid.Coord{X: k % w.Width, Y: k / w.Width}
		if !g.body.Occupies(c) {
			return c, true
		}
	}
	return grid.Coord{}, false
}
