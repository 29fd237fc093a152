package snake

import "termsnake.ai/internal/sim/grid"

// Body is the snake: cells head-first, the direction committed by the last
// Step, the direction buffered for the next Step and a pending growth flag.
type Body struct {
	cells   []grid.Coord
	dir     grid.Dir
	pending grid.Dir
	grow    bool
}

// New lays out length cells straight behind start, away from dir.
func New(start grid.Coord, length int, dir grid.Dir) *Body {
	if length < 1 {
		panic("snake: body length must be >= 1")
	}
	back := dir.Opposite()
	cells := make([]grid.Coord, 0, length+8)
	c := start
	for i := 0; i < length; i++ {
		cells = append(cells, c)
		c = c.Step(back)
	}
	return &Body{cells: cells, dir: dir, pending: dir}
}

func (b *Body) Head() grid.Coord {
	if len(b.cells) == 0 {
		panic("snake: empty body")
	}
	return b.cells[0]
}

// RequestDir buffers d for the next Step. A request for the exact reverse of
// the committed direction is dropped; the buffered direction is never
// consulted, so Up, Left, Up while moving Right is all accepted.
func (b *Body) RequestDir(d grid.Dir) bool {
	if d == b.dir.Opposite() {
		return false
	}
	b.pending = d
	return true
}

func (b *Body) Step() {
	b.dir = b.pending
	next := b.Head().Step(b.dir)

	b.cells = append(b.cells, grid.Coord{})
	copy(b.cells[1:], b.cells[:len(b.cells)-1])
	b.cells[0] = next

	if b.grow {
		b.grow = false
		return
	}
	b.cells = b.cells[:len(b.cells)-1]
}

func (b *Body) Grow() { b.grow = true }

func (b *Body) HitsSelf() bool {
	h := b.Head()
	for _, c := range b.cells[1:] {
		if c == h {
			return true
		}
	}
	return false
}

func (b *Body) Occupies(c grid.Coord) bool {
	for _, bc := range b.cells {
		if bc == c {
			return true
		}
	}
	return false
}

// ClampInto pulls every cell inside w per axis. Cells may end up stacked on
// each other; that is left alone.
func (b *Body) ClampInto(w grid.World) {
	for i := range b.cells {
		b.cells[i] = w.Clamp(b.cells[i])
	}
}

func (b *Body) Len() int            { return len(b.cells) }
func (b *Body) Dir() grid.Dir       { return b.dir }
func (b *Body) Pending() grid.Dir   { return b.pending }
func (b *Body) GrowPending() bool   { return b.grow }
func (b *Body) Cells() []grid.Coord { return append([]grid.Coord(nil), b.cells...) }
