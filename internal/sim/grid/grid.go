package grid

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSize = errors.New("grid: width and height must be >= 1")

type Coord struct {
	X int
	Y int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Step returns the neighbouring cell in direction d. Y grows downward.
func (c Coord) Step(d Dir) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

type Dir uint8

const (
	Up Dir = iota
	Down
	Left
	Right
)

func (d Dir) Opposite() Dir {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

func (d Dir) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

func (d Dir) String() string {
	switch d {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	}
	return fmt.Sprintf("DIR(%d)", uint8(d))
}

func ParseDir(s string) (Dir, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return Up, nil
	case "DOWN":
		return Down, nil
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// World is the playfield bounds. It is only resized from outside; it never
// clamps anything on its own.
type World struct {
	Width  int
	Height int
}

func NewWorld(width, height int) (World, error) {
	if width < 1 || height < 1 {
		return World{}, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, width, height)
	}
	return World{Width: width, Height: height}, nil
}

func (w World) Contains(c Coord) bool {
	return c.X >= 0 && c.X < w.Width && c.Y >= 0 && c.Y < w.Height
}

func (w World) Clamp(c Coord) Coord {
	return Coord{X: clamp(c.X, 0, w.Width-1), Y: clamp(c.Y, 0, w.Height-1)}
}

func (w World) Cells() int { return w.Width * w.Height }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
