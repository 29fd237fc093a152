package grid

import (
	"errors"
	"testing"
)

func TestWorldContains(t *testing.T) {
	w := World{Width: 5, Height: 3}
	cases := []struct {
		c    Coord
		want bool
	}{
		{Coord{0, 0}, true},
		{Coord{4, 2}, true},
		{Coord{5, 2}, false},
		{Coord{4, 3}, false},
		{Coord{-1, 0}, false},
		{Coord{0, -1}, false},
	}
	for _, tc := range cases {
		if got := w.Contains(tc.c); got != tc.want {
			t.Fatalf("Contains(%v)=%v want %v", tc.c, got, tc.want)
		}
	}
}

func TestWorldClampPerAxis(t *testing.T) {
	w := World{Width: 4, Height: 2}
	if got := w.Clamp(Coord{9, 1}); got != (Coord{3, 1}) {
		t.Fatalf("clamp x: got %v", got)
	}
	if got := w.Clamp(Coord{-3, 7}); got != (Coord{0, 1}) {
		t.Fatalf("clamp both: got %v", got)
	}
	if got := w.Clamp(Coord{2, 0}); got != (Coord{2, 0}) {
		t.Fatalf("inside coord changed: got %v", got)
	}
}

func TestNewWorldRejectsEmptySizes(t *testing.T) {
	for _, sz := range [][2]int{{0, 1}, {1, 0}, {-2, 5}} {
		if _, err := NewWorld(sz[0], sz[1]); !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("NewWorld(%d,%d): expected ErrInvalidSize, got %v", sz[0], sz[1], err)
		}
	}
	w, err := NewWorld(1, 1)
	if err != nil || w.Cells() != 1 {
		t.Fatalf("NewWorld(1,1) = %+v, %v", w, err)
	}
}

func TestDirOppositeAndDelta(t *testing.T) {
	for _, d := range []Dir{Up, Down, Left, Right} {
		if d.Opposite().Opposite() != d {
			t.Fatalf("%v: opposite not an involution", d)
		}
		dx, dy := d.Delta()
		ox, oy := d.Opposite().Delta()
		if dx+ox != 0 || dy+oy != 0 {
			t.Fatalf("%v: opposite delta does not cancel", d)
		}
		if abs(dx)+abs(dy) != 1 {
			t.Fatalf("%v: delta must move exactly one cell", d)
		}
		parsed, err := ParseDir(d.String())
		if err != nil || parsed != d {
			t.Fatalf("ParseDir(%q) = %v, %v", d.String(), parsed, err)
		}
	}
	if got := (Coord{2, 2}).Step(Up); got != (Coord{2, 1}) {
		t.Fatalf("Up should decrease y, got %v", got)
	}
	if _, err := ParseDir("sideways"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
