package term

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"termsnake.ai/internal/sim/game"
	"termsnake.ai/internal/sim/grid"
)

func newSimScreen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(cols, rows)
	return s
}

func rowText(s tcell.Screen, y, cols int) string {
	var b strings.Builder
	for x := 0; x < cols; x++ {
		r, _, _, _ := s.GetContent(x, y)
		if r == 0 {
			r = ' '
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestRenderer_DrawsBannerAndCells(t *testing.T) {
	s := newSimScreen(t, 30, 12)
	r := NewRenderer(s, 3)

	v := game.View{
		Width:  14,
		Height: 7,
		Body:   []grid.Coord{{X: 2, Y: 1}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Food:   grid.Coord{X: 10, Y: 3},
		Score:  3,
	}
	r.Draw(v, 42)

	banner := rowText(s, 0, 30)
	if !strings.Contains(banner, "3 pts") || !strings.Contains(banner, "42 s") {
		t.Fatalf("banner=%q", banner)
	}
	if !strings.Contains(rowText(s, 3, 30), "Board") {
		t.Fatalf("board title missing: %q", rowText(s, 3, 30))
	}

	check := func(x, y int, want rune, wantFG tcell.Color) {
		t.Helper()
		got, _, style, _ := s.GetContent(x, y)
		fg, _, _ := style.Decompose()
		if got != want || fg != wantFG {
			t.Fatalf("cell (%d,%d)=%q fg=%v want %q fg=%v", x, y, got, fg, want, wantFG)
		}
	}
	// Board inner area starts at column 1, row headerRows+1.
	check(5, 5, '▓', tcell.ColorLightGreen)
	check(6, 5, '▓', tcell.ColorLightGreen)
	check(3, 5, '█', tcell.ColorGreen)
	check(1, 5, '█', tcell.ColorGreen)
	check(21, 7, '█', tcell.ColorRed)
	check(22, 7, '█', tcell.ColorRed)
}

func TestRenderer_ClipsToVisibleArea(t *testing.T) {
	s := newSimScreen(t, 10, 8)
	r := NewRenderer(s, 3)
	// Inner area is 8x3 columns, i.e. 4x3 cells; the head at (6,0) is off screen.
	v := game.View{
		Width:  20,
		Height: 20,
		Body:   []grid.Coord{{X: 6, Y: 0}, {X: 5, Y: 0}},
		Food:   grid.Coord{X: 1, Y: 1},
	}
	r.Draw(v, 0)

	for y := 0; y < 8; y++ {
		if strings.ContainsRune(rowText(s, y, 10), '▓') {
			t.Fatalf("off-screen head drawn on row %d", y)
		}
	}
	got, _, _, _ := s.GetContent(3, 5)
	if got != '█' {
		t.Fatalf("visible food missing, got %q", got)
	}
}

func TestRenderer_TinyScreenDoesNotPanic(t *testing.T) {
	s := newSimScreen(t, 1, 2)
	r := NewRenderer(s, 3)
	r.Draw(game.View{Width: 1, Height: 1, Body: []grid.Coord{{}}}, 1)
}

func TestRenderer_ResyncAfterResize(t *testing.T) {
	s := newSimScreen(t, 30, 12)
	r := NewRenderer(s, 3)
	v := game.View{Width: 10, Height: 5, Body: []grid.Coord{{X: 1, Y: 1}}, Food: grid.Coord{X: 3, Y: 3}}
	r.Draw(v, 0)

	s.SetSize(40, 16)
	r.Resync()
	r.Draw(v, 1)

	if got, _, _, _ := s.GetContent(39, 15); got != '┘' {
		t.Fatalf("bottom-right corner after resize = %q, want ┘", got)
	}
	if got, _, _, _ := s.GetContent(29, 11); got == '┘' {
		t.Fatalf("stale corner left at the old size")
	}
}
