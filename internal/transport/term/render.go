package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"termsnake.ai/internal/sim/game"
	"termsnake.ai/internal/sim/grid"
)

const title = " termsnake "

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan).Bold(true)
	styleSep     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleScore   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleSecs    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleSnake   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleHead    = tcell.StyleDefault.Foreground(tcell.ColorLightGreen).Bold(true)
	styleFood    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// Renderer draws a game.View onto a tcell screen: a banner in the header
// rows and a bordered board below it, two columns per cell.
type Renderer struct {
	screen     tcell.Screen
	headerRows int
}

func NewRenderer(s tcell.Screen, headerRows int) *Renderer {
	return &Renderer{screen: s, headerRows: headerRows}
}

func (r *Renderer) Draw(v game.View, elapsedSecs int64) {
	s := r.screen
	s.Clear()
	cols, rows := s.Size()

	r.drawBanner(cols, v.Score, elapsedSecs)
	if rows > r.headerRows {
		r.drawBoard(0, r.headerRows, cols, rows-r.headerRows, v)
	}
	s.Show()
}

// Resync forces a full repaint on the next Show, used after a resize.
func (r *Renderer) Resync() { r.screen.Sync() }

func (r *Renderer) drawBanner(cols int, score uint64, secs int64) {
	if r.headerRows < 1 {
		return
	}
	type span struct {
		text  string
		style tcell.Style
	}
	line := []span{
		{title, styleTitle},
		{" ─ ", styleSep},
		{fmt.Sprintf("%d pts", score), styleScore},
		{" ─ ", styleSep},
		{fmt.Sprintf("%d s", secs), styleSecs},
	}
	n := 0
	for _, sp := range line {
		n += len([]rune(sp.text))
	}
	x := (cols - n) / 2
	if x < 0 {
		x = 0
	}
	for _, sp := range line {
		x = r.puts(x, 0, sp.text, sp.style)
	}
	if r.headerRows >= 2 {
		for x := 0; x < cols; x++ {
			r.screen.SetContent(x, r.headerRows-1, '═', nil, styleSep)
		}
	}
}

func (r *Renderer) drawBoard(x0, y0, w, h int, v game.View) {
	if w < 2 || h < 2 {
		return
	}
	r.box(x0, y0, w, h)
	r.puts(x0+1, y0, "Board", styleDefault)

	innerW, innerH := w-2, h-2
	if innerW < 2 || innerH == 0 || len(v.Body) == 0 {
		return
	}
	visW := min(innerW/2, v.Width)
	visH := min(innerH, v.Height)

	occupied := make(map[grid.Coord]struct{}, len(v.Body))
	for _, c := range v.Body {
		occupied[c] = struct{}{}
	}
	head := v.Head()

	for vy := 0; vy < visH; vy++ {
		for vx := 0; vx < visW; vx++ {
			c := grid.Coord{X: vx, Y: vy}
			col := x0 + 1 + vx*2
			row := y0 + 1 + vy
			switch _, onBody := occupied[c]; {
			case c == head:
				r.cell(col, row, '▓', styleHead)
			case onBody:
				r.cell(col, row, '█', styleSnake)
			case c == v.Food:
				r.cell(col, row, '█', styleFood)
			default:
				r.cell(col, row, ' ', styleDefault)
			}
		}
	}
}

func (r *Renderer) box(x0, y0, w, h int) {
	s := r.screen
	x1, y1 := x0+w-1, y0+h-1
	for x := x0 + 1; x < x1; x++ {
		s.SetContent(x, y0, '─', nil, styleDefault)
		s.SetContent(x, y1, '─', nil, styleDefault)
	}
	for y := y0 + 1; y < y1; y++ {
		s.SetContent(x0, y, '│', nil, styleDefault)
		s.SetContent(x1, y, '│', nil, styleDefault)
	}
	s.SetContent(x0, y0, '┌', nil, styleDefault)
	s.SetContent(x1, y0, '┐', nil, styleDefault)
	s.SetContent(x0, y1, '└', nil, styleDefault)
	s.SetContent(x1, y1, '┘', nil, styleDefault)
}

func (r *Renderer) cell(col, row int, glyph rune, style tcell.Style) {
	r.screen.SetContent(col, row, glyph, nil, style)
	r.screen.SetContent(col+1, row, glyph, nil, style)
}

func (r *Renderer) puts(x, y int, text string, style tcell.Style) int {
	for _, ch := range text {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}
