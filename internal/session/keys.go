package session

import (
	"termsnake.ai/internal/sim/grid"
	"termsnake.ai/internal/transport/term"
)

func isQuit(ev term.Event) bool {
	switch ev.Key {
	case term.KeyEscape, term.KeyInterrupt:
		return true
	case term.KeyRune:
		return ev.Rune == 'q' || ev.Rune == 'Q'
	}
	return false
}

// dirForKey maps arrows plus the wasd and hjkl aliases.
func dirForKey(ev term.Event) (grid.Dir, bool) {
	switch ev.Key {
	case term.KeyUp:
		return grid.Up, true
	case term.KeyDown:
		return grid.Down, true
	case term.KeyLeft:
		return grid.Left, true
	case term.KeyRight:
		return grid.Right, true
	case term.KeyRune:
		switch ev.Rune {
		case 'w', 'k':
			return grid.Up, true
		case 's', 'j':
			return grid.Down, true
		case 'a', 'h':
			return grid.Left, true
		case 'd', 'l':
			return grid.Right, true
		}
	}
	return 0, false
}
