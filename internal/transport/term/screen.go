package term

import (
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
)

var ErrScreenClosed = errors.New("screen closed")

// ScreenPoller adapts a tcell screen to Poller. tcell only offers a blocking
// PollEvent, so a reader goroutine feeds a channel that Poll waits on with a
// deadline.
type ScreenPoller struct {
	events chan tcell.Event
}

func NewScreenPoller(s tcell.Screen) *ScreenPoller {
	p := &ScreenPoller{events: make(chan tcell.Event, 64)}
	go func() {
		defer close(p.events)
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			p.events <- ev
		}
	}()
	return p
}

func (p *ScreenPoller) Poll(timeout time.Duration) (Event, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev, ok := <-p.events:
		if !ok {
			return Event{}, false, ErrScreenClosed
		}
		return translate(ev)
	case <-timer.C:
		return Event{}, false, nil
	}
}

func translate(ev tcell.Event) (Event, bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyUp:
			return KeyPress(KeyUp), true, nil
		case tcell.KeyDown:
			return KeyPress(KeyDown), true, nil
		case tcell.KeyLeft:
			return KeyPress(KeyLeft), true, nil
		case tcell.KeyRight:
			return KeyPress(KeyRight), true, nil
		case tcell.KeyEscape:
			return KeyPress(KeyEscape), true, nil
		case tcell.KeyCtrlC:
			return KeyPress(KeyInterrupt), true, nil
		case tcell.KeyRune:
			return RunePress(ev.Rune()), true, nil
		}
		return KeyPress(KeyOther), true, nil
	case *tcell.EventResize:
		cols, rows := ev.Size()
		return Resize(cols, rows), true, nil
	case *tcell.EventError:
		return Event{}, false, fmt.Errorf("terminal: %w", ev)
	}
	return Event{}, false, nil
}
