package term

import (
	"context"
	"errors"
	"time"
)

var ErrEventLoopClosed = errors.New("event loop closed")

// Poller waits at most timeout for one input event. ok is false when nothing
// relevant arrived; an error ends the producer.
type Poller interface {
	Poll(timeout time.Duration) (ev Event, ok bool, err error)
}

// EventLoop multiplexes input polling and a fixed tick onto one channel. The
// producer goroutine is the only writer; the control loop is the only reader.
type EventLoop struct {
	ch chan Event
}

func StartEventLoop(ctx context.Context, p Poller, tick, pollWait time.Duration, buffer int) *EventLoop {
	if buffer <= 0 {
		buffer = 1024
	}
	l := &EventLoop{ch: make(chan Event, buffer)}
	go l.produce(ctx, p, tick, pollWait)
	return l
}

func (l *EventLoop) produce(ctx context.Context, p Poller, tick, pollWait time.Duration) {
	defer close(l.ch)

	send := func(ev Event) bool {
		select {
		case l.ch <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	lastTick := time.Now()
	for ctx.Err() == nil {
		ev, ok, err := p.Poll(pollWait)
		if err != nil {
			send(Event{Kind: EventError, Err: err})
			return
		}
		if ok && !send(ev) {
			return
		}
		if time.Since(lastTick) >= tick {
			if !send(Tick()) {
				return
			}
			lastTick = time.Now()
		}
	}
}

// Recv blocks until the next event. It is the control loop's only
// suspension point.
func (l *EventLoop) Recv(ctx context.Context) (Event, error) {
	select {
	case ev, ok := <-l.ch:
		if !ok {
			return Event{}, ErrEventLoopClosed
		}
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}
