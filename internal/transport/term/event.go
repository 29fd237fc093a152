package term

type EventKind int

const (
	EventTick EventKind = iota + 1
	EventKey
	EventResize
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventTick:
		return "tick"
	case EventKey:
		return "key"
	case EventResize:
		return "resize"
	case EventError:
		return "error"
	}
	return "unknown"
}

// Key is a terminal-independent key identifier.
type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEscape
	KeyInterrupt
	KeyRune
)

// Event is a value sent from the producer goroutine to the control loop.
// Cols/Rows are terminal dimensions, not world dimensions.
type Event struct {
	Kind EventKind
	Key  Key
	Rune rune
	Cols int
	Rows int
	Err  error
}

func Tick() Event                 { return Event{Kind: EventTick} }
func KeyPress(k Key) Event        { return Event{Kind: EventKey, Key: k} }
func RunePress(r rune) Event      { return Event{Kind: EventKey, Key: KeyRune, Rune: r} }
func Resize(cols, rows int) Event { return Event{Kind: EventResize, Cols: cols, Rows: rows} }
