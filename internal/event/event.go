package event

// Type identifies the kind of an input event.
type Type string

// Event types delivered by hosts.
const (
	TypeClick     Type = "click"
	TypeFocus     Type = "focus"
	TypeBlur      Type = "blur"
	TypeKeyDown   Type = "keydown"
	TypeKeyUp     Type = "keyup"
	TypeKeyPress  Type = "keypress"
	TypeMouseUp   Type = "mouseup"
	TypeMouseOver Type = "mouseover"
	TypeMouseOut  Type = "mouseout"
	TypeScroll    Type = "scroll"
	TypeResize    Type = "resize"
	TypeInput     Type = "input"
)

// Key is a named keyboard key. Printable keys use KeyRune with Event.Rune set.
type Key int

// Keys the engine distinguishes.
const (
	KeyNone Key = iota
	KeyRune
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyDelete
	KeySpace
)

// String returns the key name.
func (k Key) String() string {
	switch k {
	case KeyRune:
		return "rune"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "escape"
	case KeyTab:
		return "tab"
	case KeyBackspace:
		return "backspace"
	case KeyDelete:
		return "delete"
	case KeySpace:
		return "space"
	default:
		return "none"
	}
}

// Target is the object an event is delivered to.
type Target any

type window struct{}

// Window is the target for viewport-level events (resize, scroll).
var Window Target = window{}

// Event is a single input notification.
type Event struct {
	Type Type

	// Target is the innermost object the event was dispatched to.
	Target Target

	// RelatedTarget is the object receiving focus on blur, or the object
	// the pointer moved to on mouseout.
	RelatedTarget Target

	// Key and Rune describe keyboard events.
	Key  Key
	Rune rune

	// Shift reports whether the shift modifier was held.
	Shift bool

	defaultPrevented bool
	stopped          bool
}

// New creates an event of the given type for target.
func New(typ Type, target Target) *Event {
	return &Event{Type: typ, Target: target}
}

// NewKey creates a keyboard event.
func NewKey(typ Type, target Target, key Key) *Event {
	e := New(typ, target)
	e.Key = key
	if key == KeySpace {
		e.Rune = ' '
	}
	return e
}

// PreventDefault suppresses the host's native handling of the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops delivery to further targets on the event path.
func (e *Event) StopPropagation() { e.stopped = true }

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool { return e.stopped }

// IsKey reports whether e is a keyboard event for key.
func (e *Event) IsKey(key Key) bool { return e.Key == key }

// Listener handles an event.
type Listener func(*Event)

// Listenable is implemented by hosts that deliver events. Listen registers l
// for events of type typ on target and returns a function removing it.
// Capture listeners on an ancestor run before listeners on the target.
type Listenable interface {
	Listen(target Target, typ Type, l Listener, capture bool) func()
}
