// Package notify carries user-facing cart events from the sync layer
// to whatever surface renders them. The cart layer publishes typed
// events; it never renders strings, so the UI can translate per the
// active language.
package notify

// Level is the visual severity of an event.
type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

// Kind identifies what happened, independent of presentation.
type Kind int

const (
	KindItemAdded Kind = iota
	KindItemRemoved
	KindQuantityUpdated
	KindStockExceeded
	KindCartLocked
	KindCartNotFound
	KindLoadFailed
	KindUpdateFailed
	KindOrderPlaced
	KindOrderFailed
	KindCartCleared
)

// Event is one transient notification (a toast, in UI terms).
type Event struct {
	Level    Level
	Kind     Kind
	ItemName string // Product display name, when the event concerns one line
	Count    int    // Available stock for KindStockExceeded, item count otherwise
}

// Notifier receives events. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// ChannelNotifier bridges events onto a channel for the TUI event
// loop. Sends are non-blocking: if the channel is full the event is
// dropped rather than stalling a network callback.
type ChannelNotifier struct {
	ch chan<- Event
}

// NewChannelNotifier creates a notifier writing to ch.
func NewChannelNotifier(ch chan<- Event) *ChannelNotifier {
	return &ChannelNotifier{ch: ch}
}

func (n *ChannelNotifier) Notify(event Event) {
	select {
	case n.ch <- event:
	default: // Non-blocking if channel full
	}
}

// Nop discards all events. Used where no surface is attached.
type Nop struct{}

func (Nop) Notify(Event) {}

// Func adapts a function to the Notifier interface.
type Func func(Event)

func (f Func) Notify(event Event) { f(event) }
