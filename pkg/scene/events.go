package scene

import (
	"context"

	"github.com/pwgbots/diafram/pkg/observability"
)

// EventKind names a pointer-event category delivered by the host input layer.
type EventKind string

const (
	EventEnter EventKind = "enter"
	EventLeave EventKind = "leave"
	EventMove  EventKind = "move"
	EventClick EventKind = "click"
)

// Event is a pointer event in content coordinates.
type Event struct {
	Kind EventKind
	X, Y float64
}

// Handler is a short synchronous callback bound to one primitive. Handlers
// mutate small pieces of view state and trigger localized redraws; they must
// not block.
type Handler func(Event)

// On registers a handler for a primitive handle and event kind, replacing
// any previous handler for that pair. Handlers survive Clear/refill cycles
// because registration is keyed by handle, not by primitive value.
func (sc *Scene) On(h Handle, kind EventKind, fn Handler) {
	m, ok := sc.handlers[h]
	if !ok {
		m = make(map[EventKind]Handler)
		sc.handlers[h] = m
	}
	m[kind] = fn
}

// Off removes every handler registered for the handle.
func (sc *Scene) Off(h Handle) {
	delete(sc.handlers, h)
}

// Dispatch delivers an event to the handler registered for the handle and
// kind, if any, and reports whether a handler ran. The host input layer is
// the only caller.
func (sc *Scene) Dispatch(ctx context.Context, h Handle, ev Event) bool {
	fn, ok := sc.handlers[h][ev.Kind]
	if ok {
		fn(ev)
	}
	observability.Input().OnDispatch(ctx, string(ev.Kind), ok)
	return ok
}
