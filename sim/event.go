package sim

// VTimeInSec defines the time in the simulated space in the unit of second.
type VTimeInSec float64

// An Event is something going to happen in the future.
type Event interface {
	// Time returns the time that the event should happen.
	Time() VTimeInSec

	// Handler returns the handler that should handle the event.
	Handler() Handler
}

// A Handler defines a domain for the events.
//
// An event can only be scheduled by its handler and, when dispatched, can
// only directly modify that handler. The only exception is the kick starting
// of a simulation, where the simulation object schedules the lifecycle
// events of all the applications.
type Handler interface {
	Handle(e Event) error
}

// EventBase provides the basic fields and getters for other events.
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
}

// NewEventBase creates a new EventBase.
func NewEventBase(t VTimeInSec, handler Handler) *EventBase {
	e := new(EventBase)
	e.ID = GetIDGenerator().Generate()
	e.time = t
	e.handler = handler
	return e
}

// Time returns the time that the event is going to happen.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// SetHandler sets which handler handles the event.
func (e *EventBase) SetHandler(h Handler) {
	e.handler = h
}

// Handler returns the handler to handle the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// A FuncEvent is an event that carries the action to perform as a closure.
// The event serves as its own handler, so the closure must capture all the
// data it needs.
type FuncEvent struct {
	*EventBase

	fn func(now VTimeInSec) error
}

// NewFuncEvent creates an event that runs fn at time t.
func NewFuncEvent(t VTimeInSec, fn func(now VTimeInSec) error) *FuncEvent {
	e := &FuncEvent{fn: fn}
	e.EventBase = NewEventBase(t, e)
	return e
}

// Handle invokes the closure carried by the event.
func (e *FuncEvent) Handle(evt Event) error {
	return e.fn(evt.Time())
}
