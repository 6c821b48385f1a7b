package sim

import "errors"

// ErrInvalidDelay is returned when an event is scheduled with a negative
// delay, or at an absolute time earlier than the current time. The event
// queue is left untouched.
var ErrInvalidDelay = errors.New("sim: cannot schedule an event before the current time")

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	// Schedule registers an event to happen in the future. The returned
	// handle can be used to cancel the event before it fires.
	Schedule(e Event) (*EventHandle, error)

	// ScheduleFunc registers a closure to run after the given delay,
	// relative to the current time.
	ScheduleFunc(delay VTimeInSec, fn func(now VTimeInSec) error) (*EventHandle, error)
}

// A SimulationEndHandler is a handler that is called after the simulation
// ends.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run processes events until the queue drains.
	Run() error

	// RunUntil processes events up to, and including, the given time. It
	// returns when the queue drains or when the next event is later than
	// the given time.
	RunUntil(t VTimeInSec) error

	// Terminate discards all the pending events without dispatching them
	// and makes any in-progress run return.
	Terminate()

	// Pause will pause the simulation until Continue is called.
	Pause()

	// Continue will continue the paused simulation.
	Continue()

	// RegisterSimulationEndHandler registers a handler that performs some
	// actions after the simulation is finished.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished invokes all the registered SimulationEndHandler.
	Finished()
}
