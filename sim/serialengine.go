package sim

import (
	"log"
	"math"
	"reflect"
	"sync"
)

// A SerialEngine is an Engine that always runs events one after another.
// All the simulated state is mutated from the dispatch loop only, so the
// handlers never need to synchronize with each other.
type SerialEngine struct {
	HookableBase

	timeLock sync.RWMutex
	time     VTimeInSec

	queue EventQueue

	terminatedLock sync.Mutex
	terminated     bool

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine.
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)
	e.queue = NewEventQueue()
	return e
}

// Schedule registers an event to happen in the future. Scheduling an event
// earlier than the current time fails with ErrInvalidDelay and does not
// modify the queue.
func (e *SerialEngine) Schedule(evt Event) (*EventHandle, error) {
	if evt.Time() < e.readNow() {
		return nil, ErrInvalidDelay
	}

	return e.queue.Push(evt), nil
}

// ScheduleFunc registers a closure to run after the given delay, relative to
// the current time. A negative delay fails with ErrInvalidDelay.
func (e *SerialEngine) ScheduleFunc(
	delay VTimeInSec,
	fn func(now VTimeInSec) error,
) (*EventHandle, error) {
	if delay < 0 {
		return nil, ErrInvalidDelay
	}

	return e.Schedule(NewFuncEvent(e.readNow()+delay, fn))
}

func (e *SerialEngine) readNow() VTimeInSec {
	e.timeLock.RLock()
	t := e.time
	e.timeLock.RUnlock()
	return t
}

func (e *SerialEngine) writeNow(t VTimeInSec) {
	e.timeLock.Lock()
	e.time = t
	e.timeLock.Unlock()
}

// Run processes all the events scheduled in the SerialEngine.
func (e *SerialEngine) Run() error {
	return e.RunUntil(VTimeInSec(math.Inf(1)))
}

// RunUntil processes events in time order until the queue drains or the
// next event is scheduled after the given time. Events at exactly the given
// time are still dispatched.
func (e *SerialEngine) RunUntil(t VTimeInSec) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for {
		if e.isTerminated() || e.queue.Len() == 0 {
			return nil
		}

		e.pauseLock.Lock()

		handle := e.queue.Peek()
		if handle.Cancelled() {
			e.queue.Pop()
			e.pauseLock.Unlock()
			continue
		}

		evt := handle.Event()
		if evt.Time() > t {
			e.pauseLock.Unlock()
			return nil
		}

		now := e.readNow()
		if evt.Time() < now {
			log.Panicf(
				"cannot run event in the past, evt %s @ %.10f, now %.10f",
				reflect.TypeOf(evt), evt.Time(), now,
			)
		}

		e.queue.Pop()
		e.writeNow(evt.Time())

		hookCtx := HookCtx{
			Domain: e,
			Pos:    HookPosBeforeEvent,
			Item:   evt,
		}
		e.InvokeHook(hookCtx)

		err := evt.Handler().Handle(evt)

		hookCtx.Pos = HookPosAfterEvent
		e.InvokeHook(hookCtx)

		e.pauseLock.Unlock()

		if err != nil {
			return err
		}
	}
}

// Terminate discards all the pending events without dispatching them. The
// clock stays at the time of the last dispatched event.
func (e *SerialEngine) Terminate() {
	e.terminatedLock.Lock()
	e.terminated = true
	e.terminatedLock.Unlock()

	for e.queue.Len() > 0 {
		e.queue.Pop()
	}
}

func (e *SerialEngine) isTerminated() bool {
	e.terminatedLock.Lock()
	t := e.terminated
	e.terminatedLock.Unlock()
	return t
}

// Pause prevents the SerialEngine from triggering more events.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to trigger more events.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// CurrentTime returns the current time at which the engine is at.
// Specifically, the run time of the current event.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return e.readNow()
}

// PendingEvents returns the number of events that are scheduled but not yet
// dispatched, including lazily cancelled ones.
func (e *SerialEngine) PendingEvents() int {
	return e.queue.Len()
}

// RegisterSimulationEndHandler registers a simulation end handler.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *SerialEngine) Finished() {
	now := e.readNow()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
