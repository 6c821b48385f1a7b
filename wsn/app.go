package wsn

import (
	"errors"

	"github.com/sensorlab/ripple/sim"
)

// HookPosAppStarted marks when an application enters the running state.
var HookPosAppStarted = &sim.HookPos{Name: "AppStarted"}

// HookPosAppStopped marks when an application stops.
var HookPosAppStopped = &sim.HookPos{Name: "AppStopped"}

// ErrDoubleStart is returned when starting an application that already ran.
// The duplicate start performs no side effects.
var ErrDoubleStart = errors.New("wsn: application started more than once")

// ErrDoubleStop is returned when stopping an application that is not
// running. The duplicate stop performs no side effects.
var ErrDoubleStop = errors.New("wsn: application stopped more than once")

// An Application is a state machine hosted by a node and driven entirely
// through scheduled events. It moves from idle to running to stopped, each
// transition exactly once.
type Application interface {
	sim.Hookable

	Name() string
	Node() NodeID

	// Start is invoked exactly once, when the virtual time reaches the
	// application's start time.
	Start(now sim.VTimeInSec) error

	// Stop is invoked exactly once, when the virtual time reaches the
	// application's stop time or when the simulation halts, whichever
	// comes first.
	Stop(now sim.VTimeInSec) error

	Running() bool
}

type appState int

const (
	appIdle appState = iota
	appRunning
	appStopped
)

// AppBase carries the lifecycle state machine shared by all applications.
type AppBase struct {
	sim.HookableBase

	name  string
	state appState
}

// NewAppBase creates the base state for an application.
func NewAppBase(name string) *AppBase {
	return &AppBase{name: name}
}

// Name returns the name of the application.
func (a *AppBase) Name() string {
	return a.name
}

// Running returns true while the application is between start and stop.
func (a *AppBase) Running() bool {
	return a.state == appRunning
}

// toRunning performs the idle-to-running transition.
func (a *AppBase) toRunning() error {
	if a.state != appIdle {
		return ErrDoubleStart
	}

	a.state = appRunning
	return nil
}

// toStopped performs the running-to-stopped transition. Stopped is
// terminal.
func (a *AppBase) toStopped() error {
	if a.state != appRunning {
		return ErrDoubleStop
	}

	a.state = appStopped
	return nil
}

// A lifecycleEvent starts or stops an application at its configured time.
// The event handles itself; it only captures the application it drives.
type lifecycleEvent struct {
	*sim.EventBase

	app  Application
	stop bool
}

func (e *lifecycleEvent) Handle(evt sim.Event) error {
	now := evt.Time()

	if !e.stop {
		return e.app.Start(now)
	}

	// The simulation may have stopped the application already when it
	// halted before the configured stop time.
	if !e.app.Running() {
		return nil
	}

	return e.app.Stop(now)
}

// ScheduleLifecycle schedules the start and stop transitions of an
// application. It returns the handles of both events so that the caller can
// cancel them if the application is torn down early.
func ScheduleLifecycle(
	scheduler sim.EventScheduler,
	app Application,
	start, stop sim.VTimeInSec,
) (startHandle, stopHandle *sim.EventHandle, err error) {
	startEvt := &lifecycleEvent{app: app}
	startEvt.EventBase = sim.NewEventBase(start, startEvt)

	startHandle, err = scheduler.Schedule(startEvt)
	if err != nil {
		return nil, nil, err
	}

	stopEvt := &lifecycleEvent{app: app, stop: true}
	stopEvt.EventBase = sim.NewEventBase(stop, stopEvt)

	stopHandle, err = scheduler.Schedule(stopEvt)
	if err != nil {
		startHandle.Cancel()
		return nil, nil, err
	}

	return startHandle, stopHandle, nil
}
