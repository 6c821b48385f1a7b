package wsn

import (
	"fmt"
	"math/rand"

	"github.com/sensorlab/ripple/sim"
)

// A PeriodicSensorApp periodically samples a measurement and sends it to a
// collector endpoint. The app reschedules itself after every send and keeps
// going until it is stopped; there is no fixed send count.
type PeriodicSensorApp struct {
	*AppBase

	engine   sim.Engine
	endpoint *Endpoint
	dst      EndpointID

	interval    sim.VTimeInSec
	payloadSize int
	rng         *rand.Rand

	// Measurement range. The canned scenario samples pH values.
	MinValue, MaxValue float64

	sendHandle *sim.EventHandle
}

// NewPeriodicSensorApp creates a sensor that sends a reading to dst every
// interval seconds. Readings are drawn from a generator seeded with seed,
// so runs with identical seeds produce identical payloads.
func NewPeriodicSensorApp(
	name string,
	engine sim.Engine,
	endpoint *Endpoint,
	dst EndpointID,
	interval sim.VTimeInSec,
	payloadSize int,
	seed int64,
) *PeriodicSensorApp {
	return &PeriodicSensorApp{
		AppBase:     NewAppBase(name),
		engine:      engine,
		endpoint:    endpoint,
		dst:         dst,
		interval:    interval,
		payloadSize: payloadSize,
		rng:         rand.New(rand.NewSource(seed)),
		MinValue:    6.0,
		MaxValue:    8.0,
	}
}

// Node returns the node hosting the sensor.
func (a *PeriodicSensorApp) Node() NodeID {
	return a.endpoint.ID().Node
}

// Start moves the sensor to running and performs the first send
// immediately.
func (a *PeriodicSensorApp) Start(now sim.VTimeInSec) error {
	if err := a.toRunning(); err != nil {
		return err
	}

	a.InvokeHook(sim.HookCtx{
		Domain: a,
		Pos:    HookPosAppStarted,
		Item:   Application(a),
	})

	return a.send(now)
}

// send transmits one reading and schedules the next send.
func (a *PeriodicSensorApp) send(now sim.VTimeInSec) error {
	if !a.Running() {
		return nil
	}

	value := a.MinValue + a.rng.Float64()*(a.MaxValue-a.MinValue)
	reading := fmt.Sprintf("pH: %.4f", value)

	payload := []byte(reading)
	if a.payloadSize > 0 {
		padded := make([]byte, a.payloadSize)
		copy(padded, payload)
		payload = padded
	}

	if err := a.endpoint.Send(payload, a.dst); err != nil {
		return err
	}

	handle, err := a.engine.Schedule(
		sim.NewFuncEvent(now+a.interval, a.send))
	if err != nil {
		return err
	}
	a.sendHandle = handle

	return nil
}

// Stop cancels the outstanding send and releases the endpoint. No further
// sends occur once stopped.
func (a *PeriodicSensorApp) Stop(now sim.VTimeInSec) error {
	if err := a.toStopped(); err != nil {
		return err
	}

	if a.sendHandle != nil {
		a.sendHandle.Cancel()
		a.sendHandle = nil
	}

	a.endpoint.Close()

	a.InvokeHook(sim.HookCtx{
		Domain: a,
		Pos:    HookPosAppStopped,
		Item:   Application(a),
	})

	return nil
}
