// Package simulation composes the engine, the channel, and the nodes into a
// runnable wireless sensor network simulation.
package simulation

import (
	"fmt"
	"log"

	"github.com/sensorlab/ripple/datarecording"
	"github.com/sensorlab/ripple/monitoring"
	"github.com/sensorlab/ripple/sim"
	"github.com/sensorlab/ripple/wsn"
)

// A Simulation owns one engine, one channel, and all the nodes and
// applications of a scenario. Independent simulations can coexist in one
// process; nothing here is global.
type Simulation struct {
	id string

	engine  sim.Engine
	channel *wsn.Channel

	nodes []*wsn.Node
	apps  []wsn.Application

	collector *collector
	recorder  datarecording.DataRecorder
	monitor   *monitoring.Monitor
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Engine returns the engine driving the simulation.
func (s *Simulation) Engine() sim.Engine {
	return s.engine
}

// Channel returns the shared channel.
func (s *Simulation) Channel() *wsn.Channel {
	return s.channel
}

// CreateNode creates a node at the given position and attaches it to the
// channel.
func (s *Simulation) CreateNode(pos wsn.Position) wsn.NodeID {
	id := wsn.NodeID(len(s.nodes))
	node := wsn.NewNode(id, fmt.Sprintf("node%d", id), pos)

	s.nodes = append(s.nodes, node)
	s.channel.Attach(node)

	return id
}

// Node returns a node created earlier.
func (s *Simulation) Node(id wsn.NodeID) *wsn.Node {
	return s.nodes[id]
}

// Nodes returns all the nodes, in creation order.
func (s *Simulation) Nodes() []*wsn.Node {
	return s.nodes
}

// BindEndpoint binds a port on a node, creating the endpoint applications
// send and receive through.
func (s *Simulation) BindEndpoint(
	id wsn.NodeID,
	port uint16,
) (*wsn.Endpoint, error) {
	return s.channel.Bind(s.nodes[id], port)
}

// AttachApplication hosts an application on a node and wires it into the
// observation stream.
func (s *Simulation) AttachApplication(id wsn.NodeID, app wsn.Application) {
	s.nodes[id].AddApplication(app)
	s.apps = append(s.apps, app)

	app.AcceptHook(s.collector)
}

// SetStartStop schedules the lifecycle of an application.
func (s *Simulation) SetStartStop(
	app wsn.Application,
	start, stop sim.VTimeInSec,
) error {
	_, _, err := wsn.ScheduleLifecycle(s.engine, app, start, stop)
	return err
}

// AddSink registers a consumer of the observation stream. Sinks see records
// synchronously, in dispatch order.
func (s *Simulation) AddSink(sink StreamSink) {
	s.collector.sinks = append(s.collector.sinks, sink)
}

// Records returns the observation stream collected so far.
func (s *Simulation) Records() []Record {
	return s.collector.records
}

// Stats returns the packet counters collected so far. It is safe to call
// while the simulation is running; the monitor does so from its HTTP
// goroutine.
func (s *Simulation) Stats() monitoring.Stats {
	return monitoring.Stats{
		Sent:      s.collector.sent.Load(),
		Delivered: s.collector.delivered.Load(),
		Dropped:   s.collector.dropped.Load(),
	}
}

// A RunResult summarizes one finished run.
type RunResult struct {
	FinalTime sim.VTimeInSec
	Sent      uint64
	Delivered uint64
	Dropped   uint64
}

// Run drives the simulation for the given virtual duration. It returns
// after the engine drains or reaches the duration. Applications still
// running at that point are stopped at the final clock value, so every
// application observes exactly one stop.
func (s *Simulation) Run(duration sim.VTimeInSec) (RunResult, error) {
	runErr := s.engine.RunUntil(duration)

	final := s.engine.CurrentTime()
	for _, app := range s.apps {
		if !app.Running() {
			continue
		}

		if err := app.Stop(final); err != nil && runErr == nil {
			runErr = err
		}
	}

	s.channel.AbortInFlight()
	s.engine.Finished()

	if s.recorder != nil {
		s.recorder.Flush()
	}

	result := RunResult{
		FinalTime: final,
		Sent:      s.collector.sent.Load(),
		Delivered: s.collector.delivered.Load(),
		Dropped:   s.collector.dropped.Load(),
	}

	if result.Sent != result.Delivered+result.Dropped {
		log.Panicf(
			"packet conservation violated: sent %d, delivered %d, dropped %d",
			result.Sent, result.Delivered, result.Dropped)
	}

	return result, runErr
}
