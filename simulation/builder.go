package simulation

import (
	"log"

	"github.com/rs/xid"

	"github.com/sensorlab/ripple/datarecording"
	"github.com/sensorlab/ripple/monitoring"
	"github.com/sensorlab/ripple/sim"
	"github.com/sensorlab/ripple/wsn"
)

// Builder can be used to build a simulation.
type Builder struct {
	loss  wsn.LossModel
	delay wsn.DelayModel

	monitorOn   bool
	monitorPort int

	outputFileName string
	logger         *log.Logger
}

// MakeBuilder creates a new builder with the default propagation models and
// no monitoring.
func MakeBuilder() Builder {
	return Builder{
		loss:  wsn.DefaultLogDistanceLoss(),
		delay: wsn.ConstantSpeedDelay{},
	}
}

// WithLossModel sets the propagation loss model of the channel.
func (b Builder) WithLossModel(m wsn.LossModel) Builder {
	b.loss = m
	return b
}

// WithDelayModel sets the propagation delay model of the channel.
func (b Builder) WithDelayModel(m wsn.DelayModel) Builder {
	b.delay = m
	return b
}

// WithMonitoring starts an HTTP monitor on the given port when the
// simulation is built. Port 0 picks a random port.
func (b Builder) WithMonitoring(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port
	return b
}

// WithOutputFileName makes the simulation record its observation stream
// into a SQLite database with the given name.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithLogger makes the simulation log every observation record.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	engine := sim.NewSerialEngine()

	s := &Simulation{
		id:      xid.New().String(),
		engine:  engine,
		channel: wsn.NewChannel(engine, b.loss, b.delay),
	}

	s.collector = &collector{tt: engine}
	s.channel.AcceptHook(s.collector)

	if b.logger != nil {
		s.AddSink(LogSink{Logger: b.logger})
	}

	if b.outputFileName != "" {
		s.recorder = datarecording.New(b.outputFileName)
		s.AddSink(newRecorderSink(s.recorder))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(engine)
		s.monitor.RegisterStatsProvider(s)
		s.monitor.StartServer()
	}

	return s
}
