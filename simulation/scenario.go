package simulation

import (
	"fmt"
	"log"

	"github.com/sensorlab/ripple/sim"
	"github.com/sensorlab/ripple/wsn"
)

// A Scenario is a configured simulation together with the gateway whose
// received log the caller may inspect after the run.
type Scenario struct {
	Sim     *Simulation
	Gateway *wsn.GatewayReceiverApp
	Sensors []*wsn.PeriodicSensorApp
}

// SetupScenario populates a simulation with the canned pH monitoring
// layout: NodeCount sensor nodes on a grid plus one gateway node on the
// next grid slot, every sensor reporting to the gateway.
func SetupScenario(
	s *Simulation,
	cfg Config,
	gwLogger *log.Logger,
) (*Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}

	grid := wsn.GridPositionAllocator{
		DeltaX:    cfg.GridSpacing,
		DeltaY:    cfg.GridSpacing,
		GridWidth: cfg.GridWidth,
	}

	// The gateway takes the grid slot after the sensors, like the
	// original deployment.
	gwNode := s.CreateNode(grid.Position(cfg.NodeCount))
	gwEp, err := s.BindEndpoint(gwNode, cfg.GatewayPort)
	if err != nil {
		return nil, err
	}

	gw := wsn.NewGatewayReceiverApp("gateway", s.Engine(), gwEp, gwLogger)
	s.AttachApplication(gwNode, gw)
	if err := s.SetStartStop(gw, 0, sim.VTimeInSec(cfg.SimulatedDuration)); err != nil {
		return nil, err
	}

	scenario := &Scenario{Sim: s, Gateway: gw}

	for i := 0; i < cfg.NodeCount; i++ {
		node := s.CreateNode(grid.Position(i))
		ep, err := s.BindEndpoint(node, cfg.GatewayPort)
		if err != nil {
			return nil, err
		}

		sensor := wsn.NewPeriodicSensorApp(
			fmt.Sprintf("sensor%d", i),
			s.Engine(),
			ep,
			gwEp.ID(),
			sim.VTimeInSec(cfg.Interval),
			cfg.PacketPayloadSize,
			cfg.Seed+int64(i),
		)

		s.AttachApplication(node, sensor)
		err = s.SetStartStop(sensor,
			sim.VTimeInSec(cfg.StartTime), sim.VTimeInSec(cfg.StopTime))
		if err != nil {
			return nil, err
		}

		scenario.Sensors = append(scenario.Sensors, sensor)
	}

	return scenario, nil
}
