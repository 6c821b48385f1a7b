package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sensorlab/ripple/netanim"
	"github.com/sensorlab/ripple/sim"
	"github.com/sensorlab/ripple/simulation"
)

var flags struct {
	configPath string

	nodeCount int
	interval  float64
	duration  float64
	seed      int64

	outputFileName string
	animFileName   string
	monitorPort    int
	monitor        bool
	verbose        bool
}

var rootCmd = &cobra.Command{
	Use:   "ripple",
	Short: "Simulate a grid of pH sensors reporting to a gateway",
	Long: `Ripple runs a discrete-event simulation of a wireless sensor
network: sensor nodes on a grid periodically send pH readings to a gateway
node over a shared channel with distance-based loss and propagation delay.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd)
	},
}

func init() {
	// A .env file can pre-set RIPPLE_* variables for the monitor UI.
	_ = godotenv.Load()

	f := rootCmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "",
		"YAML scenario config file")
	f.IntVar(&flags.nodeCount, "nodes", 0,
		"number of sensor nodes (overrides config)")
	f.Float64Var(&flags.interval, "interval", 0,
		"seconds between readings (overrides config)")
	f.Float64Var(&flags.duration, "duration", 0,
		"simulated duration in seconds (overrides config)")
	f.Int64Var(&flags.seed, "seed", 0,
		"random seed (overrides config)")
	f.StringVarP(&flags.outputFileName, "output", "o", "",
		"record the observation stream into this SQLite database")
	f.StringVar(&flags.animFileName, "anim", "",
		"write a NetAnim XML trace to this file")
	f.BoolVar(&flags.monitor, "monitor", false,
		"serve the monitoring API over HTTP")
	f.IntVar(&flags.monitorPort, "monitor-port", 0,
		"port for the monitoring API, 0 picks a random port")
	f.BoolVarP(&flags.verbose, "verbose", "v", false,
		"log every observation record")
}

func run(cmd *cobra.Command) error {
	cfg := simulation.DefaultConfig()
	if flags.configPath != "" {
		var err error
		cfg, err = simulation.LoadConfig(flags.configPath)
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("nodes") {
		cfg.NodeCount = flags.nodeCount
	}
	if cmd.Flags().Changed("interval") {
		cfg.Interval = flags.interval
	}
	if cmd.Flags().Changed("duration") {
		cfg.SimulatedDuration = flags.duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = flags.seed
	}

	loss, err := cfg.LossModel()
	if err != nil {
		return err
	}

	builder := simulation.MakeBuilder().
		WithLossModel(loss).
		WithDelayModel(cfg.DelayModel())

	if flags.outputFileName != "" {
		builder = builder.WithOutputFileName(flags.outputFileName)
	}
	if flags.monitor {
		builder = builder.WithMonitoring(flags.monitorPort)
	}
	if flags.verbose {
		builder = builder.WithLogger(
			log.New(os.Stderr, "", 0))
	}

	s := builder.Build()

	gwLogger := log.New(cmd.OutOrStdout(), "", 0)
	scenario, err := simulation.SetupScenario(s, cfg, gwLogger)
	if err != nil {
		return err
	}

	var tracer *netanim.Tracer
	if flags.animFileName != "" {
		tracer = netanim.NewTracer(s.Engine())
		for _, node := range s.Nodes() {
			tracer.AddNode(node.ID(), node.Position())
		}
		s.Channel().AcceptHook(tracer)
	}

	result, err := s.Run(sim.VTimeInSec(cfg.SimulatedDuration))
	if err != nil {
		return err
	}

	if tracer != nil {
		if err := tracer.Save(flags.animFileName); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "simulation %s finished at t=%.2fs\n",
		s.ID(), float64(result.FinalTime))
	fmt.Fprintf(out, "packets: %d sent, %d delivered, %d dropped\n",
		result.Sent, result.Delivered, result.Dropped)
	fmt.Fprintf(out, "gateway received %d readings\n",
		len(scenario.Gateway.Received()))

	return nil
}
