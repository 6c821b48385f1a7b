package simulation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sensorlab/ripple/wsn"
)

// PropagationConfig selects and parameterizes the channel models.
type PropagationConfig struct {
	// Model is either "log-distance" or "range".
	Model string `yaml:"model"`

	Exponent          float64 `yaml:"exponent"`
	ReferenceDistance float64 `yaml:"reference_distance"`
	ReferenceLoss     float64 `yaml:"reference_loss"`
	TxPowerDbm        float64 `yaml:"tx_power_dbm"`
	RxSensitivityDbm  float64 `yaml:"rx_sensitivity_dbm"`

	MaxRange float64 `yaml:"max_range"`

	// Speed is the propagation speed in m/s. Zero means speed of light.
	Speed float64 `yaml:"speed"`
}

// Config parameterizes the canned pH-monitoring scenario. It is pure data.
type Config struct {
	NodeCount         int     `yaml:"node_count"`
	Interval          float64 `yaml:"interval"`
	PacketPayloadSize int     `yaml:"packet_payload_size"`

	StartTime         float64 `yaml:"start_time"`
	StopTime          float64 `yaml:"stop_time"`
	SimulatedDuration float64 `yaml:"simulated_duration"`

	Seed        int64  `yaml:"seed"`
	GatewayPort uint16 `yaml:"gateway_port"`

	GridSpacing float64 `yaml:"grid_spacing"`
	GridWidth   int     `yaml:"grid_width"`

	Propagation PropagationConfig `yaml:"propagation"`
}

// DefaultConfig returns the scenario as originally dimensioned: five
// sensors on a 10 m grid reporting every two seconds from t=2 to t=10.
func DefaultConfig() Config {
	return Config{
		NodeCount:         5,
		Interval:          2.0,
		PacketPayloadSize: 32,
		StartTime:         2.0,
		StopTime:          10.0,
		SimulatedDuration: 10.0,
		Seed:              1,
		GatewayPort:       50000,
		GridSpacing:       10.0,
		GridWidth:         3,
		Propagation: PropagationConfig{
			Model: "log-distance",
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration describes a runnable scenario.
func (c Config) Validate() error {
	switch {
	case c.NodeCount < 1:
		return fmt.Errorf("node_count must be at least 1, got %d", c.NodeCount)
	case c.Interval <= 0:
		return fmt.Errorf("interval must be positive, got %g", c.Interval)
	case c.StartTime < 0:
		return fmt.Errorf("start_time must not be negative, got %g", c.StartTime)
	case c.StopTime < c.StartTime:
		return fmt.Errorf("stop_time %g is before start_time %g",
			c.StopTime, c.StartTime)
	case c.SimulatedDuration <= 0:
		return fmt.Errorf("simulated_duration must be positive, got %g",
			c.SimulatedDuration)
	case c.GridWidth < 1:
		return fmt.Errorf("grid_width must be at least 1, got %d", c.GridWidth)
	}

	if _, err := c.LossModel(); err != nil {
		return err
	}

	return nil
}

// LossModel builds the loss model the configuration selects.
func (c Config) LossModel() (wsn.LossModel, error) {
	switch c.Propagation.Model {
	case "", "log-distance":
		m := wsn.DefaultLogDistanceLoss()
		p := c.Propagation
		if p.Exponent != 0 {
			m.Exponent = p.Exponent
		}
		if p.ReferenceDistance != 0 {
			m.ReferenceDistance = p.ReferenceDistance
		}
		if p.ReferenceLoss != 0 {
			m.ReferenceLoss = p.ReferenceLoss
		}
		if p.TxPowerDbm != 0 {
			m.TxPowerDbm = p.TxPowerDbm
		}
		if p.RxSensitivityDbm != 0 {
			m.RxSensitivityDbm = p.RxSensitivityDbm
		}
		return m, nil
	case "range":
		return wsn.RangeLoss{MaxRange: c.Propagation.MaxRange}, nil
	default:
		return nil, fmt.Errorf("unknown propagation model %q",
			c.Propagation.Model)
	}
}

// DelayModel builds the delay model the configuration selects.
func (c Config) DelayModel() wsn.DelayModel {
	return wsn.ConstantSpeedDelay{Speed: c.Propagation.Speed}
}
