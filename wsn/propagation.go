package wsn

import (
	"math"

	"github.com/sensorlab/ripple/sim"
)

// SpeedOfLight is the default propagation speed, in meters per second.
const SpeedOfLight = 299792458.0

// A DeliveryOutcome is the channel's verdict for one transmission.
type DeliveryOutcome struct {
	Delivered bool
	Delay     sim.VTimeInSec
}

// A LossModel decides whether a transmission over a given distance is
// received. Implementations must be pure functions of the distance so that
// identical inputs reproduce identical outcomes.
type LossModel interface {
	Delivered(distance float64) bool
}

// A DelayModel computes the propagation delay over a given distance.
// Implementations must be pure.
type DelayModel interface {
	Delay(distance float64) sim.VTimeInSec
}

// ConstantSpeedDelay propagates signals at a fixed speed. A zero Speed
// falls back to the speed of light.
type ConstantSpeedDelay struct {
	Speed float64
}

// Delay returns distance divided by the propagation speed.
func (m ConstantSpeedDelay) Delay(distance float64) sim.VTimeInSec {
	speed := m.Speed
	if speed == 0 {
		speed = SpeedOfLight
	}

	return sim.VTimeInSec(distance / speed)
}

// LogDistanceLoss models log-distance path attenuation:
//
//	PL(d) = ReferenceLoss + 10 * Exponent * log10(d / ReferenceDistance)
//
// A transmission is delivered when the transmit power minus the path loss
// stays at or above the receiver sensitivity. Distances at or below the
// reference distance lose only the reference loss.
type LogDistanceLoss struct {
	Exponent          float64
	ReferenceDistance float64
	ReferenceLoss     float64
	TxPowerDbm        float64
	RxSensitivityDbm  float64
}

// DefaultLogDistanceLoss returns a log-distance model with common 2.4 GHz
// parameters: exponent 3.0, 46.6777 dB reference loss at 1 m, 16.0206 dBm
// transmit power, -101 dBm receiver sensitivity.
func DefaultLogDistanceLoss() LogDistanceLoss {
	return LogDistanceLoss{
		Exponent:          3.0,
		ReferenceDistance: 1.0,
		ReferenceLoss:     46.6777,
		TxPowerDbm:        16.0206,
		RxSensitivityDbm:  -101.0,
	}
}

// Delivered reports whether the received power clears the sensitivity
// threshold.
func (m LogDistanceLoss) Delivered(distance float64) bool {
	loss := m.ReferenceLoss
	if distance > m.ReferenceDistance {
		loss += 10 * m.Exponent * math.Log10(distance/m.ReferenceDistance)
	}

	return m.TxPowerDbm-loss >= m.RxSensitivityDbm
}

// RangeLoss delivers every packet within MaxRange and drops everything
// beyond it.
type RangeLoss struct {
	MaxRange float64
}

// Delivered reports whether the distance is within range.
func (m RangeLoss) Delivered(distance float64) bool {
	return distance <= m.MaxRange
}
