package wsn

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sensorlab/ripple/sim"
)

var _ = Describe("ConstantSpeedDelay", func() {
	It("should return zero delay at zero distance", func() {
		m := ConstantSpeedDelay{}
		Expect(m.Delay(0)).To(Equal(sim.VTimeInSec(0)))
	})

	It("should scale linearly with distance", func() {
		m := ConstantSpeedDelay{Speed: 100}
		Expect(m.Delay(50)).To(Equal(sim.VTimeInSec(0.5)))
		Expect(m.Delay(200)).To(Equal(sim.VTimeInSec(2.0)))
	})

	It("should default to the speed of light", func() {
		m := ConstantSpeedDelay{}
		Expect(float64(m.Delay(SpeedOfLight))).To(BeNumerically("~", 1.0, 1e-12))
	})
})

var _ = Describe("LogDistanceLoss", func() {
	var m LogDistanceLoss

	BeforeEach(func() {
		m = DefaultLogDistanceLoss()
	})

	It("should deliver at zero distance", func() {
		Expect(m.Delivered(0)).To(BeTrue())
	})

	It("should deliver within the reference distance", func() {
		Expect(m.Delivered(1.0)).To(BeTrue())
	})

	It("should stop delivering once attenuation crosses the sensitivity", func() {
		// With the defaults, the link budget is
		// 16.0206 - 46.6777 - (-101) = 70.34 dB, which the exponent-3
		// term exhausts a little above 222 m.
		Expect(m.Delivered(200)).To(BeTrue())
		Expect(m.Delivered(250)).To(BeFalse())
		Expect(m.Delivered(10000)).To(BeFalse())
	})

	It("should be monotonic in distance", func() {
		last := true
		for d := 1.0; d < 1000; d += 10 {
			delivered := m.Delivered(d)
			if !last {
				Expect(delivered).To(BeFalse())
			}
			last = delivered
		}
	})
})

var _ = Describe("RangeLoss", func() {
	It("should deliver inside the range, inclusive", func() {
		m := RangeLoss{MaxRange: 100}
		Expect(m.Delivered(0)).To(BeTrue())
		Expect(m.Delivered(100)).To(BeTrue())
		Expect(m.Delivered(100.01)).To(BeFalse())
		Expect(m.Delivered(200)).To(BeFalse())
	})
})

var _ = Describe("GridPositionAllocator", func() {
	It("should lay nodes out row first", func() {
		g := GridPositionAllocator{DeltaX: 10, DeltaY: 10, GridWidth: 3}

		Expect(g.Position(0)).To(Equal(Position{X: 0, Y: 0}))
		Expect(g.Position(1)).To(Equal(Position{X: 10, Y: 0}))
		Expect(g.Position(2)).To(Equal(Position{X: 20, Y: 0}))
		Expect(g.Position(3)).To(Equal(Position{X: 0, Y: 10}))
		Expect(g.Position(5)).To(Equal(Position{X: 20, Y: 10}))
	})
})
