package wsn

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sensorlab/ripple/sim"
)

type lifecycleHook struct {
	started, stopped int
}

func (h *lifecycleHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosAppStarted:
		h.started++
	case HookPosAppStopped:
		h.stopped++
	}
}

var _ = Describe("Application lifecycle", func() {
	var (
		engine  *sim.SerialEngine
		channel *Channel

		sensorNode *Node
		gwNode     *Node
		sensorEp   *Endpoint
		gwEp       *Endpoint
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		channel = NewChannel(engine, RangeLoss{MaxRange: 100}, ConstantSpeedDelay{})

		sensorNode = NewNode(0, "sensor0", Position{})
		gwNode = NewNode(1, "gateway", Position{})
		channel.Attach(sensorNode)
		channel.Attach(gwNode)

		var err error
		sensorEp, err = channel.Bind(sensorNode, 50000)
		Expect(err).ToNot(HaveOccurred())
		gwEp, err = channel.Bind(gwNode, 50000)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should start and stop a sensor exactly once", func() {
		app := NewPeriodicSensorApp(
			"sensor0", engine, sensorEp, gwEp.ID(), 2.0, 32, 1)
		hook := &lifecycleHook{}
		app.AcceptHook(hook)

		_, _, err := ScheduleLifecycle(engine, app, 2.0, 10.0)
		Expect(err).ToNot(HaveOccurred())

		Expect(engine.RunUntil(10.0)).To(Succeed())

		Expect(hook.started).To(Equal(1))
		Expect(hook.stopped).To(Equal(1))
		Expect(app.Running()).To(BeFalse())
	})

	It("should reject a second start or stop", func() {
		app := NewPeriodicSensorApp(
			"sensor0", engine, sensorEp, gwEp.ID(), 2.0, 32, 1)

		Expect(app.Start(0)).To(Succeed())
		Expect(app.Start(0)).To(MatchError(ErrDoubleStart))

		Expect(app.Stop(1)).To(Succeed())
		Expect(app.Stop(1)).To(MatchError(ErrDoubleStop))
		Expect(app.Start(1)).To(MatchError(ErrDoubleStart))
	})

	It("should send periodically until stopped", func() {
		gw := NewGatewayReceiverApp("gateway", engine, gwEp, nil)
		sensor := NewPeriodicSensorApp(
			"sensor0", engine, sensorEp, gwEp.ID(), 2.0, 32, 1)

		_, _, err := ScheduleLifecycle(engine, gw, 0, 10.0)
		Expect(err).ToNot(HaveOccurred())
		_, _, err = ScheduleLifecycle(engine, sensor, 2.0, 10.0)
		Expect(err).ToNot(HaveOccurred())

		Expect(engine.RunUntil(10.0)).To(Succeed())

		// Sends at t=2, 4, 6, 8. The send due at t=10 is cancelled by
		// the stop, which was queued first.
		records := gw.Received()
		Expect(records).To(HaveLen(4))
		for i, r := range records {
			Expect(r.ArrivalTime).To(Equal(sim.VTimeInSec(2 + 2*i)))
			Expect(r.Src).To(Equal(sensorEp.ID()))
			Expect(r.Payload).To(HaveLen(32))
			Expect(string(r.Payload[:4])).To(Equal("pH: "))
		}
	})

	It("should produce identical payloads for identical seeds", func() {
		run := func() [][]byte {
			e := sim.NewSerialEngine()
			ch := NewChannel(e, RangeLoss{MaxRange: 100}, ConstantSpeedDelay{})
			sn := NewNode(0, "sensor0", Position{})
			gn := NewNode(1, "gateway", Position{})
			ch.Attach(sn)
			ch.Attach(gn)
			sEp, err := ch.Bind(sn, 50000)
			Expect(err).ToNot(HaveOccurred())
			gEp, err := ch.Bind(gn, 50000)
			Expect(err).ToNot(HaveOccurred())

			gw := NewGatewayReceiverApp("gateway", e, gEp, nil)
			sensor := NewPeriodicSensorApp(
				"sensor0", e, sEp, gEp.ID(), 2.0, 32, 42)

			_, _, err = ScheduleLifecycle(e, gw, 0, 10.0)
			Expect(err).ToNot(HaveOccurred())
			_, _, err = ScheduleLifecycle(e, sensor, 2.0, 10.0)
			Expect(err).ToNot(HaveOccurred())

			Expect(e.RunUntil(10.0)).To(Succeed())

			payloads := [][]byte{}
			for _, r := range gw.Received() {
				payloads = append(payloads, r.Payload)
			}
			return payloads
		}

		Expect(run()).To(Equal(run()))
	})

	It("should drop packets that arrive after the receiver stopped", func() {
		hook := &countingHook{}
		channel.AcceptHook(hook)

		gw := NewGatewayReceiverApp("gateway", engine, gwEp, nil)
		Expect(gw.Start(0)).To(Succeed())

		// One packet arrives while running, one after the stop.
		Expect(sensorEp.Send([]byte("a"), gwEp.ID())).To(Succeed())
		_, err := engine.ScheduleFunc(1.0, func(now sim.VTimeInSec) error {
			if err := gw.Stop(now); err != nil {
				return err
			}
			return sensorEp.Send([]byte("b"), gwEp.ID())
		})
		Expect(err).ToNot(HaveOccurred())

		Expect(engine.Run()).To(Succeed())

		Expect(gw.Received()).To(HaveLen(1))
		Expect(hook.sent).To(Equal(2))
		Expect(hook.delivered).To(Equal(1))
		Expect(hook.dropped).To(Equal(1))
	})
})
