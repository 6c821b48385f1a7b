package wsn

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sensorlab/ripple/sim"
)

type countingHook struct {
	sent, delivered, dropped int
}

func (h *countingHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosPacketSent:
		h.sent++
	case HookPosPacketDelivered:
		h.delivered++
	case HookPosPacketDropped:
		h.dropped++
	}
}

var _ = Describe("Channel", func() {
	var (
		engine  *sim.SerialEngine
		channel *Channel
		hook    *countingHook

		sender   *Node
		receiver *Node
		srcEp    *Endpoint
		dstEp    *Endpoint
	)

	setup := func(loss LossModel, receiverPos Position) {
		engine = sim.NewSerialEngine()
		channel = NewChannel(engine, loss, ConstantSpeedDelay{})
		hook = &countingHook{}
		channel.AcceptHook(hook)

		sender = NewNode(0, "sender", Position{})
		receiver = NewNode(1, "receiver", receiverPos)
		channel.Attach(sender)
		channel.Attach(receiver)

		var err error
		srcEp, err = channel.Bind(sender, 50000)
		Expect(err).ToNot(HaveOccurred())
		dstEp, err = channel.Bind(receiver, 50000)
		Expect(err).ToNot(HaveOccurred())
	}

	It("should refuse to bind the same port twice", func() {
		setup(RangeLoss{MaxRange: 10}, Position{})

		_, err := channel.Bind(sender, 50000)
		Expect(err).To(HaveOccurred())
	})

	It("should deliver within range with the propagation delay", func() {
		setup(RangeLoss{MaxRange: 10}, Position{X: 3, Y: 4})

		var got *Packet
		dstEp.SetRecvCallback(func(pkt *Packet) { got = pkt })

		Expect(srcEp.Send([]byte("hi"), dstEp.ID())).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(got).ToNot(BeNil())
		Expect(got.Payload).To(Equal([]byte("hi")))
		Expect(got.Src).To(Equal(srcEp.ID()))

		// Distance 5 m at the speed of light.
		Expect(float64(engine.CurrentTime())).
			To(BeNumerically("~", 5.0/SpeedOfLight, 1e-18))

		Expect(hook.sent).To(Equal(1))
		Expect(hook.delivered).To(Equal(1))
		Expect(hook.dropped).To(Equal(0))
	})

	It("should drop packets beyond the loss model's reach", func() {
		setup(RangeLoss{MaxRange: 10}, Position{X: 20})

		received := 0
		dstEp.SetRecvCallback(func(*Packet) { received++ })

		Expect(srcEp.Send([]byte("hi"), dstEp.ID())).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(received).To(Equal(0))
		Expect(hook.sent).To(Equal(1))
		Expect(hook.delivered).To(Equal(0))
		Expect(hook.dropped).To(Equal(1))
	})

	It("should drop packets addressed to an unbound destination", func() {
		setup(RangeLoss{MaxRange: 10}, Position{})

		unknown := EndpointID{Node: 1, Port: 1}
		Expect(srcEp.Send([]byte("hi"), unknown)).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(hook.sent).To(Equal(1))
		Expect(hook.dropped).To(Equal(1))
	})

	It("should silently drop arrivals at an endpoint with no receiver", func() {
		setup(RangeLoss{MaxRange: 10}, Position{})

		// No receive callback registered: closed-socket semantics.
		Expect(srcEp.Send([]byte("hi"), dstEp.ID())).To(Succeed())
		Expect(engine.Run()).To(Succeed())

		Expect(hook.sent).To(Equal(1))
		Expect(hook.delivered).To(Equal(0))
		Expect(hook.dropped).To(Equal(1))
	})

	It("should fail to send through a closed endpoint", func() {
		setup(RangeLoss{MaxRange: 10}, Position{})

		srcEp.Close()
		Expect(srcEp.Send([]byte("hi"), dstEp.ID())).
			To(MatchError(ErrUnboundEndpoint))
		Expect(hook.sent).To(Equal(0))
	})

	It("should hand each receiver its own payload copy", func() {
		setup(RangeLoss{MaxRange: 10}, Position{})

		var got *Packet
		dstEp.SetRecvCallback(func(pkt *Packet) { got = pkt })

		payload := []byte("mutable")
		Expect(srcEp.Send(payload, dstEp.ID())).To(Succeed())
		payload[0] = 'X'

		Expect(engine.Run()).To(Succeed())
		Expect(got.Payload).To(Equal([]byte("mutable")))
	})
})
