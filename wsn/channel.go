package wsn

import (
	"fmt"

	"github.com/sensorlab/ripple/sim"
)

// HookPosPacketSent marks when a packet enters the channel.
var HookPosPacketSent = &sim.HookPos{Name: "PacketSent"}

// HookPosPacketDelivered marks when a packet reaches a live endpoint.
var HookPosPacketDelivered = &sim.HookPos{Name: "PacketDelivered"}

// HookPosPacketDropped marks when a packet is lost, either on the channel
// or because its destination stopped receiving.
var HookPosPacketDropped = &sim.HookPos{Name: "PacketDropped"}

// A DeliverEvent moves a packet to its destination endpoint when the
// propagation delay has elapsed.
type DeliverEvent struct {
	*sim.EventBase

	Pkt *Packet
}

// A Channel connects every bound endpoint in a simulation. For each
// transmission it computes, from the sender and receiver positions at send
// time, whether the packet is delivered and with what delay. The channel
// holds no per-transmission state; the configured models are shared
// read-only by all the nodes.
type Channel struct {
	sim.HookableBase

	engine sim.Engine
	loss   LossModel
	delay  DelayModel

	nodes     map[NodeID]*Node
	endpoints map[EndpointID]*Endpoint

	inFlight []*Packet
}

// NewChannel creates a channel with the given propagation models.
func NewChannel(engine sim.Engine, loss LossModel, delay DelayModel) *Channel {
	return &Channel{
		engine:    engine,
		loss:      loss,
		delay:     delay,
		nodes:     make(map[NodeID]*Node),
		endpoints: make(map[EndpointID]*Endpoint),
	}
}

// Attach registers a node with the channel. Attaching the same node ID
// twice is a setup error.
func (c *Channel) Attach(n *Node) {
	if _, ok := c.nodes[n.ID()]; ok {
		panic(fmt.Sprintf("node %d already attached", n.ID()))
	}

	c.nodes[n.ID()] = n
}

// Bind creates an endpoint on the given node and port. The endpoint is
// owned by the node for the rest of the run.
func (c *Channel) Bind(n *Node, port uint16) (*Endpoint, error) {
	if _, ok := c.nodes[n.ID()]; !ok {
		return nil, fmt.Errorf("wsn: node %d is not attached to the channel", n.ID())
	}

	if n.endpoints[port] != nil {
		return nil, fmt.Errorf("wsn: port %d already bound on node %d", port, n.ID())
	}

	ep := &Endpoint{
		id:      EndpointID{Node: n.ID(), Port: port},
		node:    n,
		channel: c,
	}
	n.endpoints[port] = ep
	c.endpoints[ep.id] = ep

	return ep, nil
}

// Transmit runs the send path for one packet. The outcome is a pure
// function of the two node positions at send time. A lost packet is
// reported through the drop hook, never as an error.
func (c *Channel) Transmit(pkt *Packet) error {
	src, ok := c.nodes[pkt.Src.Node]
	if !ok {
		return fmt.Errorf("wsn: unknown source node %d", pkt.Src.Node)
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPacketSent,
		Item:   pkt,
	})

	dstEp, ok := c.endpoints[pkt.Dst]
	if !ok {
		// No such address. The packet vanishes, like a datagram sent to
		// a host that does not exist.
		c.dropPacket(pkt)
		return nil
	}

	distance := src.Position().DistanceTo(dstEp.node.Position())
	outcome := DeliveryOutcome{
		Delivered: c.loss.Delivered(distance),
		Delay:     c.delay.Delay(distance),
	}

	if !outcome.Delivered {
		c.dropPacket(pkt)
		return nil
	}

	evt := &DeliverEvent{Pkt: pkt}
	evt.EventBase = sim.NewEventBase(
		c.engine.CurrentTime()+outcome.Delay, c)

	_, err := c.engine.Schedule(evt)
	if err != nil {
		return err
	}

	c.inFlight = append(c.inFlight, pkt)
	return nil
}

// Handle delivers a packet when its arrival event fires. A packet arriving
// at an endpoint that stopped receiving is silently dropped and counted,
// mirroring a closed socket.
func (c *Channel) Handle(e sim.Event) error {
	evt, ok := e.(*DeliverEvent)
	if !ok {
		return fmt.Errorf("wsn: channel cannot handle event of type %T", e)
	}

	pkt := evt.Pkt
	if !c.removeInFlight(pkt) {
		// The packet was already aborted at the end of a run; its drop
		// has been accounted for.
		return nil
	}

	ep := c.endpoints[pkt.Dst]
	if ep == nil || !ep.canReceive() {
		c.dropPacket(pkt)
		return nil
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPacketDelivered,
		Item:   pkt,
	})

	ep.recv(pkt)

	return nil
}

// AbortInFlight drops every packet whose arrival event has not fired yet.
// The simulation calls it when a run ends with packets still propagating,
// so that every sent packet is accounted as delivered or dropped.
func (c *Channel) AbortInFlight() {
	pending := c.inFlight
	c.inFlight = nil

	for _, pkt := range pending {
		c.dropPacket(pkt)
	}
}

func (c *Channel) removeInFlight(pkt *Packet) bool {
	for i, p := range c.inFlight {
		if p == pkt {
			c.inFlight = append(c.inFlight[:i], c.inFlight[i+1:]...)
			return true
		}
	}

	return false
}

func (c *Channel) dropPacket(pkt *Packet) {
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosPacketDropped,
		Item:   pkt,
	})
}
