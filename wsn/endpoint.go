package wsn

import "errors"

// ErrUnboundEndpoint is returned when sending through an endpoint that is
// not, or no longer, bound to a node.
var ErrUnboundEndpoint = errors.New("wsn: endpoint is not bound to a node")

// A RecvCallback is invoked synchronously, within the dispatch of the
// arrival event, for every packet delivered to an endpoint.
type RecvCallback func(pkt *Packet)

// An Endpoint is a node-bound send/receive handle, analogous to a socket.
// Endpoints are created by binding a port on a node through the channel.
type Endpoint struct {
	id      EndpointID
	node    *Node
	channel *Channel

	recv   RecvCallback
	closed bool
}

// ID returns the address of the endpoint.
func (e *Endpoint) ID() EndpointID {
	return e.id
}

// Node returns the node the endpoint is bound to.
func (e *Endpoint) Node() *Node {
	return e.node
}

// Send transmits a payload to the destination endpoint. The payload is
// copied into a packet stamped with the current virtual time. Whether and
// when the packet arrives is decided by the channel; a lost packet is not an
// error.
func (e *Endpoint) Send(payload []byte, dst EndpointID) error {
	if e.closed || e.node == nil || e.channel == nil {
		return ErrUnboundEndpoint
	}

	pkt := NewPacket(payload, e.id, dst, e.channel.engine.CurrentTime())

	return e.channel.Transmit(pkt)
}

// SetRecvCallback registers the handler invoked for every delivered packet.
// It replaces any previously registered callback.
func (e *Endpoint) SetRecvCallback(fn RecvCallback) {
	e.recv = fn
}

// ClearRecvCallback deregisters the receive callback. Packets arriving
// afterwards are silently dropped, mirroring a closed socket.
func (e *Endpoint) ClearRecvCallback() {
	e.recv = nil
}

// Close detaches the endpoint. Further sends fail with ErrUnboundEndpoint
// and arrivals are dropped.
func (e *Endpoint) Close() {
	e.recv = nil
	e.closed = true
}

// canReceive tells whether an arriving packet has somewhere to go.
func (e *Endpoint) canReceive() bool {
	return !e.closed && e.recv != nil
}
