package wsn

import (
	"fmt"

	"github.com/sensorlab/ripple/sim"
)

// A NodeID identifies a node within one simulation.
type NodeID int

// An EndpointID is the address of an endpoint: the owning node plus a port.
type EndpointID struct {
	Node NodeID
	Port uint16
}

func (id EndpointID) String() string {
	return fmt.Sprintf("node%d:%d", id.Node, id.Port)
}

// A Packet is an immutable chunk of bytes in flight between two endpoints.
type Packet struct {
	Payload  []byte
	Src      EndpointID
	Dst      EndpointID
	SendTime sim.VTimeInSec
}

// NewPacket creates a packet, copying the payload so that the sender and the
// receiver never share backing storage.
func NewPacket(
	payload []byte,
	src, dst EndpointID,
	sendTime sim.VTimeInSec,
) *Packet {
	p := &Packet{
		Payload:  make([]byte, len(payload)),
		Src:      src,
		Dst:      dst,
		SendTime: sendTime,
	}
	copy(p.Payload, payload)

	return p
}
