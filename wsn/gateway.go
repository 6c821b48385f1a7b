package wsn

import (
	"bytes"
	"log"

	"github.com/sensorlab/ripple/sim"
)

// A ReceivedRecord is one entry of the gateway's observable log.
type ReceivedRecord struct {
	Src         EndpointID
	Payload     []byte
	ArrivalTime sim.VTimeInSec
}

// A GatewayReceiverApp collects every packet delivered to its endpoint. It
// performs no sends and schedules no events of its own; it only reacts to
// arrivals through the endpoint's receive callback.
type GatewayReceiverApp struct {
	*AppBase

	tt       sim.TimeTeller
	endpoint *Endpoint
	logger   *log.Logger

	received []ReceivedRecord
}

// NewGatewayReceiverApp creates a receiver on the given endpoint. The
// logger is optional; when set, every arrival is logged.
func NewGatewayReceiverApp(
	name string,
	tt sim.TimeTeller,
	endpoint *Endpoint,
	logger *log.Logger,
) *GatewayReceiverApp {
	return &GatewayReceiverApp{
		AppBase:  NewAppBase(name),
		tt:       tt,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Node returns the node hosting the gateway.
func (a *GatewayReceiverApp) Node() NodeID {
	return a.endpoint.ID().Node
}

// Start registers the receive callback.
func (a *GatewayReceiverApp) Start(now sim.VTimeInSec) error {
	if err := a.toRunning(); err != nil {
		return err
	}

	a.endpoint.SetRecvCallback(a.recvPacket)

	a.InvokeHook(sim.HookCtx{
		Domain: a,
		Pos:    HookPosAppStarted,
		Item:   Application(a),
	})

	return nil
}

// recvPacket runs synchronously within the dispatch of the arrival event.
func (a *GatewayReceiverApp) recvPacket(pkt *Packet) {
	a.received = append(a.received, ReceivedRecord{
		Src:         pkt.Src,
		Payload:     pkt.Payload,
		ArrivalTime: a.tt.CurrentTime(),
	})

	if a.logger != nil {
		a.logger.Printf("%s received: %s",
			a.Name(), bytes.TrimRight(pkt.Payload, "\x00"))
	}
}

// Received returns the log of delivered packets, in arrival order.
func (a *GatewayReceiverApp) Received() []ReceivedRecord {
	return a.received
}

// Stop deregisters the receive callback. Packets arriving afterwards are
// silently dropped, not buffered.
func (a *GatewayReceiverApp) Stop(now sim.VTimeInSec) error {
	if err := a.toStopped(); err != nil {
		return err
	}

	a.endpoint.ClearRecvCallback()

	a.InvokeHook(sim.HookCtx{
		Domain: a,
		Pos:    HookPosAppStopped,
		Item:   Application(a),
	})

	return nil
}
