// Package netanim writes an animation trace of a finished run, in the XML
// format the NetAnim visualizer consumes.
package netanim

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/sensorlab/ripple/sim"
	"github.com/sensorlab/ripple/wsn"
)

type nodeEntry struct {
	XMLName xml.Name `xml:"node"`
	ID      int      `xml:"id,attr"`
	LocX    float64  `xml:"locX,attr"`
	LocY    float64  `xml:"locY,attr"`
}

type packetEntry struct {
	XMLName xml.Name `xml:"packet"`
	FromID  int      `xml:"fromId,attr"`
	FbTx    float64  `xml:"fbTx,attr"`
	LbTx    float64  `xml:"lbTx,attr"`
	ToID    int      `xml:"toId,attr"`
	FbRx    float64  `xml:"fbRx,attr"`
	LbRx    float64  `xml:"lbRx,attr"`
}

type trace struct {
	XMLName xml.Name      `xml:"anim"`
	Version string        `xml:"ver,attr"`
	Nodes   []nodeEntry   `xml:"node"`
	Packets []packetEntry `xml:"packet"`
}

// A Tracer records node placement and packet flights, and can dump them as
// an animation file. Attach it to the channel with AcceptHook.
type Tracer struct {
	tt sim.TimeTeller

	nodes   []nodeEntry
	packets []packetEntry
	txTime  map[*wsn.Packet]sim.VTimeInSec
}

// NewTracer creates a tracer reading time from tt.
func NewTracer(tt sim.TimeTeller) *Tracer {
	return &Tracer{
		tt:     tt,
		txTime: make(map[*wsn.Packet]sim.VTimeInSec),
	}
}

// AddNode records a node's position. Call once per node before the run.
func (t *Tracer) AddNode(id wsn.NodeID, pos wsn.Position) {
	t.nodes = append(t.nodes, nodeEntry{
		ID:   int(id),
		LocX: pos.X,
		LocY: pos.Y,
	})
}

// Func implements sim.Hook. Only delivered packets become animation
// entries; drops have no receive side to draw.
func (t *Tracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case wsn.HookPosPacketSent:
		pkt := ctx.Item.(*wsn.Packet)
		t.txTime[pkt] = pkt.SendTime
	case wsn.HookPosPacketDelivered:
		pkt := ctx.Item.(*wsn.Packet)
		tx, ok := t.txTime[pkt]
		if !ok {
			return
		}
		delete(t.txTime, pkt)

		rx := float64(t.tt.CurrentTime())
		t.packets = append(t.packets, packetEntry{
			FromID: int(pkt.Src.Node),
			FbTx:   float64(tx),
			LbTx:   float64(tx),
			ToID:   int(pkt.Dst.Node),
			FbRx:   rx,
			LbRx:   rx,
		})
	case wsn.HookPosPacketDropped:
		delete(t.txTime, ctx.Item.(*wsn.Packet))
	}
}

// Save writes the collected trace to path.
func (t *Tracer) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating animation file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	err = enc.Encode(trace{
		Version: "netanim-3.109",
		Nodes:   t.nodes,
		Packets: t.packets,
	})
	if err != nil {
		return fmt.Errorf("encoding animation file: %w", err)
	}

	return enc.Close()
}
