package simulation

import (
	"bytes"
	"log"
	"sync/atomic"

	"github.com/sensorlab/ripple/datarecording"
	"github.com/sensorlab/ripple/sim"
	"github.com/sensorlab/ripple/wsn"
)

// EventKind classifies the entries of the observation stream.
type EventKind string

// The observable event kinds.
const (
	KindSent      EventKind = "sent"
	KindDelivered EventKind = "delivered"
	KindDropped   EventKind = "dropped"
	KindStarted   EventKind = "started"
	KindStopped   EventKind = "stopped"
)

// A Record is one entry of the observation stream. Records are emitted
// synchronously as events dispatch, so their order is deterministic.
type Record struct {
	Time    sim.VTimeInSec
	Node    wsn.NodeID
	Kind    EventKind
	Summary string
}

// A StreamSink consumes observation records as they are emitted.
type StreamSink interface {
	Observe(r Record)
}

// maxSummaryLen bounds the payload excerpt kept in a record.
const maxSummaryLen = 24

// collector turns channel and application hooks into the observation
// stream. Records and sinks are touched on the engine's dispatch path
// only; the counters are atomic because the monitor reads them from its
// HTTP goroutine while the run is in progress.
type collector struct {
	tt sim.TimeTeller

	records []Record
	sinks   []StreamSink

	sent, delivered, dropped atomic.Uint64
}

func (c *collector) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case wsn.HookPosPacketSent:
		pkt := ctx.Item.(*wsn.Packet)
		c.sent.Add(1)
		c.emit(Record{
			Time:    c.tt.CurrentTime(),
			Node:    pkt.Src.Node,
			Kind:    KindSent,
			Summary: summarize(pkt.Payload),
		})
	case wsn.HookPosPacketDelivered:
		pkt := ctx.Item.(*wsn.Packet)
		c.delivered.Add(1)
		c.emit(Record{
			Time:    c.tt.CurrentTime(),
			Node:    pkt.Dst.Node,
			Kind:    KindDelivered,
			Summary: summarize(pkt.Payload),
		})
	case wsn.HookPosPacketDropped:
		pkt := ctx.Item.(*wsn.Packet)
		c.dropped.Add(1)
		c.emit(Record{
			Time:    c.tt.CurrentTime(),
			Node:    pkt.Dst.Node,
			Kind:    KindDropped,
			Summary: summarize(pkt.Payload),
		})
	case wsn.HookPosAppStarted:
		app := ctx.Item.(wsn.Application)
		c.emit(Record{
			Time:    c.tt.CurrentTime(),
			Node:    app.Node(),
			Kind:    KindStarted,
			Summary: app.Name(),
		})
	case wsn.HookPosAppStopped:
		app := ctx.Item.(wsn.Application)
		c.emit(Record{
			Time:    c.tt.CurrentTime(),
			Node:    app.Node(),
			Kind:    KindStopped,
			Summary: app.Name(),
		})
	}
}

func (c *collector) emit(r Record) {
	c.records = append(c.records, r)
	for _, sink := range c.sinks {
		sink.Observe(r)
	}
}

// summarize trims padding and caps the payload excerpt.
func summarize(payload []byte) string {
	trimmed := bytes.TrimRight(payload, "\x00")
	if len(trimmed) > maxSummaryLen {
		trimmed = trimmed[:maxSummaryLen]
	}

	return string(trimmed)
}

// A LogSink writes every observation record to a logger.
type LogSink struct {
	Logger *log.Logger
}

// Observe writes one record.
func (s LogSink) Observe(r Record) {
	s.Logger.Printf("%.7f node%d %s %s", r.Time, r.Node, r.Kind, r.Summary)
}

// observationTable is the table the recorder sink writes into.
const observationTable = "observations"

// recordEntry is the row shape of the observation table.
type recordEntry struct {
	Time    float64
	Node    int
	Kind    string
	Summary string
}

// A recorderSink persists the observation stream with a DataRecorder.
type recorderSink struct {
	recorder datarecording.DataRecorder
}

func newRecorderSink(recorder datarecording.DataRecorder) *recorderSink {
	recorder.CreateTable(observationTable, recordEntry{})
	return &recorderSink{recorder: recorder}
}

// Observe buffers one record into the database.
func (s *recorderSink) Observe(r Record) {
	s.recorder.InsertData(observationTable, recordEntry{
		Time:    float64(r.Time),
		Node:    int(r.Node),
		Kind:    string(r.Kind),
		Summary: r.Summary,
	})
}
