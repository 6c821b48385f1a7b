package sim

import (
	"container/heap"
	"sync"
)

// An EventHandle refers to an event that sits in an event queue. It is the
// only way to cancel a scheduled event.
type EventHandle struct {
	evt       Event
	seq       uint64
	cancelled bool
}

// Event returns the event the handle refers to.
func (h *EventHandle) Event() Event {
	return h.evt
}

// Cancel marks the event so that the engine discards it instead of
// dispatching it. Cancelling twice, or cancelling after the event fired, is
// a no-op.
func (h *EventHandle) Cancel() {
	h.cancelled = true
}

// Cancelled returns true if the event has been cancelled.
func (h *EventHandle) Cancelled() bool {
	return h.cancelled
}

// EventQueue is a queue of events ordered by time. Events with the same time
// keep their insertion order, so that the dispatch order is reproducible
// across runs with identical inputs.
type EventQueue interface {
	Push(evt Event) *EventHandle
	Pop() *EventHandle
	Len() int
	Peek() *EventHandle
}

// EventQueueImpl provides a thread safe event queue.
type EventQueueImpl struct {
	sync.Mutex
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates and returns a newly created EventQueue.
func NewEventQueue() *EventQueueImpl {
	q := new(EventQueueImpl)
	q.events = make(eventHeap, 0)
	heap.Init(&q.events)
	return q
}

// Push adds an event to the event queue and returns the handle that can
// cancel it. Cancelled events are removed lazily when they surface at the
// front of the queue.
func (q *EventQueueImpl) Push(evt Event) *EventHandle {
	q.Lock()
	h := &EventHandle{evt: evt, seq: q.nextSeq}
	q.nextSeq++
	heap.Push(&q.events, h)
	q.Unlock()
	return h
}

// Pop returns the next earliest event.
func (q *EventQueueImpl) Pop() *EventHandle {
	q.Lock()
	h := heap.Pop(&q.events).(*EventHandle)
	q.Unlock()
	return h
}

// Len returns the number of events in the queue, including events that are
// cancelled but not yet discarded.
func (q *EventQueueImpl) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()
	return l
}

// Peek returns the event in front of the queue without removing it from the
// queue.
func (q *EventQueueImpl) Peek() *EventHandle {
	q.Lock()
	h := q.events[0]
	q.Unlock()
	return h
}

type eventHeap []*EventHandle

// Len returns the length of the event queue.
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two events. Ties on time are broken by
// the insertion sequence number.
func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].evt.Time(), h[j].evt.Time()
	if ti != tj {
		return ti < tj
	}
	return h[i].seq < h[j].seq
}

// Swap changes the position of two events in the event queue.
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an event into the event queue.
func (h *eventHeap) Push(x interface{}) {
	handle := x.(*EventHandle)
	*h = append(*h, handle)
}

// Pop removes and returns the next event to happen.
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	handle := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return handle
}
