package sim

import (
	"container/heap"
	"errors"
)

// ErrEmptyQueue is returned when popping from a queue with no pending events.
var ErrEmptyQueue = errors.New("event queue is empty")

// Event is a deferred action scheduled at a simulation time.
type Event struct {
	Time   float64 // Simulation time the action runs at
	Action func()  // Zero-argument action, runs with the clock already at Time
	Label  string  // Human-readable tag for logs (optional)

	seqID int64 // insertion order, breaks ties between equal times
	index int   // position in the heap, -1 once removed
}

// EventHandle is a revocable reference to a scheduled event.
type EventHandle struct {
	queue *EventQueue
	event *Event
}

// Time returns the scheduled time of the referenced event.
func (h *EventHandle) Time() float64 {
	return h.event.Time
}

// Pending reports whether the event is still waiting in its queue.
func (h *EventHandle) Pending() bool {
	return h != nil && h.event.index >= 0
}

// Cancel removes the event from its queue. Returns false if it already ran
// or was cancelled before.
func (h *EventHandle) Cancel() bool {
	if !h.Pending() {
		return false
	}
	heap.Remove(&h.queue.items, h.event.index)
	return true
}

// eventHeap implements heap.Interface and orders events by (Time, seqID).
type eventHeap []*Event

func (q eventHeap) Len() int { return len(q) }

func (q eventHeap) Less(i, j int) bool {
	if q[i].Time != q[j].Time {
		return q[i].Time < q[j].Time
	}
	return q[i].seqID < q[j].seqID
}

func (q eventHeap) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *eventHeap) Push(x any) {
	e := x.(*Event)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *eventHeap) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// EventQueue is a min-heap of events with stable FIFO ordering among equal times.
// Scheduling from inside a running action is allowed.
// Thread-safety: NOT thread-safe. Must be driven from a single goroutine.
type EventQueue struct {
	items   eventHeap
	nextSeq int64
}

// NewEventQueue creates an empty event queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{items: make(eventHeap, 0)}
}

// Schedule inserts an action at the given time. Times earlier than the
// current clock are accepted.
func (q *EventQueue) Schedule(time float64, action func()) *EventHandle {
	return q.ScheduleLabeled(time, "", action)
}

// ScheduleLabeled is Schedule with a label used in logs.
func (q *EventQueue) ScheduleLabeled(time float64, label string, action func()) *EventHandle {
	e := &Event{Time: time, Action: action, Label: label, seqID: q.nextSeq}
	q.nextSeq++
	heap.Push(&q.items, e)
	return &EventHandle{queue: q, event: e}
}

// PopEarliest removes and returns the earliest event.
func (q *EventQueue) PopEarliest() (*Event, error) {
	if q.IsEmpty() {
		return nil, ErrEmptyQueue
	}
	return heap.Pop(&q.items).(*Event), nil
}

// Peek returns the earliest event without removing it, or nil.
func (q *EventQueue) Peek() *Event {
	if q.IsEmpty() {
		return nil
	}
	return q.items[0]
}

// IsEmpty reports whether no events are pending.
func (q *EventQueue) IsEmpty() bool {
	return len(q.items) == 0
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.items)
}
