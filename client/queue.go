// api/client/queue.go
package client

// MaxQueue bounds the in-memory event buffer. Once full, the oldest events
// are dropped so the newest always fit.
const MaxQueue = 120

// Event is a pending analytics event, transient until flushed. Device and
// page context are attached at flush time, not here.
type Event struct {
	Type        string
	PageKey     string
	VisitorName string
	DurationMs  *int64
	OccurredAt  string
	Meta        map[string]any
}

// eventQueue is an ordered, bounded buffer of pending events. It is not
// safe for concurrent use on its own; Session serializes access.
type eventQueue struct {
	events []Event
}

// Push appends to the tail and drops the oldest entries beyond MaxQueue.
func (q *eventQueue) Push(ev Event) {
	q.events = append(q.events, ev)
	if len(q.events) > MaxQueue {
		q.events = q.events[len(q.events)-MaxQueue:]
	}
}

// Drain removes and returns everything queued, leaving the queue empty.
// Events pushed during an in-flight flush land in a fresh slice and are
// neither lost nor double-sent.
func (q *eventQueue) Drain() []Event {
	batch := q.events
	q.events = nil
	return batch
}

// RequeueFront puts a failed batch back ahead of anything queued since, so
// the next flush retries in the original order. The cap is re-applied on
// the next Push.
func (q *eventQueue) RequeueFront(batch []Event) {
	if len(batch) == 0 {
		return
	}
	q.events = append(batch, q.events...)
}

// Len reports how many events are waiting.
func (q *eventQueue) Len() int {
	return len(q.events)
}
