package eventlog

import (
	"srtrack/internal/models"

	"go.uber.org/atomic"
)

// Queue hands free gifts from a channel listener to the tick loop. Offer never
// blocks; a full queue drops the event and counts it.
type Queue struct {
	ch      chan models.LogEvent
	dropped atomic.Int64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{ch: make(chan models.LogEvent, size)}
}

func (q *Queue) Offer(ev models.LogEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Inc()
		return false
	}
}

// Drain returns everything queued at the time of the call.
func (q *Queue) Drain() []models.LogEvent {
	var out []models.LogEvent
	for {
		select {
		case ev := <-q.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func (q *Queue) Len() int {
	return len(q.ch)
}

func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}
