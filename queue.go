package telemock

import (
	"sync"
	"time"
)

// maxLongPollWait caps the server-side wait of a getUpdates long poll,
// whatever timeout the client asked for.
const maxLongPollWait = 30 * time.Second

// updateQueue delivers synthetic updates to the polling bot in FIFO order
// across all producers. Enqueue never blocks. A dequeued update is gone:
// the queue is at-most-once and non-replayable, so updates popped but
// rejected by the offset filter are discarded, not requeued.
type updateQueue struct {
	mu    sync.Mutex
	items []Update

	// notify wakes a blocked consumer. Buffered so a producer never blocks;
	// consumers re-check the queue after every wakeup, so a collapsed
	// signal cannot lose an update.
	notify chan struct{}
}

func newUpdateQueue() *updateQueue {
	return &updateQueue{
		notify: make(chan struct{}, 1),
	}
}

func (q *updateQueue) put(upd Update) {
	q.mu.Lock()
	q.items = append(q.items, upd)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *updateQueue) popFront() (Update, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Update{}, false
	}
	upd := q.items[0]
	q.items = q.items[1:]
	return upd, true
}

func (q *updateQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// drain removes up to limit updates that are available right now, keeping
// only those with update_id >= offset. It never waits.
func (q *updateQueue) drain(offset int64, limit int) []Update {
	out := make([]Update, 0, limit)
	for len(out) < limit {
		upd, ok := q.popFront()
		if !ok {
			break
		}
		if upd.UpdateID >= offset {
			out = append(out, upd)
		}
	}
	return out
}

// waitOne blocks until one update can be popped or the timeout elapses,
// whichever happens first. The wait is capped at maxLongPollWait. On
// success it returns exactly the one update it popped; when that update
// predates the offset it is dropped and the result is empty, mirroring the
// non-blocking discard rule. A timeout returns an empty slice, not an
// error. An update that arrives right at expiry is still delivered: the
// queue is re-checked once after the deadline fires.
func (q *updateQueue) waitOne(offset int64, timeout time.Duration) []Update {
	if timeout > maxLongPollWait {
		timeout = maxLongPollWait
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	var expired bool
	for {
		if upd, ok := q.popFront(); ok {
			if upd.UpdateID >= offset {
				return []Update{upd}
			}
			return nil
		}
		if expired {
			return nil
		}

		select {
		case <-q.notify:
		case <-deadline.C:
			expired = true
		}
	}
}
