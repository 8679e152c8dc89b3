package telemock

import (
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	q := newUpdateQueue()
	for i := int64(1); i <= 5; i++ {
		q.put(Update{UpdateID: i})
	}

	out := q.drain(0, 100)
	if len(out) != 5 {
		t.Fatalf("expected 5 updates, got %d", len(out))
	}
	for i, upd := range out {
		if upd.UpdateID != int64(i+1) {
			t.Fatalf("expected update id %d at position %d, got %d", i+1, i, upd.UpdateID)
		}
	}
	if q.len() != 0 {
		t.Fatalf("queue should be empty after drain, has %d", q.len())
	}
}

func TestQueueDrainLimit(t *testing.T) {
	q := newUpdateQueue()
	for i := int64(1); i <= 5; i++ {
		q.put(Update{UpdateID: i})
	}

	out := q.drain(0, 2)
	if len(out) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(out))
	}
	if q.len() != 3 {
		t.Fatalf("expected 3 updates left, got %d", q.len())
	}
}

func TestQueueOffsetDiscards(t *testing.T) {
	q := newUpdateQueue()
	for i := int64(1); i <= 5; i++ {
		q.put(Update{UpdateID: i})
	}

	out := q.drain(3, 100)
	if len(out) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(out))
	}
	if out[0].UpdateID != 3 {
		t.Fatalf("expected first update id 3, got %d", out[0].UpdateID)
	}

	// The discarded updates are gone for good.
	if got := q.drain(0, 100); len(got) != 0 {
		t.Fatalf("expected discarded updates to not reappear, got %d", len(got))
	}
}

func TestQueueWaitOneDelivers(t *testing.T) {
	q := newUpdateQueue()

	go func() {
		time.Sleep(50 * time.Millisecond)
		q.put(Update{UpdateID: 1})
	}()

	started := time.Now()
	out := q.waitOne(0, 5*time.Second)
	elapsed := time.Since(started)

	if len(out) != 1 || out[0].UpdateID != 1 {
		t.Fatalf("expected the one update, got %v", out)
	}
	if elapsed > time.Second {
		t.Fatalf("wait took too long: %v", elapsed)
	}
}

func TestQueueWaitOneTimeout(t *testing.T) {
	q := newUpdateQueue()

	started := time.Now()
	out := q.waitOne(0, 100*time.Millisecond)
	elapsed := time.Since(started)

	if len(out) != 0 {
		t.Fatalf("expected no updates, got %v", out)
	}
	if elapsed < 100*time.Millisecond {
		t.Fatalf("returned before the timeout: %v", elapsed)
	}
}

func TestQueueWaitOneExpiryRace(t *testing.T) {
	// Races a producer against the wait deadline. Whichever side wins,
	// the update must end up either in the returned slice or still in
	// the queue; it is never lost.
	const timeout = 10 * time.Millisecond

	for i := int64(1); i <= 20; i++ {
		q := newUpdateQueue()

		go func(id int64) {
			time.Sleep(timeout)
			q.put(Update{UpdateID: id})
		}(i)

		out := q.waitOne(0, timeout)
		if len(out) > 0 {
			if out[0].UpdateID != i {
				t.Fatalf("iteration %d: delivered wrong update %d", i, out[0].UpdateID)
			}
			if q.len() != 0 {
				t.Fatalf("iteration %d: delivered update still queued", i)
			}
			continue
		}

		// The producer may not have run yet; once it has, the update
		// must be waiting in the queue.
		deadline := time.Now().Add(time.Second)
		for q.len() == 0 {
			if time.Now().After(deadline) {
				t.Fatalf("iteration %d: update lost at expiry", i)
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func TestQueueWaitOneBelowOffset(t *testing.T) {
	q := newUpdateQueue()
	q.put(Update{UpdateID: 1})

	started := time.Now()
	out := q.waitOne(10, 5*time.Second)
	elapsed := time.Since(started)

	// The stale update is discarded and the call returns right away
	// instead of waiting out the timeout.
	if len(out) != 0 {
		t.Fatalf("expected no updates, got %v", out)
	}
	if elapsed > time.Second {
		t.Fatalf("expected an immediate return, took %v", elapsed)
	}
	if q.len() != 0 {
		t.Fatalf("stale update should be discarded")
	}
}
