package telemock

import "sync"

// historyLog is the append-only record of every observed message. Entries
// are never mutated or reordered after insertion; the only destructive
// operation is an explicit full clear. Reads return a copied snapshot, so
// a monitor iterating the result never observes a half-written entry and
// never blocks producers.
type historyLog struct {
	mu        sync.RWMutex
	entries   []HistoryEntry
	observers []func(HistoryEntry)
}

func newHistoryLog() *historyLog {
	return &historyLog{}
}

func (h *historyLog) append(entry HistoryEntry) {
	h.mu.Lock()
	h.entries = append(h.entries, entry)
	observers := h.observers
	h.mu.Unlock()

	// Observers run outside the lock. They must not block: the web hub
	// hands the entry off to a worker pool, the terminal monitor polls
	// snapshots instead of subscribing.
	for _, fn := range observers {
		fn(entry)
	}
}

func (h *historyLog) snapshot() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *historyLog) size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// restore replaces the log content without notifying observers: a load is
// a bulk import of past traffic, not new activity.
func (h *historyLog) restore(entries []HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]HistoryEntry, len(entries))
	copy(h.entries, entries)
}

func (h *historyLog) clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}

// observe registers fn to be called for every appended entry. There is no
// unsubscribe: observers live as long as the server instance.
func (h *historyLog) observe(fn func(HistoryEntry)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}
