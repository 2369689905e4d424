package runtime

import (
	"sync"
)

// Handle identifies a live thread within its Runtime's table.
type Handle uint32

// threadTable tracks the live threads of a Runtime so teardown can cancel
// them. Threads remove themselves on reaching a terminal status or on
// abandonment.
type threadTable struct {
	mu      sync.RWMutex
	next    Handle
	entries map[Handle]*Thread
	closed  bool
}

func newThreadTable() *threadTable {
	return &threadTable{
		entries: make(map[Handle]*Thread),
	}
}

// Insert adds a thread and returns its handle; 0 once the table is closed.
func (t *threadTable) Insert(th *Thread) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0
	}
	t.next++
	t.entries[t.next] = th
	return t.next
}

// Remove drops a thread; unknown handles are ignored.
func (t *threadTable) Remove(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, h)
}

// Each visits every live thread. The callback must not mutate the table.
func (t *threadTable) Each(fn func(*Thread)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, th := range t.entries {
		fn(th)
	}
}

// Len returns the number of live threads.
func (t *threadTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Close empties the table and stops accepting inserts.
func (t *threadTable) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.entries = make(map[Handle]*Thread)
}
