package state

import "sync"

// Tracker remembers which message hashes were already handled within a
// single batch run, so an archive containing the same message twice
// produces one artifact pair. Trackers live and die with one
// invocation; nothing persists across runs.
type Tracker interface {
	AlreadyProcessed(hash string) bool
	MarkProcessed(hash, messageID string)
	ProcessedID(hash string) (string, bool)
	Snapshot() Snapshot
}

type Snapshot struct {
	Processed int
}

type MemoryTracker struct {
	mu        sync.RWMutex
	processed map[string]string
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{processed: make(map[string]string)}
}

func (m *MemoryTracker) AlreadyProcessed(hash string) bool {
	if hash == "" {
		return false
	}

	m.mu.RLock()
	_, ok := m.processed[hash]
	m.mu.RUnlock()
	return ok
}

func (m *MemoryTracker) MarkProcessed(hash, messageID string) {
	if hash == "" {
		return
	}

	m.mu.Lock()
	m.processed[hash] = messageID
	m.mu.Unlock()
}

// ProcessedID reports which message claimed a hash first.
func (m *MemoryTracker) ProcessedID(hash string) (string, bool) {
	m.mu.RLock()
	id, ok := m.processed[hash]
	m.mu.RUnlock()
	return id, ok
}

func (m *MemoryTracker) Snapshot() Snapshot {
	m.mu.RLock()
	count := len(m.processed)
	m.mu.RUnlock()
	return Snapshot{Processed: count}
}
