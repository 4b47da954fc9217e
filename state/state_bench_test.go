package state

import (
	"fmt"
	"testing"
)

// BenchmarkMemoryTracker_MarkProcessed benchmarks tracker write performance
func BenchmarkMemoryTracker_MarkProcessed(b *testing.B) {
	tracker := NewMemoryTracker()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hash := fmt.Sprintf("hash-%d", i)
		msgID := fmt.Sprintf("msg-%d", i)
		tracker.MarkProcessed(hash, msgID)
	}
}

// BenchmarkMemoryTracker_AlreadyProcessed benchmarks lookup performance
func BenchmarkMemoryTracker_AlreadyProcessed(b *testing.B) {
	tracker := NewMemoryTracker()

	// Pre-populate with 1000 entries
	for i := 0; i < 1000; i++ {
		hash := fmt.Sprintf("hash-%d", i)
		msgID := fmt.Sprintf("msg-%d", i)
		tracker.MarkProcessed(hash, msgID)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hash := fmt.Sprintf("hash-%d", i%1000)
		_ = tracker.AlreadyProcessed(hash)
	}
}
