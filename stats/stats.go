package stats

import (
	"log/slog"
	"sync"
	"time"
)

type Stage string

// StageMbox tags events from the archive walk, the only batch source.
// Single-file and IMAP runs are fail-fast one-shot extractions and do
// not report events.
const StageMbox Stage = "mbox"

type EventType string

const (
	EventTypeScanned   EventType = "scanned"
	EventTypeExtracted EventType = "extracted"
	EventTypeSkipped   EventType = "skipped"
	EventTypeFiltered  EventType = "filtered"
	EventTypeDuplicate EventType = "duplicate"
	EventTypeError     EventType = "error"
)

type Event struct {
	Stage     Stage
	Type      EventType
	MessageID string
	Err       error
	Detail    string
}

type Summary struct {
	Scanned    int
	Extracted  int
	Skipped    int
	Filtered   int
	Duplicates int
	Errors     int
	LastError  error
}

func (s Summary) LogAttrs() []any {
	attrs := []any{
		"scanned", s.Scanned,
		"extracted", s.Extracted,
		"skipped", s.Skipped,
		"filtered", s.Filtered,
		"duplicates", s.Duplicates,
		"errors", s.Errors,
	}
	if s.LastError != nil {
		attrs = append(attrs, "lastError", s.LastError.Error())
	}
	return attrs
}

// Observer receives every batch event as it happens. The collector and
// the progress bar both implement it.
type Observer interface {
	Observe(evt Event)
}

// Collector tallies batch events into a Summary. Batch runs are
// sequential; the mutex only guards against future observers running
// off the main goroutine.
type Collector struct {
	mu      sync.Mutex
	summary Summary
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Observe(evt Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch evt.Type {
	case EventTypeScanned:
		c.summary.Scanned++
	case EventTypeExtracted:
		c.summary.Extracted++
	case EventTypeSkipped:
		c.summary.Skipped++
	case EventTypeFiltered:
		c.summary.Filtered++
	case EventTypeDuplicate:
		c.summary.Duplicates++
	case EventTypeError:
		c.summary.Errors++
		if evt.Err != nil {
			c.summary.LastError = evt.Err
		}
	}
}

func (c *Collector) Snapshot() Summary {
	c.mu.Lock()
	summary := c.summary
	c.mu.Unlock()
	return summary
}

// Reporter owns a collector and logs the final summary.
type Reporter struct {
	collector *Collector
	logger    *slog.Logger
	started   time.Time
}

func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{
		collector: NewCollector(),
		logger:    logger,
		started:   time.Now(),
	}
}

func (r *Reporter) Observe(evt Event) {
	r.collector.Observe(evt)
}

func (r *Reporter) Summary() Summary {
	return r.collector.Snapshot()
}

// Log emits the summary with the run duration attached.
func (r *Reporter) Log() {
	if r.logger == nil {
		return
	}
	summary := r.collector.Snapshot()
	attrs := append(summary.LogAttrs(), "duration", time.Since(r.started))
	r.logger.Info("batch summary", attrs...)
}
