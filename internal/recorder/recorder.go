package recorder

import (
	"time"

	"FundEye/internal/failure"
)

// CycleRecord summarizes one refresh cycle for later analysis.
type CycleRecord struct {
	CycleID       string
	Trigger       string // "scheduled", "manual", "retry"
	FundCount     int
	PrimaryHits   int
	FallbackCount int
	QuoteCount    int
	Duration      time.Duration
	Err           string
}

// Recorder persists pipeline history. Recorder failures are logged by
// callers and never fail a refresh cycle.
type Recorder interface {
	RecordCycle(rec *CycleRecord) error
	RecordError(state *failure.ErrorState) error
	Close() error
}
