package failure

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity bounds the diagnostic error history.
const DefaultHistoryCapacity = 100

// ErrorState is one recorded terminal failure. Diagnostic only; control
// decisions live in the scheduler's own consecutive-error counter.
type ErrorState struct {
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	Retryable  bool      `json:"retryable"`
	Timestamp  time.Time `json:"timestamp"`
	RetryCount int       `json:"retry_count"`
}

// History is a bounded, append-only record of terminal failures.
// Oldest entries are evicted first. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	capacity int
	entries  []ErrorState
	sink     func(ErrorState)
}

// NewHistory creates a History; capacity <= 0 uses DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{capacity: capacity}
}

// SetSink registers a callback invoked for every recorded state, e.g.
// to mirror the in-memory history into durable storage.
func (h *History) SetSink(sink func(ErrorState)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sink = sink
}

// Record appends a terminal failure, evicting the oldest entry when full.
func (h *History) Record(cerr *Error, retryCount int) ErrorState {
	state := ErrorState{
		Kind:       cerr.Kind,
		Message:    cerr.Err.Error(),
		Retryable:  cerr.Retryable,
		Timestamp:  time.Now(),
		RetryCount: retryCount,
	}

	h.mu.Lock()
	if len(h.entries) >= h.capacity {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, state)
	sink := h.sink
	h.mu.Unlock()

	if sink != nil {
		sink(state)
	}
	return state
}

// Snapshot returns a copy of the recorded states, oldest first.
func (h *History) Snapshot() []ErrorState {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ErrorState, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len reports the number of recorded states.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
