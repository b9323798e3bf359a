package recorder

import "FundEye/internal/failure"

// NoopRecorder discards everything. Used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (*NoopRecorder) RecordCycle(*CycleRecord) error        { return nil }
func (*NoopRecorder) RecordError(*failure.ErrorState) error { return nil }
func (*NoopRecorder) Close() error                          { return nil }
