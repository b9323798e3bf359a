// Package notifier delivers pipeline events to the user-facing side.
// Notifications are fire-and-forget: implementations log delivery
// failures and never propagate them into the pipeline.
package notifier

import (
	"github.com/rs/zerolog"

	"FundEye/internal/model"
)

// Notifier is the UI/event collaborator contract.
type Notifier interface {
	ValuationUpdated(funds []model.Fund)
	Error(message string)
}

// LogNotifier writes events to the structured log. It is the default
// sink when no external channel is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With().Str("component", "notifier").Logger()}
}

func (n *LogNotifier) ValuationUpdated(funds []model.Fund) {
	n.log.Info().Int("funds", len(funds)).Msg("valuations updated")
	for _, f := range funds {
		n.log.Debug().
			Str("code", f.Code).
			Str("name", f.Name).
			Float64("estimated_value", f.EstimatedValue).
			Float64("estimated_change", f.EstimatedChange).
			Bool("real", f.IsRealValue).
			Msg("fund valuation")
	}
}

func (n *LogNotifier) Error(message string) {
	n.log.Error().Str("message", message).Msg("pipeline error")
}

// MultiNotifier fans out to several sinks.
type MultiNotifier struct {
	sinks []Notifier
}

func NewMultiNotifier(sinks ...Notifier) *MultiNotifier {
	return &MultiNotifier{sinks: sinks}
}

func (m *MultiNotifier) ValuationUpdated(funds []model.Fund) {
	for _, s := range m.sinks {
		s.ValuationUpdated(funds)
	}
}

func (m *MultiNotifier) Error(message string) {
	for _, s := range m.sinks {
		s.Error(message)
	}
}
