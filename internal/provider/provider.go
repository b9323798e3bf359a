// Package provider defines the data-source contracts the refresh
// pipeline consumes, plus HTTP implementations for a fund-estimate
// endpoint and a batch quote endpoint.
package provider

import (
	"context"

	"FundEye/internal/model"
)

// FundValuation is one provider answer for a fund. IsRealValue marks an
// official published net value as opposed to an intraday estimate.
// IsTradingSession reports whether the provider considers the quote
// session live; the orchestrator skips real-time repricing when no
// result sets it.
type FundValuation struct {
	FundCode         string
	FundName         string
	NetValue         float64
	NetValueDate     string
	EstimatedValue   float64
	EstimatedChange  float64
	UpdateTime       string
	IsRealValue      bool
	IsTradingSession bool
}

// ValuationProvider answers per-fund valuations. A nil result with a
// nil error never occurs; failures are returned as errors and absorbed
// by the caller.
type ValuationProvider interface {
	GetValuation(ctx context.Context, fundCode string) (*FundValuation, error)
	Name() string
}

// QuoteProvider answers best-effort batch quotes. A code missing from
// the result means "unavailable this cycle", not an error.
type QuoteProvider interface {
	GetQuotes(ctx context.Context, codes []string) ([]model.Quote, error)
	Name() string
}
