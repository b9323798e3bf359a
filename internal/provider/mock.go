package provider

import (
	"context"
	"fmt"

	"FundEye/internal/model"
)

// MockProvider returns controllable fixed data for development and
// testing. It implements both ValuationProvider and QuoteProvider.
type MockProvider struct {
	Valuations map[string]*FundValuation
	Quotes     map[string]model.Quote
	Err        error
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) GetValuation(_ context.Context, fundCode string) (*FundValuation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	v, ok := m.Valuations[fundCode]
	if !ok {
		return nil, fmt.Errorf("fund %s not found", fundCode)
	}
	out := *v
	return &out, nil
}

func (m *MockProvider) GetQuotes(_ context.Context, codes []string) ([]model.Quote, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	quotes := make([]model.Quote, 0, len(codes))
	for _, c := range codes {
		if q, ok := m.Quotes[c]; ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}
