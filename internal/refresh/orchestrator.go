// Package refresh implements the per-cycle valuation pipeline: primary
// valuations for every tracked fund, one batched quote fetch for the
// union of their holdings, and a merge that degrades to stale data
// instead of failing the cycle.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"FundEye/internal/batch"
	"FundEye/internal/model"
	"FundEye/internal/provider"
	"FundEye/internal/recorder"
	"FundEye/internal/retry"
	"FundEye/internal/store"
	"FundEye/internal/valuation"
)

// Cycle trigger labels, recorded with every cycle.
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerRetry     = "retry"
)

// DefaultConcurrency bounds in-flight provider calls per cycle.
const DefaultConcurrency = 5

// Orchestrator runs one refresh cycle over the tracked fund set.
type Orchestrator struct {
	valuations  provider.ValuationProvider
	quotes      provider.QuoteProvider
	store       store.Store
	retry       *retry.Executor
	recorder    recorder.Recorder
	concurrency int
	log         zerolog.Logger

	now func() time.Time
}

// NewOrchestrator wires the pipeline. concurrency < 1 falls back to
// DefaultConcurrency.
func NewOrchestrator(
	valuations provider.ValuationProvider,
	quotes provider.QuoteProvider,
	st store.Store,
	re *retry.Executor,
	rec recorder.Recorder,
	concurrency int,
	log zerolog.Logger,
) *Orchestrator {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Orchestrator{
		valuations:  valuations,
		quotes:      quotes,
		store:       st,
		retry:       re,
		recorder:    rec,
		concurrency: concurrency,
		log:         log.With().Str("component", "refresh").Logger(),
		now:         time.Now,
	}
}

// RefreshAll runs one manual cycle. See Refresh.
func (o *Orchestrator) RefreshAll(ctx context.Context, funds []model.Fund) ([]model.Fund, error) {
	return o.Refresh(ctx, TriggerManual, funds)
}

// Refresh runs one cycle over funds and returns the merged set.
// Individual provider failures degrade to stale data; only a
// persistence failure propagates.
func (o *Orchestrator) Refresh(ctx context.Context, trigger string, funds []model.Fund) ([]model.Fund, error) {
	if len(funds) == 0 {
		return []model.Fund{}, nil
	}

	start := o.now()
	cycleID := uuid.NewString()
	log := o.log.With().Str("cycle", cycleID).Str("trigger", trigger).Logger()
	log.Debug().Int("funds", len(funds)).Msg("refresh cycle started")

	valuations := o.fetchValuations(ctx, funds, log)

	primaryHits := 0
	live := false
	for _, v := range valuations {
		if v == nil {
			continue
		}
		primaryHits++
		if v.IsTradingSession {
			live = true
		}
	}

	// No provider signaled an active session: nothing can have moved,
	// return the tracked set untouched.
	if !live {
		log.Debug().Int("primary_hits", primaryHits).Msg("no live session, skipping quotes")
		return funds, nil
	}

	quoteByCode := o.fetchQuotes(ctx, funds, log)

	merged, fallbacks := o.merge(funds, valuations, quoteByCode)

	if err := o.store.Save(merged); err != nil {
		err = fmt.Errorf("save funds: %w", err)
		o.recordCycle(&recorder.CycleRecord{
			CycleID: cycleID, Trigger: trigger, FundCount: len(funds),
			PrimaryHits: primaryHits, FallbackCount: fallbacks,
			QuoteCount: len(quoteByCode), Duration: o.now().Sub(start),
			Err: err.Error(),
		})
		return nil, err
	}

	o.recordCycle(&recorder.CycleRecord{
		CycleID: cycleID, Trigger: trigger, FundCount: len(funds),
		PrimaryHits: primaryHits, FallbackCount: fallbacks,
		QuoteCount: len(quoteByCode), Duration: o.now().Sub(start),
	})

	log.Info().
		Int("funds", len(merged)).
		Int("primary_hits", primaryHits).
		Int("fallbacks", fallbacks).
		Int("quotes", len(quoteByCode)).
		Msg("refresh cycle done")
	return merged, nil
}

// fetchValuations queries the primary provider for every fund with
// bounded concurrency. A fund whose fetch fails terminally yields nil.
func (o *Orchestrator) fetchValuations(ctx context.Context, funds []model.Fund, log zerolog.Logger) []*provider.FundValuation {
	return batch.Run(ctx, funds, o.concurrency, func(ctx context.Context, f model.Fund) *provider.FundValuation {
		v, err := retry.Do(ctx, o.retry, "valuation "+f.Code, func(ctx context.Context) (*provider.FundValuation, error) {
			return o.valuations.GetValuation(ctx, f.Code)
		})
		if err != nil {
			log.Warn().Str("fund", f.Code).Err(err).Msg("primary valuation unavailable")
			return nil
		}
		return v
	})
}

// fetchQuotes collects the deduplicated union of holding codes and
// fetches them in one batched call. Failure yields an empty map, not a
// cycle failure.
func (o *Orchestrator) fetchQuotes(ctx context.Context, funds []model.Fund, log zerolog.Logger) map[string]model.Quote {
	seen := make(map[string]bool)
	var codes []string
	for _, f := range funds {
		for _, h := range f.Holdings {
			if !seen[h.StockCode] {
				seen[h.StockCode] = true
				codes = append(codes, h.StockCode)
			}
		}
	}
	if len(codes) == 0 {
		return nil
	}

	quotes, err := retry.Do(ctx, o.retry, "quotes", func(ctx context.Context) ([]model.Quote, error) {
		return o.quotes.GetQuotes(ctx, codes)
	})
	if err != nil {
		log.Warn().Int("codes", len(codes)).Err(err).Msg("quote fetch unavailable")
		return nil
	}

	byCode := make(map[string]model.Quote, len(quotes))
	for _, q := range quotes {
		byCode[q.Code] = q
	}
	return byCode
}

// merge builds the updated fund set. Per fund: holdings take fresh
// quote data where available; a primary valuation wins over fallback;
// fallback applies only when quotes were obtained; otherwise the prior
// cycle's values stand.
func (o *Orchestrator) merge(funds []model.Fund, valuations []*provider.FundValuation, quoteByCode map[string]model.Quote) ([]model.Fund, int) {
	now := o.now()
	fallbacks := 0

	merged := make([]model.Fund, len(funds))
	for i, f := range funds {
		g := f
		g.Holdings = make([]model.Holding, len(f.Holdings))
		copy(g.Holdings, f.Holdings)

		touched := false
		for j := range g.Holdings {
			if q, ok := quoteByCode[g.Holdings[j].StockCode]; ok {
				g.Holdings[j].Price = q.Price
				g.Holdings[j].Change = q.Change
				touched = true
			}
		}

		switch {
		case valuations[i] != nil:
			v := valuations[i]
			if v.FundName != "" {
				g.Name = v.FundName
			}
			g.NetValue = v.NetValue
			g.NetValueDate = v.NetValueDate
			g.EstimatedValue = v.EstimatedValue
			g.EstimatedChange = v.EstimatedChange
			g.UpdateTime = v.UpdateTime
			g.IsRealValue = v.IsRealValue
			touched = true
		case len(quoteByCode) > 0:
			val := o.fallbackValuation(&g, quoteByCode)
			g.EstimatedChange = val.EstimatedChange
			g.EstimatedValue = val.EstimatedValue
			g.UpdateTime = val.UpdateTime.Format("2006-01-02 15:04")
			g.IsRealValue = false
			fallbacks++
			touched = true
			if !val.IsComplete {
				o.log.Debug().Str("fund", g.Code).Msg("fallback valuation from partial quote data")
			}
		}

		if touched {
			g.UpdatedAt = now
		}
		merged[i] = g
	}
	return merged, fallbacks
}

// fallbackValuation reprices a fund from its own holdings and the
// cycle's quote set.
func (o *Orchestrator) fallbackValuation(f *model.Fund, quoteByCode map[string]model.Quote) model.Valuation {
	change, complete := valuation.WeightedChange(f.Holdings, quoteByCode)
	return model.Valuation{
		EstimatedValue:  valuation.EstimatedValue(f.NetValue, change),
		EstimatedChange: change,
		UpdateTime:      o.now(),
		IsComplete:      complete,
	}
}

func (o *Orchestrator) recordCycle(rec *recorder.CycleRecord) {
	if err := o.recorder.RecordCycle(rec); err != nil {
		o.log.Warn().Err(err).Msg("record cycle failed")
	}
}
