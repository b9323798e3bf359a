// Package valuation holds the pure fallback-valuation math: a fund's
// estimated change is the sum of its holdings' price changes weighted
// by portfolio ratio.
package valuation

import "FundEye/internal/model"

// WeightedChange computes the estimated percentage change for a fund
// from its holdings and the quotes fetched this cycle, keyed by
// instrument code. Holdings without a matching quote are skipped.
// complete is true iff every holding matched and there was at least one
// holding.
func WeightedChange(holdings []model.Holding, quoteByCode map[string]model.Quote) (change float64, complete bool) {
	matched := 0
	for _, h := range holdings {
		q, ok := quoteByCode[h.StockCode]
		if !ok {
			continue
		}
		change += q.Change * h.Ratio / 100
		matched++
	}
	complete = matched == len(holdings) && len(holdings) > 0
	return change, complete
}

// EstimatedValue applies a percentage change to the last official net
// value.
func EstimatedValue(netValue, change float64) float64 {
	return netValue * (1 + change/100)
}
