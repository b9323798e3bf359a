package model

import "time"

// Holding is one constituent position of a fund's top holdings.
// Price and Change hold the last-known values and are updated in place
// when a fresh quote arrives; stale values are retained otherwise.
type Holding struct {
	StockCode string  `json:"stock_code"`
	StockName string  `json:"stock_name"`
	Ratio     float64 `json:"ratio"` // portfolio weight in percent, 0-100
	Change    float64 `json:"change"`
	Price     float64 `json:"price"`
}

// Fund is a tracked instrument whose estimated value the pipeline maintains.
// Code is unique across the tracked set.
type Fund struct {
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	NetValue        float64   `json:"net_value"`
	NetValueDate    string    `json:"net_value_date"`
	EstimatedValue  float64   `json:"estimated_value"`
	EstimatedChange float64   `json:"estimated_change"`
	UpdateTime      string    `json:"update_time"`
	IsRealValue     bool      `json:"is_real_value"`
	Holdings        []Holding `json:"holdings"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Quote is a provider's latest price snapshot for one instrument.
// Quotes live for a single refresh cycle and are never persisted.
type Quote struct {
	Code         string
	Name         string
	Price        float64
	Change       float64 // percent
	ChangeAmount float64
}

// Valuation is the result of the fallback computation for one fund.
// IsComplete is true iff every holding matched a quote this cycle and
// the fund has at least one holding.
type Valuation struct {
	EstimatedValue  float64
	EstimatedChange float64
	UpdateTime      time.Time
	IsComplete      bool
}
