package types

import "time"

// ValuationEvent is published after a successful valuation.
type ValuationEvent struct {
	ID               string    `json:"id"`
	Symbol           string    `json:"symbol"`
	Price            float64   `json:"price"`
	EPS              float64   `json:"eps"`
	PERatio          float64   `json:"peRatio"`
	ROE              float64   `json:"roe"`
	ZScore           float64   `json:"zScore"`
	FScore           float64   `json:"fScore"`
	CompositeScore   float64   `json:"compositeScore"`
	AnnualizedReturn float64   `json:"annualizedReturn"`
	ComputedAt       time.Time `json:"computedAt"`
}
