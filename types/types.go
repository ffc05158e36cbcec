package types

import (
	"sort"
	"time"
)

// FiscalYear is a statement-reporting year key.
type FiscalYear int

// StatementSeries holds one line item across fiscal years. Keys need not be contiguous.
type StatementSeries map[FiscalYear]float64

// Get returns the value for year and whether it was reported.
func (s StatementSeries) Get(year FiscalYear) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s[year]
	return v, ok
}

// Years returns the reported years, most recent first.
func (s StatementSeries) Years() []FiscalYear {
	years := make([]FiscalYear, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return years[i] > years[j] })
	return years
}

// Latest returns the most recent reported year and its value.
func (s StatementSeries) Latest() (FiscalYear, float64, bool) {
	years := s.Years()
	if len(years) == 0 {
		return 0, 0, false
	}
	return years[0], s[years[0]], true
}

// Nth returns the n-th most recent value (0 = latest).
func (s StatementSeries) Nth(n int) (float64, bool) {
	years := s.Years()
	if n < 0 || n >= len(years) {
		return 0, false
	}
	return s[years[n]], true
}

// Statement is a statement table: one series per line-item label.
type Statement map[string]StatementSeries

// Row returns the series for an exact label.
func (st Statement) Row(label string) (StatementSeries, bool) {
	if st == nil {
		return nil, false
	}
	s, ok := st[label]
	return s, ok && len(s) > 0
}

// PeriodValue is one quarterly figure keyed by its period end.
type PeriodValue struct {
	End   time.Time `json:"end"`
	Value float64   `json:"value"`
}

// QuarterlySeries holds one line item across quarters.
type QuarterlySeries []PeriodValue

// Latest returns up to n values, most recent period first.
func (q QuarterlySeries) Latest(n int) []PeriodValue {
	sorted := make([]PeriodValue, len(q))
	copy(sorted, q)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].End.After(sorted[j].End) })
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// QuarterlyStatement is a quarterly statement table keyed by line-item label.
type QuarterlyStatement map[string]QuarterlySeries

// Row returns the series for an exact label.
func (st QuarterlyStatement) Row(label string) (QuarterlySeries, bool) {
	if st == nil {
		return nil, false
	}
	s, ok := st[label]
	return s, ok && len(s) > 0
}

// SplitEvent is a share-count multiplier applied retroactively to prior years.
type SplitEvent struct {
	Year        FiscalYear `json:"year"`
	Coefficient float64    `json:"coefficient"`
}

// DividendEvent is a single per-share cash dividend.
type DividendEvent struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// PriceBar is a daily close.
type PriceBar struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// BasicInfo is the live quote and profile of a symbol.
type BasicInfo struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Country           string   `json:"country"`
	Currency          string   `json:"currency"`
	Price             float64  `json:"price"`
	SharesOutstanding float64  `json:"sharesOutstanding"`
	MarketCap         float64  `json:"marketCap"`
	PayoutRatio       *float64 `json:"payoutRatio,omitempty"`
	DividendYield     *float64 `json:"dividendYield,omitempty"`
	TrailingPE        *float64 `json:"trailingPE,omitempty"`
	ForwardPE         *float64 `json:"forwardPE,omitempty"`
}

// StatementBundle is everything the derivation engine needs for one symbol.
// It is assembled once per request and never mutated afterwards.
type StatementBundle struct {
	Info                  BasicInfo
	AnnualBalanceSheet    Statement
	QuarterlyBalanceSheet QuarterlyStatement
	AnnualEarnings        Statement
	QuarterlyEarnings     QuarterlyStatement
	AnnualCashFlow        Statement
	Dividends             []DividendEvent
	ShareHistory          StatementSeries
	ShareHistoryAvailable bool
	Splits                []SplitEvent
	Prices                []PriceBar

	// Derived by the normalizer.
	FiscalYears  []FiscalYear
	Earnings     StatementSeries
	SharesByYear StatementSeries
	AsOf         time.Time
}

// Fundamentals is the flat per-request result of the derivation engine.
type Fundamentals struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Country           string  `json:"country"`
	Currency          string  `json:"currency"`
	MarketCapCategory string  `json:"marketCapCategory"`
	Price             float64 `json:"price"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	MarketCap         float64 `json:"marketCap"`

	TrailingEarnings float64 `json:"trailingEarnings"`
	EPS              float64 `json:"eps"`
	PERatio          float64 `json:"peRatio"`
	ROE              float64 `json:"roe"`
	TSE              float64 `json:"tse"`
	TSEPerShare      float64 `json:"tsePerShare"`

	PayoutRatio       *float64 `json:"payoutRatio,omitempty"`
	PayoutRatioMedian *float64 `json:"payoutRatioMedian,omitempty"`
	DividendYield     *float64 `json:"dividendYield,omitempty"`
	PaysDividend      bool     `json:"paysDividend"`

	ROEMedian float64  `json:"roeMedian"`
	PEMedian  float64  `json:"peMedian"`
	EPSGrowth *float64 `json:"epsGrowth,omitempty"`

	PriceToBook      *float64 `json:"priceToBook,omitempty"`
	CurrentRatio     *float64 `json:"currentRatio,omitempty"`
	DebtToEquity     *float64 `json:"debtToEquity,omitempty"`
	ReturnOnAssets   *float64 `json:"returnOnAssets,omitempty"`
	ZScore           float64  `json:"zScore"`
	FScore           float64  `json:"fScore"`
	FScoreChecks     []string `json:"fScoreChecks"`
	ShareHistoryUsed bool     `json:"shareHistoryUsed"`

	FiscalYears       []FiscalYear    `json:"fiscalYears"`
	SharesByYear      StatementSeries `json:"sharesByYear"`
	EPSByYear         StatementSeries `json:"epsByYear"`
	MedianPriceByYear StatementSeries `json:"medianPriceByYear"`
	DPSByYear         StatementSeries `json:"dpsByYear"`
}

// YearProjection is one state of the growth projection.
type YearProjection struct {
	Year              int     `json:"year"`
	BookValuePerShare float64 `json:"bookValuePerShare"`
	EarningsPerShare  float64 `json:"earningsPerShare"`
	DividendPerShare  float64 `json:"dividendPerShare"`
}

// SevenYearOverview is the projected book value, earnings and dividends for years 1..7.
type SevenYearOverview [7]YearProjection

// ROIResult is derived from a full SevenYearOverview.
type ROIResult struct {
	TotalDividends   float64 `json:"totalDividends"`
	TerminalPrice    float64 `json:"terminalPrice"`
	AbsoluteROI      float64 `json:"absoluteRoi"`
	PercentageROI    float64 `json:"percentageRoi"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
}

// Benchmark holds the five thresholds (best to worst) and weight of one ratio.
type Benchmark struct {
	BM1    float64 `json:"bm1" yaml:"bm1" toml:"bm1" bson:"bm1"`
	BM2    float64 `json:"bm2" yaml:"bm2" toml:"bm2" bson:"bm2"`
	BM3    float64 `json:"bm3" yaml:"bm3" toml:"bm3" bson:"bm3"`
	BM4    float64 `json:"bm4" yaml:"bm4" toml:"bm4" bson:"bm4"`
	BM5    float64 `json:"bm5" yaml:"bm5" toml:"bm5" bson:"bm5"`
	Weight float64 `json:"weight" yaml:"weight" toml:"weight" bson:"weight"`
}

// Thresholds returns bm1..bm5 in order.
func (b Benchmark) Thresholds() [5]float64 {
	return [5]float64{b.BM1, b.BM2, b.BM3, b.BM4, b.BM5}
}

// BenchmarkConfig maps ratio name to its benchmark.
type BenchmarkConfig map[string]Benchmark

// ScoreBand is the banded score of one ratio.
type ScoreBand struct {
	Ratio  string   `json:"ratio"`
	Value  *float64 `json:"value,omitempty"`
	Score  int      `json:"score"`
	Label  string   `json:"label"`
	Weight float64  `json:"weight"`
}

// CompositeScore is the weighted average over all scored ratios.
type CompositeScore struct {
	Bands []ScoreBand `json:"bands"`
	Score float64     `json:"score"`
}

// Valuation is the full response for one symbol.
type Valuation struct {
	Fundamentals *Fundamentals     `json:"fundamentals"`
	Overview     SevenYearOverview `json:"overview"`
	ROI          ROIResult         `json:"roi"`
	Composite    CompositeScore    `json:"composite"`
}

// Company is a search hit on the company-page source.
type Company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
