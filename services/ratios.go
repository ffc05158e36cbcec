package services

import (
	"math"
	"roicalculator/types"
	"roicalculator/utils/constants"
	"sort"
)

// Median returns the standard median; false for an empty slice.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, true
	}
	return sorted[mid], true
}

func EarningsPerShare(earnings, shares float64) (float64, error) {
	if shares == 0 {
		return 0, types.NewDataError("shares", "shares outstanding is zero")
	}
	return earnings / shares, nil
}

// PriceEarningsRatio is the uncapped current-period P/E.
func PriceEarningsRatio(price, eps float64) (float64, error) {
	if eps == 0 {
		return 0, types.NewDataError("eps", "earnings per share is zero")
	}
	return price / eps, nil
}

// ReturnOnEquity is earnings over equity, in percent.
func ReturnOnEquity(earnings, equity float64) (float64, error) {
	if equity == 0 {
		return 0, types.NewDataError("equity", "total stockholder equity is zero")
	}
	return earnings / equity * 100, nil
}

// commonYears returns the years reported by both series, most recent first.
func commonYears(a, b types.StatementSeries) []types.FiscalYear {
	var years []types.FiscalYear
	for _, y := range a.Years() {
		if _, ok := b.Get(y); ok {
			years = append(years, y)
		}
	}
	return years
}

// ReturnOnEquityMedian pairs equity and earnings by fiscal year and returns the
// median ROE in percent. Years with zero equity are skipped.
func ReturnOnEquityMedian(equity, earnings types.StatementSeries) (float64, error) {
	var values []float64
	for _, y := range commonYears(equity, earnings) {
		roe, err := ReturnOnEquity(earnings[y], equity[y])
		if err != nil {
			continue
		}
		values = append(values, roe)
	}
	m, ok := Median(values)
	if !ok {
		return 0, types.NewDataError("roe median", "no fiscal year reports both equity and earnings")
	}
	return m, nil
}

// EPSByYear divides each year's earnings by that year's aligned share count.
func EPSByYear(earnings, shares types.StatementSeries) (types.StatementSeries, error) {
	out := make(types.StatementSeries, len(earnings))
	for y, e := range earnings {
		s, ok := shares.Get(y)
		if !ok {
			return nil, types.NewDataError("shares", "no share count for %d", y)
		}
		eps, err := EarningsPerShare(e, s)
		if err != nil {
			return nil, err
		}
		out[y] = eps
	}
	return out, nil
}

// DividendPayoutRatio is dividends per share over EPS; false when EPS is zero.
func DividendPayoutRatio(dps, eps float64) (float64, bool) {
	if eps == 0 {
		return 0, false
	}
	return dps / eps, true
}

// DividendPayoutRatioMedian returns nil when the company reports no dividends.
// Fiscal years without a dividend count as a zero payout.
func DividendPayoutRatioMedian(dps, eps types.StatementSeries) *float64 {
	if len(dps) == 0 {
		return nil
	}
	var values []float64
	for y, e := range eps {
		d, _ := dps.Get(y)
		if r, ok := DividendPayoutRatio(d, e); ok {
			values = append(values, r)
		}
	}
	m, ok := Median(values)
	if !ok {
		return nil
	}
	return &m
}

// PriceEarningsRatioMedian is the median of yearly median-price over EPS, capped at 25.
func PriceEarningsRatioMedian(medianPrices, eps types.StatementSeries) (float64, error) {
	var values []float64
	for _, y := range commonYears(eps, medianPrices) {
		pe, err := PriceEarningsRatio(medianPrices[y], eps[y])
		if err != nil {
			continue
		}
		values = append(values, pe)
	}
	m, ok := Median(values)
	if !ok {
		return 0, types.NewDataError("pe median", "no fiscal year has both a price and non-zero earnings")
	}
	if m > constants.PEMedianCap {
		m = constants.PEMedianCap
	}
	return m, nil
}

// YearToDateEarnings sums the four most recent quarters.
func YearToDateEarnings(quarterly types.QuarterlySeries) (float64, bool) {
	latest := quarterly.Latest(4)
	if len(latest) == 0 {
		return 0, false
	}
	total := 0.0
	for _, q := range latest {
		total += q.Value
	}
	return total, true
}

// EPSGrowth is the compound annual growth of EPS between the oldest and newest year.
// Undefined for fewer than two years or a non-positive endpoint.
func EPSGrowth(eps types.StatementSeries) *float64 {
	years := eps.Years()
	if len(years) < 2 {
		return nil
	}
	newest, oldest := eps[years[0]], eps[years[len(years)-1]]
	if newest <= 0 || oldest <= 0 {
		return nil
	}
	span := float64(years[0] - years[len(years)-1])
	g := (math.Pow(newest/oldest, 1/span) - 1) * 100
	return &g
}

func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	r := num / den
	return &r
}
