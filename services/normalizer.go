package services

import (
	"roicalculator/types"
	"roicalculator/utils/constants"
	"roicalculator/utils/helpers"
	"time"
)

// SelectFiscalWindow returns the n most recent fiscal years of the series, most recent first.
func SelectFiscalWindow(series types.StatementSeries, n int) []types.FiscalYear {
	years := series.Years()
	if n > 0 && len(years) > n {
		years = years[:n]
	}
	return years
}

// RestrictToWindow drops every year of the series that is not in the window.
func RestrictToWindow(series types.StatementSeries, window []types.FiscalYear) types.StatementSeries {
	out := make(types.StatementSeries, len(window))
	for _, y := range window {
		if v, ok := series.Get(y); ok {
			out[y] = v
		}
	}
	return out
}

// splitCoefficients folds the split events of the window years, plus the current
// calendar year, into one coefficient per year. Several splits in a year multiply.
func splitCoefficients(splits []types.SplitEvent, window []types.FiscalYear, now time.Time) map[types.FiscalYear]float64 {
	keep := make(map[types.FiscalYear]bool, len(window)+1)
	for _, y := range window {
		keep[y] = true
	}
	keep[types.FiscalYear(now.Year())] = true

	out := make(map[types.FiscalYear]float64)
	for _, s := range splits {
		if !keep[s.Year] || s.Coefficient <= 0 {
			continue
		}
		if c, ok := out[s.Year]; ok {
			out[s.Year] = c * s.Coefficient
		} else {
			out[s.Year] = s.Coefficient
		}
	}
	return out
}

// SharesOutstandingLastNYears aligns a share count (in millions) to every fiscal year
// of the earnings series. history is the raw share-count history in absolute shares;
// nil means the data source could not provide one, in which case every year receives
// currentShares unadjusted.
func SharesOutstandingLastNYears(earnings, history types.StatementSeries, splits []types.SplitEvent, currentShares float64, now time.Time) (types.StatementSeries, error) {
	years := earnings.Years()
	out := make(types.StatementSeries, len(years))
	if len(years) == 0 {
		return out, nil
	}
	if currentShares <= 0 {
		return nil, types.NewDataError("shares", "current shares outstanding is %v", currentShares)
	}
	current := currentShares / constants.Million

	if history == nil {
		for _, y := range years {
			out[y] = current
		}
		return out, nil
	}

	coefficients := splitCoefficients(splits, years, now)
	latest := current
	if !containsYear(years, types.FiscalYear(now.Year())) {
		if c, ok := coefficients[types.FiscalYear(now.Year())]; ok {
			latest = latest / c
		}
	}
	out[years[0]] = latest

	for i, y := range years {
		if i == 0 {
			continue
		}
		if raw, ok := history.Get(y); ok {
			out[y] = raw / constants.Million
			continue
		}
		if next, ok := out.Get(y + 1); ok {
			if c, split := coefficients[y+1]; split {
				next = next / c
			}
			out[y] = next
			continue
		}
		if prev, ok := history.Get(y - 1); ok {
			out[y] = prev / constants.Million
			continue
		}
		// years are descending, so years[i-1] is already filled
		out[y] = out[years[i-1]]
	}

	for _, y := range years {
		if out[y] <= 0 {
			return nil, types.NewDataError("shares", "non-positive count for %d", y)
		}
	}
	return out, nil
}

func containsYear(years []types.FiscalYear, year types.FiscalYear) bool {
	for _, y := range years {
		if y == year {
			return true
		}
	}
	return false
}

// DividendsPerYear sums per-share dividends by calendar year, keeping window years only.
func DividendsPerYear(dividends []types.DividendEvent, window []types.FiscalYear) types.StatementSeries {
	out := types.StatementSeries{}
	for _, d := range dividends {
		y := types.FiscalYear(d.Date.Year())
		if !containsYear(window, y) {
			continue
		}
		out[y] += d.Amount
	}
	return out
}

// MedianPricePerYear is the median daily close of each calendar year in the window.
func MedianPricePerYear(prices []types.PriceBar, window []types.FiscalYear) types.StatementSeries {
	closes := make(map[types.FiscalYear][]float64)
	for _, p := range prices {
		y := types.FiscalYear(p.Date.Year())
		if !containsYear(window, y) || p.Close <= 0 {
			continue
		}
		closes[y] = append(closes[y], p.Close)
	}

	out := types.StatementSeries{}
	for y, values := range closes {
		if m, ok := Median(values); ok {
			out[y] = m
		}
	}
	return out
}

// BuildBundle derives the fiscal window, the aligned earnings series and the aligned
// share counts from the raw tables of a bundle. raw is left untouched.
func BuildBundle(raw *types.StatementBundle, historyYears int, now time.Time) (*types.StatementBundle, error) {
	if historyYears <= 0 {
		historyYears = constants.DefaultHistoryYears
	}
	earnings, ok := helpers.FindRow(raw.AnnualEarnings, constants.NetIncomePatterns)
	if !ok {
		return nil, types.NewDataError("earnings", "no annual earnings reported for %s", raw.Info.Symbol)
	}

	bundle := *raw
	bundle.FiscalYears = SelectFiscalWindow(earnings, historyYears)
	bundle.Earnings = RestrictToWindow(earnings, bundle.FiscalYears)
	bundle.AsOf = now

	var history types.StatementSeries
	if raw.ShareHistoryAvailable {
		history = raw.ShareHistory
		if history == nil {
			history = types.StatementSeries{}
		}
	}
	shares, err := SharesOutstandingLastNYears(bundle.Earnings, history, raw.Splits, raw.Info.SharesOutstanding, now)
	if err != nil {
		return nil, err
	}
	bundle.SharesByYear = shares
	return &bundle, nil
}
