package services

import (
	"roicalculator/types"
	"roicalculator/utils/constants"
	"roicalculator/utils/helpers"
)

// ZScoreComponents are the five Altman ratios. A ratio whose source line item is
// missing stays 0.
type ZScoreComponents struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
}

func (z ZScoreComponents) Score() float64 {
	return 1.2*z.A + 1.4*z.B + 3.3*z.C + 0.6*z.D + 1.0*z.E
}

// lineItem is the value of a line item for year, falling back to its latest report.
func lineItem(st types.Statement, patterns []string, year types.FiscalYear) (float64, bool) {
	row, ok := helpers.FindRow(st, patterns)
	if !ok {
		return 0, false
	}
	if v, ok := row.Get(year); ok {
		return v, true
	}
	_, v, ok := row.Latest()
	return v, ok
}

// AltmanZScore scores the latest balance sheet against the income statement of the
// same fiscal year. D only needs total liabilities; the other ratios need total assets.
func AltmanZScore(balanceSheet, income types.Statement, marketCap float64) ZScoreComponents {
	var z ZScoreComponents

	var year types.FiscalYear
	var totalAssets float64
	assets, hasAssets := helpers.FindRow(balanceSheet, constants.TotalAssetsPatterns)
	if hasAssets {
		year, totalAssets, hasAssets = assets.Latest()
	}

	// lineItem falls back to the latest report when year is unset
	if liabilities, ok := lineItem(balanceSheet, constants.TotalLiabilitiesPatterns, year); ok && liabilities != 0 {
		z.D = marketCap / liabilities
	}
	if !hasAssets || totalAssets == 0 {
		return z
	}

	ca, caOK := lineItem(balanceSheet, constants.TotalCurrentAssetsPatterns, year)
	cl, clOK := lineItem(balanceSheet, constants.TotalCurrentLiabilitiesPatterns, year)
	if caOK && clOK {
		z.A = (ca - cl) / totalAssets
	}
	if re, ok := lineItem(balanceSheet, constants.RetainedEarningsPatterns, year); ok {
		z.B = re / totalAssets
	}
	if ebit, ok := lineItem(income, constants.EBITPatterns, year); ok {
		z.C = ebit / totalAssets
	}
	if revenue, ok := lineItem(income, constants.RevenuePatterns, year); ok {
		z.E = revenue / totalAssets
	}
	return z
}

// FScore is a Piotroski score with one line per sub-check.
type FScore struct {
	Score  float64
	Checks []string
}

func (f *FScore) check(passed bool, pass, fail string) {
	if passed {
		f.Score++
		f.Checks = append(f.Checks, "✓ "+pass)
		return
	}
	f.Checks = append(f.Checks, "✗ "+fail)
}

// yearly looks up a row at the given fiscal years; ok is false if any is missing.
func yearly(st types.Statement, patterns []string, years ...types.FiscalYear) ([]float64, bool) {
	row, found := helpers.FindRow(st, patterns)
	if !found {
		return nil, false
	}
	out := make([]float64, len(years))
	for i, y := range years {
		v, ok := row.Get(y)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// averageAssets is the mean of total assets at years[n] and years[n+1], or the
// single value at years[n] when the older year was not reported.
func averageAssets(assets types.StatementSeries, years []types.FiscalYear, n int) (float64, bool) {
	if n >= len(years) {
		return 0, false
	}
	current := assets[years[n]]
	if n+1 < len(years) {
		return (current + assets[years[n+1]]) / 2, true
	}
	return current, true
}

// PiotroskiFScore runs the nine checks on the two most recent fiscal years of the
// balance sheet. Missing data fails a check. Without share history the dilution check
// is worth 0.5.
func PiotroskiFScore(b *types.StatementBundle, trailingEarnings float64) FScore {
	var f FScore

	var years []types.FiscalYear
	assets, hasAssets := helpers.FindRow(b.AnnualBalanceSheet, constants.TotalAssetsPatterns)
	if hasAssets {
		years = assets.Years()
	}
	hasTwo := len(years) >= 2
	var t0, t1 types.FiscalYear
	if len(years) > 0 {
		t0 = years[0]
	}
	if hasTwo {
		t1 = years[1]
	}

	f.check(trailingEarnings > 0, "Positive trailing earnings", "Non-positive trailing earnings")

	netIncome, niOK := yearly(b.AnnualEarnings, constants.NetIncomePatterns, t0)
	avg0, avgOK := averageAssets(assets, years, 0)
	f.check(niOK && avgOK && avg0 != 0 && netIncome[0]/avg0 > 0,
		"Positive return on assets", "Non-positive return on assets")

	ocf, ocfOK := yearly(b.AnnualCashFlow, constants.OperatingCashFlowPatterns, t0)
	f.check(ocfOK && ocf[0] > 0, "Positive operating cash flow", "Non-positive operating cash flow")
	f.check(ocfOK && niOK && ocf[0] > netIncome[0],
		"Cash flow > Net income", "Cash flow <= Net income")

	debt, debtOK := yearly(b.AnnualBalanceSheet, constants.LongTermDebtPatterns, t0, t1)
	f.check(hasTwo && debtOK && debt[0] < debt[1], "Decreased long-term debt", "Long-term debt not decreased")

	ca, caOK := yearly(b.AnnualBalanceSheet, constants.TotalCurrentAssetsPatterns, t0, t1)
	cl, clOK := yearly(b.AnnualBalanceSheet, constants.TotalCurrentLiabilitiesPatterns, t0, t1)
	f.check(hasTwo && caOK && clOK && cl[0] != 0 && cl[1] != 0 && ca[0]/cl[0] > ca[1]/cl[1],
		"Improving current ratio", "Current ratio not improving")

	if b.ShareHistoryAvailable {
		f.check(sharesNotIncreased(b.SharesByYear), "No share dilution", "Share count increased")
	} else {
		f.Score += 0.5
		f.Checks = append(f.Checks, "~ Share history unavailable")
	}

	revenue, revOK := yearly(b.AnnualEarnings, constants.RevenuePatterns, t0, t1)
	gross, gpOK := yearly(b.AnnualEarnings, constants.GrossProfitPatterns, t0, t1)
	f.check(hasTwo && revOK && gpOK && revenue[0] != 0 && revenue[1] != 0 && gross[0]/revenue[0] > gross[1]/revenue[1],
		"Improving gross margin", "Gross margin not improving")

	avg1, avg1OK := averageAssets(assets, years, 1)
	f.check(hasTwo && revOK && avgOK && avg1OK && avg0 != 0 && avg1 != 0 && revenue[0]/avg0 > revenue[1]/avg1,
		"Improving asset turnover", "Asset turnover not improving")

	return f
}

func sharesNotIncreased(shares types.StatementSeries) bool {
	years := shares.Years()
	if len(years) < 2 {
		return false
	}
	return shares[years[0]] <= shares[years[1]]
}
