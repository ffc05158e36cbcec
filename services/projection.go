package services

import (
	"math"
	"roicalculator/types"
	"roicalculator/utils/constants"
)

// payoutMedian treats a company without dividend history as paying nothing.
func payoutMedian(f *types.Fundamentals) float64 {
	if f.PayoutRatioMedian == nil {
		return 0
	}
	return *f.PayoutRatioMedian
}

// ProjectGrowth compounds book value per share for seven years: year one is seeded
// from the current TSE per share and ROE, later years retain earnings net of dividends
// and grow at the median ROE.
func ProjectGrowth(f *types.Fundamentals) types.SevenYearOverview {
	var overview types.SevenYearOverview
	payout := payoutMedian(f)

	b := f.TSEPerShare
	e := b * f.ROE / 100
	d := e * payout
	overview[0] = types.YearProjection{Year: 1, BookValuePerShare: b, EarningsPerShare: e, DividendPerShare: d}

	for n := 1; n < constants.ProjectionYears; n++ {
		prev := overview[n-1]
		b = prev.BookValuePerShare + prev.EarningsPerShare - prev.DividendPerShare
		e = b * f.ROEMedian / 100
		d = e * payout
		overview[n] = types.YearProjection{Year: n + 1, BookValuePerShare: b, EarningsPerShare: e, DividendPerShare: d}
	}
	return overview
}

// ComputeROI prices the seventh projected year at the median P/E and adds the
// after-tax dividends collected on the way.
func ComputeROI(f *types.Fundamentals, overview types.SevenYearOverview) (types.ROIResult, error) {
	if f.Price == 0 {
		return types.ROIResult{}, types.NewDataError("price", "current price is zero")
	}

	total := 0.0
	for _, y := range overview {
		total += y.DividendPerShare
	}
	dividends := constants.DividendAfterTaxRatio * total
	terminal := overview[constants.ProjectionYears-1].EarningsPerShare*f.PEMedian + dividends
	percentage := terminal / f.Price

	base := 1 + percentage
	if base < 0 {
		return types.ROIResult{}, types.NewDataError("roi", "negative growth base %.4f", base)
	}

	return types.ROIResult{
		TotalDividends:   dividends,
		TerminalPrice:    terminal,
		AbsoluteROI:      terminal - f.Price,
		PercentageROI:    percentage,
		AnnualizedReturn: math.Pow(base, 1.0/float64(constants.ProjectionYears)) - 1,
	}, nil
}
