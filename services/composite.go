package services

import (
	"roicalculator/types"
	"roicalculator/utils/constants"
)

// Direction tells whether a smaller or a larger ratio is the better one.
type Direction int

const (
	LowerIsBetter Direction = iota
	HigherIsBetter
)

// DirectionOf reports the scoring direction of a benchmark key.
func DirectionOf(name string) Direction {
	if constants.HigherIsBetterRatios[name] {
		return HigherIsBetter
	}
	return LowerIsBetter
}

type scoredRatio struct {
	name string
	// dividend ratios are left out of the composite for non-paying companies
	dividend bool
	valid    func(float64) bool
	value    func(f *types.Fundamentals) *float64
}

func positive(v float64) bool    { return v > 0 }
func nonNegative(v float64) bool { return v >= 0 }
func anyValue(float64) bool      { return true }

func scalar(v float64) *float64 { return &v }

var scoredRatios = []scoredRatio{
	{constants.RatioPERatio, false, positive, func(f *types.Fundamentals) *float64 { return scalar(f.PERatio) }},
	{constants.RatioPEMedian, false, positive, func(f *types.Fundamentals) *float64 { return scalar(f.PEMedian) }},
	{constants.RatioPayoutRatio, true, positive, func(f *types.Fundamentals) *float64 { return f.PayoutRatio }},
	{constants.RatioPayoutMedian, true, positive, func(f *types.Fundamentals) *float64 { return f.PayoutRatioMedian }},
	{constants.RatioPriceToBook, false, positive, func(f *types.Fundamentals) *float64 { return f.PriceToBook }},
	{constants.RatioDebtToEquity, false, nonNegative, func(f *types.Fundamentals) *float64 { return f.DebtToEquity }},
	{constants.RatioROE, false, anyValue, func(f *types.Fundamentals) *float64 { return scalar(f.ROE) }},
	{constants.RatioROEMedian, false, anyValue, func(f *types.Fundamentals) *float64 { return scalar(f.ROEMedian) }},
	{constants.RatioEPSGrowth, false, anyValue, func(f *types.Fundamentals) *float64 { return f.EPSGrowth }},
	{constants.RatioDividendYield, true, positive, func(f *types.Fundamentals) *float64 { return f.DividendYield }},
	{constants.RatioZScore, false, anyValue, func(f *types.Fundamentals) *float64 { return scalar(f.ZScore) }},
	{constants.RatioFScore, false, nonNegative, func(f *types.Fundamentals) *float64 { return scalar(f.FScore) }},
	{constants.RatioCurrentRatio, false, positive, func(f *types.Fundamentals) *float64 { return f.CurrentRatio }},
	{constants.RatioReturnOnAssets, false, anyValue, func(f *types.Fundamentals) *float64 { return f.ReturnOnAssets }},
}

var bandLabels = [6]string{
	constants.LabelExcellent, constants.LabelGood, constants.LabelFair,
	constants.LabelWeak, constants.LabelPoor, constants.LabelBad,
}

// ScoreRatio bands a value against bm1..bm5: 100 at or past bm1, 20 points less per
// threshold missed, 0 past bm5.
func ScoreRatio(value float64, bm types.Benchmark, direction Direction) (int, string) {
	for i, threshold := range bm.Thresholds() {
		if (direction == LowerIsBetter && value <= threshold) ||
			(direction == HigherIsBetter && value >= threshold) {
			return 100 - 20*i, bandLabels[i]
		}
	}
	return 0, bandLabels[5]
}

// ComputeScore bands every ratio that has a benchmark and averages the scores by
// weight. A ratio without a usable value scores 0 and keeps its weight, except the
// dividend ratios of a company that pays none, which carry no weight at all.
func ComputeScore(f *types.Fundamentals, cfg types.BenchmarkConfig) types.CompositeScore {
	var result types.CompositeScore
	var weighted, weights float64

	for _, r := range scoredRatios {
		bm, ok := cfg[r.name]
		if !ok {
			continue
		}
		band := types.ScoreBand{Ratio: r.name, Label: constants.LabelNA, Weight: bm.Weight}

		if r.dividend && !f.PaysDividend {
			band.Weight = 0
			result.Bands = append(result.Bands, band)
			continue
		}

		band.Value = r.value(f)
		if band.Value != nil && r.valid(*band.Value) {
			band.Score, band.Label = ScoreRatio(*band.Value, bm, DirectionOf(r.name))
		}
		weighted += float64(band.Score) * band.Weight
		weights += band.Weight
		result.Bands = append(result.Bands, band)
	}

	if weights > 0 {
		result.Score = weighted / weights
	}
	return result
}
