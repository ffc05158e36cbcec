package services

import (
	"roicalculator/types"
	"roicalculator/utils/constants"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, LowerIsBetter, DirectionOf(constants.RatioPERatio))
	assert.Equal(t, LowerIsBetter, DirectionOf(constants.RatioDebtToEquity))
	assert.Equal(t, HigherIsBetter, DirectionOf(constants.RatioROE))
	assert.Equal(t, HigherIsBetter, DirectionOf(constants.RatioCurrentRatio))
	for _, r := range scoredRatios {
		assert.True(t, constants.LowerIsBetterRatios[r.name] != constants.HigherIsBetterRatios[r.name], r.name)
	}
}

func TestScoreRatio(t *testing.T) {
	pe := types.Benchmark{BM1: 10, BM2: 15, BM3: 20, BM4: 25, BM5: 30}
	roe := types.Benchmark{BM1: 25, BM2: 20, BM3: 15, BM4: 10, BM5: 5}

	tests := []struct {
		name      string
		value     float64
		bm        types.Benchmark
		direction Direction
		score     int
		label     string
	}{
		{"pe excellent", 8, pe, LowerIsBetter, 100, constants.LabelExcellent},
		{"pe on threshold", 15, pe, LowerIsBetter, 80, constants.LabelGood},
		{"pe poor", 29, pe, LowerIsBetter, 20, constants.LabelPoor},
		{"pe bad", 45, pe, LowerIsBetter, 0, constants.LabelBad},
		{"roe excellent", 30, roe, HigherIsBetter, 100, constants.LabelExcellent},
		{"roe fair", 16, roe, HigherIsBetter, 60, constants.LabelFair},
		{"roe bad", 1, roe, HigherIsBetter, 0, constants.LabelBad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label := ScoreRatio(tt.value, tt.bm, tt.direction)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestComputeScore_WeightedAverage(t *testing.T) {
	cfg := types.BenchmarkConfig{
		constants.RatioPERatio: {BM1: 10, BM2: 15, BM3: 20, BM4: 25, BM5: 30, Weight: 1},
		constants.RatioROE:     {BM1: 25, BM2: 20, BM3: 15, BM4: 10, BM5: 5, Weight: 3},
	}
	f := &types.Fundamentals{PERatio: 8, ROE: 1}

	got := ComputeScore(f, cfg)
	require.Len(t, got.Bands, 2)
	assert.Equal(t, 25.0, got.Score)
}

func TestComputeScore_NonPayerSkipsDividendRatios(t *testing.T) {
	cfg := types.BenchmarkConfig{
		constants.RatioPERatio:       {BM1: 10, BM2: 15, BM3: 20, BM4: 25, BM5: 30, Weight: 1},
		constants.RatioDividendYield: {BM1: 0.05, BM2: 0.04, BM3: 0.03, BM4: 0.02, BM5: 0.01, Weight: 5},
	}
	f := &types.Fundamentals{PERatio: 8}

	got := ComputeScore(f, cfg)
	assert.Equal(t, 100.0, got.Score)
	for _, b := range got.Bands {
		if b.Ratio == constants.RatioDividendYield {
			assert.Equal(t, constants.LabelNA, b.Label)
			assert.Equal(t, 0.0, b.Weight)
		}
	}
}

func TestComputeScore_MissingValueKeepsWeight(t *testing.T) {
	cfg := types.BenchmarkConfig{
		constants.RatioPERatio:      {BM1: 10, BM2: 15, BM3: 20, BM4: 25, BM5: 30, Weight: 1},
		constants.RatioCurrentRatio: {BM1: 2, BM2: 1.5, BM3: 1.2, BM4: 1, BM5: 0.8, Weight: 1},
	}
	f := &types.Fundamentals{PERatio: 8}

	got := ComputeScore(f, cfg)
	assert.Equal(t, 50.0, got.Score)
}

func TestComputeScore_NegativePEIsNotScored(t *testing.T) {
	cfg := types.BenchmarkConfig{
		constants.RatioPERatio: {BM1: 10, BM2: 15, BM3: 20, BM4: 25, BM5: 30, Weight: 1},
	}
	got := ComputeScore(&types.Fundamentals{PERatio: -4}, cfg)
	require.Len(t, got.Bands, 1)
	assert.Equal(t, constants.LabelNA, got.Bands[0].Label)
	assert.Equal(t, 0.0, got.Score)
}

func TestComputeScore_EmptyConfig(t *testing.T) {
	got := ComputeScore(&types.Fundamentals{PERatio: 8}, nil)
	assert.Empty(t, got.Bands)
	assert.Equal(t, 0.0, got.Score)
}
