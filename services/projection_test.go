package services

import (
	"errors"
	"math"
	"roicalculator/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectionFundamentals() *types.Fundamentals {
	payout := 0.25
	return &types.Fundamentals{
		Price:             100,
		TSEPerShare:       50,
		ROE:               20,
		ROEMedian:         15,
		PEMedian:          18,
		PayoutRatioMedian: &payout,
	}
}

func TestProjectGrowth(t *testing.T) {
	f := projectionFundamentals()
	overview := ProjectGrowth(f)

	first := overview[0]
	assert.Equal(t, 1, first.Year)
	assert.Equal(t, 50.0, first.BookValuePerShare)
	assert.InDelta(t, 10, first.EarningsPerShare, 1e-9)
	assert.InDelta(t, 2.5, first.DividendPerShare, 1e-9)

	for n := 1; n < len(overview); n++ {
		prev, cur := overview[n-1], overview[n]
		assert.Equal(t, n+1, cur.Year)
		assert.InDelta(t, prev.BookValuePerShare+prev.EarningsPerShare-prev.DividendPerShare, cur.BookValuePerShare, 1e-9)
		assert.InDelta(t, cur.BookValuePerShare*0.15, cur.EarningsPerShare, 1e-9)
		assert.InDelta(t, cur.EarningsPerShare*0.25, cur.DividendPerShare, 1e-9)
	}
}

func TestProjectGrowth_NoDividends(t *testing.T) {
	f := projectionFundamentals()
	f.PayoutRatioMedian = nil
	for _, y := range ProjectGrowth(f) {
		assert.Equal(t, 0.0, y.DividendPerShare)
	}
}

func TestComputeROI(t *testing.T) {
	f := projectionFundamentals()
	overview := ProjectGrowth(f)

	roi, err := ComputeROI(f, overview)
	require.NoError(t, err)

	total := 0.0
	for _, y := range overview {
		total += y.DividendPerShare
	}
	assert.InDelta(t, 0.85*total, roi.TotalDividends, 1e-9)
	assert.InDelta(t, overview[6].EarningsPerShare*18+roi.TotalDividends, roi.TerminalPrice, 1e-9)
	assert.InDelta(t, roi.TerminalPrice-100, roi.AbsoluteROI, 1e-9)
	assert.InDelta(t, roi.TerminalPrice/100, roi.PercentageROI, 1e-9)
	assert.InDelta(t, math.Pow(1+roi.PercentageROI, 1.0/7)-1, roi.AnnualizedReturn, 1e-9)

	again, err := ComputeROI(f, overview)
	require.NoError(t, err)
	assert.Equal(t, roi, again)
}

func TestComputeROI_Errors(t *testing.T) {
	f := projectionFundamentals()
	f.Price = 0
	_, err := ComputeROI(f, ProjectGrowth(f))
	assert.True(t, errors.Is(err, types.ErrData))

	f = projectionFundamentals()
	f.ROE = -400
	f.ROEMedian = 10
	_, err = ComputeROI(f, ProjectGrowth(f))
	assert.ErrorContains(t, err, "negative growth base")
}
