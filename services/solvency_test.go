package services

import (
	"roicalculator/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zScoreBalanceSheet() types.Statement {
	return types.Statement{
		"Total Assets":              {2022: 900, 2023: 1000},
		"Total Current Assets":      {2023: 400},
		"Total Current Liabilities": {2023: 300},
		"Retained Earnings":         {2023: 200},
		"Total Liab":                {2023: 1000},
	}
}

func zScoreIncome() types.Statement {
	return types.Statement{
		"Ebit":          {2023: 50},
		"Total Revenue": {2022: 700, 2023: 800},
	}
}

func TestAltmanZScore(t *testing.T) {
	z := AltmanZScore(zScoreBalanceSheet(), zScoreIncome(), 1500)
	assert.InDelta(t, 0.1, z.A, 1e-9)
	assert.InDelta(t, 0.2, z.B, 1e-9)
	assert.InDelta(t, 0.05, z.C, 1e-9)
	assert.InDelta(t, 1.5, z.D, 1e-9)
	assert.InDelta(t, 0.8, z.E, 1e-9)
	assert.InDelta(t, 2.265, z.Score(), 1e-9)
}

func TestAltmanZScore_MissingCurrentAssets(t *testing.T) {
	bs := zScoreBalanceSheet()
	delete(bs, "Total Current Assets")

	z := AltmanZScore(bs, zScoreIncome(), 1500)
	assert.Equal(t, 0.0, z.A)
	assert.InDelta(t, 2.265-0.12, z.Score(), 1e-9)
}

func TestAltmanZScore_NoAssets(t *testing.T) {
	z := AltmanZScore(types.Statement{}, zScoreIncome(), 1500)
	assert.Equal(t, ZScoreComponents{}, z)
}

func TestAltmanZScore_NoAssetsKeepsLiabilities(t *testing.T) {
	bs := types.Statement{
		"Total Liab":        {2023: 1000},
		"Retained Earnings": {2023: 200},
	}
	z := AltmanZScore(bs, zScoreIncome(), 1500)
	assert.Equal(t, ZScoreComponents{D: 1.5}, z)
	assert.InDelta(t, 0.9, z.Score(), 1e-9)
}

func fScoreBundle(shareHistory bool) *types.StatementBundle {
	return &types.StatementBundle{
		AnnualBalanceSheet: types.Statement{
			"Total Assets":              {2022: 1000, 2023: 1000},
			"Total Current Assets":      {2022: 400, 2023: 500},
			"Total Current Liabilities": {2022: 250, 2023: 250},
			"Long Term Debt":            {2022: 300, 2023: 200},
		},
		AnnualEarnings: types.Statement{
			"Net Income":    {2022: 80, 2023: 100},
			"Total Revenue": {2022: 1000, 2023: 1200},
			"Gross Profit":  {2022: 400, 2023: 600},
		},
		AnnualCashFlow: types.Statement{
			"Total Cash From Operating Activities": {2022: 90, 2023: 150},
		},
		ShareHistoryAvailable: shareHistory,
		SharesByYear:          types.StatementSeries{2022: 100, 2023: 100},
	}
}

func TestPiotroskiFScore_AllChecksPass(t *testing.T) {
	f := PiotroskiFScore(fScoreBundle(true), 120)
	assert.Equal(t, 9.0, f.Score)
	require.Len(t, f.Checks, 9)
	for _, c := range f.Checks {
		assert.Contains(t, c, "✓")
	}
}

func TestPiotroskiFScore_NoShareHistory(t *testing.T) {
	f := PiotroskiFScore(fScoreBundle(false), 120)
	assert.Equal(t, 8.5, f.Score)
	assert.Contains(t, f.Checks, "~ Share history unavailable")
}

func TestPiotroskiFScore_FailingChecks(t *testing.T) {
	b := fScoreBundle(true)
	b.SharesByYear = types.StatementSeries{2022: 100, 2023: 110}
	b.AnnualCashFlow = types.Statement{}

	f := PiotroskiFScore(b, -5)
	assert.Equal(t, 5.0, f.Score)
	assert.Contains(t, f.Checks, "✗ Non-positive trailing earnings")
	assert.Contains(t, f.Checks, "✗ Share count increased")
	assert.Contains(t, f.Checks, "✗ Non-positive operating cash flow")
}

func TestPiotroskiFScore_SingleYear(t *testing.T) {
	b := &types.StatementBundle{
		AnnualBalanceSheet: types.Statement{"Total Assets": {2023: 1000}},
		AnnualEarnings:     types.Statement{"Net Income": {2023: 100}},
		AnnualCashFlow:     types.Statement{"Operating Cash Flow": {2023: 150}},
	}
	f := PiotroskiFScore(b, 100)
	// trailing, ROA, OCF, OCF > NI and the unavailable share history
	assert.Equal(t, 4.5, f.Score)
	assert.Len(t, f.Checks, 9)
}

func TestAverageAssets(t *testing.T) {
	assets := types.StatementSeries{2022: 800, 2023: 1000}
	years := assets.Years()

	avg, ok := averageAssets(assets, years, 0)
	assert.True(t, ok)
	assert.Equal(t, 900.0, avg)

	avg, ok = averageAssets(assets, years, 1)
	assert.True(t, ok)
	assert.Equal(t, 800.0, avg)

	_, ok = averageAssets(assets, years, 2)
	assert.False(t, ok)
}

func TestAverageAssets_ThreeYears(t *testing.T) {
	assets := types.StatementSeries{2021: 800, 2022: 1000, 2023: 1200}
	years := assets.Years()

	avg, ok := averageAssets(assets, years, 0)
	assert.True(t, ok)
	assert.Equal(t, 1100.0, avg)

	avg, ok = averageAssets(assets, years, 1)
	assert.True(t, ok)
	assert.Equal(t, 900.0, avg)
}

func TestPiotroskiFScore_AssetTurnoverUsesAverageAssets(t *testing.T) {
	b := fScoreBundle(true)
	b.AnnualBalanceSheet["Total Assets"] = types.StatementSeries{2021: 800, 2022: 1000, 2023: 1200}

	// 1300/1100 beats 1000/900
	b.AnnualEarnings["Total Revenue"] = types.StatementSeries{2022: 1000, 2023: 1300}
	b.AnnualEarnings["Gross Profit"] = types.StatementSeries{2022: 400, 2023: 650}
	f := PiotroskiFScore(b, 120)
	assert.Contains(t, f.Checks, "✓ Improving asset turnover")

	// 1200/1100 trails 1000/900
	b.AnnualEarnings["Total Revenue"] = types.StatementSeries{2022: 1000, 2023: 1200}
	b.AnnualEarnings["Gross Profit"] = types.StatementSeries{2022: 400, 2023: 600}
	f = PiotroskiFScore(b, 120)
	assert.Contains(t, f.Checks, "✗ Asset turnover not improving")
}
