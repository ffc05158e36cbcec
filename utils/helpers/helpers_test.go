package helpers

import (
	"roicalculator/types"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchHeader_NonMatchingPattern(t *testing.T) {
	cellValue := "Random Header"
	patterns := []string{`total\s*assets`}
	result := MatchHeader(cellValue, patterns)
	if result {
		t.Errorf("Expected false, got %v", result)
	}
}

func TestToFloat_StringWithCommas(t *testing.T) {
	input := "1,234.56"
	expected := 1234.56
	result := ToFloat(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestToFloat_Percentage(t *testing.T) {
	assert.InDelta(t, 0.125, ToFloat("12.5%"), 1e-12)
}

func TestToFloat_NonNumericString(t *testing.T) {
	input := "abc"
	expected := 0.0
	result := ToFloat(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestNormalizeString(t *testing.T) {
	input := "  HeLLo WoRLd  "
	expected := "hello world"
	result := NormalizeString(input)
	if result != expected {
		t.Errorf("Expected %v, got %v", expected, result)
	}
}

func TestFindRowPrefersExactLabel(t *testing.T) {
	st := types.Statement{
		"Total Current Assets": types.StatementSeries{2023: 10},
		"Total Assets":         types.StatementSeries{2023: 50},
	}
	row, ok := FindRow(st, []string{"total assets"})
	require.True(t, ok)
	assert.Equal(t, 50.0, row[2023])

	_, ok = FindRow(st, []string{"retained earnings"})
	assert.False(t, ok)
}

func TestFindRowRegexFallback(t *testing.T) {
	st := types.Statement{"Net Income Common Stockholders": types.StatementSeries{2023: 7}}
	row, ok := FindRow(st, []string{"net income", `net income( common stockholders)?`})
	require.True(t, ok)
	assert.Equal(t, 7.0, row[2023])
}

func TestParseFiscalYear(t *testing.T) {
	tests := []struct {
		header string
		want   types.FiscalYear
		ok     bool
	}{
		{"Mar 2023", 2023, true},
		{"2021-12-31", 2021, true},
		{"TTM", 0, false},
		{"", 0, false},
		{"Sales", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseFiscalYear(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestParseSplitRatio(t *testing.T) {
	v, err := ParseSplitRatio("4/1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	v, err = ParseSplitRatio("1:2")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = ParseSplitRatio("0/1")
	assert.Error(t, err)
	_, err = ParseSplitRatio("garbage")
	assert.Error(t, err)
}

func TestGetMarketCapCategory(t *testing.T) {
	assert.Equal(t, "Large Cap", GetMarketCapCategory(2.5e12))
	assert.Equal(t, "Mid Cap", GetMarketCapCategory(5e9))
	assert.Equal(t, "Small Cap", GetMarketCapCategory(5e8))
	assert.Equal(t, "Unknown Category", GetMarketCapCategory(0))
}

const statementHTML = `
<section id="balance-sheet">
<div data-result-table>
<table>
<thead><tr><th></th><th>Mar 2022</th><th>Mar 2023</th><th>TTM</th></tr></thead>
<tbody>
<tr><td class="text">Total Assets&nbsp;+</td><td>1,000</td><td>1,200</td><td>1,300</td></tr>
<tr><td class="text">Reserves</td><td>400</td><td></td><td>10</td></tr>
</tbody>
</table>
</div>
</section>`

func TestParseTableData(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(statementHTML))
	require.NoError(t, err)

	st := ParseTableData(doc.Find("section#balance-sheet"), "div[data-result-table]", 10)
	require.NotNil(t, st)

	assets, ok := st.Row("Total Assets")
	require.True(t, ok)
	assert.Equal(t, types.StatementSeries{2022: 10000, 2023: 12000}, assets)

	reserves, ok := st.Row("Reserves")
	require.True(t, ok)
	assert.Equal(t, types.StatementSeries{2022: 4000}, reserves)
}

const quarterlyHTML = `
<section id="quarters">
<div data-result-table>
<table>
<thead><tr><th></th><th>Sep 2023</th><th>Dec 2023</th></tr></thead>
<tbody>
<tr><td class="text">Net Profit&nbsp;+</td><td>12</td><td>15</td></tr>
</tbody>
</table>
</div>
</section>`

func TestParseQuarterlyTableData(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(quarterlyHTML))
	require.NoError(t, err)

	st := ParseQuarterlyTableData(doc.Find("section#quarters"), "div[data-result-table]", 1)
	row, ok := FindRow(st, []string{"net profit"})
	require.True(t, ok)
	require.Len(t, row, 2)

	latest := row.Latest(1)
	assert.Equal(t, 15.0, latest[0].Value)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), latest[0].End)
}

func TestParsePeriodEnd(t *testing.T) {
	end, ok := ParsePeriodEnd("Feb 2024")
	require.True(t, ok)
	assert.Equal(t, 29, end.Day())

	_, ok = ParsePeriodEnd("TTM")
	assert.False(t, ok)
}

func TestHumanizeLabel(t *testing.T) {
	assert.Equal(t, "total current assets", NormalizeString(HumanizeLabel("totalCurrentAssets")))
	assert.Equal(t, "total liab", NormalizeString(HumanizeLabel("totalLiab")))
	assert.Equal(t, "ebit", HumanizeLabel("ebit"))
}
