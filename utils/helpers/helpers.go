package helpers

import (
	"fmt"
	"regexp"
	"roicalculator/types"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Helper function to match header titles
func MatchHeader(cellValue string, patterns []string) bool {
	normalizedValue := NormalizeString(cellValue)
	for _, pattern := range patterns {
		matched, _ := regexp.MatchString(pattern, normalizedValue)
		if matched {
			return true
		}
	}
	return false
}

// Helper function to normalize strings
func NormalizeString(s string) string {
	s = strings.ReplaceAll(s, "\u00A0", " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// FindRow returns the first statement row whose label matches one of the patterns.
// Exact labels are tried before regex matching so that "Total Assets" never resolves
// to "Total Current Assets".
func FindRow[T ~map[types.FiscalYear]float64 | ~[]types.PeriodValue](rows map[string]T, patterns []string) (T, bool) {
	for _, pattern := range patterns {
		for label, series := range rows {
			if NormalizeString(label) == pattern && len(series) > 0 {
				return series, true
			}
		}
	}
	for _, pattern := range patterns {
		for label, series := range rows {
			if len(series) > 0 && MatchHeader(label, []string{"^" + pattern + "$"}) {
				return series, true
			}
		}
	}
	var zero T
	return zero, false
}

// HumanizeLabel turns an API field name such as "totalCurrentAssets" into the
// statement label "total Current Assets".
func HumanizeLabel(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func ToFloat(value interface{}) float64 {
	if str, ok := value.(string); ok {
		// Remove commas from the string
		cleanStr := strings.ReplaceAll(str, ",", "")
		cleanStr = strings.TrimSpace(cleanStr)

		if cleanStr == "" {
			zap.L().Debug("Error converting to float64: input string is empty")
			return 0.0
		}

		if strings.Contains(cleanStr, "%") {
			cleanStr = strings.ReplaceAll(cleanStr, "%", "")

			// Parse and divide by 100 to get the decimal equivalent
			f, err := strconv.ParseFloat(strings.TrimSpace(cleanStr), 64)
			if err != nil {
				zap.L().Error("Error converting percentage to float64", zap.Error(err))
				return 0.0
			}
			return f / 100.0
		}

		f, err := strconv.ParseFloat(cleanStr, 64)
		if err != nil {
			zap.L().Error("Error converting to float64", zap.Error(err))
			return 0.0
		}
		return f
	}

	zap.L().Error("Error converting to float64: value is not a string")
	return 0.0
}

// Helper function to convert values from map to float64
func ParseFloat(value interface{}) float64 {
	switch v := value.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0.0
		}
		return f
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0.0
	}
}

// ParseOptionalFloat is ParseFloat for cells that may be blank or non-numeric.
func ParseOptionalFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		clean := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		clean = strings.TrimSpace(strings.TrimSuffix(clean, "%"))
		if clean == "" || clean == "-" {
			return 0, false
		}
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

// ParseFiscalYear extracts the fiscal year from a column header such as
// "Mar 2023" or "2023-12-31". Trailing-twelve-month columns are rejected.
func ParseFiscalYear(header string) (types.FiscalYear, bool) {
	h := NormalizeString(header)
	if h == "" || strings.Contains(h, "ttm") {
		return 0, false
	}
	if t, err := time.Parse("2006-01-02", h); err == nil {
		return types.FiscalYear(t.Year()), true
	}
	match := yearPattern.FindString(h)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return types.FiscalYear(year), true
}

// ParsePeriodEnd reads a quarter column header ("Jun 2023" or "2023-06-30")
// as the last day of that period.
func ParsePeriodEnd(header string) (time.Time, bool) {
	h := strings.TrimSpace(strings.ReplaceAll(header, "\u00A0", " "))
	if t, err := time.Parse("2006-01-02", h); err == nil {
		return t, true
	}
	if t, err := time.Parse("Jan 2006", h); err == nil {
		return t.AddDate(0, 1, -1), true
	}
	return time.Time{}, false
}

// ParseSplitRatio converts a "new/old" split string such as "2/1" into its coefficient.
func ParseSplitRatio(ratio string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(ratio), "/")
	if len(parts) != 2 {
		parts = strings.Split(strings.TrimSpace(ratio), ":")
	}
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed split ratio %q", ratio)
	}
	num, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed split ratio %q: %w", ratio, err)
	}
	den, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed split ratio %q: %w", ratio, err)
	}
	if num <= 0 || den <= 0 {
		return 0, fmt.Errorf("non-positive split ratio %q", ratio)
	}
	return num / den, nil
}

// GetMarketCapCategory buckets an absolute market capitalization.
func GetMarketCapCategory(marketCap float64) string {
	switch {
	case marketCap >= 10e9:
		return "Large Cap"
	case marketCap >= 2e9:
		return "Mid Cap"
	case marketCap > 0:
		return "Small Cap"
	}
	return "Unknown Category"
}

// ParseTableData reads an annual statement table (header row of period columns, one
// line item per body row) into a Statement keyed by line-item label. Values are scaled
// by multiplier; blank cells are left out of the row.
func ParseTableData(section *goquery.Selection, tableSelector string, multiplier float64) types.Statement {
	headers, rows, ok := readTable(section, tableSelector)
	if !ok {
		return nil
	}

	years := make([]types.FiscalYear, len(headers))
	valid := make([]bool, len(headers))
	for i, h := range headers {
		years[i], valid[i] = ParseFiscalYear(h)
	}

	data := types.Statement{}
	for label, cells := range rows {
		series := types.StatementSeries{}
		for i, cell := range cells {
			if i >= len(years) || !valid[i] {
				continue
			}
			if v, ok := ParseOptionalFloat(cell); ok {
				series[years[i]] = v * multiplier
			}
		}
		if len(series) > 0 {
			data[label] = series
		}
	}
	return data
}

// ParseQuarterlyTableData is ParseTableData for quarterly results.
func ParseQuarterlyTableData(section *goquery.Selection, tableSelector string, multiplier float64) types.QuarterlyStatement {
	headers, rows, ok := readTable(section, tableSelector)
	if !ok {
		return nil
	}

	ends := make([]time.Time, len(headers))
	valid := make([]bool, len(headers))
	for i, h := range headers {
		ends[i], valid[i] = ParsePeriodEnd(h)
	}

	data := types.QuarterlyStatement{}
	for label, cells := range rows {
		var series types.QuarterlySeries
		for i, cell := range cells {
			if i >= len(ends) || !valid[i] {
				continue
			}
			if v, ok := ParseOptionalFloat(cell); ok {
				series = append(series, types.PeriodValue{End: ends[i], Value: v * multiplier})
			}
		}
		if len(series) > 0 {
			data[label] = series
		}
	}
	return data
}

// readTable returns the period headers (label column dropped) and the raw cells of
// every labelled body row.
func readTable(section *goquery.Selection, tableSelector string) ([]string, map[string][]string, bool) {
	table := section.Find(tableSelector)
	if table.Length() == 0 {
		return nil, nil, false
	}

	headers := []string{}
	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 {
			return
		}
		headers = append(headers, strings.TrimSpace(th.Text()))
	})

	rows := make(map[string][]string)
	table.Find("tbody tr").Each(func(i int, tr *goquery.Selection) {
		rowKey := strings.TrimSpace(tr.Find("td.text").Text())
		if rowKey == "" {
			rowKey = strings.TrimSpace(tr.Find("td").First().Text())
		}
		rowKey = strings.TrimSpace(strings.TrimSuffix(strings.ReplaceAll(rowKey, "\u00A0", " "), "+"))
		if rowKey == "" {
			return
		}
		cells := []string{}
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			if j == 0 {
				return
			}
			cells = append(cells, td.Text())
		})
		rows[rowKey] = cells
	})
	return headers, rows, true
}
