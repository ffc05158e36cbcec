package services

import (
	"fmt"
	"roicalculator/types"
	"roicalculator/utils/constants"

	"github.com/xuri/excelize/v2"
)

const (
	SheetFundamentals = "Fundamentals"
	SheetOverview     = "Overview"
	SheetROI          = "ROI"
	SheetComposite    = "Composite"
)

type ExportServiceI interface {
	BuildWorkbook(v *types.Valuation) (*excelize.File, error)
}

type exportService struct{}

var ExportService ExportServiceI = &exportService{}

// BuildWorkbook lays a valuation out over four sheets. The caller closes the file.
func (e *exportService) BuildWorkbook(v *types.Valuation) (*excelize.File, error) {
	if v == nil || v.Fundamentals == nil {
		return nil, fmt.Errorf("nothing to export")
	}
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetFundamentals, fundamentalsRows(v.Fundamentals)},
		{SheetOverview, overviewRows(v.Overview)},
		{SheetROI, roiRows(v.ROI)},
		{SheetComposite, compositeRows(v.Composite)},
	}
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			f.Close()
			return nil, err
		}
		if err := writeRows(f, sheet.name, sheet.rows, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing sheet %s: %w", sheet.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 24)
}

func optional(v *float64) interface{} {
	if v == nil {
		return constants.LabelNA
	}
	return *v
}

func fundamentalsRows(fd *types.Fundamentals) [][]interface{} {
	rows := [][]interface{}{
		{"Field", "Value"},
		{"Symbol", fd.Symbol},
		{"Name", fd.Name},
		{"Country", fd.Country},
		{"Currency", fd.Currency},
		{"Market Cap Category", fd.MarketCapCategory},
		{"Price", fd.Price},
		{"Shares Outstanding", fd.SharesOutstanding},
		{"Market Cap", fd.MarketCap},
		{"Trailing Earnings", fd.TrailingEarnings},
		{"EPS", fd.EPS},
		{"P/E", fd.PERatio},
		{"P/E Median", fd.PEMedian},
		{"ROE %", fd.ROE},
		{"ROE Median %", fd.ROEMedian},
		{"Equity", fd.TSE},
		{"Book Value Per Share", fd.TSEPerShare},
		{"Payout Ratio", optional(fd.PayoutRatio)},
		{"Payout Ratio Median", optional(fd.PayoutRatioMedian)},
		{"Dividend Yield", optional(fd.DividendYield)},
		{"EPS Growth %", optional(fd.EPSGrowth)},
		{"Price To Book", optional(fd.PriceToBook)},
		{"Current Ratio", optional(fd.CurrentRatio)},
		{"Debt To Equity", optional(fd.DebtToEquity)},
		{"Return On Assets %", optional(fd.ReturnOnAssets)},
		{"Altman Z", fd.ZScore},
		{"Piotroski F", fd.FScore},
	}
	for _, check := range fd.FScoreChecks {
		rows = append(rows, []interface{}{"", check})
	}

	rows = append(rows, []interface{}{}, []interface{}{"Fiscal Year", "Shares (M)", "EPS", "Median Price", "DPS"})
	for _, y := range fd.FiscalYears {
		rows = append(rows, []interface{}{
			int(y),
			yearValue(fd.SharesByYear, y),
			yearValue(fd.EPSByYear, y),
			yearValue(fd.MedianPriceByYear, y),
			yearValue(fd.DPSByYear, y),
		})
	}
	return rows
}

func yearValue(s types.StatementSeries, y types.FiscalYear) interface{} {
	if v, ok := s.Get(y); ok {
		return v
	}
	return ""
}

func overviewRows(o types.SevenYearOverview) [][]interface{} {
	rows := [][]interface{}{{"Year", "Book Value Per Share", "EPS", "DPS"}}
	for _, p := range o {
		rows = append(rows, []interface{}{p.Year, p.BookValuePerShare, p.EarningsPerShare, p.DividendPerShare})
	}
	return rows
}

func roiRows(r types.ROIResult) [][]interface{} {
	return [][]interface{}{
		{"Field", "Value"},
		{"Total Dividends", r.TotalDividends},
		{"Terminal Price", r.TerminalPrice},
		{"Absolute ROI", r.AbsoluteROI},
		{"Percentage ROI", r.PercentageROI},
		{"Annualized Return", r.AnnualizedReturn},
	}
}

func compositeRows(c types.CompositeScore) [][]interface{} {
	rows := [][]interface{}{{"Ratio", "Value", "Score", "Label", "Weight"}}
	for _, b := range c.Bands {
		rows = append(rows, []interface{}{b.Ratio, optional(b.Value), b.Score, b.Label, b.Weight})
	}
	rows = append(rows, []interface{}{"Composite", "", c.Score, "", ""})
	return rows
}
