package http_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"roicalculator/types"
	"roicalculator/utils/helpers"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Figures on company pages are reported in crores.
const crore = 1e7

// PageSource is a data source that scrapes the public company page of a
// screener-style site. It has no share-count or split history.
type PageSource struct {
	baseURL    string
	httpClient *http.Client
	cache      *responseCache[*companyPage]
}

type companyPage struct {
	doc         *goquery.Document
	warehouseID string
}

func NewPageSource(baseURL string) *PageSource {
	return &PageSource{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		cache:      newResponseCache[*companyPage](DefaultCacheTTL),
	}
}

// SearchCompany queries the site's company search.
func (p *PageSource) SearchCompany(ctx context.Context, queryString string) ([]types.Company, error) {
	// Replace "corporation" with "Corpn" and "limited" with "Ltd"
	queryString = strings.ReplaceAll(queryString, " Corporation ", " Corpn ")
	queryString = strings.ReplaceAll(queryString, " corporation ", " Corpn ")
	queryString = strings.ReplaceAll(queryString, " Limited", " Ltd ")
	queryString = strings.ReplaceAll(queryString, " limited", " Ltd ")
	queryString = strings.ReplaceAll(queryString, " and ", " & ")
	queryString = strings.ReplaceAll(queryString, " And ", " & ")
	baseURL := p.baseURL + "/api/company/search/"

	params := url.Values{}
	params.Add("q", strings.TrimSpace(queryString))
	params.Add("v", "3")
	params.Add("fts", "1")

	body, err := p.fetch(ctx, baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var searchResponse []types.Company
	if err := json.NewDecoder(body).Decode(&searchResponse); err != nil {
		zap.L().Error("Failed to unmarshal search response", zap.Error(err))
		return nil, err
	}
	return searchResponse, nil
}

func (p *PageSource) fetch(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the URL: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "failed to retrieve the content", Endpoint: pageURL}
	}
	return resp.Body, nil
}

func (p *PageSource) page(ctx context.Context, symbol string) (*companyPage, error) {
	return p.cache.get(symbol, func() (*companyPage, error) {
		companies, err := p.SearchCompany(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if len(companies) == 0 || companies[0].URL == "" {
			return nil, &types.NotFoundError{Symbol: symbol, Reason: "no matching company page"}
		}

		body, err := p.fetch(ctx, p.baseURL+companies[0].URL)
		if err != nil {
			return nil, notFound(symbol, err)
		}
		defer body.Close()

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse the HTML content: %w", err)
		}
		warehouseID, _ := doc.Find("div[data-warehouse-id]").Attr("data-warehouse-id")
		return &companyPage{doc: doc, warehouseID: warehouseID}, nil
	})
}

// topRatios reads the key/value list at the top of the page.
func topRatios(doc *goquery.Document) map[string]string {
	ratios := make(map[string]string)
	doc.Find("li.flex.flex-space-between[data-source='default']").Each(func(index int, item *goquery.Selection) {
		key := strings.TrimSpace(item.Find("span.name").Text())

		value := strings.TrimSpace(item.Find("span.nowrap.value").Text())
		value = strings.ReplaceAll(value, "\n", "")
		value = strings.ReplaceAll(value, " ", "")
		value = strings.ReplaceAll(value, "₹", "")
		value = strings.ReplaceAll(value, "Cr.", "")
		ratios[key] = value
	})
	return ratios
}

func (p *PageSource) GetBasicInfo(ctx context.Context, symbol string) (*types.BasicInfo, error) {
	page, err := p.page(ctx, symbol)
	if err != nil {
		return nil, err
	}
	ratios := topRatios(page.doc)

	price, ok := helpers.ParseOptionalFloat(ratios["Current Price"])
	if !ok || price <= 0 {
		return nil, &types.NotFoundError{Symbol: symbol, Reason: "no live price"}
	}
	info := &types.BasicInfo{
		Symbol:   symbol,
		Name:     strings.TrimSpace(page.doc.Find("h1").First().Text()),
		Country:  "India",
		Currency: "INR",
		Price:    price,
	}
	if marketCap, ok := helpers.ParseOptionalFloat(ratios["Market Cap"]); ok {
		info.MarketCap = marketCap * crore
		info.SharesOutstanding = info.MarketCap / price
	}
	if v, ok := helpers.ParseOptionalFloat(ratios["Dividend Yield"]); ok {
		yield := v / 100
		info.DividendYield = &yield
	}
	if v, ok := helpers.ParseOptionalFloat(ratios["Stock P/E"]); ok {
		info.TrailingPE = &v
	}
	return info, nil
}

func (p *PageSource) section(ctx context.Context, symbol, id string) (*goquery.Selection, error) {
	page, err := p.page(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return page.doc.Find("section#" + id), nil
}

// GetAnnualBalanceSheet adds the equity and liabilities totals the page leaves out.
func (p *PageSource) GetAnnualBalanceSheet(ctx context.Context, symbol string) (types.Statement, error) {
	sec, err := p.section(ctx, symbol, "balance-sheet")
	if err != nil {
		return nil, err
	}
	st := helpers.ParseTableData(sec, "div[data-result-table]", crore)
	if st == nil {
		return types.Statement{}, nil
	}
	addRows(st, "Total Stockholder Equity", "Equity Capital", "Reserves")
	addRows(st, "Total Liab", "Borrowings", "Other Liabilities")
	return st, nil
}

// GetQuarterlyBalanceSheet always returns an empty statement: the page has none.
func (p *PageSource) GetQuarterlyBalanceSheet(ctx context.Context, symbol string) (types.QuarterlyStatement, error) {
	if _, err := p.page(ctx, symbol); err != nil {
		return nil, err
	}
	return types.QuarterlyStatement{}, nil
}

func (p *PageSource) GetAnnualEarnings(ctx context.Context, symbol string) (types.Statement, error) {
	sec, err := p.section(ctx, symbol, "profit-loss")
	if err != nil {
		return nil, err
	}
	st := helpers.ParseTableData(sec, "div[data-result-table]", crore)
	if st == nil {
		return types.Statement{}, nil
	}
	addRows(st, "EBIT", "Profit before tax", "Interest")
	return st, nil
}

func (p *PageSource) GetQuarterlyEarnings(ctx context.Context, symbol string) (types.QuarterlyStatement, error) {
	sec, err := p.section(ctx, symbol, "quarters")
	if err != nil {
		return nil, err
	}
	st := helpers.ParseQuarterlyTableData(sec, "div[data-result-table]", crore)
	if st == nil {
		return types.QuarterlyStatement{}, nil
	}
	return st, nil
}

func (p *PageSource) GetAnnualCashFlow(ctx context.Context, symbol string) (types.Statement, error) {
	sec, err := p.section(ctx, symbol, "cash-flow")
	if err != nil {
		return nil, err
	}
	st := helpers.ParseTableData(sec, "div[data-result-table]", crore)
	if st == nil {
		return types.Statement{}, nil
	}
	return st, nil
}

// GetDividendHistory rebuilds one dividend per fiscal year from the reported EPS
// and payout percentage.
func (p *PageSource) GetDividendHistory(ctx context.Context, symbol string) ([]types.DividendEvent, error) {
	sec, err := p.section(ctx, symbol, "profit-loss")
	if err != nil {
		return nil, err
	}
	st := helpers.ParseTableData(sec, "div[data-result-table]", 1)
	eps, epsOK := helpers.FindRow(st, []string{"eps in rs", `eps.*`})
	payout, payoutOK := helpers.FindRow(st, []string{"dividend payout %", `dividend payout.*`})
	if !epsOK || !payoutOK {
		return nil, nil
	}

	var out []types.DividendEvent
	for _, y := range payout.Years() {
		e, ok := eps.Get(y)
		if !ok || payout[y] <= 0 || e <= 0 {
			continue
		}
		out = append(out, types.DividendEvent{
			Date:   time.Date(int(y), time.December, 31, 0, 0, 0, 0, time.UTC),
			Amount: e * payout[y] / 100,
		})
	}
	return out, nil
}

func (p *PageSource) GetShareCountHistory(ctx context.Context, symbol string) (types.StatementSeries, error) {
	return nil, types.ErrUnavailable
}

func (p *PageSource) GetSplitHistory(ctx context.Context, symbol string) ([]types.SplitEvent, error) {
	return nil, nil
}

type chartResponse struct {
	Datasets []struct {
		Metric string          `json:"metric"`
		Values [][]interface{} `json:"values"`
	} `json:"datasets"`
}

// GetDailyPriceHistory reads the price chart feed of the company.
func (p *PageSource) GetDailyPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]types.PriceBar, error) {
	page, err := p.page(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if page.warehouseID == "" {
		return nil, nil
	}

	days := int(time.Since(from).Hours()/24) + 1
	chartURL := fmt.Sprintf("%s/api/company/%s/chart/?q=Price&days=%d", p.baseURL, page.warehouseID, days)
	body, err := p.fetch(ctx, chartURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var chart chartResponse
	if err := json.NewDecoder(body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("failed to decode price chart: %w", err)
	}

	var out []types.PriceBar
	for _, ds := range chart.Datasets {
		if ds.Metric != "Price" {
			continue
		}
		for _, point := range ds.Values {
			if len(point) < 2 {
				continue
			}
			dateStr, _ := point[0].(string)
			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil || date.Before(from) || date.After(to) {
				continue
			}
			if price, ok := helpers.ParseOptionalFloat(point[1]); ok {
				out = append(out, types.PriceBar{Date: date, Close: price})
			}
		}
	}
	return out, nil
}

// addRows stores the year-wise sum of the parts under label, unless the page already
// reports label. Years missing from any part are left out.
func addRows(st types.Statement, label string, parts ...string) {
	if _, ok := st.Row(label); ok {
		return
	}
	var sum types.StatementSeries
	for _, part := range parts {
		row, ok := helpers.FindRow(st, []string{helpers.NormalizeString(part)})
		if !ok {
			return
		}
		if sum == nil {
			sum = types.StatementSeries{}
			for y, v := range row {
				sum[y] = v
			}
			continue
		}
		for y := range sum {
			v, ok := row.Get(y)
			if !ok {
				delete(sum, y)
				continue
			}
			sum[y] += v
		}
	}
	if len(sum) > 0 {
		st[label] = sum
	}
}
