package http_client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"roicalculator/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyHTML = `<html><body>
<h1>Acme Industries Ltd</h1>
<div data-warehouse-id="6598"></div>
<ul id="top-ratios">
<li class="flex flex-space-between" data-source="default"><span class="name">Market Cap</span><span class="nowrap value">₹ 5,000 Cr.</span></li>
<li class="flex flex-space-between" data-source="default"><span class="name">Current Price</span><span class="nowrap value">₹ 250</span></li>
<li class="flex flex-space-between" data-source="default"><span class="name">Dividend Yield</span><span class="nowrap value">1.5 %</span></li>
<li class="flex flex-space-between" data-source="default"><span class="name">Stock P/E</span><span class="nowrap value">20.1</span></li>
</ul>
<section id="quarters"><div data-result-table><table>
<thead><tr><th></th><th>Sep 2023</th><th>Dec 2023</th><th>Mar 2024</th><th>Jun 2024</th></tr></thead>
<tbody><tr><td class="text">Net Profit&nbsp;+</td><td>60</td><td>62</td><td>65</td><td>70</td></tr></tbody>
</table></div></section>
<section id="profit-loss"><div data-result-table><table>
<thead><tr><th></th><th>Mar 2022</th><th>Mar 2023</th><th>TTM</th></tr></thead>
<tbody>
<tr><td class="text">Sales&nbsp;+</td><td>1,800</td><td>2,000</td><td>2,100</td></tr>
<tr><td class="text">Interest</td><td>20</td><td>25</td><td>26</td></tr>
<tr><td class="text">Profit before tax</td><td>300</td><td>330</td><td>340</td></tr>
<tr><td class="text">Net Profit&nbsp;+</td><td>220</td><td>250</td><td>257</td></tr>
<tr><td class="text">EPS in Rs</td><td>11</td><td>12.5</td><td>12.8</td></tr>
<tr><td class="text">Dividend Payout %</td><td>20%</td><td>40%</td><td></td></tr>
</tbody>
</table></div></section>
<section id="balance-sheet"><div data-result-table><table>
<thead><tr><th></th><th>Mar 2022</th><th>Mar 2023</th></tr></thead>
<tbody>
<tr><td class="text">Equity Capital</td><td>20</td><td>20</td></tr>
<tr><td class="text">Reserves</td><td>1,180</td><td>1,380</td></tr>
<tr><td class="text">Borrowings&nbsp;+</td><td>300</td><td>250</td></tr>
<tr><td class="text">Other Liabilities&nbsp;+</td><td>500</td><td></td></tr>
<tr><td class="text">Total Assets</td><td>2,000</td><td>2,100</td></tr>
</tbody>
</table></div></section>
<section id="cash-flow"><div data-result-table><table>
<thead><tr><th></th><th>Mar 2023</th></tr></thead>
<tbody><tr><td class="text">Cash from Operating Activity&nbsp;+</td><td>280</td></tr></tbody>
</table></div></section>
</body></html>`

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/company/search/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "NOPE" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"id": 1, "name": "Acme Industries Ltd", "url": "/company/ACME/"}]`))
	})
	mux.HandleFunc("/company/ACME/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(companyHTML))
	})
	mux.HandleFunc("/api/company/6598/chart/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Price", r.URL.Query().Get("q"))
		w.Write([]byte(`{"datasets": [
			{"metric": "Price", "values": [["2023-01-02", "240.5"], ["2023-01-03", 242], ["2010-01-01", "1"]]},
			{"metric": "Volume", "values": [["2023-01-02", 1000]]}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestPageSourceBasicInfo(t *testing.T) {
	p := NewPageSource(newPageServer(t).URL)

	info, err := p.GetBasicInfo(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, "Acme Industries Ltd", info.Name)
	assert.Equal(t, "INR", info.Currency)
	assert.Equal(t, 250.0, info.Price)
	assert.Equal(t, 5000*crore, info.MarketCap)
	assert.Equal(t, 2e8, info.SharesOutstanding)
	require.NotNil(t, info.DividendYield)
	assert.InDelta(t, 0.015, *info.DividendYield, 1e-12)
}

func TestPageSourceStatements(t *testing.T) {
	p := NewPageSource(newPageServer(t).URL)
	ctx := context.Background()

	bs, err := p.GetAnnualBalanceSheet(ctx, "ACME")
	require.NoError(t, err)
	equity, ok := bs.Row("Total Stockholder Equity")
	require.True(t, ok)
	assert.Equal(t, types.StatementSeries{2022: 1200 * crore, 2023: 1400 * crore}, equity)
	liabilities, ok := bs.Row("Total Liab")
	require.True(t, ok)
	assert.Equal(t, types.StatementSeries{2022: 800 * crore}, liabilities)

	earnings, err := p.GetAnnualEarnings(ctx, "ACME")
	require.NoError(t, err)
	ebit, ok := earnings.Row("EBIT")
	require.True(t, ok)
	assert.Equal(t, 355*crore, ebit[2023])

	quarters, err := p.GetQuarterlyEarnings(ctx, "ACME")
	require.NoError(t, err)
	profit, ok := quarters.Row("Net Profit")
	require.True(t, ok)
	assert.Len(t, profit, 4)

	qbs, err := p.GetQuarterlyBalanceSheet(ctx, "ACME")
	require.NoError(t, err)
	assert.Empty(t, qbs)

	cf, err := p.GetAnnualCashFlow(ctx, "ACME")
	require.NoError(t, err)
	assert.Len(t, cf, 1)

	dividends, err := p.GetDividendHistory(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, dividends, 2)
	assert.InDelta(t, 5, dividends[0].Amount, 1e-9)
	assert.InDelta(t, 2.2, dividends[1].Amount, 1e-9)

	_, err = p.GetShareCountHistory(ctx, "ACME")
	assert.True(t, errors.Is(err, types.ErrUnavailable))
}

func TestPageSourcePriceHistory(t *testing.T) {
	p := NewPageSource(newPageServer(t).URL)
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	prices, err := p.GetDailyPriceHistory(context.Background(), "ACME", from, time.Now())
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, 240.5, prices[0].Close)
	assert.Equal(t, 242.0, prices[1].Close)
}

func TestPageSourceUnknownCompany(t *testing.T) {
	p := NewPageSource(newPageServer(t).URL)
	_, err := p.GetBasicInfo(context.Background(), "NOPE")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}
