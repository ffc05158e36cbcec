package http_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"roicalculator/types"
	"roicalculator/utils/constants"
	"roicalculator/utils/helpers"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultCacheTTL = time.Minute
)

// APIError is a non-200 answer from the fundamentals API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fundamentals API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// FundamentalsClient is a data source backed by an EOD-style fundamentals REST API.
type FundamentalsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *responseCache[*fundamentalsResponse]
}

// ClientOption configures the FundamentalsClient.
type ClientOption func(*FundamentalsClient)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *FundamentalsClient) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets the allowed requests per second.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *FundamentalsClient) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *FundamentalsClient) {
		c.cache = newResponseCache[*fundamentalsResponse](ttl)
	}
}

func NewFundamentalsClient(baseURL, apiKey string, opts ...ClientOption) *FundamentalsClient {
	c := &FundamentalsClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(constants.DefaultRateLimit), constants.DefaultRateLimit),
		cache:      newResponseCache[*fundamentalsResponse](DefaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type fundamentalsResponse struct {
	General struct {
		Code         string `json:"Code"`
		Name         string `json:"Name"`
		CountryName  string `json:"CountryName"`
		CurrencyCode string `json:"CurrencyCode"`
	} `json:"General"`
	Highlights struct {
		MarketCapitalization float64 `json:"MarketCapitalization"`
		DividendYield        float64 `json:"DividendYield"`
	} `json:"Highlights"`
	Valuation struct {
		TrailingPE float64 `json:"TrailingPE"`
		ForwardPE  float64 `json:"ForwardPE"`
	} `json:"Valuation"`
	SharesStats struct {
		SharesOutstanding float64 `json:"SharesOutstanding"`
	} `json:"SharesStats"`
	SplitsDividends struct {
		PayoutRatio float64 `json:"PayoutRatio"`
	} `json:"SplitsDividends"`
	OutstandingShares struct {
		Annual sharesEntries `json:"annual"`
	} `json:"outstandingShares"`
	Financials struct {
		BalanceSheet    financialStatement `json:"Balance_Sheet"`
		CashFlow        financialStatement `json:"Cash_Flow"`
		IncomeStatement financialStatement `json:"Income_Statement"`
	} `json:"Financials"`
}

type financialStatement struct {
	Quarterly map[string]map[string]interface{} `json:"quarterly"`
	Yearly    map[string]map[string]interface{} `json:"yearly"`
}

type sharesEntry struct {
	DateFormatted string      `json:"dateFormatted"`
	Shares        interface{} `json:"shares"`
}

// sharesEntries accepts both the list and the index-keyed object encoding.
type sharesEntries []sharesEntry

func (s *sharesEntries) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []sharesEntry
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	var keyed map[string]sharesEntry
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	out := make([]sharesEntry, 0, len(keyed))
	for _, e := range keyed {
		out = append(out, e)
	}
	*s = out
	return nil
}

type quoteResponse struct {
	Code  string      `json:"code"`
	Close interface{} `json:"close"`
}

type eodBar struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type dividendEntry struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type splitEntry struct {
	Date  string `json:"date"`
	Split string `json:"split"`
}

// get performs a GET request to the API.
func (c *FundamentalsClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	zap.L().Debug("Fundamentals API request", zap.String("url", c.baseURL+path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// notFound maps a 404 from the API onto the NotFoundError of the symbol.
func notFound(symbol string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return &types.NotFoundError{Symbol: symbol, Reason: "unknown to the fundamentals API"}
	}
	return err
}

func (c *FundamentalsClient) fundamentals(ctx context.Context, symbol string) (*fundamentalsResponse, error) {
	return c.cache.get(symbol, func() (*fundamentalsResponse, error) {
		var result fundamentalsResponse
		if err := c.get(ctx, "/fundamentals/"+symbol, nil, &result); err != nil {
			return nil, notFound(symbol, err)
		}
		if result.General.Code == "" && result.General.Name == "" {
			return nil, &types.NotFoundError{Symbol: symbol, Reason: "empty fundamentals"}
		}
		return &result, nil
	})
}

func optional(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func (c *FundamentalsClient) GetBasicInfo(ctx context.Context, symbol string) (*types.BasicInfo, error) {
	f, err := c.fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}

	var quote quoteResponse
	if err := c.get(ctx, "/real-time/"+symbol, nil, &quote); err != nil {
		return nil, notFound(symbol, err)
	}
	price, ok := helpers.ParseOptionalFloat(quote.Close)
	if !ok || price <= 0 {
		return nil, &types.NotFoundError{Symbol: symbol, Reason: "no live price"}
	}

	info := &types.BasicInfo{
		Symbol:            symbol,
		Name:              f.General.Name,
		Country:           f.General.CountryName,
		Currency:          f.General.CurrencyCode,
		Price:             price,
		SharesOutstanding: f.SharesStats.SharesOutstanding,
		MarketCap:         f.Highlights.MarketCapitalization,
		PayoutRatio:       optional(f.SplitsDividends.PayoutRatio),
		DividendYield:     optional(f.Highlights.DividendYield),
		TrailingPE:        optional(f.Valuation.TrailingPE),
		ForwardPE:         optional(f.Valuation.ForwardPE),
	}
	if info.MarketCap == 0 {
		info.MarketCap = price * info.SharesOutstanding
	}
	return info, nil
}

// annual converts a date-keyed yearly table into a Statement.
func annual(rows map[string]map[string]interface{}) types.Statement {
	st := types.Statement{}
	for date, fields := range rows {
		year, ok := helpers.ParseFiscalYear(date)
		if !ok {
			continue
		}
		for field, raw := range fields {
			v, ok := helpers.ParseOptionalFloat(raw)
			if !ok {
				continue
			}
			label := helpers.HumanizeLabel(field)
			if st[label] == nil {
				st[label] = types.StatementSeries{}
			}
			st[label][year] = v
		}
	}
	return st
}

func quarterly(rows map[string]map[string]interface{}) types.QuarterlyStatement {
	st := types.QuarterlyStatement{}
	for date, fields := range rows {
		end, ok := helpers.ParsePeriodEnd(date)
		if !ok {
			continue
		}
		for field, raw := range fields {
			v, ok := helpers.ParseOptionalFloat(raw)
			if !ok {
				continue
			}
			label := helpers.HumanizeLabel(field)
			st[label] = append(st[label], types.PeriodValue{End: end, Value: v})
		}
	}
	return st
}

func (c *FundamentalsClient) GetAnnualBalanceSheet(ctx context.Context, symbol string) (types.Statement, error) {
	f, err := c.fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return annual(f.Financials.BalanceSheet.Yearly), nil
}

func (c *FundamentalsClient) GetQuarterlyBalanceSheet(ctx context.Context, symbol string) (types.QuarterlyStatement, error) {
	f, err := c.fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return quarterly(f.Financials.BalanceSheet.Quarterly), nil
}

func (c *FundamentalsClient) GetAnnualEarnings(ctx context.Context, symbol string) (types.Statement, error) {
	f, err := c.fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return annual(f.Financials.IncomeStatement.Yearly), nil
}

func (c *FundamentalsClient) GetQuarterlyEarnings(ctx context.Context, symbol string) (types.QuarterlyStatement, error) {
	f, err := c.fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return quarterly(f.Financials.IncomeStatement.Quarterly), nil
}

func (c *FundamentalsClient) GetAnnualCashFlow(ctx context.Context, symbol string) (types.Statement, error) {
	f, err := c.fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return annual(f.Financials.CashFlow.Yearly), nil
}

// GetShareCountHistory returns absolute share counts per fiscal year, or
// types.ErrUnavailable when the API reports none.
func (c *FundamentalsClient) GetShareCountHistory(ctx context.Context, symbol string) (types.StatementSeries, error) {
	f, err := c.fundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}
	history := types.StatementSeries{}
	for _, e := range f.OutstandingShares.Annual {
		year, ok := helpers.ParseFiscalYear(e.DateFormatted)
		if !ok {
			continue
		}
		if shares, ok := helpers.ParseOptionalFloat(e.Shares); ok && shares > 0 {
			history[year] = shares
		}
	}
	if len(history) == 0 {
		return nil, types.ErrUnavailable
	}
	return history, nil
}

func (c *FundamentalsClient) GetDividendHistory(ctx context.Context, symbol string) ([]types.DividendEvent, error) {
	var result []dividendEntry
	if err := c.get(ctx, "/div/"+symbol, nil, &result); err != nil {
		return nil, notFound(symbol, err)
	}
	out := make([]types.DividendEvent, 0, len(result))
	for _, d := range result {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil || d.Value <= 0 {
			continue
		}
		out = append(out, types.DividendEvent{Date: date, Amount: d.Value})
	}
	return out, nil
}

func (c *FundamentalsClient) GetSplitHistory(ctx context.Context, symbol string) ([]types.SplitEvent, error) {
	var result []splitEntry
	if err := c.get(ctx, "/splits/"+symbol, nil, &result); err != nil {
		return nil, notFound(symbol, err)
	}
	out := make([]types.SplitEvent, 0, len(result))
	for _, s := range result {
		date, err := time.Parse("2006-01-02", s.Date)
		if err != nil {
			continue
		}
		coefficient, err := helpers.ParseSplitRatio(s.Split)
		if err != nil {
			zap.L().Warn("Skipping split", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		out = append(out, types.SplitEvent{Year: types.FiscalYear(date.Year()), Coefficient: coefficient})
	}
	return out, nil
}

func (c *FundamentalsClient) GetDailyPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]types.PriceBar, error) {
	params := url.Values{}
	params.Set("from", from.Format("2006-01-02"))
	params.Set("to", to.Format("2006-01-02"))
	params.Set("period", "d")

	var result []eodBar
	if err := c.get(ctx, "/eod/"+symbol, params, &result); err != nil {
		return nil, notFound(symbol, err)
	}
	out := make([]types.PriceBar, 0, len(result))
	for _, bar := range result {
		date, err := time.Parse("2006-01-02", bar.Date)
		if err != nil {
			continue
		}
		out = append(out, types.PriceBar{Date: date, Close: bar.Close})
	}
	return out, nil
}
