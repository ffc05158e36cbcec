package services

import (
	"context"
	"errors"
	"fmt"
	"roicalculator/types"
	"roicalculator/utils/constants"
	"roicalculator/utils/helpers"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

/*
Valuation pipeline

1. Fetch every statement table of the symbol concurrently and join them into a
   StatementBundle (any failed fetch aborts the valuation).
2. Normalize: pick the fiscal window, align earnings and share counts.
3. Derive ratios, medians, Altman Z and Piotroski F into Fundamentals.
4. Project seven years of book value, earnings and dividends, then the ROI.
5. Score the ratios against the active benchmarks.
*/

// DataSource is the upstream provider of statement tables.
type DataSource interface {
	GetBasicInfo(ctx context.Context, symbol string) (*types.BasicInfo, error)
	GetAnnualBalanceSheet(ctx context.Context, symbol string) (types.Statement, error)
	GetQuarterlyBalanceSheet(ctx context.Context, symbol string) (types.QuarterlyStatement, error)
	GetAnnualEarnings(ctx context.Context, symbol string) (types.Statement, error)
	GetQuarterlyEarnings(ctx context.Context, symbol string) (types.QuarterlyStatement, error)
	GetAnnualCashFlow(ctx context.Context, symbol string) (types.Statement, error)
	GetDividendHistory(ctx context.Context, symbol string) ([]types.DividendEvent, error)
	// GetShareCountHistory returns types.ErrUnavailable when the source has no history.
	GetShareCountHistory(ctx context.Context, symbol string) (types.StatementSeries, error)
	GetSplitHistory(ctx context.Context, symbol string) ([]types.SplitEvent, error)
	GetDailyPriceHistory(ctx context.Context, symbol string, from, to time.Time) ([]types.PriceBar, error)
}

// EventPublisher receives one event per successful valuation.
type EventPublisher interface {
	Publish(event types.ValuationEvent)
}

type ValuationServiceI interface {
	ComputeValuation(ctx context.Context, symbol string) (*types.Fundamentals, error)
	Evaluate(ctx context.Context, symbol string) (*types.Valuation, error)
}

type valuationService struct {
	source       DataSource
	benchmarks   BenchmarkServiceI
	publishers   []EventPublisher
	historyYears int
	now          func() time.Time
}

// ValuationService is set up in main once the data source is known.
var ValuationService ValuationServiceI

func NewValuationService(source DataSource, benchmarks BenchmarkServiceI, historyYears int, publishers ...EventPublisher) ValuationServiceI {
	if historyYears <= 0 {
		historyYears = constants.DefaultHistoryYears
	}
	return &valuationService{
		source:       source,
		benchmarks:   benchmarks,
		publishers:   publishers,
		historyYears: historyYears,
		now:          time.Now,
	}
}

// fetchBundle issues every data-source call concurrently and returns once all of
// them succeeded. The first failure cancels the others.
func (v *valuationService) fetchBundle(ctx context.Context, symbol string, now time.Time) (*types.StatementBundle, error) {
	span := sentry.StartSpan(ctx, "[DataSource] fetchBundle")
	defer span.Finish()

	bundle := &types.StatementBundle{}
	g, gctx := errgroup.WithContext(span.Context())

	g.Go(func() error {
		info, err := v.source.GetBasicInfo(gctx, symbol)
		if err != nil {
			return err
		}
		bundle.Info = *info
		return nil
	})
	g.Go(func() (err error) {
		bundle.AnnualBalanceSheet, err = v.source.GetAnnualBalanceSheet(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		bundle.QuarterlyBalanceSheet, err = v.source.GetQuarterlyBalanceSheet(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		bundle.AnnualEarnings, err = v.source.GetAnnualEarnings(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		bundle.QuarterlyEarnings, err = v.source.GetQuarterlyEarnings(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		bundle.AnnualCashFlow, err = v.source.GetAnnualCashFlow(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		bundle.Dividends, err = v.source.GetDividendHistory(gctx, symbol)
		return err
	})
	g.Go(func() error {
		history, err := v.source.GetShareCountHistory(gctx, symbol)
		if errors.Is(err, types.ErrUnavailable) {
			return nil
		}
		if err != nil {
			return err
		}
		bundle.ShareHistory = history
		bundle.ShareHistoryAvailable = true
		return nil
	})
	g.Go(func() (err error) {
		bundle.Splits, err = v.source.GetSplitHistory(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		from := time.Date(now.Year()-v.historyYears-1, time.January, 1, 0, 0, 0, 0, time.UTC)
		bundle.Prices, err = v.source.GetDailyPriceHistory(gctx, symbol, from, now)
		return err
	})

	if err := g.Wait(); err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	bundle.Info.Symbol = symbol
	return bundle, nil
}

func (v *valuationService) ComputeValuation(ctx context.Context, symbol string) (*types.Fundamentals, error) {
	span := sentry.StartSpan(ctx, "[Service] ComputeValuation")
	defer span.Finish()

	now := v.now()
	raw, err := v.fetchBundle(span.Context(), symbol, now)
	if err != nil {
		return nil, v.abort(span, symbol, err)
	}

	bundle, err := BuildBundle(raw, v.historyYears, now)
	if err != nil {
		return nil, v.abort(span, symbol, err)
	}

	fundamentals, err := DeriveFundamentals(bundle)
	if err != nil {
		return nil, v.abort(span, symbol, err)
	}

	zap.L().Info("Computed fundamentals",
		zap.String("symbol", symbol),
		zap.Int("fiscalYears", len(bundle.FiscalYears)),
		zap.Bool("shareHistory", bundle.ShareHistoryAvailable),
		zap.Float64("eps", fundamentals.EPS),
		zap.Float64("zScore", fundamentals.ZScore),
		zap.Float64("fScore", fundamentals.FScore))
	return fundamentals, nil
}

func (v *valuationService) abort(span *sentry.Span, symbol string, err error) error {
	span.Status = sentry.SpanStatusInternalError
	if errors.Is(err, types.ErrNotFound) {
		span.Status = sentry.SpanStatusNotFound
		zap.L().Info("Symbol not found", zap.String("symbol", symbol), zap.Error(err))
		return err
	}
	if !errors.Is(err, types.ErrData) {
		sentry.CaptureException(err)
	}
	zap.L().Error("Valuation aborted", zap.String("symbol", symbol), zap.Error(err))
	return err
}

// Evaluate runs the whole pipeline and publishes a valuation event.
func (v *valuationService) Evaluate(ctx context.Context, symbol string) (*types.Valuation, error) {
	span := sentry.StartSpan(ctx, "[Service] Evaluate")
	defer span.Finish()

	fundamentals, err := v.ComputeValuation(span.Context(), symbol)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		return nil, err
	}

	overview := ProjectGrowth(fundamentals)
	roi, err := ComputeROI(fundamentals, overview)
	if err != nil {
		return nil, v.abort(span, symbol, err)
	}

	var benchmarks types.BenchmarkConfig
	if v.benchmarks != nil {
		benchmarks = v.benchmarks.Current()
	}
	valuation := &types.Valuation{
		Fundamentals: fundamentals,
		Overview:     overview,
		ROI:          roi,
		Composite:    ComputeScore(fundamentals, benchmarks),
	}

	event := types.ValuationEvent{
		ID:               uuid.New().String(),
		Symbol:           symbol,
		Price:            fundamentals.Price,
		EPS:              fundamentals.EPS,
		PERatio:          fundamentals.PERatio,
		ROE:              fundamentals.ROE,
		ZScore:           fundamentals.ZScore,
		FScore:           fundamentals.FScore,
		CompositeScore:   valuation.Composite.Score,
		AnnualizedReturn: roi.AnnualizedReturn,
		ComputedAt:       v.now(),
	}
	for _, p := range v.publishers {
		p.Publish(event)
	}
	return valuation, nil
}

func scaleSeries(s types.StatementSeries, factor float64) types.StatementSeries {
	out := make(types.StatementSeries, len(s))
	for y, v := range s {
		out[y] = v * factor
	}
	return out
}

// trailingEarnings sums the last four quarters, falling back to the latest annual figure.
func trailingEarnings(b *types.StatementBundle) float64 {
	if row, ok := helpers.FindRow(b.QuarterlyEarnings, constants.NetIncomePatterns); ok {
		if total, ok := YearToDateEarnings(row); ok {
			return total
		}
	}
	_, latest, _ := b.Earnings.Latest()
	return latest
}

// stockholderEquity prefers the latest quarterly balance sheet over the annual one.
func stockholderEquity(b *types.StatementBundle) (float64, bool) {
	if row, ok := helpers.FindRow(b.QuarterlyBalanceSheet, constants.TotalStockholderEquityPatterns); ok {
		return row.Latest(1)[0].Value, true
	}
	if row, ok := helpers.FindRow(b.AnnualBalanceSheet, constants.TotalStockholderEquityPatterns); ok {
		_, v, _ := row.Latest()
		return v, true
	}
	return 0, false
}

func latestOf(st types.Statement, patterns []string) (float64, bool) {
	row, ok := helpers.FindRow(st, patterns)
	if !ok {
		return 0, false
	}
	_, v, ok := row.Latest()
	return v, ok
}

// DeriveFundamentals computes every current-period figure from a normalized bundle.
// Earnings and equity are handled in millions to match the share counts.
func DeriveFundamentals(b *types.StatementBundle) (*types.Fundamentals, error) {
	if len(b.FiscalYears) == 0 {
		return nil, types.NewDataError("earnings", "no fiscal years to derive from")
	}
	info := b.Info
	latestYear := b.FiscalYears[0]
	shares := b.SharesByYear[latestYear]

	f := &types.Fundamentals{
		Symbol:            info.Symbol,
		Name:              info.Name,
		Country:           info.Country,
		Currency:          info.Currency,
		MarketCapCategory: helpers.GetMarketCapCategory(info.MarketCap),
		Price:             info.Price,
		SharesOutstanding: shares,
		MarketCap:         info.MarketCap,
		FiscalYears:       b.FiscalYears,
		SharesByYear:      b.SharesByYear,
		ShareHistoryUsed:  b.ShareHistoryAvailable,
	}

	var err error
	f.TrailingEarnings = trailingEarnings(b) / constants.Million
	if f.EPS, err = EarningsPerShare(f.TrailingEarnings, shares); err != nil {
		return nil, err
	}
	if f.PERatio, err = PriceEarningsRatio(info.Price, f.EPS); err != nil {
		return nil, err
	}

	equity, ok := stockholderEquity(b)
	if !ok {
		return nil, types.NewDataError("equity", "no total stockholder equity reported")
	}
	f.TSE = equity / constants.Million
	if f.ROE, err = ReturnOnEquity(f.TrailingEarnings, f.TSE); err != nil {
		return nil, err
	}
	f.TSEPerShare = f.TSE / shares

	earnings := scaleSeries(b.Earnings, 1/constants.Million)
	if equityRow, ok := helpers.FindRow(b.AnnualBalanceSheet, constants.TotalStockholderEquityPatterns); ok {
		f.ROEMedian, err = ReturnOnEquityMedian(scaleSeries(RestrictToWindow(equityRow, b.FiscalYears), 1/constants.Million), earnings)
		if err != nil {
			return nil, err
		}
	} else {
		f.ROEMedian = f.ROE
	}

	if f.EPSByYear, err = EPSByYear(earnings, b.SharesByYear); err != nil {
		return nil, err
	}
	f.MedianPriceByYear = MedianPricePerYear(b.Prices, b.FiscalYears)
	if f.PEMedian, err = PriceEarningsRatioMedian(f.MedianPriceByYear, f.EPSByYear); err != nil {
		return nil, err
	}
	f.EPSGrowth = EPSGrowth(f.EPSByYear)

	f.DPSByYear = DividendsPerYear(b.Dividends, b.FiscalYears)
	f.PaysDividend = len(f.DPSByYear) > 0 || (info.DividendYield != nil && *info.DividendYield > 0)
	f.PayoutRatioMedian = DividendPayoutRatioMedian(f.DPSByYear, f.EPSByYear)
	f.PayoutRatio = info.PayoutRatio
	if f.PayoutRatio == nil {
		if dps, ok := f.DPSByYear.Get(latestYear); ok {
			if r, ok := DividendPayoutRatio(dps, f.EPSByYear[latestYear]); ok {
				f.PayoutRatio = &r
			}
		}
	}
	f.DividendYield = info.DividendYield
	if f.DividendYield == nil {
		if dps, ok := f.DPSByYear.Get(latestYear); ok {
			f.DividendYield = ratio(dps, info.Price)
		}
	}

	f.PriceToBook = ratio(info.Price, f.TSEPerShare)
	if ca, ok := latestOf(b.AnnualBalanceSheet, constants.TotalCurrentAssetsPatterns); ok {
		if cl, ok := latestOf(b.AnnualBalanceSheet, constants.TotalCurrentLiabilitiesPatterns); ok {
			f.CurrentRatio = ratio(ca, cl)
		}
	}
	if debt, ok := latestOf(b.AnnualBalanceSheet, constants.LongTermDebtPatterns); ok {
		f.DebtToEquity = ratio(debt/constants.Million, f.TSE)
	}
	if assets, ok := latestOf(b.AnnualBalanceSheet, constants.TotalAssetsPatterns); ok {
		if _, ni, ok := b.Earnings.Latest(); ok {
			if roa := ratio(ni, assets); roa != nil {
				pct := *roa * 100
				f.ReturnOnAssets = &pct
			}
		}
	}

	f.ZScore = AltmanZScore(b.AnnualBalanceSheet, b.AnnualEarnings, info.MarketCap).Score()
	fscore := PiotroskiFScore(b, f.TrailingEarnings)
	f.FScore = fscore.Score
	f.FScoreChecks = fscore.Checks
	return f, nil
}
