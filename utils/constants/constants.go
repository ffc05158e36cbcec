package constants

const (
	// Million scales raw share counts to the unit used by every per-share ratio.
	Million = 1e6

	DefaultHistoryYears   = 4
	ProjectionYears       = 7
	PEMedianCap           = 25.0
	DividendAfterTaxRatio = 0.85
	DefaultRateLimit      = 5
	DefaultPort           = "4000"
	DefaultBenchmarksFile = "benchmarks.yaml"
	DefaultQueueName      = "roicalculator"
	DefaultReloadInterval = "24h"
)

// Statement line items, matched by helpers.FindRow after normalization.
var (
	NetIncomePatterns = []string{
		"net income", "net profit", "net earnings", "earnings",
		`net income( common stockholders| applicable to common shares)?`,
	}
	TotalStockholderEquityPatterns = []string{
		"total stockholder equity", "total stockholders equity", "total equity",
		`total (share|stock)holders?'? ?equity`,
	}
	TotalAssetsPatterns             = []string{"total assets"}
	TotalCurrentAssetsPatterns      = []string{"total current assets", `(total )?current assets`}
	TotalCurrentLiabilitiesPatterns = []string{"total current liabilities", `(total )?current liabilities`}
	TotalLiabilitiesPatterns        = []string{"total liab", "total liabilities", `total liabilities( net minority interest)?`}
	RetainedEarningsPatterns        = []string{"retained earnings", `retained earnings( \(deficit\))?`}
	EBITPatterns                    = []string{"ebit", "operating income", `earnings before interest and taxes?`}
	RevenuePatterns                 = []string{"total revenue", "revenue", "sales", `(net |total )?(revenue|sales)`}
	GrossProfitPatterns             = []string{"gross profit"}
	LongTermDebtPatterns            = []string{"long term debt", "borrowings", `long[- ]term debt( total)?`}
	OperatingCashFlowPatterns       = []string{
		"total cash from operating activities", "cash from operating activity",
		"operating cash flow", `(total )?cash (flow )?from operating activit(y|ies)`,
	}
)

// Ratio names used as benchmark keys.
const (
	RatioPERatio        = "pe_ratio"
	RatioPEMedian       = "pe_median"
	RatioPayoutRatio    = "payout_ratio"
	RatioPayoutMedian   = "payout_ratio_median"
	RatioPriceToBook    = "price_to_book"
	RatioDebtToEquity   = "debt_to_equity"
	RatioROE            = "roe"
	RatioROEMedian      = "roe_median"
	RatioEPSGrowth      = "eps_growth"
	RatioDividendYield  = "dividend_yield"
	RatioZScore         = "z_score"
	RatioFScore         = "f_score"
	RatioCurrentRatio   = "current_ratio"
	RatioReturnOnAssets = "return_on_assets"
)

// Benchmark thresholds ascend from bm1 to bm5 for LowerIsBetterRatios and descend for
// HigherIsBetterRatios.
var (
	LowerIsBetterRatios = map[string]bool{
		RatioPERatio:      true,
		RatioPEMedian:     true,
		RatioPayoutRatio:  true,
		RatioPayoutMedian: true,
		RatioPriceToBook:  true,
		RatioDebtToEquity: true,
	}
	HigherIsBetterRatios = map[string]bool{
		RatioROE:            true,
		RatioROEMedian:      true,
		RatioEPSGrowth:      true,
		RatioDividendYield:  true,
		RatioZScore:         true,
		RatioFScore:         true,
		RatioCurrentRatio:   true,
		RatioReturnOnAssets: true,
	}
)

const (
	LabelExcellent = "excellent"
	LabelGood      = "good"
	LabelFair      = "fair"
	LabelWeak      = "weak"
	LabelPoor      = "poor"
	LabelBad       = "bad"
	LabelNA        = "n/a"
)
