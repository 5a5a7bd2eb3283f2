package models

import (
	"encoding/json"
	"math"
	"time"
)

// ProfitFactorCap stands in for the +Inf profit-factor sentinel in JSON
// output: JSON cannot carry IEEE infinities, and the report object must
// stay serializable even for a lossless run.
const ProfitFactorCap = 1e9

// Statistics holds the summary statistics of a finished backtest.
// The field set is fixed: downstream reporting depends on it.
type Statistics struct {
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	WinRate        float64 `json:"win_rate"`
	TotalPnL       float64 `json:"total_pnl"`
	AvgPnL         float64 `json:"avg_pnl"`
	AvgWin         float64 `json:"avg_win"`
	AvgLoss        float64 `json:"avg_loss"`
	MaxWin         float64 `json:"max_win"`
	MaxLoss        float64 `json:"max_loss"`
	ProfitFactor   float64 `json:"profit_factor"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	ROIPercent     float64 `json:"roi_percent"`
	MarginRequired float64 `json:"margin_required"`
}

// MarshalJSON caps the +Inf profit-factor sentinel at ProfitFactorCap.
// The in-memory value stays infinite; only the wire form is capped.
func (s Statistics) MarshalJSON() ([]byte, error) {
	type statisticsJSON Statistics
	v := statisticsJSON(s)
	if math.IsInf(v.ProfitFactor, 1) {
		v.ProfitFactor = ProfitFactorCap
	}
	return json.Marshal(v)
}

// MonthlyPnL aggregates trade outcomes for one calendar month.
type MonthlyPnL struct {
	PnL    float64 `json:"pnl"`
	Trades int     `json:"trades"`
	Wins   int     `json:"wins"`
}

// EquityPoint is one step of the cumulative equity curve.
type EquityPoint struct {
	Date      time.Time `json:"date"`
	Equity    float64   `json:"equity"`
	CumPnL    float64   `json:"cum_pnl"`
}

// TradeSummary is a compact view of one trade for report samples.
type TradeSummary struct {
	EntryDate  string  `json:"entry_date"`
	ExitDate   string  `json:"exit_date"`
	DTE        int     `json:"dte"`
	SpotEntry  float64 `json:"spot_entry"`
	SpotExit   float64 `json:"spot_exit"`
	NetCredit  float64 `json:"net_credit"`
	ExitReason string  `json:"exit_reason"`
	PnL        float64 `json:"pnl"`
}

// BacktestResult is the report object produced once per backtest run.
// It is derived and read-only.
type BacktestResult struct {
	StrategyName         string                `json:"strategy_name"`
	StructureDescription string                `json:"structure_description"`
	PeriodStart          time.Time             `json:"period_start"`
	PeriodEnd            time.Time             `json:"period_end"`
	Statistics           Statistics            `json:"statistics"`
	MonthlyPnL           map[string]MonthlyPnL `json:"monthly_pnl"`
	EquityCurve          []EquityPoint         `json:"equity_curve"`
	Trades               []Trade               `json:"-"`
	SampleTrades         []TradeSummary        `json:"sample_trades"`
	SkippedCycles        int                   `json:"skipped_cycles"`
}
