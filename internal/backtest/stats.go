package backtest

import (
	"math"
	"time"

	"options-backtester/internal/config"
	"options-backtester/internal/models"
	"options-backtester/internal/strategy"
)

// sampleSize is the number of trades shown from each end of the run in
// the report's sample section.
const sampleSize = 5

// Aggregator turns a finished trade list into summary statistics. It
// owns the trades after creation; nothing mutates them again.
type Aggregator struct {
	startingCapital float64
	tradesPerYear   int
	marginPerLot    float64
}

// NewAggregator creates an aggregator from the engine configuration.
func NewAggregator(cfg config.EngineConfig) *Aggregator {
	return &Aggregator{
		startingCapital: cfg.StartingCapital,
		tradesPerYear:   cfg.TradesPerYear,
		marginPerLot:    cfg.MarginPerLot,
	}
}

// BuildResult assembles the full report object for a run.
func (a *Aggregator) BuildResult(tmpl *strategy.Template, trades []models.Trade, start, end time.Time) *models.BacktestResult {
	return &models.BacktestResult{
		StrategyName:         tmpl.Name,
		StructureDescription: tmpl.Describe(),
		PeriodStart:          start,
		PeriodEnd:            end,
		Statistics:           a.Statistics(trades),
		MonthlyPnL:           a.MonthlyPnL(trades),
		EquityCurve:          a.EquityCurve(trades, start),
		Trades:               trades,
		SampleTrades:         a.SampleTrades(trades),
	}
}

// Statistics computes the summary statistics. Degenerate inputs resolve
// to sentinels: zero trades yield zeroed statistics, a lossless set
// yields a +Inf profit factor, zero-variance returns use a unit
// denominator for Sharpe/Sortino.
func (a *Aggregator) Statistics(trades []models.Trade) models.Statistics {
	stats := models.Statistics{TotalTrades: len(trades)}
	if len(trades) == 0 {
		return stats
	}

	var grossProfit, grossLoss float64
	maxSellLots := 0
	for _, t := range trades {
		stats.TotalPnL += t.TotalPnL
		if t.IsWin() {
			stats.WinningTrades++
			grossProfit += t.TotalPnL
			if t.TotalPnL > stats.MaxWin {
				stats.MaxWin = t.TotalPnL
			}
		} else {
			stats.LosingTrades++
			grossLoss += -t.TotalPnL
			if t.TotalPnL < stats.MaxLoss {
				stats.MaxLoss = t.TotalPnL
			}
		}
		if lots := t.SellLots(); lots > maxSellLots {
			maxSellLots = lots
		}
	}

	stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	stats.AvgPnL = stats.TotalPnL / float64(stats.TotalTrades)
	if stats.WinningTrades > 0 {
		stats.AvgWin = grossProfit / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AvgLoss = -grossLoss / float64(stats.LosingTrades)
	}

	stats.ProfitFactor = profitFactor(grossProfit, grossLoss)
	stats.SharpeRatio, stats.SortinoRatio = a.riskRatios(trades)
	stats.MaxDrawdown = a.maxDrawdown(trades)

	stats.MarginRequired = a.marginPerLot * float64(maxSellLots)
	if stats.MarginRequired > 0 {
		stats.ROIPercent = stats.TotalPnL / stats.MarginRequired * 100
	} else {
		stats.ROIPercent = stats.TotalPnL / a.startingCapital * 100
	}

	return stats
}

// profitFactor is gross profit over gross loss. With no losers it is the
// +Inf sentinel (reported, not thrown); with no winners it is 0.
func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// riskRatios computes annualized Sharpe and Sortino from per-trade
// returns as percent of starting capital. A zero standard deviation is
// treated as 1 — a documented approximation, not a true statistic.
func (a *Aggregator) riskRatios(trades []models.Trade) (sharpe, sortino float64) {
	returns := make([]float64, len(trades))
	var downside []float64
	for i, t := range trades {
		r := t.TotalPnL / a.startingCapital * 100
		returns[i] = r
		if r < 0 {
			downside = append(downside, r)
		}
	}

	meanReturn := mean(returns)
	annualize := math.Sqrt(float64(a.tradesPerYear))

	sd := stdDev(returns)
	if sd == 0 {
		sd = 1
	}
	sharpe = meanReturn / sd * annualize

	dsd := stdDev(downside)
	if dsd == 0 {
		dsd = 1
	}
	sortino = meanReturn / dsd * annualize

	return sharpe, sortino
}

// maxDrawdown walks the equity curve tracking the running peak and
// returns the largest peak-to-trough decline in percent.
func (a *Aggregator) maxDrawdown(trades []models.Trade) float64 {
	equity := a.startingCapital
	peak := equity
	maxDD := 0.0

	for _, t := range trades {
		equity += t.TotalPnL
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			dd := (peak - equity) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// MonthlyPnL groups trades by entry month ("YYYY-MM").
func (a *Aggregator) MonthlyPnL(trades []models.Trade) map[string]models.MonthlyPnL {
	monthly := make(map[string]models.MonthlyPnL)
	for _, t := range trades {
		m := monthly[t.MonthKey()]
		m.PnL += t.TotalPnL
		m.Trades++
		if t.IsWin() {
			m.Wins++
		}
		monthly[t.MonthKey()] = m
	}
	return monthly
}

// EquityCurve returns starting capital plus cumulative P&L per trade in
// chronological order.
func (a *Aggregator) EquityCurve(trades []models.Trade, start time.Time) []models.EquityPoint {
	curve := make([]models.EquityPoint, 0, len(trades)+1)
	curve = append(curve, models.EquityPoint{Date: start, Equity: a.startingCapital})

	equity := a.startingCapital
	cum := 0.0
	for _, t := range trades {
		equity += t.TotalPnL
		cum += t.TotalPnL
		curve = append(curve, models.EquityPoint{Date: t.ExitDate, Equity: equity, CumPnL: cum})
	}
	return curve
}

// SampleTrades returns summaries of the first and last sampleSize trades.
func (a *Aggregator) SampleTrades(trades []models.Trade) []models.TradeSummary {
	if len(trades) == 0 {
		return nil
	}

	pick := func(t models.Trade) models.TradeSummary {
		return models.TradeSummary{
			EntryDate:  t.EntryDate.Format("2006-01-02"),
			ExitDate:   t.ExitDate.Format("2006-01-02"),
			DTE:        t.DTE,
			SpotEntry:  t.SpotAtEntry,
			SpotExit:   t.SpotAtExit,
			NetCredit:  t.NetCredit,
			ExitReason: string(t.ExitReason),
			PnL:        t.TotalPnL,
		}
	}

	if len(trades) <= 2*sampleSize {
		samples := make([]models.TradeSummary, len(trades))
		for i, t := range trades {
			samples[i] = pick(t)
		}
		return samples
	}

	samples := make([]models.TradeSummary, 0, 2*sampleSize)
	for _, t := range trades[:sampleSize] {
		samples = append(samples, pick(t))
	}
	for _, t := range trades[len(trades)-sampleSize:] {
		samples = append(samples, pick(t))
	}
	return samples
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
