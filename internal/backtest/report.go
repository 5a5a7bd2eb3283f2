package backtest

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"options-backtester/internal/models"
)

// EquityCurveASCII renders the equity curve as a terminal chart.
func EquityCurveASCII(result *models.BacktestResult, width, height int) string {
	if len(result.EquityCurve) == 0 {
		return "No data to display"
	}

	minEquity := result.EquityCurve[0].Equity
	maxEquity := result.EquityCurve[0].Equity
	for _, point := range result.EquityCurve {
		if point.Equity < minEquity {
			minEquity = point.Equity
		}
		if point.Equity > maxEquity {
			maxEquity = point.Equity
		}
	}

	// Add padding
	equityRange := maxEquity - minEquity
	if equityRange == 0 {
		equityRange = 1
	}
	minEquity -= equityRange * 0.05
	maxEquity += equityRange * 0.05
	equityRange = maxEquity - minEquity

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// Sample points to fit width
	step := len(result.EquityCurve) / width
	if step == 0 {
		step = 1
	}

	for x := 0; x < width && x*step < len(result.EquityCurve); x++ {
		point := result.EquityCurve[x*step]
		y := int((point.Equity - minEquity) / equityRange * float64(height-1))
		if y >= 0 && y < height {
			grid[height-1-y][x] = '█'
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Equity Curve (%.0f - %.0f)\n", minEquity, maxEquity))
	sb.WriteString(strings.Repeat("─", width+2) + "\n")

	for _, row := range grid {
		sb.WriteRune('│')
		sb.WriteString(string(row))
		sb.WriteRune('│')
		sb.WriteRune('\n')
	}

	sb.WriteString(strings.Repeat("─", width+2) + "\n")

	return sb.String()
}

// StrategyComparison represents a comparison of strategy performance.
type StrategyComparison struct {
	Strategy     string
	TotalTrades  int
	WinRate      float64
	TotalPnL     float64
	ProfitFactor float64
	MaxDrawdown  float64
	SharpeRatio  float64
	SortinoRatio float64
}

// MarshalJSON caps the +Inf profit-factor sentinel the same way
// models.Statistics does, so comparison output stays serializable.
func (c StrategyComparison) MarshalJSON() ([]byte, error) {
	type comparisonJSON StrategyComparison
	v := comparisonJSON(c)
	if math.IsInf(v.ProfitFactor, 1) {
		v.ProfitFactor = models.ProfitFactorCap
	}
	return json.Marshal(v)
}

// CompareStrategies compares backtest results across strategies, sorted
// by Sharpe ratio descending.
func CompareStrategies(results map[string]*models.BacktestResult) []StrategyComparison {
	comparisons := make([]StrategyComparison, 0, len(results))

	for name, result := range results {
		comparisons = append(comparisons, StrategyComparison{
			Strategy:     name,
			TotalTrades:  result.Statistics.TotalTrades,
			WinRate:      result.Statistics.WinRate,
			TotalPnL:     result.Statistics.TotalPnL,
			ProfitFactor: result.Statistics.ProfitFactor,
			MaxDrawdown:  result.Statistics.MaxDrawdown,
			SharpeRatio:  result.Statistics.SharpeRatio,
			SortinoRatio: result.Statistics.SortinoRatio,
		})
	}

	sort.Slice(comparisons, func(i, j int) bool {
		return comparisons[i].SharpeRatio > comparisons[j].SharpeRatio
	})

	return comparisons
}
