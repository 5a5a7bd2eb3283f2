package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"options-backtester/internal/backtest"
	"options-backtester/internal/errors"
	"options-backtester/internal/models"
	"options-backtester/internal/strategy"
)

const dateLayout = "2006-01-02"

func newRunCmd(app *App) *cobra.Command {
	var (
		strategyName string
		startStr     string
		endStr       string
		targetDTE    int
		seed         int64
		synthetic    bool
		ivOverride   float64
		save         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest for one strategy",
		Long: `Run a backtest for one strategy over a date range.

By default the backtest walks historical bars imported with
'backtester data import'. With --synthetic, seeded random price paths
are generated instead, so no imported data is needed.

Examples:
  backtester run --strategy short_straddle --start 2024-01-01 --end 2024-12-31
  backtester run --strategy iron_condor --start 2025-01-01 --end 2025-06-30 --synthetic --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			tmpl, err := strategy.Get(strategyName)
			if err != nil {
				return err
			}

			start, end, err := parseDateRange(startStr, endStr)
			if err != nil {
				return err
			}

			rc := backtest.RunConfig{
				Template:   tmpl,
				Start:      start,
				End:        end,
				TargetDTE:  targetDTE,
				Seed:       seed,
				IVOverride: ivOverride,
			}

			if !synthetic {
				series, err := app.loadSeries(ctx, start, end)
				if err != nil {
					return err
				}
				rc.Series = series
			}

			result, err := app.Engine.Run(ctx, rc)
			if err != nil {
				return fmt.Errorf("backtest failed: %w", err)
			}

			if save && app.Store != nil {
				runID, err := app.Store.SaveResult(ctx, app.Config.Data.Symbol, result)
				if err != nil {
					output.Warning("Failed to save run: %v\n", err)
				} else {
					app.Logger.Info().Int64("run_id", runID).Msg("Backtest run saved")
				}
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			renderResult(output, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "short_straddle", "strategy name (see 'strategies')")
	cmd.Flags().StringVar(&startStr, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endStr, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&targetDTE, "dte", 7, "target days to expiry per cycle")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for synthetic paths")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "simulate synthetic price paths instead of stored bars")
	cmd.Flags().Float64Var(&ivOverride, "iv", 0, "implied volatility override in percent (0 = estimate)")
	cmd.Flags().BoolVar(&save, "save", false, "persist the run to the database")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}

// loadSeries fetches stored bars for the configured symbol and wraps
// them in a PriceSeries.
func (a *App) loadSeries(ctx context.Context, start, end time.Time) (*models.PriceSeries, error) {
	if a.Store == nil {
		return nil, fmt.Errorf("no data store available; use --synthetic or fix the database path")
	}

	bars, err := a.Store.GetBars(ctx, a.Config.Data.Symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"no bars stored for %s in %s..%s; run 'backtester data import' first or use --synthetic",
			a.Config.Data.Symbol, start.Format(dateLayout), end.Format(dateLayout))
	}
	return models.NewPriceSeries(bars), nil
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: %w", startStr, err)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: %w", endStr, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s is before start date %s", endStr, startStr)
	}
	return start, end, nil
}

// renderResult prints the full backtest report.
func renderResult(output *Output, result *models.BacktestResult) {
	stats := result.Statistics

	output.Bold("\n═══ Backtest Report: %s ═══\n", result.StrategyName)
	output.Printf("Structure: %s\n", result.StructureDescription)
	output.Printf("Period:    %s to %s\n\n",
		result.PeriodStart.Format(dateLayout), result.PeriodEnd.Format(dateLayout))

	output.Printf("%-22s %d\n", "Total Trades:", stats.TotalTrades)
	output.Printf("%-22s %d W / %d L (%s)\n", "Win/Loss:",
		stats.WinningTrades, stats.LosingTrades, FormatPercent(stats.WinRate))
	output.Printf("%-22s ", "Total P&L:")
	output.PnL(stats.TotalPnL, "%s\n", FormatPnL(stats.TotalPnL))
	output.Printf("%-22s %s\n", "Avg P&L/Trade:", FormatPnL(stats.AvgPnL))
	output.Printf("%-22s %s / %s\n", "Avg Win/Loss:",
		FormatPnL(stats.AvgWin), FormatPnL(stats.AvgLoss))
	output.Printf("%-22s %s / %s\n", "Max Win/Loss:",
		FormatPnL(stats.MaxWin), FormatPnL(stats.MaxLoss))
	output.Printf("%-22s %s\n", "Profit Factor:", FormatRatio(stats.ProfitFactor))
	output.Printf("%-22s %s\n", "Sharpe Ratio:", FormatRatio(stats.SharpeRatio))
	output.Printf("%-22s %s\n", "Sortino Ratio:", FormatRatio(stats.SortinoRatio))
	output.Printf("%-22s %s\n", "Max Drawdown:", FormatPercent(stats.MaxDrawdown))
	output.Printf("%-22s %s\n", "Margin Required:", FormatIndianCurrency(stats.MarginRequired))
	output.Printf("%-22s %s\n", "ROI:", FormatPercent(stats.ROIPercent))
	if result.SkippedCycles > 0 {
		output.Dim("%-22s %d (missing data)\n", "Skipped Cycles:", result.SkippedCycles)
	}

	renderMonthly(output, result.MonthlyPnL)

	if len(result.EquityCurve) > 1 {
		output.Printf("\n%s\n", backtest.EquityCurveASCII(result, 60, 12))
	}

	if len(result.SampleTrades) > 0 {
		output.Bold("\nSample Trades\n")
		output.Printf("%-12s %-12s %4s %10s %10s %10s %-10s %12s\n",
			"Entry", "Exit", "DTE", "Spot In", "Spot Out", "Credit", "Reason", "P&L")
		for _, t := range result.SampleTrades {
			output.Printf("%-12s %-12s %4d %10.2f %10.2f %10.2f %-10s ",
				t.EntryDate, t.ExitDate, t.DTE, t.SpotEntry, t.SpotExit, t.NetCredit, t.ExitReason)
			output.PnL(t.PnL, "%12s\n", FormatPnL(t.PnL))
		}
	}
	output.Println()
}

// renderMonthly prints the monthly breakdown in chronological order.
func renderMonthly(output *Output, monthly map[string]models.MonthlyPnL) {
	if len(monthly) == 0 {
		return
	}

	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)

	output.Bold("\nMonthly Breakdown\n")
	output.Printf("%-10s %8s %6s %14s\n", "Month", "Trades", "Wins", "P&L")
	for _, m := range months {
		row := monthly[m]
		output.Printf("%-10s %8d %6d ", m, row.Trades, row.Wins)
		output.PnL(row.PnL, "%14s\n", FormatPnL(row.PnL))
	}
}
