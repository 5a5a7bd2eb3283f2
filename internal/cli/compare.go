package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"options-backtester/internal/backtest"
	"options-backtester/internal/strategy"
)

func newCompareCmd(app *App) *cobra.Command {
	var (
		names      []string
		startStr   string
		endStr     string
		targetDTE  int
		seed       int64
		synthetic  bool
		ivOverride float64
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Backtest several strategies over the same period and rank them",
		Long: `Backtest several strategies over the same period and rank them by
Sharpe ratio. Runs execute concurrently on a worker pool; synthetic runs
share the seed so every strategy faces comparable market conditions.

Example:
  backtester compare --start 2025-01-01 --end 2025-06-30 --synthetic --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			if len(names) == 0 {
				names = strategy.Names()
			}

			start, end, err := parseDateRange(startStr, endStr)
			if err != nil {
				return err
			}

			base := backtest.RunConfig{
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
				base.Series = series
			}

			jobs := make([]backtest.Job, 0, len(names))
			for _, name := range names {
				tmpl, err := strategy.Get(name)
				if err != nil {
					return err
				}
				rc := base
				rc.Template = tmpl
				jobs = append(jobs, backtest.Job{Name: name, Config: rc})
			}

			if workers <= 0 {
				workers = runtime.NumCPU()
			}
			results, err := app.Engine.RunMany(ctx, jobs, workers)
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}

			comparisons := backtest.CompareStrategies(results)

			if output.IsJSON() {
				return output.JSON(comparisons)
			}

			output.Bold("\nStrategy Comparison (%s to %s)\n\n", startStr, endStr)
			output.Printf("%-22s %7s %8s %14s %8s %8s %8s %14s\n",
				"Strategy", "Trades", "Win%", "Total P&L", "PF", "Sharpe", "Sortino", "Max DD")
			output.Printf("%s\n", strings.Repeat("─", 96))
			for _, c := range comparisons {
				output.Printf("%-22s %7d %7.1f%% ", c.Strategy, c.TotalTrades, c.WinRate)
				output.PnL(c.TotalPnL, "%14s", FormatPnL(c.TotalPnL))
				output.Printf(" %8s %8s %8s %14s\n",
					FormatRatio(c.ProfitFactor), FormatRatio(c.SharpeRatio),
					FormatRatio(c.SortinoRatio), FormatPercent(c.MaxDrawdown))
			}
			output.Println()
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&names, "strategies", "s", nil, "strategies to compare (default: all built-ins)")
	cmd.Flags().StringVar(&startStr, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endStr, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&targetDTE, "dte", 7, "target days to expiry per cycle")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for synthetic paths")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "simulate synthetic price paths instead of stored bars")
	cmd.Flags().Float64Var(&ivOverride, "iv", 0, "implied volatility override in percent (0 = estimate)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent backtests (default: CPU count)")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	return cmd
}
