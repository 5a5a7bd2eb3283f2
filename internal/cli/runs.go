package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List saved backtest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("no data store available")
			}

			runs, err := app.Store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("listing runs: %w", err)
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}

			if len(runs) == 0 {
				output.Println("No saved runs. Use 'backtester run --save' to persist one.")
				return nil
			}

			output.Bold("Saved Runs\n\n")
			output.Printf("%4s %-22s %-8s %-12s %-12s %7s %7s %14s\n",
				"ID", "Strategy", "Symbol", "Start", "End", "Trades", "Win%", "Total P&L")
			for _, r := range runs {
				output.Printf("%4d %-22s %-8s %-12s %-12s %7d %6.1f%% ",
					r.ID, r.Strategy, r.Symbol,
					r.PeriodStart.Format(dateLayout), r.PeriodEnd.Format(dateLayout),
					r.TotalTrades, r.WinRate)
				output.PnL(r.TotalPnL, "%14s\n", FormatPnL(r.TotalPnL))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list")
	return cmd
}
