package cli

import (
	"github.com/spf13/cobra"

	"options-backtester/internal/strategy"
)

func newStrategiesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List built-in strategy templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			lib := strategy.Library()

			if output.IsJSON() {
				type entry struct {
					Name      string `json:"name"`
					Structure string `json:"structure"`
					Legs      int    `json:"legs"`
				}
				entries := make([]entry, 0, len(lib))
				for _, name := range strategy.Names() {
					t := lib[name]
					entries = append(entries, entry{
						Name:      t.Name,
						Structure: t.Describe(),
						Legs:      len(t.Legs),
					})
				}
				return output.JSON(entries)
			}

			output.Bold("Built-in Strategies\n\n")
			for _, name := range strategy.Names() {
				t := lib[name]
				output.Info("%s\n", t.Name)
				output.Printf("  %s\n\n", t.Describe())
			}
			return nil
		},
	}
}
