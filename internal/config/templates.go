package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Backtester Configuration

[engine]
# Contract size of one lot
lot_size = 75
# Strike spacing in index points
strike_increment = 50
# Margin blocked per short lot (INR)
margin_per_lot = 120000.0
# Flat brokerage per lot per side (INR)
brokerage_per_lot = 40.0
# Minimum option premium in points
premium_floor = 5.0
# Entry window: cycles with DTE outside [min_dte, max_dte] are discarded
min_dte = 2
max_dte = 9
# Stop-loss as a multiple of the entry net credit
stop_loss_multiple = 1.5
# Profit target as a percent of the entry net credit (0 disables)
target_percent = 0.0
# Apply slippage to mark-to-market stop checks, not only fills
slippage_on_marks = false
# Starting capital for the equity curve (INR)
starting_capital = 500000.0
# Annualization constant for Sharpe/Sortino
trades_per_year = 52
# Trailing bars for the realized-volatility estimate
vol_lookback = 20
# IV fallback (percent) when too little history exists
default_iv = 15.0

[engine.slippage]
# Per-bucket slippage in points
atm = 2.0
otm = 3.0
deep_otm = 5.0
itm = 4.0

[data]
symbol = "NIFTY"
# Starting spot for synthetic price paths
base_price = 24000.0

[ui]
color_enabled = true
date_format = "02-Jan-2006"

[logging]
level = "info"
console = true
file = true
`

// createTemplateConfig writes the default config.toml into configDir.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
