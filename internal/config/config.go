// Package config provides configuration management for the backtesting engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"options-backtester/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Data    DataConfig    `mapstructure:"data"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// EngineConfig holds the simulation parameters of the backtesting core.
type EngineConfig struct {
	LotSize          int            `mapstructure:"lot_size"`
	StrikeIncrement  int            `mapstructure:"strike_increment"`
	MarginPerLot     float64        `mapstructure:"margin_per_lot"`
	BrokeragePerLot  float64        `mapstructure:"brokerage_per_lot"`
	PremiumFloor     float64        `mapstructure:"premium_floor"`
	Slippage         SlippageConfig `mapstructure:"slippage"`
	MinDTE           int            `mapstructure:"min_dte"`
	MaxDTE           int            `mapstructure:"max_dte"`
	StopLossMultiple float64        `mapstructure:"stop_loss_multiple"`
	TargetPercent    float64        `mapstructure:"target_percent"` // 0 disables the profit target
	SlippageOnMarks  bool           `mapstructure:"slippage_on_marks"`
	StartingCapital  float64        `mapstructure:"starting_capital"`
	TradesPerYear    int            `mapstructure:"trades_per_year"`
	VolLookback      int            `mapstructure:"vol_lookback"`
	DefaultIV        float64        `mapstructure:"default_iv"`
}

// SlippageConfig holds per-moneyness-bucket slippage in points.
// Sell legs receive premium reduced by slippage; buy legs pay premium
// increased by it.
type SlippageConfig struct {
	ATM     float64 `mapstructure:"atm"`
	OTM     float64 `mapstructure:"otm"`
	DeepOTM float64 `mapstructure:"deep_otm"`
	ITM     float64 `mapstructure:"itm"`
}

// DataConfig holds historical data configuration.
type DataConfig struct {
	Symbol    string  `mapstructure:"symbol"`
	BasePrice float64 `mapstructure:"base_price"` // starting spot for synthetic paths
	DBPath    string  `mapstructure:"db_path"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-backtester"
	}
	return filepath.Join(home, ".config", "options-backtester")
}

// Default returns the built-in configuration. The defaults describe NIFTY
// weekly index options: 75-unit lots, 50-point strikes.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			LotSize:          75,
			StrikeIncrement:  50,
			MarginPerLot:     120000,
			BrokeragePerLot:  40,
			PremiumFloor:     5,
			Slippage:         SlippageConfig{ATM: 2, OTM: 3, DeepOTM: 5, ITM: 4},
			MinDTE:           2,
			MaxDTE:           9,
			StopLossMultiple: 1.5,
			TargetPercent:    0,
			SlippageOnMarks:  false,
			StartingCapital:  500000,
			TradesPerYear:    52,
			VolLookback:      20,
			DefaultIV:        15,
		},
		Data: DataConfig{
			Symbol:    "NIFTY",
			BasePrice: 24000,
			DBPath:    filepath.Join(DefaultConfigDir(), "backtester.db"),
		},
		UI: UIConfig{
			ColorEnabled: true,
			DateFormat:   "02-Jan-2006",
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    true,
		},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// No config file: write the template and continue with defaults.
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("engine.lot_size", cfg.Engine.LotSize)
	v.SetDefault("engine.strike_increment", cfg.Engine.StrikeIncrement)
	v.SetDefault("engine.margin_per_lot", cfg.Engine.MarginPerLot)
	v.SetDefault("engine.brokerage_per_lot", cfg.Engine.BrokeragePerLot)
	v.SetDefault("engine.premium_floor", cfg.Engine.PremiumFloor)
	v.SetDefault("engine.slippage.atm", cfg.Engine.Slippage.ATM)
	v.SetDefault("engine.slippage.otm", cfg.Engine.Slippage.OTM)
	v.SetDefault("engine.slippage.deep_otm", cfg.Engine.Slippage.DeepOTM)
	v.SetDefault("engine.slippage.itm", cfg.Engine.Slippage.ITM)
	v.SetDefault("engine.min_dte", cfg.Engine.MinDTE)
	v.SetDefault("engine.max_dte", cfg.Engine.MaxDTE)
	v.SetDefault("engine.stop_loss_multiple", cfg.Engine.StopLossMultiple)
	v.SetDefault("engine.target_percent", cfg.Engine.TargetPercent)
	v.SetDefault("engine.slippage_on_marks", cfg.Engine.SlippageOnMarks)
	v.SetDefault("engine.starting_capital", cfg.Engine.StartingCapital)
	v.SetDefault("engine.trades_per_year", cfg.Engine.TradesPerYear)
	v.SetDefault("engine.vol_lookback", cfg.Engine.VolLookback)
	v.SetDefault("engine.default_iv", cfg.Engine.DefaultIV)
	v.SetDefault("data.symbol", cfg.Data.Symbol)
	v.SetDefault("data.base_price", cfg.Data.BasePrice)
	v.SetDefault("data.db_path", cfg.Data.DBPath)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
	v.SetDefault("ui.date_format", cfg.UI.DateFormat)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BACKTESTER_DB_PATH"); v != "" {
		cfg.Data.DBPath = v
	}
	if v := os.Getenv("BACKTESTER_SYMBOL"); v != "" {
		cfg.Data.Symbol = v
	}
	if v := os.Getenv("BACKTESTER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BACKTESTER_STARTING_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Engine.StartingCapital = f
		}
	}
}

// Validate validates the configuration. Each failure reports the
// offending field and value as a *errors.ValidationError.
func (c *Config) Validate() error {
	e := c.Engine
	if e.LotSize <= 0 {
		return errors.NewValidationError("engine.lot_size", e.LotSize, "must be positive")
	}
	if e.StrikeIncrement <= 0 {
		return errors.NewValidationError("engine.strike_increment", e.StrikeIncrement, "must be positive")
	}
	if e.BrokeragePerLot < 0 {
		return errors.NewValidationError("engine.brokerage_per_lot", e.BrokeragePerLot, "must be non-negative")
	}
	if e.PremiumFloor <= 0 {
		return errors.NewValidationError("engine.premium_floor", e.PremiumFloor, "must be positive")
	}
	if e.MinDTE < 0 || e.MaxDTE < e.MinDTE {
		return errors.NewValidationError("engine.min_dte/max_dte",
			fmt.Sprintf("[%d, %d]", e.MinDTE, e.MaxDTE), "window is invalid")
	}
	if e.StopLossMultiple <= 0 {
		return errors.NewValidationError("engine.stop_loss_multiple", e.StopLossMultiple, "must be positive")
	}
	if e.TargetPercent < 0 {
		return errors.NewValidationError("engine.target_percent", e.TargetPercent, "must be non-negative")
	}
	if e.StartingCapital <= 0 {
		return errors.NewValidationError("engine.starting_capital", e.StartingCapital, "must be positive")
	}
	if e.TradesPerYear <= 0 {
		return errors.NewValidationError("engine.trades_per_year", e.TradesPerYear, "must be positive")
	}
	if e.VolLookback <= 0 {
		return errors.NewValidationError("engine.vol_lookback", e.VolLookback, "must be positive")
	}
	if e.DefaultIV <= 0 {
		return errors.NewValidationError("engine.default_iv", e.DefaultIV, "must be positive")
	}
	if s := e.Slippage; s.ATM < 0 || s.OTM < 0 || s.DeepOTM < 0 || s.ITM < 0 {
		return errors.NewValidationError("engine.slippage", s, "values must be non-negative")
	}
	if c.Data.BasePrice <= 0 {
		return errors.NewValidationError("data.base_price", c.Data.BasePrice, "must be positive")
	}
	return nil
}
