package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"options-backtester/internal/calendar"
	"options-backtester/internal/config"
	"options-backtester/internal/errors"
	"options-backtester/internal/logging"
	"options-backtester/internal/models"
	"options-backtester/internal/pathsim"
	"options-backtester/internal/pricing"
	"options-backtester/internal/strategy"
)

// RunConfig describes one backtest run.
type RunConfig struct {
	Template  *strategy.Template
	Start     time.Time
	End       time.Time
	TargetDTE int
	// Series drives the walk from historical bars. When nil, synthetic
	// price paths are generated instead.
	Series *models.PriceSeries
	// Seed makes synthetic runs reproducible. Ignored for historical runs.
	Seed int64
	// IVOverride replaces the realized-volatility estimate when positive.
	IVOverride float64
}

// Engine enumerates expiry cycles over a date range, simulates each, and
// aggregates the completed trades. One Engine may serve many runs;
// independent runs share no mutable state.
type Engine struct {
	cfg    config.Config
	cal    *calendar.Calendar
	sim    *Simulator
	vol    *pricing.VolEstimator
	agg    *Aggregator
	logger zerolog.Logger
}

// NewEngine creates a backtest engine from the application configuration.
func NewEngine(cfg config.Config, logger zerolog.Logger) *Engine {
	model := pricing.NewModel(cfg.Engine.PremiumFloor)
	return &Engine{
		cfg:    cfg,
		cal:    calendar.New(),
		sim:    NewSimulator(cfg.Engine, model, logger),
		vol:    pricing.NewVolEstimator(cfg.Engine.VolLookback),
		agg:    NewAggregator(cfg.Engine),
		logger: logger,
	}
}

// Run executes one backtest. A range with no valid cycles yields a
// result with zero trades and sentinel statistics, not an error.
func (e *Engine) Run(ctx context.Context, rc RunConfig) (*models.BacktestResult, error) {
	if err := e.validate(rc); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}

	logger := logging.WithStrategy(e.logger, rc.Template.Name)
	started := time.Now()

	minDTE, maxDTE := e.dteWindow(rc.Template)
	cycles := e.cal.Cycles(rc.Start, rc.End, rc.TargetDTE)

	var trades []models.Trade
	skipped := 0

	// Synthetic runs own a seeded simulator and carry spot across cycles.
	var pathSim *pathsim.Simulator
	spot := e.cfg.Data.BasePrice
	if rc.Series == nil {
		pathSim = pathsim.New(rc.Seed)
	}

	for _, cycle := range cycles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Cycles outside the DTE window are discarded, not recorded.
		if cycle.DTE < minDTE || cycle.DTE > maxDTE {
			logger.Debug().
				Str("entry", cycle.EntryDate.Format("2006-01-02")).
				Int("dte", cycle.DTE).
				Msg("Cycle outside DTE window")
			continue
		}

		var prices PriceSource
		var iv float64
		if rc.Series != nil {
			prices = rc.Series
			iv = e.entryIV(rc, cycle.EntryDate)
		} else {
			iv = rc.IVOverride
			if iv <= 0 {
				iv = e.cfg.Engine.DefaultIV
			}
			path := pathSim.Simulate(spot, cycle.DTE, iv)
			prices = newPathSource(cycle.EntryDate, path)
			spot = path[len(path)-1]
		}

		trade, err := e.sim.RunCycle(rc.Template, cycle.EntryDate, cycle.ExpiryDate, prices, iv)
		if err != nil {
			if errors.Is(err, errors.ErrDataNotFound) {
				skipped++
				logging.LogCycleSkipped(logger, cycle.EntryDate, cycle.ExpiryDate, err.Error())
				continue
			}
			return nil, fmt.Errorf("cycle %s: %w", cycle.EntryDate.Format("2006-01-02"), err)
		}

		logging.LogTradeClosed(logger, trade.EntryDate, trade.ExitDate, string(trade.ExitReason), trade.TotalPnL)
		trades = append(trades, *trade)
	}

	result := e.agg.BuildResult(rc.Template, trades, rc.Start, rc.End)
	result.SkippedCycles = skipped

	logging.LogBacktestComplete(logger, rc.Template.Name, len(trades), skipped,
		result.Statistics.TotalPnL, time.Since(started))

	return result, nil
}

func (e *Engine) validate(rc RunConfig) error {
	if rc.Template == nil {
		return fmt.Errorf("template is required")
	}
	if rc.Start.IsZero() || rc.End.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if rc.End.Before(rc.Start) {
		return fmt.Errorf("end date must be after start date")
	}
	if rc.TargetDTE <= 0 {
		return fmt.Errorf("target DTE must be positive")
	}
	return nil
}

func (e *Engine) dteWindow(tmpl *strategy.Template) (int, int) {
	minDTE, maxDTE := e.cfg.Engine.MinDTE, e.cfg.Engine.MaxDTE
	if tmpl.MaxDTE > 0 {
		minDTE, maxDTE = tmpl.MinDTE, tmpl.MaxDTE
	}
	return minDTE, maxDTE
}

// entryIV resolves the implied-volatility estimate for a historical
// entry: the caller override when set, the trailing realized volatility
// otherwise.
func (e *Engine) entryIV(rc RunConfig, entryDate time.Time) float64 {
	if rc.IVOverride > 0 {
		return rc.IVOverride
	}
	idx, ok := rc.Series.IndexOn(entryDate)
	if !ok {
		return pricing.DefaultVol
	}
	return e.vol.Estimate(rc.Series.Closes(), idx)
}

// pathSource adapts a synthetic price path to the PriceSource interface,
// mapping calendar dates to day offsets from the entry date.
type pathSource struct {
	entry  time.Time
	prices []float64
}

func newPathSource(entry time.Time, prices []float64) *pathSource {
	return &pathSource{entry: entry, prices: prices}
}

func (p *pathSource) CloseOn(date time.Time) (float64, bool) {
	offset := calendar.DaysBetween(p.entry, date)
	if offset < 0 || offset >= len(p.prices) {
		return 0, false
	}
	return p.prices[offset], true
}
