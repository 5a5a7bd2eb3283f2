// Package backtest simulates multi-leg option positions over expiry
// cycles and aggregates the completed trades into a performance report.
package backtest

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"options-backtester/internal/calendar"
	"options-backtester/internal/config"
	"options-backtester/internal/errors"
	"options-backtester/internal/models"
	"options-backtester/internal/pricing"
	"options-backtester/internal/strategy"
)

// PriceSource supplies underlying closes by calendar date. Missing dates
// are tolerated: the walk carries the last known price forward.
type PriceSource interface {
	CloseOn(date time.Time) (float64, bool)
}

// Simulator runs one entry/expiry cycle of a strategy template.
type Simulator struct {
	cfg    config.EngineConfig
	model  *pricing.Model
	logger zerolog.Logger
}

// NewSimulator creates a trade simulator.
func NewSimulator(cfg config.EngineConfig, model *pricing.Model, logger zerolog.Logger) *Simulator {
	return &Simulator{
		cfg:    cfg,
		model:  model,
		logger: logger,
	}
}

// RunCycle simulates one trade from entry to exit. A missing entry bar is
// a normal outcome, reported as errors.ErrDataNotFound so the engine can
// count the skipped cycle; it is never fatal.
func (s *Simulator) RunCycle(tmpl *strategy.Template, entryDate, expiryDate time.Time, prices PriceSource, iv float64) (*models.Trade, error) {
	spot, ok := prices.CloseOn(entryDate)
	if !ok {
		return nil, errors.Wrapf(errors.ErrDataNotFound, "no bar on entry date %s", entryDate.Format("2006-01-02"))
	}

	dte := calendar.DaysBetween(entryDate, expiryDate)
	atmStrike := math.Round(spot/float64(s.cfg.StrikeIncrement)) * float64(s.cfg.StrikeIncrement)

	// Resolve and price legs at entry. Sell legs receive premium reduced
	// by the bucketed slippage, buy legs pay premium increased by it.
	legs := make([]models.Leg, len(tmpl.Legs))
	for i, spec := range tmpl.Legs {
		strike := atmStrike + spec.StrikeOffset
		raw := s.model.Price(spot, strike, dte, iv, spec.OptionType)
		legs[i] = models.Leg{
			Spec:         spec,
			Strike:       strike,
			EntryPremium: s.fillPremium(raw, spot, strike, spec.OptionType, spec.Side, true),
		}
	}

	netCredit := netPremium(legs, func(l models.Leg) float64 { return l.EntryPremium })

	trade := &models.Trade{
		EntryDate:   entryDate,
		ExpiryDate:  expiryDate,
		DTE:         dte,
		SpotAtEntry: spot,
		IVAtEntry:   iv,
		NetCredit:   netCredit,
		Legs:        legs,
	}

	stopMultiple := tmpl.StopLossMultiple
	if stopMultiple <= 0 {
		stopMultiple = s.cfg.StopLossMultiple
	}
	targetPercent := tmpl.TargetPercent
	if targetPercent <= 0 {
		targetPercent = s.cfg.TargetPercent
	}

	// Percent-based exits measure against the credit magnitude; a unit
	// base keeps near-zero-credit structures from exiting immediately.
	base := math.Abs(netCredit)
	if base < 1 {
		base = 1
	}

	// Walk day by day from entry to the day before expiry, marking every
	// leg to model with the remaining DTE. Strictly sequential: each
	// day's mark depends only on that day's price and the entry premiums.
	lastSpot := spot
	lastKnown := entryDate
	exited := false
	for d := entryDate.AddDate(0, 0, 1); d.Before(expiryDate); d = d.AddDate(0, 0, 1) {
		if px, ok := prices.CloseOn(d); ok {
			lastSpot = px
			lastKnown = d
		}
		remDTE := calendar.DaysBetween(d, expiryDate)

		markValue := s.markToMarket(legs, lastSpot, remDTE, iv)
		pnlPoints := netCredit - markValue

		if pnlPoints <= -stopMultiple*base {
			s.exitEarly(trade, d, lastSpot, remDTE, iv, models.ExitStopLoss)
			exited = true
			break
		}
		if targetPercent > 0 && pnlPoints >= targetPercent/100*base {
			s.exitEarly(trade, d, lastSpot, remDTE, iv, models.ExitTarget)
			exited = true
			break
		}
	}

	if !exited {
		// Expiry settlement: intrinsic value only, no time value and no
		// slippage. A missing expiry bar settles on the last known close.
		exitDate := expiryDate
		if px, ok := prices.CloseOn(expiryDate); ok {
			lastSpot = px
		} else {
			exitDate = lastKnown
		}
		for i := range trade.Legs {
			trade.Legs[i].ExitPremium = pricing.Intrinsic(lastSpot, trade.Legs[i].Strike, trade.Legs[i].Spec.OptionType)
		}
		trade.ExitDate = exitDate
		trade.ExitReason = models.ExitExpiry
		trade.SpotAtExit = lastSpot
	}

	s.settle(trade)
	return trade, nil
}

// fillPremium applies fill slippage to a model premium. Opening a sell
// leg or closing a buy leg receives less; opening a buy leg or closing a
// sell leg pays more. The floor holds after adjustment.
func (s *Simulator) fillPremium(raw, spot, strike float64, optType models.OptionType, side models.OrderSide, opening bool) float64 {
	slip := s.slippageFor(spot, strike, optType)

	receives := side == models.OrderSideSell
	if !opening {
		receives = side == models.OrderSideBuy
	}

	premium := raw + slip
	if receives {
		premium = raw - slip
	}
	if premium < s.model.Floor() {
		premium = s.model.Floor()
	}
	return premium
}

func (s *Simulator) slippageFor(spot, strike float64, optType models.OptionType) float64 {
	switch pricing.Bucket(spot, strike, optType) {
	case models.BucketATM:
		return s.cfg.Slippage.ATM
	case models.BucketOTM:
		return s.cfg.Slippage.OTM
	case models.BucketDeepOTM:
		return s.cfg.Slippage.DeepOTM
	default:
		return s.cfg.Slippage.ITM
	}
}

// markToMarket returns the current net value of the structure in points,
// sign-consistent with the entry net credit.
func (s *Simulator) markToMarket(legs []models.Leg, spot float64, remDTE int, iv float64) float64 {
	return netPremium(legs, func(l models.Leg) float64 {
		v := s.model.Price(spot, l.Strike, remDTE, iv, l.Spec.OptionType)
		if s.cfg.SlippageOnMarks {
			v = s.fillPremium(v, spot, l.Strike, l.Spec.OptionType, l.Spec.Side, false)
		}
		return v
	})
}

// exitEarly records an early exit: per-leg exit premiums are that day's
// model values with closing slippage applied.
func (s *Simulator) exitEarly(trade *models.Trade, d time.Time, spot float64, remDTE int, iv float64, reason models.ExitReason) {
	for i := range trade.Legs {
		leg := &trade.Legs[i]
		raw := s.model.Price(spot, leg.Strike, remDTE, iv, leg.Spec.OptionType)
		leg.ExitPremium = s.fillPremium(raw, spot, leg.Strike, leg.Spec.OptionType, leg.Spec.Side, false)
	}
	trade.ExitDate = d
	trade.ExitReason = reason
	trade.SpotAtExit = spot
}

// settle computes per-leg and total P&L. For a sold leg the leg P&L is
// (entry - exit) x qty x lot size; for a bought leg (exit - entry). The
// total subtracts flat per-lot brokerage for entry and exit.
func (s *Simulator) settle(trade *models.Trade) {
	lotSize := float64(s.cfg.LotSize)

	var total float64
	for i := range trade.Legs {
		leg := &trade.Legs[i]
		diff := leg.ExitPremium - leg.EntryPremium
		if leg.Spec.Side == models.OrderSideSell {
			diff = leg.EntryPremium - leg.ExitPremium
		}
		leg.PnL = diff * float64(leg.Spec.QuantityLots) * lotSize
		total += leg.PnL
	}

	costs := s.cfg.BrokeragePerLot * float64(trade.TotalLots()) * 2
	trade.TotalPnL = total - costs
}

// netPremium sums leg values as sells minus buys, weighted by lots.
func netPremium(legs []models.Leg, value func(models.Leg) float64) float64 {
	var net float64
	for _, l := range legs {
		v := value(l) * float64(l.Spec.QuantityLots)
		if l.Spec.Side == models.OrderSideSell {
			net += v
		} else {
			net -= v
		}
	}
	return net
}

// TransactionCosts returns the flat round-trip brokerage for a trade.
func (s *Simulator) TransactionCosts(trade *models.Trade) float64 {
	return s.cfg.BrokeragePerLot * float64(trade.TotalLots()) * 2
}
