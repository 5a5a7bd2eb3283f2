package models

import (
	"fmt"
	"time"
)

// ExitReason represents how a trade was closed.
type ExitReason string

const (
	ExitExpiry   ExitReason = "expiry"
	ExitStopLoss ExitReason = "stop_loss"
	ExitTarget   ExitReason = "target"
)

// LegSpec declares one leg of a strategy template: side, option type,
// strike offset in points from ATM (0 = ATM) and quantity in lots.
type LegSpec struct {
	Side         OrderSide
	OptionType   OptionType
	StrikeOffset float64
	QuantityLots int
}

// String renders the leg declaration, e.g. "SELL 1x CE ATM" or "BUY 2x PE ATM-200".
func (ls LegSpec) String() string {
	offset := "ATM"
	if ls.StrikeOffset > 0 {
		offset = fmt.Sprintf("ATM+%.0f", ls.StrikeOffset)
	} else if ls.StrikeOffset < 0 {
		offset = fmt.Sprintf("ATM%.0f", ls.StrikeOffset)
	}
	return fmt.Sprintf("%s %dx %s %s", ls.Side, ls.QuantityLots, ls.OptionType, offset)
}

// Leg is a LegSpec instantiated at trade entry with an absolute strike
// and entry premium. Exit fields are set once, at exit.
type Leg struct {
	Spec         LegSpec
	Strike       float64
	EntryPremium float64
	ExitPremium  float64
	PnL          float64
}

// Trade records one entry-to-exit cycle of a multi-leg position.
// It is mutated only during its cycle and is immutable thereafter.
type Trade struct {
	EntryDate   time.Time
	ExpiryDate  time.Time
	DTE         int
	SpotAtEntry float64
	IVAtEntry   float64
	NetCredit   float64 // entry credit in points (positive = credit)
	Legs        []Leg
	ExitDate    time.Time
	ExitReason  ExitReason
	SpotAtExit  float64
	TotalPnL    float64
}

// IsWin reports whether the trade closed with a positive P&L.
func (t *Trade) IsWin() bool {
	return t.TotalPnL > 0
}

// MonthKey returns the trade's entry month as "YYYY-MM".
func (t *Trade) MonthKey() string {
	return t.EntryDate.Format("2006-01")
}

// TotalLots returns the total lots traded across all legs.
func (t *Trade) TotalLots() int {
	lots := 0
	for _, leg := range t.Legs {
		lots += leg.Spec.QuantityLots
	}
	return lots
}

// SellLots returns the total lots across sold legs.
func (t *Trade) SellLots() int {
	lots := 0
	for _, leg := range t.Legs {
		if leg.Spec.Side == OrderSideSell {
			lots += leg.Spec.QuantityLots
		}
	}
	return lots
}
