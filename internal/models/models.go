// Package models provides domain models for the backtesting engine.
package models

import (
	"time"
)

// OrderSide represents the side of an option leg.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OptionType represents the type of an option contract.
type OptionType string

const (
	OptionCall OptionType = "CE"
	OptionPut  OptionType = "PE"
)

// MoneynessBucket classifies a strike relative to spot.
type MoneynessBucket string

const (
	BucketATM     MoneynessBucket = "ATM"
	BucketOTM     MoneynessBucket = "OTM"
	BucketDeepOTM MoneynessBucket = "DEEP_OTM"
	BucketITM     MoneynessBucket = "ITM"
)

// DayBar represents one day of OHLC data for the underlying.
// Bars are ordered chronologically with no duplicate dates.
type DayBar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// PriceSeries is a chronologically ordered sequence of daily bars with
// an index by calendar date for point lookups during a walk.
type PriceSeries struct {
	Bars  []DayBar
	byDay map[string]int
}

// NewPriceSeries builds a series from chronologically ordered bars.
func NewPriceSeries(bars []DayBar) *PriceSeries {
	s := &PriceSeries{
		Bars:  bars,
		byDay: make(map[string]int, len(bars)),
	}
	for i, b := range bars {
		s.byDay[dayKey(b.Date)] = i
	}
	return s
}

// Len returns the number of bars in the series.
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// BarOn returns the bar for a calendar date, if one exists.
func (s *PriceSeries) BarOn(date time.Time) (DayBar, bool) {
	i, ok := s.byDay[dayKey(date)]
	if !ok {
		return DayBar{}, false
	}
	return s.Bars[i], true
}

// CloseOn returns the closing price for a calendar date, if one exists.
func (s *PriceSeries) CloseOn(date time.Time) (float64, bool) {
	bar, ok := s.BarOn(date)
	if !ok {
		return 0, false
	}
	return bar.Close, true
}

// IndexOn returns the bar index for a calendar date, if one exists.
func (s *PriceSeries) IndexOn(date time.Time) (int, bool) {
	i, ok := s.byDay[dayKey(date)]
	return i, ok
}

// Closes returns the closing prices of the series in order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
