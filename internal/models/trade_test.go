package models

import (
	"testing"
	"time"
)

func TestLegSpecString(t *testing.T) {
	tests := []struct {
		spec LegSpec
		want string
	}{
		{
			LegSpec{Side: OrderSideSell, OptionType: OptionCall, StrikeOffset: 0, QuantityLots: 1},
			"SELL 1x CE ATM",
		},
		{
			LegSpec{Side: OrderSideBuy, OptionType: OptionPut, StrikeOffset: -200, QuantityLots: 2},
			"BUY 2x PE ATM-200",
		},
		{
			LegSpec{Side: OrderSideSell, OptionType: OptionCall, StrikeOffset: 300, QuantityLots: 1},
			"SELL 1x CE ATM+300",
		},
	}

	for _, tt := range tests {
		if got := tt.spec.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestTradeLots(t *testing.T) {
	trade := Trade{
		Legs: []Leg{
			{Spec: LegSpec{Side: OrderSideSell, OptionType: OptionCall, QuantityLots: 2}},
			{Spec: LegSpec{Side: OrderSideSell, OptionType: OptionPut, QuantityLots: 1}},
			{Spec: LegSpec{Side: OrderSideBuy, OptionType: OptionCall, QuantityLots: 1}},
		},
	}

	if got := trade.TotalLots(); got != 4 {
		t.Errorf("TotalLots = %d, want 4", got)
	}
	if got := trade.SellLots(); got != 3 {
		t.Errorf("SellLots = %d, want 3", got)
	}
}

func TestTradeMonthKey(t *testing.T) {
	trade := Trade{EntryDate: time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)}
	if got := trade.MonthKey(); got != "2024-03" {
		t.Errorf("MonthKey = %q, want 2024-03", got)
	}
}

func TestTradeIsWin(t *testing.T) {
	if (&Trade{TotalPnL: 100}).IsWin() != true {
		t.Error("positive pnl should be a win")
	}
	if (&Trade{TotalPnL: 0}).IsWin() != false {
		t.Error("zero pnl should not be a win")
	}
	if (&Trade{TotalPnL: -100}).IsWin() != false {
		t.Error("negative pnl should not be a win")
	}
}

func TestPriceSeriesLookups(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	bars := []DayBar{
		{Date: start, Close: 24000},
		{Date: start.AddDate(0, 0, 1), Close: 24100},
		{Date: start.AddDate(0, 0, 3), Close: 24200}, // gap on day 2
	}
	s := NewPriceSeries(bars)

	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}

	if c, ok := s.CloseOn(start.AddDate(0, 0, 1)); !ok || c != 24100 {
		t.Errorf("CloseOn day 1 = %.0f/%v, want 24100/true", c, ok)
	}
	if _, ok := s.CloseOn(start.AddDate(0, 0, 2)); ok {
		t.Error("CloseOn gap day reported a bar")
	}
	if idx, ok := s.IndexOn(start.AddDate(0, 0, 3)); !ok || idx != 2 {
		t.Errorf("IndexOn day 3 = %d/%v, want 2/true", idx, ok)
	}

	closes := s.Closes()
	if len(closes) != 3 || closes[2] != 24200 {
		t.Errorf("Closes = %v", closes)
	}
}
