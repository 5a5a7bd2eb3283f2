package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"options-backtester/internal/config"
	"options-backtester/internal/errors"
	"options-backtester/internal/models"
	"options-backtester/internal/pricing"
	"options-backtester/internal/strategy"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seriesFromCloses builds a daily series starting at start with one bar
// per calendar day.
func seriesFromCloses(start time.Time, closes []float64) *models.PriceSeries {
	bars := make([]models.DayBar, len(closes))
	for i, c := range closes {
		bars[i] = models.DayBar{Date: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return models.NewPriceSeries(bars)
}

func flatSeries(start time.Time, days int, close float64) *models.PriceSeries {
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = close
	}
	return seriesFromCloses(start, closes)
}

func newTestSimulator() *Simulator {
	cfg := config.Default().Engine
	model := pricing.NewModel(cfg.PremiumFloor)
	return NewSimulator(cfg, model, zerolog.Nop())
}

func TestRunCycleExpirySettlement(t *testing.T) {
	sim := newTestSimulator()
	entry := date(2024, time.January, 4)
	expiry := date(2024, time.January, 11)
	prices := flatSeries(entry, 8, 24000)

	trade, err := sim.RunCycle(strategy.ShortStraddle(), entry, expiry, prices, 15)
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	if trade.ExitReason != models.ExitExpiry {
		t.Errorf("exit reason = %s, want expiry", trade.ExitReason)
	}
	if !trade.ExitDate.Equal(expiry) {
		t.Errorf("exit date = %s, want expiry", trade.ExitDate.Format("2006-01-02"))
	}

	// Both ATM legs expire worthless at an unchanged spot.
	for i, leg := range trade.Legs {
		if leg.ExitPremium != 0 {
			t.Errorf("leg %d exit premium = %.4f, want 0 intrinsic", i, leg.ExitPremium)
		}
		if leg.Strike != 24000 {
			t.Errorf("leg %d strike = %.0f, want 24000", i, leg.Strike)
		}
	}

	// Net credit is the ATM model price less sell slippage, both legs.
	raw := sim.model.Price(24000, 24000, 7, 15, models.OptionCall)
	wantCredit := 2 * (raw - sim.cfg.Slippage.ATM)
	if math.Abs(trade.NetCredit-wantCredit) > 1e-9 {
		t.Errorf("net credit = %.4f, want %.4f", trade.NetCredit, wantCredit)
	}

	// Full credit collected, minus round-trip brokerage on 2 lots.
	wantPnL := wantCredit*float64(sim.cfg.LotSize) - sim.cfg.BrokeragePerLot*2*2
	if math.Abs(trade.TotalPnL-wantPnL) > 1e-9 {
		t.Errorf("total pnl = %.4f, want %.4f", trade.TotalPnL, wantPnL)
	}
}

func TestRunCycleStopLoss(t *testing.T) {
	sim := newTestSimulator()
	entry := date(2024, time.January, 4)
	expiry := date(2024, time.January, 11)

	// A gap from 24000 to 26000 on the first mark blows through any
	// reasonable stop on a short straddle.
	closes := []float64{24000, 26000, 26000, 26000, 26000, 26000, 26000, 26000}
	prices := seriesFromCloses(entry, closes)

	trade, err := sim.RunCycle(strategy.ShortStraddle(), entry, expiry, prices, 15)
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	if trade.ExitReason != models.ExitStopLoss {
		t.Errorf("exit reason = %s, want stop_loss", trade.ExitReason)
	}
	if !trade.ExitDate.Equal(entry.AddDate(0, 0, 1)) {
		t.Errorf("exit date = %s, want the day after entry", trade.ExitDate.Format("2006-01-02"))
	}
	if trade.ExitDate.Equal(expiry) || trade.ExitDate.After(expiry) {
		t.Error("stop-loss exit must precede expiry")
	}
	if trade.TotalPnL >= 0 {
		t.Errorf("stopped trade pnl = %.2f, want a loss", trade.TotalPnL)
	}
	if trade.SpotAtExit != 26000 {
		t.Errorf("spot at exit = %.0f, want 26000", trade.SpotAtExit)
	}
}

func TestRunCycleTargetExit(t *testing.T) {
	sim := newTestSimulator()
	entry := date(2024, time.January, 4)
	expiry := date(2024, time.January, 11)
	prices := flatSeries(entry, 8, 24000)

	tmpl, err := strategy.ShortStraddle().WithTarget(50)
	if err != nil {
		t.Fatalf("WithTarget failed: %v", err)
	}

	trade, err := sim.RunCycle(tmpl, entry, expiry, prices, 15)
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	if trade.ExitReason != models.ExitTarget {
		t.Errorf("exit reason = %s, want target", trade.ExitReason)
	}
	if !trade.ExitDate.Before(expiry) {
		t.Error("target exit must precede expiry")
	}
	if trade.TotalPnL <= 0 {
		t.Errorf("target trade pnl = %.2f, want a profit", trade.TotalPnL)
	}
}

func TestRunCycleMissingEntryBar(t *testing.T) {
	sim := newTestSimulator()
	entry := date(2024, time.January, 4)
	expiry := date(2024, time.January, 11)

	// Bars start the day after entry.
	prices := flatSeries(entry.AddDate(0, 0, 1), 7, 24000)

	_, err := sim.RunCycle(strategy.ShortStraddle(), entry, expiry, prices, 15)
	if err == nil {
		t.Fatal("expected error for missing entry bar")
	}
	if !errors.Is(err, errors.ErrDataNotFound) {
		t.Errorf("error = %v, want wrapped ErrDataNotFound", err)
	}
}

func TestRunCycleMissingExpiryBarSettlesOnLastKnown(t *testing.T) {
	sim := newTestSimulator()
	entry := date(2024, time.January, 4)
	expiry := date(2024, time.January, 11)

	// Bars cover entry through the day before expiry only.
	prices := flatSeries(entry, 7, 24000)

	trade, err := sim.RunCycle(strategy.ShortStraddle(), entry, expiry, prices, 15)
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	if trade.ExitReason != models.ExitExpiry {
		t.Errorf("exit reason = %s, want expiry", trade.ExitReason)
	}
	if !trade.ExitDate.Equal(date(2024, time.January, 10)) {
		t.Errorf("exit date = %s, want last known bar date", trade.ExitDate.Format("2006-01-02"))
	}
}

func TestRunCycleMissingMidWalkBarsCarryForward(t *testing.T) {
	sim := newTestSimulator()
	entry := date(2024, time.January, 4)
	expiry := date(2024, time.January, 11)

	// Only entry and expiry bars: the walk carries the entry close
	// forward, so the flat position reaches expiry.
	prices := models.NewPriceSeries([]models.DayBar{
		{Date: entry, Close: 24000},
		{Date: expiry, Close: 24000},
	})

	trade, err := sim.RunCycle(strategy.ShortStraddle(), entry, expiry, prices, 15)
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if trade.ExitReason != models.ExitExpiry {
		t.Errorf("exit reason = %s, want expiry", trade.ExitReason)
	}
}

func TestRunCycleStrikeRounding(t *testing.T) {
	sim := newTestSimulator()
	entry := date(2024, time.January, 4)
	expiry := date(2024, time.January, 11)

	tests := []struct {
		spot float64
		want float64
	}{
		{24012, 24000},
		{24025, 24050}, // exact midpoint rounds up
		{24049, 24050},
		{23976, 24000},
	}

	for _, tt := range tests {
		prices := flatSeries(entry, 8, tt.spot)
		trade, err := sim.RunCycle(strategy.ShortStraddle(), entry, expiry, prices, 15)
		if err != nil {
			t.Fatalf("RunCycle failed: %v", err)
		}
		for _, leg := range trade.Legs {
			if leg.Strike != tt.want {
				t.Errorf("spot %.0f resolved strike %.0f, want %.0f", tt.spot, leg.Strike, tt.want)
			}
		}
	}
}

func TestFillPremiumSlippage(t *testing.T) {
	sim := newTestSimulator()

	raw := 100.0
	spot, strike := 24000.0, 24000.0
	slip := sim.cfg.Slippage.ATM

	tests := []struct {
		name    string
		side    models.OrderSide
		opening bool
		want    float64
	}{
		{"sell opening receives less", models.OrderSideSell, true, raw - slip},
		{"buy opening pays more", models.OrderSideBuy, true, raw + slip},
		{"sell closing pays more", models.OrderSideSell, false, raw + slip},
		{"buy closing receives less", models.OrderSideBuy, false, raw - slip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sim.fillPremium(raw, spot, strike, models.OptionCall, tt.side, tt.opening)
			if got != tt.want {
				t.Errorf("fillPremium = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestFillPremiumFloorHolds(t *testing.T) {
	sim := newTestSimulator()

	// A raw premium at the floor cannot slip below it.
	got := sim.fillPremium(sim.model.Floor(), 24000, 24000, models.OptionCall, models.OrderSideSell, true)
	if got != sim.model.Floor() {
		t.Errorf("fillPremium below floor: %.2f, want %.2f", got, sim.model.Floor())
	}
}

func TestSettleDecomposition(t *testing.T) {
	sim := newTestSimulator()
	entry := date(2024, time.January, 4)
	expiry := date(2024, time.January, 11)

	// A price drift keeps legs at distinct values; the total must still
	// decompose into leg P&Ls minus round-trip brokerage.
	closes := []float64{24000, 24080, 24150, 24100, 24210, 24300, 24260, 24350}
	prices := seriesFromCloses(entry, closes)

	for name, tmpl := range strategy.Library() {
		trade, err := sim.RunCycle(tmpl, entry, expiry, prices, 15)
		if err != nil {
			t.Fatalf("%s: RunCycle failed: %v", name, err)
		}

		var legSum float64
		for _, leg := range trade.Legs {
			legSum += leg.PnL
		}
		want := legSum - sim.TransactionCosts(trade)
		if math.Abs(trade.TotalPnL-want) > 1e-9 {
			t.Errorf("%s: total pnl %.4f != leg sum minus costs %.4f", name, trade.TotalPnL, want)
		}
	}
}
