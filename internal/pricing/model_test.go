package pricing

import (
	"math"
	"testing"

	"options-backtester/internal/models"
)

func TestPriceATM(t *testing.T) {
	m := NewModel(5)

	// ATM: no intrinsic, full smile multiplier.
	// timeValue = spot * iv/100 * sqrt(dte/365) * 0.4
	got := m.Price(24000, 24000, 7, 15, models.OptionCall)
	want := 24000 * 0.15 * math.Sqrt(7.0/365) * 0.4

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ATM price = %.4f, want %.4f", got, want)
	}
}

func TestPriceOTMBelowATM(t *testing.T) {
	m := NewModel(5)

	atm := m.Price(24000, 24000, 7, 15, models.OptionCall)
	otm := m.Price(24000, 24500, 7, 15, models.OptionCall)
	deep := m.Price(24000, 25500, 7, 15, models.OptionCall)

	if otm >= atm {
		t.Errorf("OTM premium %.2f not below ATM %.2f", otm, atm)
	}
	if deep >= otm {
		t.Errorf("deep OTM premium %.2f not below OTM %.2f", deep, otm)
	}
}

func TestPriceITMIncludesIntrinsic(t *testing.T) {
	m := NewModel(5)

	got := m.Price(24000, 23000, 7, 15, models.OptionCall)
	if got < 1000 {
		t.Errorf("ITM call premium %.2f below intrinsic 1000", got)
	}
}

func TestPriceFloor(t *testing.T) {
	m := NewModel(5)

	// Far OTM with short DTE and low vol prices well below the floor.
	got := m.Price(24000, 40000, 1, 5, models.OptionCall)
	if got != 5 {
		t.Errorf("floored premium = %.4f, want 5", got)
	}
}

func TestPriceZeroDTEClamp(t *testing.T) {
	m := NewModel(5)

	// dte 0 clamps to half a day: some time value remains.
	zero := m.Price(24000, 24000, 0, 15, models.OptionCall)
	one := m.Price(24000, 24000, 1, 15, models.OptionCall)
	if zero <= 5 {
		t.Errorf("0-DTE ATM premium %.2f collapsed to floor", zero)
	}
	if zero >= one {
		t.Errorf("0-DTE premium %.2f not below 1-DTE %.2f", zero, one)
	}
}

func TestIntrinsic(t *testing.T) {
	tests := []struct {
		name    string
		spot    float64
		strike  float64
		optType models.OptionType
		want    float64
	}{
		{"ITM call", 24500, 24000, models.OptionCall, 500},
		{"OTM call", 23500, 24000, models.OptionCall, 0},
		{"ITM put", 23500, 24000, models.OptionPut, 500},
		{"OTM put", 24500, 24000, models.OptionPut, 0},
		{"at the money", 24000, 24000, models.OptionCall, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intrinsic(tt.spot, tt.strike, tt.optType); got != tt.want {
				t.Errorf("Intrinsic = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestBucket(t *testing.T) {
	tests := []struct {
		name    string
		spot    float64
		strike  float64
		optType models.OptionType
		want    models.MoneynessBucket
	}{
		{"exact ATM", 24000, 24000, models.OptionCall, models.BucketATM},
		{"near ATM call", 24000, 24200, models.OptionCall, models.BucketATM},
		{"OTM call", 24000, 24500, models.OptionCall, models.BucketOTM},
		{"deep OTM call", 24000, 25000, models.OptionCall, models.BucketDeepOTM},
		{"ITM call", 24000, 23500, models.OptionCall, models.BucketITM},
		{"OTM put", 24000, 23500, models.OptionPut, models.BucketOTM},
		{"ITM put", 24000, 24500, models.OptionPut, models.BucketITM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bucket(tt.spot, tt.strike, tt.optType); got != tt.want {
				t.Errorf("Bucket = %s, want %s", got, tt.want)
			}
		})
	}
}
