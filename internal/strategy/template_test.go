package strategy

import (
	"testing"

	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

func TestNewValidation(t *testing.T) {
	sellCall := models.LegSpec{Side: models.OrderSideSell, OptionType: models.OptionCall, QuantityLots: 1}

	tests := []struct {
		name    string
		tmpl    string
		legs    []models.LegSpec
		wantErr error
	}{
		{
			name:    "empty name",
			tmpl:    "",
			legs:    []models.LegSpec{sellCall},
			wantErr: errors.ErrConfigInvalid,
		},
		{
			name:    "no legs",
			tmpl:    "empty",
			legs:    nil,
			wantErr: errors.ErrEmptyTemplate,
		},
		{
			name: "zero quantity",
			tmpl: "bad_qty",
			legs: []models.LegSpec{
				{Side: models.OrderSideSell, OptionType: models.OptionCall, QuantityLots: 0},
			},
			wantErr: errors.ErrInvalidQuantity,
		},
		{
			name: "negative quantity",
			tmpl: "bad_qty",
			legs: []models.LegSpec{
				{Side: models.OrderSideSell, OptionType: models.OptionCall, QuantityLots: -1},
			},
			wantErr: errors.ErrInvalidQuantity,
		},
		{
			name: "invalid side",
			tmpl: "bad_side",
			legs: []models.LegSpec{
				{Side: "HOLD", OptionType: models.OptionCall, QuantityLots: 1},
			},
			wantErr: errors.ErrConfigInvalid,
		},
		{
			name: "invalid option type",
			tmpl: "bad_type",
			legs: []models.LegSpec{
				{Side: models.OrderSideSell, OptionType: "FUT", QuantityLots: 1},
			},
			wantErr: errors.ErrConfigInvalid,
		},
		{
			name:    "duplicate legs",
			tmpl:    "dup",
			legs:    []models.LegSpec{sellCall, sellCall},
			wantErr: errors.ErrDuplicateLeg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tmpl, tt.legs)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want wrapped %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewAllowsSameOffsetDifferentSide(t *testing.T) {
	// Same strike and type on opposite sides is a valid structure
	// (e.g. a calendar-less box side), not a duplicate.
	_, err := New("box_side", []models.LegSpec{
		{Side: models.OrderSideSell, OptionType: models.OptionCall, StrikeOffset: 0, QuantityLots: 1},
		{Side: models.OrderSideBuy, OptionType: models.OptionCall, StrikeOffset: 0, QuantityLots: 1},
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWithDTEWindow(t *testing.T) {
	tmpl := ShortStraddle()

	got, err := tmpl.WithDTEWindow(2, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MinDTE != 2 || got.MaxDTE != 9 {
		t.Errorf("window = [%d, %d], want [2, 9]", got.MinDTE, got.MaxDTE)
	}
	// Original untouched.
	if tmpl.MinDTE != 0 || tmpl.MaxDTE != 0 {
		t.Error("WithDTEWindow mutated the receiver")
	}

	if _, err := tmpl.WithDTEWindow(5, 2); !errors.Is(err, errors.ErrInvalidDTEWindow) {
		t.Errorf("inverted window error = %v, want ErrInvalidDTEWindow", err)
	}
	if _, err := tmpl.WithDTEWindow(-1, 5); !errors.Is(err, errors.ErrInvalidDTEWindow) {
		t.Errorf("negative window error = %v, want ErrInvalidDTEWindow", err)
	}
}

func TestWithStopLossAndTarget(t *testing.T) {
	tmpl := ShortStraddle()

	got, err := tmpl.WithStopLoss(2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StopLossMultiple != 2.0 {
		t.Errorf("stop-loss multiple = %.2f, want 2.0", got.StopLossMultiple)
	}

	if _, err := tmpl.WithStopLoss(0); err == nil {
		t.Error("expected error for zero stop-loss multiple")
	}

	got, err = tmpl.WithTarget(50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TargetPercent != 50 {
		t.Errorf("target percent = %.2f, want 50", got.TargetPercent)
	}

	if _, err := tmpl.WithTarget(-10); err == nil {
		t.Error("expected error for negative target")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		tmpl *Template
		want string
	}{
		{ShortStraddle(), "SELL 1x CE ATM / SELL 1x PE ATM"},
		{ShortStrangle(200), "SELL 1x CE ATM+200 / SELL 1x PE ATM-200"},
		{CallRatioSpread(150), "BUY 1x CE ATM / SELL 2x CE ATM+150"},
	}

	for _, tt := range tests {
		if got := tt.tmpl.Describe(); got != tt.want {
			t.Errorf("Describe(%s) = %q, want %q", tt.tmpl.Name, got, tt.want)
		}
	}
}

func TestLibrary(t *testing.T) {
	lib := Library()
	if len(lib) != 7 {
		t.Errorf("library has %d templates, want 7", len(lib))
	}

	for name, tmpl := range lib {
		if tmpl.Name != name {
			t.Errorf("library key %q maps to template named %q", name, tmpl.Name)
		}
		if len(tmpl.Legs) == 0 {
			t.Errorf("template %q has no legs", name)
		}
	}

	if _, err := Get("short_straddle"); err != nil {
		t.Errorf("Get(short_straddle) failed: %v", err)
	}
	if _, err := Get("martingale"); err == nil {
		t.Error("Get of unknown strategy should fail")
	}

	names := Names()
	if len(names) != len(lib) {
		t.Errorf("Names returned %d entries, want %d", len(names), len(lib))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q before %q", names[i-1], names[i])
		}
	}
}
