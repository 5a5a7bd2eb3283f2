package strategy

import (
	"fmt"
	"sort"

	"options-backtester/internal/models"
)

// Built-in templates. Offsets are in index points and assume a 50-point
// strike grid; they stay on-grid for any increment that divides them.

// ShortStraddle sells the ATM call and put.
func ShortStraddle() *Template {
	t, err := New("short_straddle", []models.LegSpec{
		{Side: models.OrderSideSell, OptionType: models.OptionCall, StrikeOffset: 0, QuantityLots: 1},
		{Side: models.OrderSideSell, OptionType: models.OptionPut, StrikeOffset: 0, QuantityLots: 1},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// ShortStrangle sells an OTM call and put width points from ATM.
func ShortStrangle(width float64) *Template {
	t, err := New("short_strangle", []models.LegSpec{
		{Side: models.OrderSideSell, OptionType: models.OptionCall, StrikeOffset: width, QuantityLots: 1},
		{Side: models.OrderSideSell, OptionType: models.OptionPut, StrikeOffset: -width, QuantityLots: 1},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// IronCondor sells a strangle at shortWidth and buys wings at
// shortWidth+wingWidth.
func IronCondor(shortWidth, wingWidth float64) *Template {
	t, err := New("iron_condor", []models.LegSpec{
		{Side: models.OrderSideSell, OptionType: models.OptionCall, StrikeOffset: shortWidth, QuantityLots: 1},
		{Side: models.OrderSideSell, OptionType: models.OptionPut, StrikeOffset: -shortWidth, QuantityLots: 1},
		{Side: models.OrderSideBuy, OptionType: models.OptionCall, StrikeOffset: shortWidth + wingWidth, QuantityLots: 1},
		{Side: models.OrderSideBuy, OptionType: models.OptionPut, StrikeOffset: -(shortWidth + wingWidth), QuantityLots: 1},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// IronFly sells the ATM straddle and buys wings wingWidth away.
func IronFly(wingWidth float64) *Template {
	t, err := New("iron_fly", []models.LegSpec{
		{Side: models.OrderSideSell, OptionType: models.OptionCall, StrikeOffset: 0, QuantityLots: 1},
		{Side: models.OrderSideSell, OptionType: models.OptionPut, StrikeOffset: 0, QuantityLots: 1},
		{Side: models.OrderSideBuy, OptionType: models.OptionCall, StrikeOffset: wingWidth, QuantityLots: 1},
		{Side: models.OrderSideBuy, OptionType: models.OptionPut, StrikeOffset: -wingWidth, QuantityLots: 1},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// ProtectedIronFly is an iron fly with an extra long put below the put
// wing for crash protection.
func ProtectedIronFly(wingWidth, protectionWidth float64) *Template {
	t, err := New("protected_iron_fly", []models.LegSpec{
		{Side: models.OrderSideSell, OptionType: models.OptionCall, StrikeOffset: 0, QuantityLots: 1},
		{Side: models.OrderSideSell, OptionType: models.OptionPut, StrikeOffset: 0, QuantityLots: 1},
		{Side: models.OrderSideBuy, OptionType: models.OptionCall, StrikeOffset: wingWidth, QuantityLots: 1},
		{Side: models.OrderSideBuy, OptionType: models.OptionPut, StrikeOffset: -wingWidth, QuantityLots: 1},
		{Side: models.OrderSideBuy, OptionType: models.OptionPut, StrikeOffset: -(wingWidth + protectionWidth), QuantityLots: 1},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// CallRatioSpread buys one ATM call and sells two calls width above.
func CallRatioSpread(width float64) *Template {
	t, err := New("call_ratio_spread", []models.LegSpec{
		{Side: models.OrderSideBuy, OptionType: models.OptionCall, StrikeOffset: 0, QuantityLots: 1},
		{Side: models.OrderSideSell, OptionType: models.OptionCall, StrikeOffset: width, QuantityLots: 2},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// PutRatioSpread buys one ATM put and sells two puts width below.
func PutRatioSpread(width float64) *Template {
	t, err := New("put_ratio_spread", []models.LegSpec{
		{Side: models.OrderSideBuy, OptionType: models.OptionPut, StrikeOffset: 0, QuantityLots: 1},
		{Side: models.OrderSideSell, OptionType: models.OptionPut, StrikeOffset: -width, QuantityLots: 2},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Library returns the built-in templates keyed by name, using standard
// NIFTY widths.
func Library() map[string]*Template {
	templates := []*Template{
		ShortStraddle(),
		ShortStrangle(200),
		IronCondor(200, 200),
		IronFly(300),
		ProtectedIronFly(300, 300),
		CallRatioSpread(150),
		PutRatioSpread(150),
	}

	lib := make(map[string]*Template, len(templates))
	for _, t := range templates {
		lib[t.Name] = t
	}
	return lib
}

// Get returns a built-in template by name.
func Get(name string) (*Template, error) {
	t, ok := Library()[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Names())
	}
	return t, nil
}

// Names returns the built-in template names, sorted.
func Names() []string {
	lib := Library()
	names := make([]string, 0, len(lib))
	for name := range lib {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
