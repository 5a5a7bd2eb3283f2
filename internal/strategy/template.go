// Package strategy provides data-only multi-leg strategy templates.
// A template declares legs; the simulator supplies all behavior, so new
// structures are added by declaring legs, never by copying simulation code.
package strategy

import (
	"fmt"
	"strings"

	"options-backtester/internal/errors"
	"options-backtester/internal/models"
)

// Template declares one multi-leg structure plus the metadata needed to
// resolve and exit it. Zero values for the exit fields defer to the
// engine configuration.
type Template struct {
	Name             string
	Legs             []models.LegSpec
	MinDTE           int
	MaxDTE           int
	StopLossMultiple float64 // multiple of entry net credit; 0 = engine default
	TargetPercent    float64 // percent of entry net credit; 0 = disabled
}

// New validates and constructs a template. Validation failures are
// configuration errors and fatal: an empty leg list, a non-positive
// quantity, or two legs with identical (side, type, offset) are rejected.
func New(name string, legs []models.LegSpec) (*Template, error) {
	if name == "" {
		return nil, errors.NewTemplateError(name, "template name is required", errors.ErrConfigInvalid)
	}
	if len(legs) == 0 {
		return nil, errors.NewTemplateError(name, "at least one leg is required", errors.ErrEmptyTemplate)
	}

	seen := make(map[string]bool, len(legs))
	for i, leg := range legs {
		if leg.QuantityLots <= 0 {
			return nil, errors.NewTemplateError(name,
				fmt.Sprintf("leg %d quantity must be positive, got %d", i, leg.QuantityLots),
				errors.ErrInvalidQuantity)
		}
		if leg.Side != models.OrderSideBuy && leg.Side != models.OrderSideSell {
			return nil, errors.NewTemplateError(name,
				fmt.Sprintf("leg %d has invalid side %q", i, leg.Side), errors.ErrConfigInvalid)
		}
		if leg.OptionType != models.OptionCall && leg.OptionType != models.OptionPut {
			return nil, errors.NewTemplateError(name,
				fmt.Sprintf("leg %d has invalid option type %q", i, leg.OptionType), errors.ErrConfigInvalid)
		}
		key := fmt.Sprintf("%s|%s|%.0f", leg.Side, leg.OptionType, leg.StrikeOffset)
		if seen[key] {
			return nil, errors.NewTemplateError(name,
				fmt.Sprintf("duplicate leg: %s", leg), errors.ErrDuplicateLeg)
		}
		seen[key] = true
	}

	return &Template{Name: name, Legs: legs}, nil
}

// WithDTEWindow returns a copy of the template with the entry window set.
func (t *Template) WithDTEWindow(minDTE, maxDTE int) (*Template, error) {
	if minDTE < 0 || maxDTE < minDTE {
		return nil, errors.NewTemplateError(t.Name,
			fmt.Sprintf("dte window [%d, %d]", minDTE, maxDTE), errors.ErrInvalidDTEWindow)
	}
	cp := *t
	cp.MinDTE = minDTE
	cp.MaxDTE = maxDTE
	return &cp, nil
}

// WithStopLoss returns a copy with the stop-loss multiple set.
func (t *Template) WithStopLoss(multiple float64) (*Template, error) {
	if multiple <= 0 {
		return nil, errors.NewTemplateError(t.Name,
			fmt.Sprintf("stop-loss multiple %.2f", multiple), errors.ErrConfigInvalid)
	}
	cp := *t
	cp.StopLossMultiple = multiple
	return &cp, nil
}

// WithTarget returns a copy with the profit target percent set.
func (t *Template) WithTarget(percent float64) (*Template, error) {
	if percent <= 0 {
		return nil, errors.NewTemplateError(t.Name,
			fmt.Sprintf("target percent %.2f", percent), errors.ErrConfigInvalid)
	}
	cp := *t
	cp.TargetPercent = percent
	return &cp, nil
}

// Describe renders the leg structure, e.g.
// "SELL 1x CE ATM / SELL 1x PE ATM / BUY 1x CE ATM+300 / BUY 1x PE ATM-300".
func (t *Template) Describe() string {
	parts := make([]string, len(t.Legs))
	for i, leg := range t.Legs {
		parts[i] = leg.String()
	}
	return strings.Join(parts, " / ")
}
