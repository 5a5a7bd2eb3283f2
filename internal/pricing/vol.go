package pricing

import (
	"math"
)

// tradingDays is the annualization base for daily returns.
const tradingDays = 252

// DefaultVol is the annualized volatility (percent) assumed when too few
// bars exist to estimate one.
const DefaultVol = 15.0

// VolEstimator derives a trailing annualized volatility estimate from
// daily closes, used as an IV proxy when none is supplied.
type VolEstimator struct {
	lookback int
}

// NewVolEstimator creates an estimator over the given trailing window.
func NewVolEstimator(lookback int) *VolEstimator {
	return &VolEstimator{lookback: lookback}
}

// Estimate returns the annualized volatility in percent from the lookback
// log returns ending at asOf-1. With fewer than lookback prior bars it
// returns DefaultVol. The estimate is the population RMS of log returns
// (zero-mean), annualized.
func (v *VolEstimator) Estimate(closes []float64, asOf int) float64 {
	if asOf > len(closes) {
		asOf = len(closes)
	}
	if asOf-1 < v.lookback {
		return DefaultVol
	}

	var sumSq float64
	n := 0
	for i := asOf - v.lookback; i < asOf; i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		r := math.Log(closes[i] / closes[i-1])
		sumSq += r * r
		n++
	}
	if n == 0 {
		return DefaultVol
	}

	daily := math.Sqrt(sumSq / float64(n))
	return daily * math.Sqrt(tradingDays) * 100
}
