// Package pathsim generates synthetic daily price paths for the underlying.
package pathsim

import (
	"math"
	"math/rand"
)

// Mean-reversion kicks in once the running price drifts this far from
// the start, and pulls back by the correction fraction per day. A bias,
// not a barrier.
const (
	reversionBand       = 0.02
	reversionCorrection = 0.003
)

// Simulator generates one-shot daily price paths with a Gaussian shock
// and a mild mean-reversion bias toward the starting price. Each
// simulator owns its random source, so concurrent runs with different
// seeds do not interfere.
type Simulator struct {
	rng *rand.Rand
}

// New creates a simulator seeded for reproducible paths.
func New(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// Simulate returns days+1 prices with prices[0] = startPrice. annualVol
// is an annualized volatility in percent; the per-day shock standard
// deviation is annualVol/100/sqrt(252). The sequence is finite and not
// restartable without re-seeding.
func (s *Simulator) Simulate(startPrice float64, days int, annualVol float64) []float64 {
	dailyVol := annualVol / 100 / math.Sqrt(252)
	return s.simulate(startPrice, days, dailyVol)
}

// SimulateDaily is Simulate with a literal daily volatility fraction.
func (s *Simulator) SimulateDaily(startPrice float64, days int, dailyVol float64) []float64 {
	return s.simulate(startPrice, days, dailyVol)
}

func (s *Simulator) simulate(startPrice float64, days int, dailyVol float64) []float64 {
	prices := make([]float64, days+1)
	prices[0] = startPrice

	price := startPrice
	for i := 1; i <= days; i++ {
		ret := s.rng.NormFloat64() * dailyVol

		// Nudge back toward start once outside the band.
		drift := (price - startPrice) / startPrice
		if drift > reversionBand {
			ret -= reversionCorrection
		} else if drift < -reversionBand {
			ret += reversionCorrection
		}

		price *= 1 + ret
		prices[i] = price
	}

	return prices
}
