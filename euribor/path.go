/*
Package euribor generates reference-rate paths for variable periods.

PURPOSE:
  The amortization engine never invents rates: callers hand it one path of
  monthly Euribor values per variable period. This package produces those
  paths as a bounded random walk inside a {min, max, volatility} envelope.

RANDOM WALK:
  - the start value is drawn uniformly in [min, max]
  - volatility 0 keeps that value for every month
  - otherwise each month adds (2u - 1) * step, clamped to [min, max], where
    step = (volatility/5)^2 * (max - min) * 0.15

DETERMINISM:
  A Source built by NewSeededSource is a linear congruential generator, so a
  given seed always yields the same path. NewRandomSource is not repeatable.

SEE ALSO:
  - series.go: preview series and conversion to mortgage.EuriborPaths
  - mortgage/engine.go: consumer of the paths
*/
package euribor

import (
	"errors"
	"math"
	"math/rand"

	"github.com/warp/mortgage-engine/mortgage"
)

// ErrNotVariable is returned when a path is requested for a fixed period.
var ErrNotVariable = errors.New("euribor paths only apply to variable periods")

// Source yields uniform values in [0, 1].
type Source func() float64

// NewSeededSource returns a repeatable linear congruential generator.
//
// The step is evaluated in float64 and reduced to its low 31 bits, the way a
// browser evaluates (s*1103515245 + 12345) & 0x7fffffff, so a seed yields the
// same preview here as in the web client.
func NewSeededSource(seed int64) Source {
	s := float64(seed)
	return func() float64 {
		// The explicit conversion keeps the multiply and add from fusing.
		x := float64(s*1103515245) + 12345
		s = math.Mod(x, 1<<31)
		if s < 0 {
			s += 1 << 31
		}
		return s / 0x7fffffff
	}
}

// NewRandomSource returns a non-repeatable source.
func NewRandomSource() Source {
	return rand.Float64
}

// GeneratePath returns months values (percent) walking inside [lo, hi].
// Inverted bounds are swapped.
func GeneratePath(months int, lo, hi, volatility float64, rng Source) []float64 {
	if months <= 0 {
		return []float64{}
	}
	lo, hi = math.Min(lo, hi), math.Max(lo, hi)
	span := hi - lo
	norm := volatility / mortgage.MaxEuriborVolatility
	step := norm * norm * span * 0.15

	path := make([]float64, months)
	current := lo + span*rng()
	for i := range path {
		if volatility != 0 {
			current = math.Max(lo, math.Min(hi, current+(2*rng()-1)*step))
		}
		path[i] = current
	}
	return path
}

// PathFor generates the path of a single variable period within a term.
func PathFor(p mortgage.InterestPeriod, totalMonths int, rng Source) ([]float64, error) {
	if !p.IsVariable() {
		return nil, ErrNotVariable
	}
	lo, hi, vol := p.Envelope()
	return GeneratePath(p.Span(totalMonths), lo, hi, clampVolatility(vol), rng), nil
}

// PathsFor generates a path for every variable period of cfg, keyed by the
// period's index in StartMonth order, ready for mortgage.Compute.
func PathsFor(cfg mortgage.Config, rng Source) mortgage.EuriborPaths {
	paths := mortgage.EuriborPaths{}
	for i, p := range mortgage.SortPeriods(cfg.Periods) {
		if !p.IsVariable() || p.Span(cfg.Months) == 0 {
			continue
		}
		paths[i], _ = PathFor(p, cfg.Months, rng)
	}
	return paths
}

func clampVolatility(v float64) float64 {
	return math.Max(0, math.Min(mortgage.MaxEuriborVolatility, v))
}
