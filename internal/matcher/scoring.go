package matcher

import (
	"math"
	"time"

	"homeval/server/internal/models"
)

// unknownDelta is the penalty distance charged when a count attribute is
// unknown on either side of the comparison.
const unknownDelta = 1.0

// score computes the weighted similarity distance between the subject and one
// candidate. Lower is more similar. Recency enters as an explicit decay so
// that older closes rank behind equally-similar recent ones; anything past the
// lookback horizon was already dropped by the hard filter.
func (m *Matcher) score(subject models.UnitSpec, c models.ComparableTransaction, now time.Time) float64 {
	w := m.cfg.Matching

	s := w.BedroomWeight * countDelta(subject.Bedrooms, c.Bedrooms)
	s += w.BathroomWeight * countDelta(subject.Bathrooms, c.Bathrooms)
	s += w.AreaWeight * areaDelta(subject, c)
	s += w.RecencyWeight * ageMonths(c.CloseDate, now)

	if subject.AnnualTax != nil && c.AnnualTax != nil {
		s += w.TaxWeight * math.Abs(*subject.AnnualTax-*c.AnnualTax)
	}

	lotWeight := w.LotWeight
	if subject.Direction == models.DirectionLease {
		// Tenants value the structure more than the land.
		lotWeight *= w.LeaseLotFactor
	}
	if subject.LotFrontageFt != nil && c.LotFrontageFt != nil {
		s += lotWeight * math.Abs(*subject.LotFrontageFt-*c.LotFrontageFt)
	}

	return s
}

func countDelta(a, b *int) float64 {
	if a == nil || b == nil {
		return unknownDelta
	}
	return math.Abs(float64(*a - *b))
}

// areaDelta measures living-area distance in square feet. Exact-to-exact when
// both sides are known; otherwise bucket compatibility: zero inside the range,
// else the gap to the nearest bound.
func areaDelta(subject models.UnitSpec, c models.ComparableTransaction) float64 {
	switch {
	case subject.AreaSqft != nil && c.AreaSqft != nil:
		return math.Abs(*subject.AreaSqft - *c.AreaSqft)
	case subject.AreaSqft != nil && c.AreaRange != nil:
		return gapToRange(*subject.AreaSqft, *c.AreaRange)
	case subject.AreaRange != nil && c.AreaSqft != nil:
		return gapToRange(*c.AreaSqft, *subject.AreaRange)
	case subject.AreaRange != nil && c.AreaRange != nil:
		if rangesOverlap(*subject.AreaRange, *c.AreaRange) {
			return 0
		}
		if c.AreaRange.Low > subject.AreaRange.High {
			return c.AreaRange.Low - subject.AreaRange.High
		}
		return subject.AreaRange.Low - c.AreaRange.High
	default:
		// No area information on the comparable at all.
		return unknownDelta * 100
	}
}

func gapToRange(v float64, r models.AreaRange) float64 {
	switch {
	case v < r.Low:
		return r.Low - v
	case v > r.High:
		return v - r.High
	default:
		return 0
	}
}

func rangesOverlap(a, b models.AreaRange) bool {
	return a.Low <= b.High && b.Low <= a.High
}

func ageMonths(closeDate, now time.Time) float64 {
	age := now.Sub(closeDate)
	if age < 0 {
		return 0
	}
	return age.Hours() / (24 * 30)
}
