package stats

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"homeval/server/config"
	"homeval/server/internal/models"
)

// Calculator turns a matched, price-normalized comparable set into a point
// estimate with a confidence-qualified range. Suppressing the price when data
// is too sparse is an intended outcome, not a failure.
type Calculator struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func NewCalculator(cfg *config.Config, logger *logrus.Logger) *Calculator {
	return &Calculator{cfg: cfg, logger: logger}
}

// Calculate produces the EstimateResult for one match. The central tendency is
// a similarity-weighted median of adjusted prices, which is less sensitive to
// outlier closes than a mean.
func (c *Calculator) Calculate(match models.MatchResult, comparables []models.AdjustedComparable) models.EstimateResult {
	confidence := c.confidence(match)
	showPrice := !(confidence == models.ConfidenceLow && match.SampleCount < c.cfg.Stats.MinDisplaySamples)

	result := models.EstimateResult{
		Confidence:  confidence,
		ShowPrice:   showPrice,
		Tier:        match.Tier,
		SampleCount: match.SampleCount,
	}

	if len(comparables) == 0 {
		result.ShowPrice = false
		return result
	}

	central := weightedMedian(comparables)
	spread := c.spreadRatio(match)

	result.EstimatedPrice = roundHalfUp(central)
	result.PriceRange = models.PriceRange{
		Low:  roundHalfUp(central * (1 - spread)),
		High: roundHalfUp(central * (1 + spread)),
	}

	// Rounding must never push the point estimate outside its own range.
	if result.EstimatedPrice < result.PriceRange.Low {
		result.EstimatedPrice = result.PriceRange.Low
	}
	if result.EstimatedPrice > result.PriceRange.High {
		result.EstimatedPrice = result.PriceRange.High
	}

	return result
}

// confidence is a direct function of the tier reached and its sample count:
// the narrowest askable tier meeting its threshold is high; the absolute
// broadest tier still short of its own minimum is low; everything in between,
// reached by widening or carrying a short sample, is medium.
func (c *Calculator) confidence(match models.MatchResult) models.Confidence {
	met := match.SampleCount >= match.Tier.MinSamples
	switch {
	case met && !match.Widened:
		return models.ConfidenceHigh
	case !met && match.Tier.Level == models.GeoRegion:
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}

// spreadRatio converts the tier's spread percentage into a ratio, widened when
// the tier's minimum sample was not met. Ratios are carried at basis-point
// precision with round-half-to-even.
func (c *Calculator) spreadRatio(match models.MatchResult) float64 {
	pct := match.Tier.SpreadPct
	if match.SampleCount < match.Tier.MinSamples {
		pct += c.cfg.Stats.SmallSampleWidenPct
	}
	return math.RoundToEven(pct*100) / 10000
}

// weightedMedian computes the similarity-weighted median of adjusted prices.
// Weights are the inverse of the similarity distance, so closer comparables
// pull harder on the central value.
func weightedMedian(comparables []models.AdjustedComparable) float64 {
	type weighted struct {
		price  float64
		weight float64
	}

	items := make([]weighted, 0, len(comparables))
	var total float64
	for _, c := range comparables {
		w := 1.0 / (1.0 + c.Score)
		items = append(items, weighted{price: float64(c.AdjustedPrice), weight: w})
		total += w
	}

	sort.Slice(items, func(i, j int) bool { return items[i].price < items[j].price })

	half := total / 2
	var cumulative float64
	for _, it := range items {
		cumulative += it.weight
		if cumulative >= half {
			return it.price
		}
	}
	return items[len(items)-1].price
}

// roundHalfUp rounds a currency figure to the nearest whole unit, halves up.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
