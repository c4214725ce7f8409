package rollup

import (
	"sort"
	"time"

	"homeval/server/internal/models"
)

type groupKey struct {
	level     models.GeoLevel
	geoID     string
	direction models.Direction
}

type group struct {
	psf      []float64
	earliest time.Time
	latest   time.Time
}

// Compute derives the full summary snapshot from the closed-transaction
// population. Only transactions with a known exact living area contribute to
// price-per-square-foot figures. The result is deterministic for a given
// input, so reruns over unchanged data converge to identical values.
func Compute(transactions []models.ComparableTransaction, computedAt time.Time) []models.AggregateSummary {
	groups := make(map[groupKey]*group)

	for _, t := range transactions {
		if t.AreaSqft == nil || *t.AreaSqft <= 0 || t.ClosePrice <= 0 {
			continue
		}
		psf := float64(t.ClosePrice) / *t.AreaSqft

		for _, level := range []models.GeoLevel{models.GeoCommunity, models.GeoMunicipality, models.GeoRegion} {
			geoID := geoIDFor(t, level)
			if geoID == nil {
				continue
			}
			key := groupKey{level: level, geoID: *geoID, direction: t.Direction}
			g, ok := groups[key]
			if !ok {
				g = &group{earliest: t.CloseDate, latest: t.CloseDate}
				groups[key] = g
			}
			g.psf = append(g.psf, psf)
			if t.CloseDate.Before(g.earliest) {
				g.earliest = t.CloseDate
			}
			if t.CloseDate.After(g.latest) {
				g.latest = t.CloseDate
			}
		}
	}

	summaries := make([]models.AggregateSummary, 0, len(groups))
	for key, g := range groups {
		summaries = append(summaries, models.AggregateSummary{
			GeoLevel:       key.level.String(),
			GeoID:          key.geoID,
			Direction:      key.direction,
			AvgPricePSF:    mean(g.psf),
			MedianPricePSF: median(g.psf),
			SampleCount:    len(g.psf),
			EarliestClose:  g.earliest,
			LatestClose:    g.latest,
			ComputedAt:     computedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.GeoLevel != b.GeoLevel {
			return a.GeoLevel < b.GeoLevel
		}
		if a.GeoID != b.GeoID {
			return a.GeoID < b.GeoID
		}
		return a.Direction < b.Direction
	})
	return summaries
}

func geoIDFor(t models.ComparableTransaction, level models.GeoLevel) *string {
	switch level {
	case models.GeoCommunity:
		return t.CommunityID
	case models.GeoMunicipality:
		return t.MunicipalityID
	case models.GeoRegion:
		return t.RegionID
	default:
		return nil
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
