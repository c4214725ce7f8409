package matcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"homeval/server/config"
	"homeval/server/internal/models"
)

// Store is the query capability over the historical transaction population.
// Implementations return only closed transactions and may pre-filter; the
// matcher re-applies its hard filters regardless.
type Store interface {
	QueryClosed(ctx context.Context, q Query) ([]models.ComparableTransaction, error)
}

// Query narrows the historical population to one tier's candidate set.
type Query struct {
	Direction   models.Direction
	Category    models.Category
	GeoLevel    models.GeoLevel
	GeoID       string
	ClosedAfter time.Time
	ExcludeID   string
}

// Options tweaks a single match request.
type Options struct {
	// IncludeRepeatCloses keeps multiple closes of the same physical unit
	// inside the lookback window instead of deduplicating to the most recent.
	IncludeRepeatCloses bool
}

// Matcher locates comparable transactions for a subject by trying an ordered
// sequence of widening geography tiers.
type Matcher struct {
	store  Store
	cfg    *config.Config
	logger *logrus.Logger
	now    func() time.Time
}

func New(store Store, cfg *config.Config, logger *logrus.Logger) *Matcher {
	return &Matcher{
		store:  store,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Match runs the tiered search for the subject. Each tier is evaluated as a
// clean, self-contained population; tiers are never unioned. If even the
// broadest askable tier falls short of its minimum sample, that tier's result
// is returned anyway and the caller decides whether it is usable.
func (m *Matcher) Match(ctx context.Context, subject models.UnitSpec, opts Options) (models.MatchResult, error) {
	cutoff := m.now().AddDate(0, -m.cfg.Matching.LookbackMonths, 0)
	tiers := m.cfg.Tiers(subject.Category)

	var result models.MatchResult
	evaluated := 0
	for _, tier := range tiers {
		geoID := subject.GeoID(tier.Level)
		if geoID == nil {
			continue
		}

		candidates, err := m.store.QueryClosed(ctx, Query{
			Direction:   subject.Direction,
			Category:    subject.Category,
			GeoLevel:    tier.Level,
			GeoID:       *geoID,
			ClosedAfter: cutoff,
			ExcludeID:   subject.ExcludeListingID,
		})
		if err != nil {
			return models.MatchResult{}, fmt.Errorf("querying %s tier: %w", tier.Name, err)
		}

		qualifying := m.filter(subject, candidates, cutoff, opts)
		scored := m.scoreAll(subject, qualifying)
		result = models.MatchResult{
			Comparables: rank(scored),
			Tier:        tier,
			SampleCount: len(scored),
			Widened:     evaluated > 0,
		}
		evaluated++

		m.logger.WithFields(logrus.Fields{
			"tier":        tier.Name,
			"geo_id":      *geoID,
			"candidates":  len(candidates),
			"qualifying":  len(scored),
			"min_samples": tier.MinSamples,
		}).Debug("Evaluated comparable tier")

		if len(scored) >= tier.MinSamples {
			return result, nil
		}
	}

	return result, nil
}

// filter applies the hard filters: direction and category equality, excluded
// listing id, the lookback horizon, and physical-unit deduplication.
func (m *Matcher) filter(subject models.UnitSpec, candidates []models.ComparableTransaction, cutoff time.Time, opts Options) []models.ComparableTransaction {
	var kept []models.ComparableTransaction
	for _, c := range candidates {
		if c.Direction != subject.Direction || c.Category != subject.Category {
			continue
		}
		if subject.ExcludeListingID != "" && c.ID == subject.ExcludeListingID {
			continue
		}
		if c.CloseDate.Before(cutoff) {
			continue
		}
		kept = append(kept, c)
	}

	if opts.IncludeRepeatCloses {
		return kept
	}

	// Keep only the most recent close per physical unit.
	latest := make(map[string]models.ComparableTransaction, len(kept))
	for _, c := range kept {
		key := c.UnitKey
		if key == "" {
			key = c.ID
		}
		if prev, ok := latest[key]; !ok || c.CloseDate.After(prev.CloseDate) {
			latest[key] = c
		}
	}

	deduped := make([]models.ComparableTransaction, 0, len(latest))
	for _, c := range latest {
		deduped = append(deduped, c)
	}
	return deduped
}

func (m *Matcher) scoreAll(subject models.UnitSpec, candidates []models.ComparableTransaction) []models.ScoredComparable {
	now := m.now()
	scored := make([]models.ScoredComparable, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, models.ScoredComparable{
			ComparableTransaction: c,
			Score:                 m.score(subject, c, now),
		})
	}
	return scored
}

// rank orders by most similar first, breaking ties by most recent close. The
// selection cap is applied downstream, after price normalization has flagged
// low-quality comparables, so a clamped comparable cannot hold a cap slot a
// clean alternative should have taken.
func rank(scored []models.ScoredComparable) []models.ScoredComparable {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score < scored[j].Score
		}
		return scored[i].CloseDate.After(scored[j].CloseDate)
	})
	return scored
}
