package engine

import (
	"context"

	"github.com/sirupsen/logrus"

	"homeval/server/config"
	"homeval/server/internal/insight"
	"homeval/server/internal/matcher"
	"homeval/server/internal/models"
	"homeval/server/internal/pricing"
	"homeval/server/internal/spec"
	"homeval/server/internal/stats"
	"homeval/server/internal/tenant"
)

// Narrator generates a short narrative for an estimate. Implemented by the
// insight client; failures are absorbed inside the engine.
type Narrator interface {
	Generate(ctx context.Context, req insight.Request) (string, error)
}

// Engine wires the per-request estimation pipeline: normalize the subject,
// match comparables, normalize prices, calculate, then optionally augment.
// The pipeline is read-only against the historical store and safe to run
// concurrently for many tenants.
type Engine struct {
	normalizer *spec.Normalizer
	matcher    *matcher.Matcher
	adjuster   *pricing.Adjuster
	calculator *stats.Calculator
	narrator   Narrator
	tenants    tenant.Store
	cfg        *config.Config
	logger     *logrus.Logger
}

func New(store matcher.Store, tenants tenant.Store, narrator Narrator, cfg *config.Config, logger *logrus.Logger) *Engine {
	return &Engine{
		normalizer: spec.NewNormalizer(logger),
		matcher:    matcher.New(store, cfg, logger),
		adjuster:   pricing.NewAdjuster(logger),
		calculator: stats.NewCalculator(cfg, logger),
		narrator:   narrator,
		tenants:    tenants,
		cfg:        cfg,
		logger:     logger,
	}
}

// Estimate produces the full estimate for a raw subject description.
// Validation and data-access faults propagate; an insufficient sample is a
// successful result with ShowPrice false; narrative faults are absorbed.
func (e *Engine) Estimate(ctx context.Context, raw spec.RawSubject, direction models.Direction, tenantID string, includeNarrative bool) (models.EstimateResult, error) {
	subject, err := e.normalizer.Normalize(raw, direction)
	if err != nil {
		return models.EstimateResult{}, err
	}

	settings := e.settingsFor(ctx, tenantID)

	match, err := e.matcher.Match(ctx, subject, matcher.Options{})
	if err != nil {
		return models.EstimateResult{}, err
	}

	adjusted := e.adjuster.AdjustAll(match.Comparables, subject, settings, e.cfg.Matching.MaxComparables)
	result := e.calculator.Calculate(match, adjusted)

	if includeNarrative && result.ShowPrice {
		result.Narrative = e.narrative(ctx, subject, result, adjusted, settings)
	}

	return result, nil
}

// MatchComparables exposes the tiered search on its own for diagnostics and
// testing of the matching behavior. includeRepeatCloses keeps every close of
// the same physical unit instead of deduplicating to the most recent.
func (e *Engine) MatchComparables(ctx context.Context, raw spec.RawSubject, direction models.Direction, tenantID string, includeRepeatCloses bool) (models.MatchResult, error) {
	subject, err := e.normalizer.Normalize(raw, direction)
	if err != nil {
		return models.MatchResult{}, err
	}

	match, err := e.matcher.Match(ctx, subject, matcher.Options{IncludeRepeatCloses: includeRepeatCloses})
	if err != nil {
		return models.MatchResult{}, err
	}
	if limit := e.cfg.Matching.MaxComparables; limit > 0 && len(match.Comparables) > limit {
		match.Comparables = match.Comparables[:limit]
	}
	return match, nil
}

// settingsFor loads tenant settings, falling back to the documented defaults
// when the settings store is unavailable so a settings fault never blocks an
// estimate.
func (e *Engine) settingsFor(ctx context.Context, tenantID string) models.TenantSettings {
	settings, err := e.tenants.GetSettings(ctx, tenantID)
	if err != nil {
		e.logger.WithError(err).WithField("tenant_id", tenantID).Warn("Tenant settings unavailable, using defaults")
		return models.DefaultTenantSettings(tenantID)
	}
	return settings
}

// narrative attempts the best-effort augmentation as a bounded, cancellable
// step attached after the numeric result. Any fault or delay leaves the
// narrative empty and is unobservable in the numeric fields.
func (e *Engine) narrative(ctx context.Context, subject models.UnitSpec, result models.EstimateResult, comparables []models.AdjustedComparable, settings models.TenantSettings) string {
	if e.narrator == nil || !settings.InsightEnabled || settings.InsightAPIKey == "" {
		return ""
	}

	nctx, cancel := context.WithTimeout(ctx, e.cfg.Insight.Timeout)
	defer cancel()

	done := make(chan string, 1)
	go func() {
		text, err := e.narrator.Generate(nctx, insight.Request{
			Subject:     subject,
			Estimate:    result,
			Comparables: comparables,
			APIKey:      settings.InsightAPIKey,
		})
		if err != nil {
			e.logger.WithError(err).WithField("tenant_id", settings.TenantID).Warn("Narrative generation failed")
			return
		}
		done <- text
	}()

	select {
	case text := <-done:
		return text
	case <-nctx.Done():
		e.logger.WithField("tenant_id", settings.TenantID).Warn("Narrative generation timed out")
		return ""
	}
}
