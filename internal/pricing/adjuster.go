package pricing

import (
	"sort"

	"github.com/sirupsen/logrus"

	"homeval/server/internal/models"
)

// Adjuster normalizes comparable close prices to the subject's parking and
// locker counts using tenant-configured per-unit dollar values, so that raw
// prices become directly comparable before aggregation.
type Adjuster struct {
	logger *logrus.Logger
}

func NewAdjuster(logger *logrus.Logger) *Adjuster {
	return &Adjuster{logger: logger}
}

// Adjust expresses the comparable's close price as if it had the subject's
// exact parking and locker counts. The adjusted price never goes negative:
// when an adjustment would, it clamps to zero and the comparable is flagged
// low quality.
func (a *Adjuster) Adjust(c models.ScoredComparable, subject models.UnitSpec, settings models.TenantSettings) models.AdjustedComparable {
	direction := subject.Direction

	adjusted := c.ClosePrice
	adjusted -= int64(c.Parking-subject.Parking) * settings.ParkingValue(direction)
	adjusted -= int64(lockerCount(c.HasLocker)-lockerCount(subject.HasLocker)) * settings.LockerValue(direction)

	lowQuality := false
	if adjusted < 0 {
		a.logger.WithFields(logrus.Fields{
			"comparable_id": c.ID,
			"close_price":   c.ClosePrice,
		}).Warn("Adjustment clamped comparable price at zero")
		adjusted = 0
		lowQuality = true
	}

	return models.AdjustedComparable{
		ScoredComparable: c,
		AdjustedPrice:    adjusted,
		LowQuality:       lowQuality,
	}
}

// AdjustAll adjusts every ranked comparable, demotes low-quality rows behind
// clean ones, and then trims to the selection cap. Demoting before trimming
// means a clamped comparable only keeps a cap slot when no clean alternative
// exists. Relative similarity order is preserved within each group. A limit of
// zero keeps the whole sample.
func (a *Adjuster) AdjustAll(comparables []models.ScoredComparable, subject models.UnitSpec, settings models.TenantSettings, limit int) []models.AdjustedComparable {
	adjusted := make([]models.AdjustedComparable, 0, len(comparables))
	for _, c := range comparables {
		adjusted = append(adjusted, a.Adjust(c, subject, settings))
	}

	sort.SliceStable(adjusted, func(i, j int) bool {
		return !adjusted[i].LowQuality && adjusted[j].LowQuality
	})
	if limit > 0 && len(adjusted) > limit {
		adjusted = adjusted[:limit]
	}
	return adjusted
}

func lockerCount(hasLocker bool) int {
	if hasLocker {
		return 1
	}
	return 0
}
