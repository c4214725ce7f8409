package pricing

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeval/server/internal/models"
)

func scored(id string, price int64, parking int, hasLocker bool, score float64) models.ScoredComparable {
	return models.ScoredComparable{
		ComparableTransaction: models.ComparableTransaction{
			ID:         id,
			Direction:  models.DirectionSale,
			ClosePrice: price,
			Parking:    parking,
			HasLocker:  hasLocker,
		},
		Score: score,
	}
}

func saleSettings() models.TenantSettings {
	return models.TenantSettings{
		TenantID:          "t1",
		SaleParkingValue:  50000,
		SaleLockerValue:   5000,
		LeaseParkingValue: 150,
		LeaseLockerValue:  25,
	}
}

func TestAdjust_SubtractsExtraParking(t *testing.T) {
	a := NewAdjuster(logrus.New())
	subject := models.UnitSpec{Direction: models.DirectionSale, Parking: 0}

	adjusted := a.Adjust(scored("c1", 700000, 1, false, 0.5), subject, saleSettings())

	assert.Equal(t, int64(650000), adjusted.AdjustedPrice)
	assert.False(t, adjusted.LowQuality)
}

func TestAdjust_CreditsMissingParkingAndLocker(t *testing.T) {
	a := NewAdjuster(logrus.New())
	subject := models.UnitSpec{Direction: models.DirectionSale, Parking: 2, HasLocker: true}

	adjusted := a.Adjust(scored("c1", 700000, 1, false, 0.5), subject, saleSettings())

	// Comparable lacks one parking space and the locker the subject has.
	assert.Equal(t, int64(755000), adjusted.AdjustedPrice)
}

func TestAdjust_UsesLeaseValuesForLeaseSubjects(t *testing.T) {
	a := NewAdjuster(logrus.New())
	subject := models.UnitSpec{Direction: models.DirectionLease, Parking: 0}

	comp := scored("c1", 2600, 1, false, 0.5)
	comp.Direction = models.DirectionLease
	adjusted := a.Adjust(comp, subject, saleSettings())

	assert.Equal(t, int64(2450), adjusted.AdjustedPrice)
}

func TestAdjust_NeverNegative(t *testing.T) {
	a := NewAdjuster(logrus.New())
	subject := models.UnitSpec{Direction: models.DirectionSale, Parking: 0}

	adjusted := a.Adjust(scored("c1", 40000, 2, true, 0.5), subject, saleSettings())

	assert.Equal(t, int64(0), adjusted.AdjustedPrice)
	assert.True(t, adjusted.LowQuality)
}

func TestAdjustAll_LowQualityLosesTopRank(t *testing.T) {
	a := NewAdjuster(logrus.New())
	subject := models.UnitSpec{Direction: models.DirectionSale, Parking: 0}

	comparables := []models.ScoredComparable{
		scored("clamped", 40000, 2, false, 0.1), // most similar but clamps to zero
		scored("clean-a", 600000, 0, false, 0.2),
		scored("clean-b", 610000, 0, false, 0.3),
	}

	adjusted := a.AdjustAll(comparables, subject, saleSettings(), 0)

	assert.Equal(t, "clean-a", adjusted[0].ID)
	assert.Equal(t, "clean-b", adjusted[1].ID)
	assert.Equal(t, "clamped", adjusted[2].ID)
	// Still included in the sample
	assert.Len(t, adjusted, 3)
}

func TestAdjustAll_ClampedComparableLosesCapSlot(t *testing.T) {
	a := NewAdjuster(logrus.New())
	subject := models.UnitSpec{Direction: models.DirectionSale, Parking: 0}

	comparables := []models.ScoredComparable{
		scored("clamped", 40000, 2, false, 0.1), // most similar but clamps to zero
		scored("clean", 600000, 0, false, 0.2),
	}

	adjusted := a.AdjustAll(comparables, subject, saleSettings(), 1)

	require.Len(t, adjusted, 1)
	assert.Equal(t, "clean", adjusted[0].ID)
}

func TestAdjustAll_ClampedComparableKeepsSlotWithoutAlternatives(t *testing.T) {
	a := NewAdjuster(logrus.New())
	subject := models.UnitSpec{Direction: models.DirectionSale, Parking: 0}

	adjusted := a.AdjustAll([]models.ScoredComparable{scored("clamped", 40000, 2, false, 0.1)}, subject, saleSettings(), 1)

	require.Len(t, adjusted, 1)
	assert.True(t, adjusted[0].LowQuality)
}
