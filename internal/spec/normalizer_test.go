package spec

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeval/server/internal/models"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func validRaw() RawSubject {
	return RawSubject{
		Category:    "Condo Apt",
		Bedrooms:    intPtr(2),
		Bathrooms:   intPtr(2),
		AreaSqft:    floatPtr(850),
		CommunityID: "C1",
	}
}

func TestNormalize_Valid(t *testing.T) {
	n := NewNormalizer(logrus.New())

	spec, err := n.Normalize(validRaw(), models.DirectionSale)
	require.NoError(t, err)

	assert.Equal(t, models.DirectionSale, spec.Direction)
	assert.Equal(t, models.CategoryCondo, spec.Category)
	assert.Equal(t, 2, *spec.Bedrooms)
	assert.Equal(t, 850.0, *spec.AreaSqft)
	assert.Nil(t, spec.AreaRange)
	assert.Equal(t, "C1", *spec.CommunityID)
}

func TestNormalize_HomeCategoryFamily(t *testing.T) {
	n := NewNormalizer(logrus.New())

	for _, category := range []string{"Detached", "semi-detached", "Townhouse"} {
		raw := validRaw()
		raw.Category = category
		spec, err := n.Normalize(raw, models.DirectionSale)
		require.NoError(t, err, category)
		assert.Equal(t, models.CategoryHome, spec.Category)
	}
}

func TestNormalize_UnknownCategory(t *testing.T) {
	n := NewNormalizer(logrus.New())

	raw := validRaw()
	raw.Category = "castle"
	_, err := n.Normalize(raw, models.DirectionSale)

	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "category", invalid.Field)
}

func TestNormalize_InvalidDirection(t *testing.T) {
	n := NewNormalizer(logrus.New())

	_, err := n.Normalize(validRaw(), models.Direction("swap"))

	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "direction", invalid.Field)
}

func TestNormalize_BothAreaFieldsAbsent(t *testing.T) {
	n := NewNormalizer(logrus.New())

	raw := validRaw()
	raw.AreaSqft = nil
	_, err := n.Normalize(raw, models.DirectionSale)

	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "area", invalid.Field)
}

func TestNormalize_ExactAreaWinsOverRange(t *testing.T) {
	n := NewNormalizer(logrus.New())

	raw := validRaw()
	raw.AreaRangeLow = floatPtr(800)
	raw.AreaRangeHigh = floatPtr(899)
	spec, err := n.Normalize(raw, models.DirectionSale)
	require.NoError(t, err)

	assert.NotNil(t, spec.AreaSqft)
	assert.Nil(t, spec.AreaRange)
}

func TestNormalize_AreaRangeOnly(t *testing.T) {
	n := NewNormalizer(logrus.New())

	raw := validRaw()
	raw.AreaSqft = nil
	raw.AreaRangeLow = floatPtr(800)
	raw.AreaRangeHigh = floatPtr(899)
	spec, err := n.Normalize(raw, models.DirectionLease)
	require.NoError(t, err)

	assert.Nil(t, spec.AreaSqft)
	require.NotNil(t, spec.AreaRange)
	assert.Equal(t, 800.0, spec.AreaRange.Low)
	assert.Equal(t, 899.0, spec.AreaRange.High)
}

func TestNormalize_InvertedAreaRange(t *testing.T) {
	n := NewNormalizer(logrus.New())

	raw := validRaw()
	raw.AreaSqft = nil
	raw.AreaRangeLow = floatPtr(900)
	raw.AreaRangeHigh = floatPtr(800)
	_, err := n.Normalize(raw, models.DirectionSale)

	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "area_range", invalid.Field)
}

func TestNormalize_MissingGeography(t *testing.T) {
	n := NewNormalizer(logrus.New())

	raw := validRaw()
	raw.CommunityID = ""
	_, err := n.Normalize(raw, models.DirectionSale)

	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "geography", invalid.Field)
}

func TestNormalize_NegativeCounts(t *testing.T) {
	n := NewNormalizer(logrus.New())

	raw := validRaw()
	raw.Bedrooms = intPtr(-1)
	_, err := n.Normalize(raw, models.DirectionSale)

	var invalid *InvalidSpecError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "bedrooms", invalid.Field)
}

func TestNormalize_TrimsIdentifiers(t *testing.T) {
	n := NewNormalizer(logrus.New())

	raw := validRaw()
	raw.MunicipalityID = "  M1  "
	raw.ExcludeListingID = " L42 "
	spec, err := n.Normalize(raw, models.DirectionSale)
	require.NoError(t, err)

	assert.Equal(t, "M1", *spec.MunicipalityID)
	assert.Equal(t, "L42", spec.ExcludeListingID)
}
