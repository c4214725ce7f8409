package spec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"homeval/server/internal/models"
)

// RawSubject is the untrusted subject description as received from a caller.
type RawSubject struct {
	Category         string   `json:"category" validate:"required"`
	SubCategory      string   `json:"sub_category"`
	Bedrooms         *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms        *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	AreaSqft         *float64 `json:"area_sqft" validate:"omitempty,gt=0"`
	AreaRangeLow     *float64 `json:"area_range_low" validate:"omitempty,gte=0"`
	AreaRangeHigh    *float64 `json:"area_range_high" validate:"omitempty,gt=0"`
	Parking          int      `json:"parking" validate:"gte=0"`
	HasLocker        bool     `json:"has_locker"`
	LotFrontageFt    *float64 `json:"lot_frontage_ft" validate:"omitempty,gt=0"`
	AnnualTax        *float64 `json:"annual_tax" validate:"omitempty,gte=0"`
	CommunityID      string   `json:"community_id"`
	MunicipalityID   string   `json:"municipality_id"`
	RegionID         string   `json:"region_id"`
	ExcludeListingID string   `json:"exclude_listing_id"`
}

// InvalidSpecError reports a malformed or incomplete subject description.
// It is the caller's fault and is never retried.
type InvalidSpecError struct {
	Field  string
	Reason string
}

func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("invalid subject spec: %s: %s", e.Field, e.Reason)
}

// condo-family and home-family source tokens, lowercased
var categoryFamilies = map[string]models.Category{
	"condo":         models.CategoryCondo,
	"condo apt":     models.CategoryCondo,
	"condo-apt":     models.CategoryCondo,
	"apartment":     models.CategoryCondo,
	"loft":          models.CategoryCondo,
	"home":          models.CategoryHome,
	"house":         models.CategoryHome,
	"detached":      models.CategoryHome,
	"semi-detached": models.CategoryHome,
	"townhouse":     models.CategoryHome,
	"link":          models.CategoryHome,
}

// Normalizer canonicalizes raw subject descriptions into validated UnitSpecs.
// It performs pure validation and transformation with no side effects.
type Normalizer struct {
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewNormalizer(logger *logrus.Logger) *Normalizer {
	return &Normalizer{
		validate: validator.New(),
		logger:   logger,
	}
}

// Normalize validates raw and produces the canonical UnitSpec for it.
func (n *Normalizer) Normalize(raw RawSubject, direction models.Direction) (models.UnitSpec, error) {
	if !direction.Valid() {
		return models.UnitSpec{}, &InvalidSpecError{Field: "direction", Reason: fmt.Sprintf("unknown direction %q", direction)}
	}

	if err := n.validate.Struct(raw); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			return models.UnitSpec{}, &InvalidSpecError{
				Field:  strings.ToLower(errs[0].Field()),
				Reason: fmt.Sprintf("failed %q validation", errs[0].Tag()),
			}
		}
		return models.UnitSpec{}, &InvalidSpecError{Field: "subject", Reason: err.Error()}
	}

	category, ok := categoryFamilies[NormalizeToken(raw.Category)]
	if !ok {
		return models.UnitSpec{}, &InvalidSpecError{Field: "category", Reason: fmt.Sprintf("unknown property category %q", raw.Category)}
	}

	spec := models.UnitSpec{
		Direction:        direction,
		Category:         category,
		SubCategory:      NormalizeToken(raw.SubCategory),
		Bedrooms:         raw.Bedrooms,
		Bathrooms:        raw.Bathrooms,
		Parking:          raw.Parking,
		HasLocker:        raw.HasLocker,
		LotFrontageFt:    raw.LotFrontageFt,
		AnnualTax:        raw.AnnualTax,
		CommunityID:      optionalID(raw.CommunityID),
		MunicipalityID:   optionalID(raw.MunicipalityID),
		RegionID:         optionalID(raw.RegionID),
		ExcludeListingID: strings.TrimSpace(raw.ExcludeListingID),
	}

	if spec.CommunityID == nil && spec.MunicipalityID == nil && spec.RegionID == nil {
		return models.UnitSpec{}, &InvalidSpecError{Field: "geography", Reason: "at least one geography identifier is required"}
	}

	// Exactly one of the area fields is authoritative. An exact area always
	// wins over a bucketed range.
	switch {
	case raw.AreaSqft != nil:
		spec.AreaSqft = raw.AreaSqft
	case raw.AreaRangeLow != nil && raw.AreaRangeHigh != nil:
		if *raw.AreaRangeHigh < *raw.AreaRangeLow {
			return models.UnitSpec{}, &InvalidSpecError{Field: "area_range", Reason: "range high is below range low"}
		}
		spec.AreaRange = &models.AreaRange{Low: *raw.AreaRangeLow, High: *raw.AreaRangeHigh}
	default:
		return models.UnitSpec{}, &InvalidSpecError{Field: "area", Reason: "either an exact area or a complete area range is required"}
	}

	return spec, nil
}

// NormalizeToken lowercases and trims a free-form identifier token.
func NormalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optionalID(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
