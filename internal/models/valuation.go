package models

import "time"

// Direction is the side of the market a transaction or subject belongs to.
type Direction string

const (
	DirectionSale  Direction = "sale"
	DirectionLease Direction = "lease"
)

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionSale || d == DirectionLease
}

// Category is the coarse property family used for hard filtering.
type Category string

const (
	// CategoryCondo covers condo apartments and similar stacked units.
	CategoryCondo Category = "condo"
	// CategoryHome covers detached, semi-detached and townhouse properties.
	CategoryHome Category = "home"
)

// GeoLevel identifies one of the nested geography levels, narrowest first.
type GeoLevel int

const (
	// GeoCommunity is the building for condos and the community for homes.
	GeoCommunity GeoLevel = iota
	GeoMunicipality
	GeoRegion
)

func (l GeoLevel) String() string {
	switch l {
	case GeoCommunity:
		return "community"
	case GeoMunicipality:
		return "municipality"
	case GeoRegion:
		return "region"
	default:
		return "unknown"
	}
}

// AreaRange is a coarse living-area bucket used when the exact area is unknown.
type AreaRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// UnitSpec is the canonical, validated description of the subject unit.
// Exactly one of AreaSqft and AreaRange is set.
type UnitSpec struct {
	Direction        Direction  `json:"direction"`
	Category         Category   `json:"category"`
	SubCategory      string     `json:"sub_category,omitempty"`
	Bedrooms         *int       `json:"bedrooms"`
	Bathrooms        *int       `json:"bathrooms"`
	AreaSqft         *float64   `json:"area_sqft,omitempty"`
	AreaRange        *AreaRange `json:"area_range,omitempty"`
	Parking          int        `json:"parking"`
	HasLocker        bool       `json:"has_locker"`
	LotFrontageFt    *float64   `json:"lot_frontage_ft,omitempty"`
	AnnualTax        *float64   `json:"annual_tax,omitempty"`
	CommunityID      *string    `json:"community_id,omitempty"`
	MunicipalityID   *string    `json:"municipality_id,omitempty"`
	RegionID         *string    `json:"region_id,omitempty"`
	ExcludeListingID string     `json:"exclude_listing_id,omitempty"`
}

// GeoID returns the subject's identifier for the given level, or nil when the
// subject does not carry that level.
func (s UnitSpec) GeoID(level GeoLevel) *string {
	switch level {
	case GeoCommunity:
		return s.CommunityID
	case GeoMunicipality:
		return s.MunicipalityID
	case GeoRegion:
		return s.RegionID
	default:
		return nil
	}
}

// ComparableTransaction is a single historical closed transaction. Records are
// immutable once closed; the engine only ever reads them.
type ComparableTransaction struct {
	ID             string     `json:"id"`
	UnitKey        string     `json:"unit_key"`
	Direction      Direction  `json:"direction"`
	Category       Category   `json:"category"`
	SubCategory    string     `json:"sub_category,omitempty"`
	ClosePrice     int64      `json:"close_price"`
	CloseDate      time.Time  `json:"close_date"`
	Bedrooms       *int       `json:"bedrooms"`
	Bathrooms      *int       `json:"bathrooms"`
	AreaSqft       *float64   `json:"area_sqft,omitempty"`
	AreaRange      *AreaRange `json:"area_range,omitempty"`
	Parking        int        `json:"parking"`
	HasLocker      bool       `json:"has_locker"`
	LotFrontageFt  *float64   `json:"lot_frontage_ft,omitempty"`
	AnnualTax      *float64   `json:"annual_tax,omitempty"`
	CommunityID    *string    `json:"community_id,omitempty"`
	MunicipalityID *string    `json:"municipality_id,omitempty"`
	RegionID       *string    `json:"region_id,omitempty"`
}

// Tier is one level of the widening comparable search, declared as data so the
// sequence stays testable in isolation.
type Tier struct {
	Level      GeoLevel `json:"level"`
	Name       string   `json:"name"`
	MinSamples int      `json:"min_samples"`
	SpreadPct  float64  `json:"spread_pct"`
}

// ScoredComparable pairs a comparable with its similarity score.
// Lower scores mean more similar.
type ScoredComparable struct {
	ComparableTransaction
	Score float64 `json:"score"`
}

// AdjustedComparable is a scored comparable whose close price has been
// normalized to the subject's parking and locker counts.
type AdjustedComparable struct {
	ScoredComparable
	AdjustedPrice int64 `json:"adjusted_price"`
	// LowQuality marks comparables whose adjustment clamped at zero.
	LowQuality bool `json:"low_quality"`
}

// MatchResult is the outcome of one tiered comparable search. Produced fresh
// per request and never persisted.
type MatchResult struct {
	Comparables []ScoredComparable `json:"comparables"`
	Tier        Tier               `json:"tier"`
	// SampleCount is the number of qualifying candidates at the chosen tier,
	// before the selection cap.
	SampleCount int `json:"sample_count"`
	// Widened is true when the chosen tier is broader than the narrowest tier
	// the subject's geography allowed.
	Widened bool `json:"widened"`
}

// Confidence classifies how trustworthy an estimate is.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// PriceRange bounds an estimate. Whole currency units only.
type PriceRange struct {
	Low  int64 `json:"low"`
	High int64 `json:"high"`
}

// EstimateResult is the engine's answer for one subject. When ShowPrice is
// false the numeric fields are retained for diagnostics but are not meant for
// display; Tier and SampleCount explain why no number is shown.
type EstimateResult struct {
	EstimatedPrice int64      `json:"estimated_price"`
	PriceRange     PriceRange `json:"price_range"`
	Confidence     Confidence `json:"confidence"`
	ShowPrice      bool       `json:"show_price"`
	Tier           Tier       `json:"tier"`
	SampleCount    int        `json:"sample_count"`
	Narrative      string     `json:"narrative,omitempty"`
}
