package models

import "time"

// AggregateSummary is one row of the per-geography price-per-square-foot
// rollup. The whole table is replaced on every rollup run; readers always see
// the latest complete snapshot.
type AggregateSummary struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	GeoLevel       string    `gorm:"index:idx_summary_geo" json:"geo_level"`
	GeoID          string    `gorm:"index:idx_summary_geo" json:"geo_id"`
	Direction      Direction `gorm:"index:idx_summary_geo" json:"direction"`
	AvgPricePSF    float64   `json:"avg_price_psf"`
	MedianPricePSF float64   `json:"median_price_psf"`
	SampleCount    int       `json:"sample_count"`
	EarliestClose  time.Time `json:"earliest_close"`
	LatestClose    time.Time `json:"latest_close"`
	ComputedAt     time.Time `json:"computed_at"`
}

func (AggregateSummary) TableName() string {
	return "aggregate_summaries"
}
