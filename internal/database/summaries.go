package database

import (
	"context"

	"gorm.io/gorm"

	"homeval/server/internal/models"
)

// GetAggregateSummaries returns the latest rollup snapshot rows for one
// geography identifier across all levels and directions. Consumers treat the
// snapshot as eventually consistent.
func (d *Database) GetAggregateSummaries(ctx context.Context, geoID string) ([]models.AggregateSummary, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT geo_level, geo_id, direction, avg_price_psf, median_price_psf,
		       sample_count, earliest_close, latest_close, computed_at
		FROM aggregate_summaries
		WHERE geo_id = ?
		ORDER BY geo_level, direction
	`, geoID)
	if err != nil {
		return nil, &DataAccessError{Op: "get aggregate summaries", Err: err}
	}
	defer rows.Close()

	var summaries []models.AggregateSummary
	for rows.Next() {
		var s models.AggregateSummary
		var direction string
		if err := rows.Scan(
			&s.GeoLevel,
			&s.GeoID,
			&direction,
			&s.AvgPricePSF,
			&s.MedianPricePSF,
			&s.SampleCount,
			&s.EarliestClose,
			&s.LatestClose,
			&s.ComputedAt,
		); err != nil {
			return nil, &DataAccessError{Op: "scan aggregate summary", Err: err}
		}
		s.Direction = models.Direction(direction)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{Op: "get aggregate summaries", Err: err}
	}
	return summaries, nil
}

// ReplaceSummaries swaps the whole snapshot inside one transaction so readers
// never observe a partially recomputed rollup.
func ReplaceSummaries(tx *gorm.DB, summaries []models.AggregateSummary) error {
	if err := tx.Where("1 = 1").Delete(&models.AggregateSummary{}).Error; err != nil {
		return err
	}
	if len(summaries) == 0 {
		return nil
	}
	return tx.Create(&summaries).Error
}
