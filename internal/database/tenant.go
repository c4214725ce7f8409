package database

import (
	"context"
	"database/sql"
	"errors"

	"homeval/server/internal/models"
)

// GetSettings returns the stored settings for a tenant, falling back to the
// documented defaults when the tenant has no row.
func (d *Database) GetSettings(ctx context.Context, tenantID string) (models.TenantSettings, error) {
	var s models.TenantSettings
	var insightEnabled int

	err := d.db.QueryRowContext(ctx, `
		SELECT tenant_id, sale_parking_value, sale_locker_value,
		       lease_parking_value, lease_locker_value,
		       insight_enabled, insight_api_key
		FROM tenant_settings
		WHERE tenant_id = ?
	`, tenantID).Scan(
		&s.TenantID,
		&s.SaleParkingValue,
		&s.SaleLockerValue,
		&s.LeaseParkingValue,
		&s.LeaseLockerValue,
		&insightEnabled,
		&s.InsightAPIKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultTenantSettings(tenantID), nil
	}
	if err != nil {
		return models.TenantSettings{}, &DataAccessError{Op: "get tenant settings", Err: err}
	}

	s.InsightEnabled = insightEnabled != 0
	return s, nil
}
