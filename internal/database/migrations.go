package database

import "fmt"

func (d *Database) RunMigrations() error {
	// Historical closed-transaction population. Populated by the ingestion
	// collaborator; the engine only reads it.
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			unit_key TEXT,
			direction TEXT NOT NULL,
			category TEXT NOT NULL,
			sub_category TEXT,
			status TEXT NOT NULL DEFAULT 'closed',
			close_price INTEGER NOT NULL,
			close_date TEXT NOT NULL,
			bedrooms INTEGER,
			bathrooms INTEGER,
			area_sqft REAL,
			area_low REAL,
			area_high REAL,
			parking INTEGER NOT NULL DEFAULT 0,
			has_locker INTEGER NOT NULL DEFAULT 0,
			lot_frontage_ft REAL,
			annual_tax REAL,
			community_id TEXT,
			municipality_id TEXT,
			region_id TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create transactions table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_search
		ON transactions(status, direction, category, close_date);
	`)
	if err != nil {
		return fmt.Errorf("failed to create transactions search index: %v", err)
	}

	for _, column := range []string{"community_id", "municipality_id", "region_id"} {
		_, err = d.db.Exec(fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS idx_transactions_%s
			ON transactions(%s);
		`, column, column))
		if err != nil {
			return fmt.Errorf("failed to create %s index: %v", column, err)
		}
	}

	// Per-tenant engine configuration, managed by tenant administration.
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS tenant_settings (
			tenant_id TEXT PRIMARY KEY,
			sale_parking_value INTEGER NOT NULL DEFAULT 45000,
			sale_locker_value INTEGER NOT NULL DEFAULT 6000,
			lease_parking_value INTEGER NOT NULL DEFAULT 150,
			lease_locker_value INTEGER NOT NULL DEFAULT 25,
			insight_enabled INTEGER NOT NULL DEFAULT 0,
			insight_api_key TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tenant_settings table: %v", err)
	}

	// Aggregate rollup snapshot, fully replaced on each run. The schema
	// matches the gorm model used by the rollup writer.
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS aggregate_summaries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			geo_level TEXT NOT NULL,
			geo_id TEXT NOT NULL,
			direction TEXT NOT NULL,
			avg_price_psf REAL NOT NULL,
			median_price_psf REAL NOT NULL,
			sample_count INTEGER NOT NULL,
			earliest_close DATETIME,
			latest_close DATETIME,
			computed_at DATETIME
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create aggregate_summaries table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_summary_geo
		ON aggregate_summaries(geo_level, geo_id, direction);
	`)
	if err != nil {
		return fmt.Errorf("failed to create summary index: %v", err)
	}

	return nil
}
