package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"homeval/server/internal/matcher"
	"homeval/server/internal/models"
)

// DataAccessError wraps a fault from the historical store. It is surfaced to
// the caller and never silently treated as zero comparables.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("data access failed: %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

const transactionColumns = `
        id,
        COALESCE(unit_key, '') as unit_key,
        direction,
        category,
        COALESCE(sub_category, '') as sub_category,
        close_price,
        close_date,
        bedrooms,
        bathrooms,
        area_sqft,
        area_low,
        area_high,
        parking,
        has_locker,
        lot_frontage_ft,
        annual_tax,
        community_id,
        municipality_id,
        region_id`

// QueryClosed returns the closed transactions matching one tier's query. It
// implements the matcher's store capability.
func (d *Database) QueryClosed(ctx context.Context, q matcher.Query) ([]models.ComparableTransaction, error) {
	geoColumn, err := geoColumnFor(q.GeoLevel)
	if err != nil {
		return nil, &DataAccessError{Op: "query closed transactions", Err: err}
	}

	query := fmt.Sprintf(`
        SELECT %s
        FROM transactions
        WHERE status = 'closed'
        AND direction = ?
        AND category = ?
        AND %s = ?
        AND close_date >= ?
        AND (? = '' OR id != ?)
    `, transactionColumns, geoColumn)

	rows, err := d.db.QueryContext(ctx, query,
		string(q.Direction),
		string(q.Category),
		q.GeoID,
		q.ClosedAfter.Format("2006-01-02"),
		q.ExcludeID, q.ExcludeID,
	)
	if err != nil {
		return nil, &DataAccessError{Op: "query closed transactions", Err: err}
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, &DataAccessError{Op: "scan closed transactions", Err: err}
	}
	return transactions, nil
}

// ScanClosed returns every closed transaction, used by the aggregate rollup's
// full-population scan.
func (d *Database) ScanClosed(ctx context.Context) ([]models.ComparableTransaction, error) {
	query := fmt.Sprintf(`
        SELECT %s
        FROM transactions
        WHERE status = 'closed'
    `, transactionColumns)

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &DataAccessError{Op: "scan closed transactions", Err: err}
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, &DataAccessError{Op: "scan closed transactions", Err: err}
	}
	return transactions, nil
}

func scanTransactions(rows *sql.Rows) ([]models.ComparableTransaction, error) {
	var transactions []models.ComparableTransaction
	for rows.Next() {
		var t models.ComparableTransaction
		var direction, category string
		var closeDate string
		var bedrooms, bathrooms sql.NullInt64
		var areaSqft, areaLow, areaHigh, lotFrontage, annualTax sql.NullFloat64
		var hasLocker int
		var communityID, municipalityID, regionID sql.NullString

		err := rows.Scan(
			&t.ID,
			&t.UnitKey,
			&direction,
			&category,
			&t.SubCategory,
			&t.ClosePrice,
			&closeDate,
			&bedrooms,
			&bathrooms,
			&areaSqft,
			&areaLow,
			&areaHigh,
			&t.Parking,
			&hasLocker,
			&lotFrontage,
			&annualTax,
			&communityID,
			&municipalityID,
			&regionID,
		)
		if err != nil {
			return nil, err
		}

		t.Direction = models.Direction(direction)
		t.Category = models.Category(category)
		t.HasLocker = hasLocker != 0

		parsed, err := time.Parse("2006-01-02", closeDate)
		if err != nil {
			return nil, fmt.Errorf("parsing close_date for transaction %s: %w", t.ID, err)
		}
		t.CloseDate = parsed

		if bedrooms.Valid {
			v := int(bedrooms.Int64)
			t.Bedrooms = &v
		}
		if bathrooms.Valid {
			v := int(bathrooms.Int64)
			t.Bathrooms = &v
		}
		if areaSqft.Valid {
			v := areaSqft.Float64
			t.AreaSqft = &v
		} else if areaLow.Valid && areaHigh.Valid {
			t.AreaRange = &models.AreaRange{Low: areaLow.Float64, High: areaHigh.Float64}
		}
		if lotFrontage.Valid {
			v := lotFrontage.Float64
			t.LotFrontageFt = &v
		}
		if annualTax.Valid {
			v := annualTax.Float64
			t.AnnualTax = &v
		}
		if communityID.Valid {
			v := communityID.String
			t.CommunityID = &v
		}
		if municipalityID.Valid {
			v := municipalityID.String
			t.MunicipalityID = &v
		}
		if regionID.Valid {
			v := regionID.String
			t.RegionID = &v
		}

		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func geoColumnFor(level models.GeoLevel) (string, error) {
	switch level {
	case models.GeoCommunity:
		return "community_id", nil
	case models.GeoMunicipality:
		return "municipality_id", nil
	case models.GeoRegion:
		return "region_id", nil
	default:
		return "", fmt.Errorf("unknown geography level %d", level)
	}
}
