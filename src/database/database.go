package database

import (
	"database/sql"
	"fmt"
	stdlog "log"

	"github.com/username/medrates/backend/src/logger"
	"github.com/username/medrates/backend/src/models"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS service_rates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		load_batch_id TEXT NOT NULL,
		state_name TEXT NOT NULL,
		service_category TEXT NOT NULL,
		service_code TEXT,
		service_description TEXT,
		program TEXT,
		location_region TEXT,
		modifier_1 TEXT,
		modifier_1_details TEXT,
		modifier_2 TEXT,
		modifier_2_details TEXT,
		modifier_3 TEXT,
		modifier_3_details TEXT,
		modifier_4 TEXT,
		modifier_4_details TEXT,
		rate TEXT,
		duration_unit TEXT,
		rate_effective_date TEXT,
		provider_type TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_service_rates_state ON service_rates(state_name);
	CREATE INDEX IF NOT EXISTS idx_service_rates_category ON service_rates(service_category);
	`
	if _, err := DB.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to run migrations: %v", err)
	}
}

const rateColumns = `state_name, service_category, service_code, service_description,
	program, location_region,
	modifier_1, modifier_1_details, modifier_2, modifier_2_details,
	modifier_3, modifier_3_details, modifier_4, modifier_4_details,
	rate, duration_unit, rate_effective_date, provider_type`

// FetchAllRates reads the full rate collection, ordered by state name as the
// upstream endpoint did.
func FetchAllRates(db *sql.DB) ([]models.RateRecord, error) {
	rows, err := db.Query(`SELECT ` + rateColumns + ` FROM service_rates ORDER BY state_name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying service rates: %w", err)
	}
	defer rows.Close()

	var out []models.RateRecord
	for rows.Next() {
		var r models.RateRecord
		if err := rows.Scan(
			&r.StateName, &r.ServiceCategory, &r.ServiceCode, &r.ServiceDescription,
			&r.Program, &r.LocationRegion,
			&r.Modifier1, &r.Modifier1Details, &r.Modifier2, &r.Modifier2Details,
			&r.Modifier3, &r.Modifier3Details, &r.Modifier4, &r.Modifier4Details,
			&r.Rate, &r.DurationUnit, &r.RateEffectiveDate, &r.ProviderType,
		); err != nil {
			return nil, fmt.Errorf("scanning service rate row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceAllRates swaps the stored dataset for a fresh load, tagged with its
// load batch ID, inside one transaction.
func ReplaceAllRates(db *sql.DB, batchID string, records []models.RateRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning dataset load transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM service_rates`); err != nil {
		return fmt.Errorf("clearing previous dataset: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO service_rates (load_batch_id, ` + rateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing rate insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		if _, err := stmt.Exec(batchID,
			r.StateName, r.ServiceCategory, r.ServiceCode, r.ServiceDescription,
			r.Program, r.LocationRegion,
			r.Modifier1, r.Modifier1Details, r.Modifier2, r.Modifier2Details,
			r.Modifier3, r.Modifier3Details, r.Modifier4, r.Modifier4Details,
			r.Rate, r.DurationUnit, r.RateEffectiveDate, r.ProviderType,
		); err != nil {
			return fmt.Errorf("inserting rate row %d: %w", i, err)
		}
	}

	return tx.Commit()
}
