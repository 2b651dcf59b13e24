package database

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("🔌 Connecting to Postgres...")

	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Printf("❌ Database connection failed: %v", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		log.Printf("❌ Database ping failed: %v", err)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established")
	return db, nil
}

func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Login accounts
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('staff', 'manager')),
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Employees who can be deployed
		`CREATE TABLE IF NOT EXISTS staff (
			id TEXT PRIMARY KEY,
			user_id TEXT REFERENCES users(id),
			name TEXT NOT NULL,
			email TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Job positions
		`CREATE TABLE IF NOT EXISTS positions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL DEFAULT 'ordinary' CHECK(kind IN ('ordinary', 'pack')),
			location_id TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Capacity overrides (implicit single-occupant without a row)
		`CREATE TABLE IF NOT EXISTS position_capacities (
			id TEXT PRIMARY KEY,
			position_id TEXT NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
			shift_type TEXT NOT NULL DEFAULT 'Both',
			max_concurrent INT NOT NULL DEFAULT 1,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			UNIQUE(position_id, shift_type)
		)`,

		// Work assignments
		`CREATE TABLE IF NOT EXISTS deployments (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL REFERENCES staff(id),
			date TEXT NOT NULL,
			shift_type TEXT NOT NULL CHECK(shift_type IN ('Day Shift', 'Night Shift')),
			position TEXT,
			secondary TEXT,
			has_secondary BOOLEAN NOT NULL DEFAULT FALSE,
			is_closing_duty BOOLEAN NOT NULL DEFAULT FALSE,
			closing_validated BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			UNIQUE(staff_id, date, shift_type)
		)`,

		// Staffing templates
		`CREATE TABLE IF NOT EXISTS shift_configurations (
			id TEXT PRIMARY KEY,
			config_name TEXT NOT NULL,
			shift_type TEXT NOT NULL DEFAULT 'Both',
			dt_type TEXT NOT NULL DEFAULT 'DT1' CHECK(dt_type IN ('DT1', 'DT2', 'None')),
			num_cooks INT NOT NULL DEFAULT 1,
			num_pack_stations INT NOT NULL DEFAULT 2,
			require_shift_runner BOOLEAN NOT NULL DEFAULT TRUE,
			require_manager BOOLEAN NOT NULL DEFAULT TRUE,
			effective_date TEXT,
			settings JSONB NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS core_position_requirements (
			id TEXT PRIMARY KEY,
			shift_type TEXT NOT NULL DEFAULT 'Both',
			position TEXT NOT NULL,
			min_count INT NOT NULL DEFAULT 1,
			max_count INT NOT NULL DEFAULT 1,
			priority INT NOT NULL DEFAULT 10,
			is_mandatory BOOLEAN NOT NULL DEFAULT TRUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Conditional staffing rules (condition/action as JSON)
		`CREATE TABLE IF NOT EXISTS staffing_rules (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			priority INT NOT NULL DEFAULT 100,
			condition JSONB NOT NULL DEFAULT '{}',
			action JSONB NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS staff_default_positions (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
			position TEXT NOT NULL,
			priority INT NOT NULL DEFAULT 1,
			shift_type TEXT NOT NULL DEFAULT 'Both',
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS staff_training_stations (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
			station TEXT NOT NULL,
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			UNIQUE(staff_id, station)
		)`,

		`CREATE TABLE IF NOT EXISTS station_position_mappings (
			id TEXT PRIMARY KEY,
			station TEXT NOT NULL,
			position TEXT NOT NULL,
			priority INT NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS staff_rankings (
			id TEXT PRIMARY KEY,
			rater_id TEXT NOT NULL,
			staff_id TEXT NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
			station TEXT NOT NULL,
			rating DOUBLE PRECISION NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS staff_sign_offs (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
			station TEXT NOT NULL,
			manager_id TEXT NOT NULL,
			signed_off_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			UNIQUE(staff_id, station)
		)`,

		`CREATE TABLE IF NOT EXISTS closing_training_records (
			id TEXT PRIMARY KEY,
			staff_id TEXT NOT NULL REFERENCES staff(id) ON DELETE CASCADE,
			position_id TEXT NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
			is_trained BOOLEAN NOT NULL DEFAULT FALSE,
			trained_date TEXT,
			expiry_date TEXT,
			manager_signoff_date TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			UNIQUE(staff_id, position_id)
		)`,

		`CREATE TABLE IF NOT EXISTS closing_station_requirements (
			id TEXT PRIMARY KEY,
			position_id TEXT NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
			shift_type TEXT NOT NULL DEFAULT 'Night Shift',
			requires_closing_training BOOLEAN NOT NULL DEFAULT TRUE,
			minimum_trained_staff INT NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			UNIQUE(position_id, shift_type)
		)`,

		`CREATE TABLE IF NOT EXISTS position_secondary_mappings (
			id TEXT PRIMARY KEY,
			primary_position_id TEXT NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
			secondary_position TEXT NOT NULL,
			shift_type TEXT NOT NULL DEFAULT 'Both',
			priority INT NOT NULL DEFAULT 1,
			auto_deploy BOOLEAN NOT NULL DEFAULT TRUE,
			is_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		// Per-date shift metadata (forecast text etc.)
		`CREATE TABLE IF NOT EXISTS shift_info (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL UNIQUE,
			day_forecast TEXT,
			night_forecast TEXT,
			notes TEXT,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id SERIAL PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id),
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL,
			created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_deployments_date_shift ON deployments(date, shift_type)`,
		`CREATE INDEX IF NOT EXISTS idx_deployments_position ON deployments(position, date, shift_type)`,
		`CREATE INDEX IF NOT EXISTS idx_staffing_rules_priority ON staffing_rules(priority)`,
		`CREATE INDEX IF NOT EXISTS idx_station_mappings_station ON station_position_mappings(station)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Printf("✅ Ran %d migrations", len(migrations))
	return nil
}
