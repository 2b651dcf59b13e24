package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding users...")

	users := []struct {
		email    string
		password string
		name     string
		role     string
	}{
		{"manager@crewdeploy.app", "manager123", "Dana Whitfield", "manager"},
		{"staff@crewdeploy.app", "staff123", "Sam Okoye", "staff"},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), u.email, string(hash), u.name, u.role)
		if err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d users", len(users))
	return nil
}

// SeedStaffingData loads the baseline positions, capacities, station
// mappings and staffing configuration a fresh install needs before the
// auto-assigner can do anything useful
func SeedStaffingData(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM positions"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Staffing data already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding staffing data...")

	positions := []struct {
		name string
		kind string
	}{
		{"Manager", "ordinary"},
		{"Shift Runner", "ordinary"},
		{"Cook", "ordinary"},
		{"Cook2", "ordinary"},
		{"DT Presenter", "ordinary"},
		{"DT Order", "ordinary"},
		{"Front Counter", "ordinary"},
		{"Fries", "ordinary"},
		{"Drinks", "ordinary"},
		{"Dining Area", "ordinary"},
		{"Pack 1", "pack"},
		{"Pack 2", "pack"},
	}

	positionIDs := map[string]string{}
	for _, p := range positions {
		id := uuid.New().String()
		positionIDs[p.name] = id
		if _, err := db.Exec(`
			INSERT INTO positions (id, name, kind)
			VALUES ($1, $2, $3)
		`, id, p.name, p.kind); err != nil {
			return err
		}
	}

	// Pack stations take two concurrent staff, front counter takes three on
	// day shifts
	capacities := []struct {
		position  string
		shiftType string
		max       int
	}{
		{"Pack 1", "Both", 2},
		{"Pack 2", "Both", 2},
		{"Front Counter", "Day Shift", 3},
		{"Front Counter", "Night Shift", 2},
	}
	for _, c := range capacities {
		if _, err := db.Exec(`
			INSERT INTO position_capacities (id, position_id, shift_type, max_concurrent)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), positionIDs[c.position], c.shiftType, c.max); err != nil {
			return err
		}
	}

	mappings := []struct {
		station  string
		position string
		priority int
	}{
		{"Grill", "Cook", 1},
		{"Grill", "Cook2", 2},
		{"DT Window", "DT Presenter", 1},
		{"DT Order Point", "DT Order", 1},
		{"Front Counter", "Front Counter", 1},
		{"Fried Products", "Fries", 1},
		{"Beverage Cell", "Drinks", 1},
		{"Packing", "Pack 1", 1},
		{"Packing", "Pack 2", 2},
		{"Dining Area", "Dining Area", 1},
	}
	for _, m := range mappings {
		if _, err := db.Exec(`
			INSERT INTO station_position_mappings (id, station, position, priority)
			VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), m.station, m.position, m.priority); err != nil {
			return err
		}
	}

	secondaries := []struct {
		primary   string
		secondary string
		priority  int
	}{
		{"DT Presenter", "Drinks", 1},
		{"DT Presenter", "Fries", 2},
		{"Front Counter", "Pack 1", 1},
		{"Front Counter", "Dining Area", 2},
		{"Drinks", "Pack 2", 1},
	}
	for _, sm := range secondaries {
		if _, err := db.Exec(`
			INSERT INTO position_secondary_mappings (id, primary_position_id, secondary_position, shift_type, priority)
			VALUES ($1, $2, $3, 'Both', $4)
		`, uuid.New().String(), positionIDs[sm.primary], sm.secondary, sm.priority); err != nil {
			return err
		}
	}

	// Default staffing template, applies to both shifts
	if _, err := db.Exec(`
		INSERT INTO shift_configurations
			(id, config_name, shift_type, dt_type, num_cooks, num_pack_stations, require_shift_runner, require_manager)
		VALUES ($1, 'default', 'Both', 'DT1', 1, 2, TRUE, TRUE)
	`, uuid.New().String()); err != nil {
		return err
	}

	coreRequirements := []struct {
		position string
		priority int
	}{
		{"Front Counter", 4},
		{"DT Order", 6},
	}
	for _, r := range coreRequirements {
		if _, err := db.Exec(`
			INSERT INTO core_position_requirements (id, shift_type, position, min_count, max_count, priority)
			VALUES ($1, 'Both', $2, 1, 1, $3)
		`, uuid.New().String(), r.position, r.priority); err != nil {
			return err
		}
	}

	// Night closes need trained staff on the cook line and drive-through
	closingRequirements := []struct {
		position string
		minimum  int
	}{
		{"Cook", 1},
		{"DT Presenter", 1},
		{"Front Counter", 2},
	}
	for _, c := range closingRequirements {
		if _, err := db.Exec(`
			INSERT INTO closing_station_requirements (id, position_id, shift_type, requires_closing_training, minimum_trained_staff)
			VALUES ($1, $2, 'Night Shift', TRUE, $3)
		`, uuid.New().String(), positionIDs[c.position], c.minimum); err != nil {
			return err
		}
	}

	log.Println("✅ Staffing data seeded")
	return nil
}
