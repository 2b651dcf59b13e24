package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"crewdeploy-backend/internal/models"
)

// Store is the Postgres-backed data access layer consumed by the assignment
// engine (it satisfies services.Store)
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// GetActiveShiftConfiguration resolves the active "default" staffing
// template: shift type exact or "Both", effective date at or before the
// requested date, newest row wins
func (s *Store) GetActiveShiftConfiguration(shiftType, date string) (*models.ShiftConfiguration, error) {
	var config models.ShiftConfiguration
	query := `SELECT * FROM shift_configurations
	          WHERE config_name = 'default'
	          AND is_active = TRUE
	          AND shift_type IN ($1, 'Both')
	          AND (effective_date IS NULL OR effective_date <= $2)
	          ORDER BY created_at DESC
	          LIMIT 1`

	err := s.db.Get(&config, query, shiftType, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift configuration: %w", err)
	}
	return &config, nil
}

func (s *Store) GetActiveStaffingRules() ([]models.StaffingRule, error) {
	var rules []models.StaffingRule
	query := `SELECT * FROM staffing_rules
	          WHERE is_active = TRUE
	          ORDER BY priority ASC, created_at ASC`

	if err := s.db.Select(&rules, query); err != nil {
		return nil, fmt.Errorf("failed to get staffing rules: %w", err)
	}
	return rules, nil
}

func (s *Store) GetCorePositionRequirements(shiftType string) ([]models.CorePositionRequirement, error) {
	var requirements []models.CorePositionRequirement
	query := `SELECT * FROM core_position_requirements
	          WHERE is_active = TRUE
	          AND shift_type IN ($1, 'Both')
	          ORDER BY priority ASC`

	if err := s.db.Select(&requirements, query, shiftType); err != nil {
		return nil, fmt.Errorf("failed to get core position requirements: %w", err)
	}
	return requirements, nil
}

func (s *Store) GetShiftInfo(date string) (*models.ShiftInfo, error) {
	var info models.ShiftInfo
	err := s.db.Get(&info, `SELECT * FROM shift_info WHERE date = $1`, date)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift info: %w", err)
	}
	return &info, nil
}

func (s *Store) GetDeployments(date, shiftType string) ([]models.Deployment, error) {
	var deployments []models.Deployment
	query := `SELECT d.*, st.name AS staff_name
	          FROM deployments d
	          JOIN staff st ON st.id = d.staff_id
	          WHERE d.date = $1 AND d.shift_type = $2
	          ORDER BY d.created_at ASC`

	if err := s.db.Select(&deployments, query, date, shiftType); err != nil {
		return nil, fmt.Errorf("failed to get deployments: %w", err)
	}
	return deployments, nil
}

func (s *Store) CountPositionOccupancy(position, date, shiftType string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM deployments
	          WHERE position = $1 AND date = $2 AND shift_type = $3`

	if err := s.db.Get(&count, query, position, date, shiftType); err != nil {
		return 0, fmt.Errorf("failed to count position occupancy: %w", err)
	}
	return count, nil
}

func (s *Store) CountSecondaryOccupancy(secondary, date, shiftType string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM deployments
	          WHERE secondary = $1 AND date = $2 AND shift_type = $3`

	if err := s.db.Get(&count, query, secondary, date, shiftType); err != nil {
		return 0, fmt.Errorf("failed to count secondary occupancy: %w", err)
	}
	return count, nil
}

func (s *Store) UpdateDeploymentPosition(deploymentID, position string, isClosingDuty, closingValidated bool) error {
	query := `UPDATE deployments
	          SET position = $1, is_closing_duty = $2, closing_validated = $3, updated_at = $4
	          WHERE id = $5`

	if _, err := s.db.Exec(query, position, isClosingDuty, closingValidated, time.Now().Unix(), deploymentID); err != nil {
		return fmt.Errorf("failed to update deployment position: %w", err)
	}
	return nil
}

func (s *Store) UpdateDeploymentSecondary(deploymentID, secondary string) error {
	query := `UPDATE deployments
	          SET secondary = $1, has_secondary = TRUE, updated_at = $2
	          WHERE id = $3`

	if _, err := s.db.Exec(query, secondary, time.Now().Unix(), deploymentID); err != nil {
		return fmt.Errorf("failed to update deployment secondary: %w", err)
	}
	return nil
}

func (s *Store) UpdateDeploymentClosing(deploymentID string, isClosingDuty, closingValidated bool) error {
	query := `UPDATE deployments
	          SET is_closing_duty = $1, closing_validated = $2, updated_at = $3
	          WHERE id = $4`

	if _, err := s.db.Exec(query, isClosingDuty, closingValidated, time.Now().Unix(), deploymentID); err != nil {
		return fmt.Errorf("failed to update deployment closing flags: %w", err)
	}
	return nil
}

func (s *Store) GetStaffByID(staffID string) (*models.Staff, error) {
	var staff models.Staff
	err := s.db.Get(&staff, `SELECT * FROM staff WHERE id = $1`, staffID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

func (s *Store) GetStaffDefaultPositions(staffID string) ([]models.StaffDefaultPosition, error) {
	var records []models.StaffDefaultPosition
	query := `SELECT * FROM staff_default_positions
	          WHERE staff_id = $1
	          ORDER BY priority ASC`

	if err := s.db.Select(&records, query, staffID); err != nil {
		return nil, fmt.Errorf("failed to get staff default positions: %w", err)
	}
	return records, nil
}

func (s *Store) GetStaffTrainingStations(staffID string) ([]models.StaffTrainingStation, error) {
	var stations []models.StaffTrainingStation
	query := `SELECT * FROM staff_training_stations
	          WHERE staff_id = $1
	          ORDER BY is_primary DESC, created_at ASC`

	if err := s.db.Select(&stations, query, staffID); err != nil {
		return nil, fmt.Errorf("failed to get training stations: %w", err)
	}
	return stations, nil
}

func (s *Store) GetStationPositionMappings(station string) ([]models.StationPositionMapping, error) {
	var mappings []models.StationPositionMapping
	query := `SELECT * FROM station_position_mappings
	          WHERE station = $1 AND is_active = TRUE
	          ORDER BY priority ASC`

	if err := s.db.Select(&mappings, query, station); err != nil {
		return nil, fmt.Errorf("failed to get station position mappings: %w", err)
	}
	return mappings, nil
}

func (s *Store) GetStaffRankings(staffID, station string) ([]models.StaffRanking, error) {
	var rankings []models.StaffRanking
	query := `SELECT * FROM staff_rankings WHERE staff_id = $1 AND station = $2`

	if err := s.db.Select(&rankings, query, staffID, station); err != nil {
		return nil, fmt.Errorf("failed to get staff rankings: %w", err)
	}
	return rankings, nil
}

func (s *Store) GetAllStaffRankings(staffID string) ([]models.StaffRanking, error) {
	var rankings []models.StaffRanking
	query := `SELECT * FROM staff_rankings WHERE staff_id = $1`

	if err := s.db.Select(&rankings, query, staffID); err != nil {
		return nil, fmt.Errorf("failed to get staff rankings: %w", err)
	}
	return rankings, nil
}

func (s *Store) HasStaffSignOff(staffID, station string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM staff_sign_offs WHERE staff_id = $1 AND station = $2`

	if err := s.db.Get(&count, query, staffID, station); err != nil {
		return false, fmt.Errorf("failed to check sign-off: %w", err)
	}
	return count > 0, nil
}

func (s *Store) GetPositionByName(name string) (*models.Position, error) {
	var position models.Position
	err := s.db.Get(&position, `SELECT * FROM positions WHERE name = $1`, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position by name: %w", err)
	}
	return &position, nil
}

func (s *Store) GetPositionByID(positionID string) (*models.Position, error) {
	var position models.Position
	err := s.db.Get(&position, `SELECT * FROM positions WHERE id = $1`, positionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &position, nil
}

// GetPositionCapacity prefers an exact shift-type row over a "Both" row
func (s *Store) GetPositionCapacity(positionID, shiftType string) (*models.PositionCapacity, error) {
	var capacity models.PositionCapacity
	query := `SELECT * FROM position_capacities
	          WHERE position_id = $1 AND shift_type IN ($2, 'Both')
	          ORDER BY CASE WHEN shift_type = $2 THEN 0 ELSE 1 END
	          LIMIT 1`

	err := s.db.Get(&capacity, query, positionID, shiftType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position capacity: %w", err)
	}
	return &capacity, nil
}

func (s *Store) GetClosingStationRequirement(positionID, shiftType string) (*models.ClosingStationRequirement, error) {
	var requirement models.ClosingStationRequirement
	query := `SELECT * FROM closing_station_requirements
	          WHERE position_id = $1 AND shift_type IN ($2, 'Both') AND is_active = TRUE
	          ORDER BY CASE WHEN shift_type = $2 THEN 0 ELSE 1 END
	          LIMIT 1`

	err := s.db.Get(&requirement, query, positionID, shiftType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get closing station requirement: %w", err)
	}
	return &requirement, nil
}

func (s *Store) GetClosingStationRequirements(shiftType string) ([]models.ClosingStationRequirement, error) {
	var requirements []models.ClosingStationRequirement
	query := `SELECT * FROM closing_station_requirements
	          WHERE is_active = TRUE AND shift_type IN ($1, 'Both')
	          ORDER BY created_at ASC`

	if err := s.db.Select(&requirements, query, shiftType); err != nil {
		return nil, fmt.Errorf("failed to get closing station requirements: %w", err)
	}
	return requirements, nil
}

func (s *Store) GetClosingTrainingRecord(staffID, positionID string) (*models.ClosingTrainingRecord, error) {
	var record models.ClosingTrainingRecord
	query := `SELECT * FROM closing_training_records
	          WHERE staff_id = $1 AND position_id = $2 AND is_trained = TRUE`

	err := s.db.Get(&record, query, staffID, positionID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get closing training record: %w", err)
	}
	return &record, nil
}

func (s *Store) GetClosingTrainingRecordsForPosition(positionID string) ([]models.ClosingTrainingRecord, error) {
	var records []models.ClosingTrainingRecord
	query := `SELECT * FROM closing_training_records
	          WHERE position_id = $1 AND is_trained = TRUE`

	if err := s.db.Select(&records, query, positionID); err != nil {
		return nil, fmt.Errorf("failed to get closing training records: %w", err)
	}
	return records, nil
}

func (s *Store) GetSecondaryMappings(primaryPositionID string) ([]models.PositionSecondaryMapping, error) {
	var mappings []models.PositionSecondaryMapping
	query := `SELECT * FROM position_secondary_mappings
	          WHERE primary_position_id = $1
	          ORDER BY priority ASC`

	if err := s.db.Select(&mappings, query, primaryPositionID); err != nil {
		return nil, fmt.Errorf("failed to get secondary mappings: %w", err)
	}
	return mappings, nil
}
