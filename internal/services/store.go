package services

import (
	"crewdeploy-backend/internal/models"
)

// Store is the data access surface the assignment engine needs. The Postgres
// implementation lives in internal/database; tests use an in-memory fake.
//
// Lookups that can legitimately find nothing return (nil, nil) rather than an
// error, matching the configuration-not-found taxonomy: absence is handled by
// fallbacks or skips, never by aborting the batch.
type Store interface {
	// Staffing configuration
	GetActiveShiftConfiguration(shiftType, date string) (*models.ShiftConfiguration, error)
	GetActiveStaffingRules() ([]models.StaffingRule, error)
	GetCorePositionRequirements(shiftType string) ([]models.CorePositionRequirement, error)
	GetShiftInfo(date string) (*models.ShiftInfo, error)

	// Deployments
	GetDeployments(date, shiftType string) ([]models.Deployment, error)
	CountPositionOccupancy(position, date, shiftType string) (int, error)
	CountSecondaryOccupancy(secondary, date, shiftType string) (int, error)
	UpdateDeploymentPosition(deploymentID, position string, isClosingDuty, closingValidated bool) error
	UpdateDeploymentSecondary(deploymentID, secondary string) error
	UpdateDeploymentClosing(deploymentID string, isClosingDuty, closingValidated bool) error

	// Staff assignment signals
	GetStaffByID(staffID string) (*models.Staff, error)
	GetStaffDefaultPositions(staffID string) ([]models.StaffDefaultPosition, error)
	GetStaffTrainingStations(staffID string) ([]models.StaffTrainingStation, error)
	GetStationPositionMappings(station string) ([]models.StationPositionMapping, error)
	GetStaffRankings(staffID, station string) ([]models.StaffRanking, error)
	GetAllStaffRankings(staffID string) ([]models.StaffRanking, error)
	HasStaffSignOff(staffID, station string) (bool, error)

	// Positions
	GetPositionByName(name string) (*models.Position, error)
	GetPositionByID(positionID string) (*models.Position, error)
	GetPositionCapacity(positionID, shiftType string) (*models.PositionCapacity, error)

	// Closing duty
	GetClosingStationRequirement(positionID, shiftType string) (*models.ClosingStationRequirement, error)
	GetClosingStationRequirements(shiftType string) ([]models.ClosingStationRequirement, error)
	GetClosingTrainingRecord(staffID, positionID string) (*models.ClosingTrainingRecord, error)
	GetClosingTrainingRecordsForPosition(positionID string) ([]models.ClosingTrainingRecord, error)

	// Secondary positions
	GetSecondaryMappings(primaryPositionID string) ([]models.PositionSecondaryMapping, error)
}
