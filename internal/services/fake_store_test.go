package services

import (
	"fmt"

	"crewdeploy-backend/internal/models"
)

// fakeStore is an in-memory Store used by the engine tests. Write methods
// record into the update maps, and the read methods reflect recorded updates
// so occupancy counting behaves like the live database during a batch run.
type fakeStore struct {
	config           *models.ShiftConfiguration
	rules            []models.StaffingRule
	coreRequirements []models.CorePositionRequirement
	shiftInfo        *models.ShiftInfo
	deployments      []models.Deployment

	defaultPositions map[string][]models.StaffDefaultPosition
	trainingStations map[string][]models.StaffTrainingStation
	stationMappings  map[string][]models.StationPositionMapping
	rankings         map[string][]models.StaffRanking // staffID|station
	signOffs         map[string]bool                  // staffID|station
	staff            map[string]*models.Staff

	positions         map[string]*models.Position // by name
	capacities        []models.PositionCapacity
	closingReqs       []models.ClosingStationRequirement
	closingRecords    map[string]*models.ClosingTrainingRecord // staffID|positionID
	secondaryMappings map[string][]models.PositionSecondaryMapping

	// Recorded writes
	positionUpdates  map[string]string
	secondaryUpdates map[string]string
	closingUpdates   map[string]bool

	// Per-staff injected failures
	defaultPositionErrs map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		defaultPositions:    map[string][]models.StaffDefaultPosition{},
		trainingStations:    map[string][]models.StaffTrainingStation{},
		stationMappings:     map[string][]models.StationPositionMapping{},
		rankings:            map[string][]models.StaffRanking{},
		signOffs:            map[string]bool{},
		staff:               map[string]*models.Staff{},
		positions:           map[string]*models.Position{},
		closingRecords:      map[string]*models.ClosingTrainingRecord{},
		secondaryMappings:   map[string][]models.PositionSecondaryMapping{},
		positionUpdates:     map[string]string{},
		secondaryUpdates:    map[string]string{},
		closingUpdates:      map[string]bool{},
		defaultPositionErrs: map[string]error{},
	}
}

func (f *fakeStore) addPosition(id, name string, kind models.PositionKind) {
	f.positions[name] = &models.Position{ID: id, Name: name, Kind: kind, IsActive: true}
}

func (f *fakeStore) addDeployment(id, staffID, staffName, date, shiftType string, position *string) {
	f.deployments = append(f.deployments, models.Deployment{
		ID:        id,
		StaffID:   staffID,
		StaffName: staffName,
		Date:      date,
		ShiftType: shiftType,
		Position:  position,
	})
}

func key2(a, b string) string { return a + "|" + b }

func (f *fakeStore) GetActiveShiftConfiguration(shiftType, date string) (*models.ShiftConfiguration, error) {
	return f.config, nil
}

func (f *fakeStore) GetActiveStaffingRules() ([]models.StaffingRule, error) {
	return f.rules, nil
}

func (f *fakeStore) GetCorePositionRequirements(shiftType string) ([]models.CorePositionRequirement, error) {
	matched := []models.CorePositionRequirement{}
	for _, req := range f.coreRequirements {
		if req.IsActive && matchesShiftType(req.ShiftType, shiftType) {
			matched = append(matched, req)
		}
	}
	return matched, nil
}

func (f *fakeStore) GetShiftInfo(date string) (*models.ShiftInfo, error) {
	return f.shiftInfo, nil
}

func (f *fakeStore) GetDeployments(date, shiftType string) ([]models.Deployment, error) {
	matched := []models.Deployment{}
	for _, d := range f.deployments {
		if d.Date != date || d.ShiftType != shiftType {
			continue
		}
		if pos, ok := f.positionUpdates[d.ID]; ok {
			d.Position = &pos
		}
		if d.IsClosingDuty || f.closingUpdates[d.ID] {
			d.IsClosingDuty = true
		}
		if sec, ok := f.secondaryUpdates[d.ID]; ok {
			d.Secondary = &sec
			d.HasSecondary = true
		}
		matched = append(matched, d)
	}
	return matched, nil
}

func (f *fakeStore) CountPositionOccupancy(position, date, shiftType string) (int, error) {
	count := 0
	for _, d := range f.deployments {
		if d.Date != date || d.ShiftType != shiftType {
			continue
		}
		p := d.Position
		if updated, ok := f.positionUpdates[d.ID]; ok {
			p = &updated
		}
		if p != nil && *p == position {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountSecondaryOccupancy(secondary, date, shiftType string) (int, error) {
	count := 0
	for _, d := range f.deployments {
		if d.Date != date || d.ShiftType != shiftType {
			continue
		}
		s := d.Secondary
		if updated, ok := f.secondaryUpdates[d.ID]; ok {
			s = &updated
		}
		if s != nil && *s == secondary {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) UpdateDeploymentPosition(deploymentID, position string, isClosingDuty, closingValidated bool) error {
	f.positionUpdates[deploymentID] = position
	if isClosingDuty {
		f.closingUpdates[deploymentID] = true
	}
	return nil
}

func (f *fakeStore) UpdateDeploymentSecondary(deploymentID, secondary string) error {
	f.secondaryUpdates[deploymentID] = secondary
	return nil
}

func (f *fakeStore) UpdateDeploymentClosing(deploymentID string, isClosingDuty, closingValidated bool) error {
	f.closingUpdates[deploymentID] = isClosingDuty
	return nil
}

func (f *fakeStore) GetStaffByID(staffID string) (*models.Staff, error) {
	return f.staff[staffID], nil
}

func (f *fakeStore) GetStaffDefaultPositions(staffID string) ([]models.StaffDefaultPosition, error) {
	if err := f.defaultPositionErrs[staffID]; err != nil {
		return nil, err
	}
	return f.defaultPositions[staffID], nil
}

func (f *fakeStore) GetStaffTrainingStations(staffID string) ([]models.StaffTrainingStation, error) {
	return f.trainingStations[staffID], nil
}

func (f *fakeStore) GetStationPositionMappings(station string) ([]models.StationPositionMapping, error) {
	return f.stationMappings[station], nil
}

func (f *fakeStore) GetStaffRankings(staffID, station string) ([]models.StaffRanking, error) {
	return f.rankings[key2(staffID, station)], nil
}

func (f *fakeStore) GetAllStaffRankings(staffID string) ([]models.StaffRanking, error) {
	all := []models.StaffRanking{}
	for _, list := range f.rankings {
		for _, r := range list {
			if r.StaffID == staffID {
				all = append(all, r)
			}
		}
	}
	return all, nil
}

func (f *fakeStore) HasStaffSignOff(staffID, station string) (bool, error) {
	return f.signOffs[key2(staffID, station)], nil
}

func (f *fakeStore) GetPositionByName(name string) (*models.Position, error) {
	return f.positions[name], nil
}

func (f *fakeStore) GetPositionByID(positionID string) (*models.Position, error) {
	for _, p := range f.positions {
		if p.ID == positionID {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetPositionCapacity(positionID, shiftType string) (*models.PositionCapacity, error) {
	// Exact shift type wins over "Both", matching the SQL implementation
	var both *models.PositionCapacity
	for i := range f.capacities {
		c := f.capacities[i]
		if c.PositionID != positionID {
			continue
		}
		if c.ShiftType == shiftType {
			return &c, nil
		}
		if c.ShiftType == models.ShiftTypeBoth {
			both = &c
		}
	}
	return both, nil
}

func (f *fakeStore) GetClosingStationRequirement(positionID, shiftType string) (*models.ClosingStationRequirement, error) {
	var both *models.ClosingStationRequirement
	for i := range f.closingReqs {
		req := f.closingReqs[i]
		if !req.IsActive || req.PositionID != positionID {
			continue
		}
		if req.ShiftType == shiftType {
			return &req, nil
		}
		if req.ShiftType == models.ShiftTypeBoth {
			both = &req
		}
	}
	return both, nil
}

func (f *fakeStore) GetClosingStationRequirements(shiftType string) ([]models.ClosingStationRequirement, error) {
	matched := []models.ClosingStationRequirement{}
	for _, req := range f.closingReqs {
		if req.IsActive && matchesShiftType(req.ShiftType, shiftType) {
			matched = append(matched, req)
		}
	}
	return matched, nil
}

func (f *fakeStore) GetClosingTrainingRecord(staffID, positionID string) (*models.ClosingTrainingRecord, error) {
	return f.closingRecords[key2(staffID, positionID)], nil
}

func (f *fakeStore) GetClosingTrainingRecordsForPosition(positionID string) ([]models.ClosingTrainingRecord, error) {
	matched := []models.ClosingTrainingRecord{}
	for _, record := range f.closingRecords {
		if record.PositionID == positionID {
			matched = append(matched, *record)
		}
	}
	return matched, nil
}

func (f *fakeStore) GetSecondaryMappings(primaryPositionID string) ([]models.PositionSecondaryMapping, error) {
	return f.secondaryMappings[primaryPositionID], nil
}

var errBoom = fmt.Errorf("boom")
