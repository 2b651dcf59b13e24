package services

import (
	"fmt"
	"log"
	"sort"

	"crewdeploy-backend/internal/models"
)

// Non-pack secondary positions require training on a specific station.
// Pack stations auto-qualify, and staff with no training records at all are
// assumed deployable anywhere (new starters shadowing).
var secondaryStationRequirements = map[string]string{
	"Fries":         "Fried Products",
	"Drinks":        "Beverage Cell",
	"Front Counter": "Front Counter",
	"DT Presenter":  "DT Window",
	"DT Order":      "DT Order Point",
	"Cook":          "Grill",
	"Cook2":         "Grill",
	"Dining Area":   "Dining Area",
}

const defaultPackSecondaryCapacity = 2

// SecondaryAssigned records one successful secondary-position assignment
type SecondaryAssigned struct {
	DeploymentID string `json:"deployment_id"`
	StaffID      string `json:"staff_id"`
	StaffName    string `json:"staff_name"`
	Primary      string `json:"primary"`
	Secondary    string `json:"secondary"`
}

// SecondaryAssignmentOutcome is the structured result of a secondary
// assignment pass
type SecondaryAssignmentOutcome struct {
	Assigned []SecondaryAssigned `json:"assigned"`
	Skipped  []SkippedDeployment `json:"skipped"`
	Failed   []FailedDeployment  `json:"failed"`
}

// AutoAssignSecondaryPositions layers a helper position onto deployments
// that already hold a primary position. Mappings are tried in ascending
// priority order; the first qualified-and-available candidate wins. Running
// the pass twice without intervening changes assigns nothing the second time
// (every eligible deployment already has has_secondary set).
func (e *Engine) AutoAssignSecondaryPositions(date, shiftType string) (*SecondaryAssignmentOutcome, error) {
	deployments, err := e.store.GetDeployments(date, shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments: %w", err)
	}

	log.Printf("🔁 Secondary assignment starting for %s / %s", date, shiftType)

	outcome := &SecondaryAssignmentOutcome{
		Assigned: []SecondaryAssigned{},
		Skipped:  []SkippedDeployment{},
		Failed:   []FailedDeployment{},
	}

	for _, deployment := range deployments {
		if !deployment.HasPosition() || deployment.HasSecondary {
			continue
		}

		if err := e.assignSecondary(deployment, date, shiftType, outcome); err != nil {
			outcome.Failed = append(outcome.Failed, FailedDeployment{
				DeploymentID: deployment.ID,
				StaffName:    deployment.StaffName,
				Error:        err.Error(),
			})
		}
	}

	log.Printf("🔁 Secondary assignment finished: %d assigned, %d skipped, %d failed",
		len(outcome.Assigned), len(outcome.Skipped), len(outcome.Failed))

	return outcome, nil
}

func (e *Engine) assignSecondary(deployment models.Deployment, date, shiftType string, outcome *SecondaryAssignmentOutcome) error {
	primary, err := e.store.GetPositionByName(*deployment.Position)
	if err != nil {
		return err
	}
	if primary == nil {
		outcome.Skipped = append(outcome.Skipped, SkippedDeployment{
			DeploymentID: deployment.ID,
			StaffName:    deployment.StaffName,
			Reason:       fmt.Sprintf("No position record for primary %s", *deployment.Position),
		})
		return nil
	}

	mappings, err := e.store.GetSecondaryMappings(primary.ID)
	if err != nil {
		return err
	}

	eligible := make([]models.PositionSecondaryMapping, 0, len(mappings))
	for _, mapping := range mappings {
		if !mapping.IsEnabled || !mapping.AutoDeploy {
			continue
		}
		if !matchesShiftType(mapping.ShiftType, shiftType) {
			continue
		}
		eligible = append(eligible, mapping)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Priority < eligible[j].Priority
	})

	for _, mapping := range eligible {
		qualified, err := e.qualifiedForSecondary(deployment.StaffID, mapping.SecondaryPosition)
		if err != nil {
			return err
		}
		if !qualified {
			continue
		}

		available, err := e.secondaryAvailable(mapping.SecondaryPosition, date, shiftType)
		if err != nil {
			return err
		}
		if !available {
			continue
		}

		if err := e.store.UpdateDeploymentSecondary(deployment.ID, mapping.SecondaryPosition); err != nil {
			return err
		}

		log.Printf("   ✅ %s: %s + %s", deployment.StaffName, primary.Name, mapping.SecondaryPosition)

		outcome.Assigned = append(outcome.Assigned, SecondaryAssigned{
			DeploymentID: deployment.ID,
			StaffID:      deployment.StaffID,
			StaffName:    deployment.StaffName,
			Primary:      primary.Name,
			Secondary:    mapping.SecondaryPosition,
		})
		return nil
	}

	outcome.Skipped = append(outcome.Skipped, SkippedDeployment{
		DeploymentID: deployment.ID,
		StaffName:    deployment.StaffName,
		Reason:       "No qualified and available secondary position",
	})
	return nil
}

// qualifiedForSecondary checks whether a staff member can take a secondary
// position: pack stations auto-qualify, otherwise the staff needs training
// on the station mapped to that position (or no training records at all)
func (e *Engine) qualifiedForSecondary(staffID, secondaryPosition string) (bool, error) {
	position, err := e.store.GetPositionByName(secondaryPosition)
	if err != nil {
		return false, err
	}
	if position != nil && position.Kind == models.PositionKindPack {
		return true, nil
	}

	requiredStation, hasRequirement := secondaryStationRequirements[secondaryPosition]
	if !hasRequirement {
		return true, nil
	}

	stations, err := e.store.GetStaffTrainingStations(staffID)
	if err != nil {
		return false, err
	}
	if len(stations) == 0 {
		return true, nil
	}

	for _, station := range stations {
		if station.Station == requiredStation {
			return true, nil
		}
	}
	return false, nil
}

// secondaryAvailable enforces secondary-position capacity: pack stations
// allow up to their configured max_concurrent (default 2), everything else
// a single occupant
func (e *Engine) secondaryAvailable(secondaryPosition, date, shiftType string) (bool, error) {
	occupied, err := e.store.CountSecondaryOccupancy(secondaryPosition, date, shiftType)
	if err != nil {
		return false, err
	}

	position, err := e.store.GetPositionByName(secondaryPosition)
	if err != nil {
		return false, err
	}

	if position != nil && position.Kind == models.PositionKindPack {
		limit := defaultPackSecondaryCapacity
		capacity, err := e.store.GetPositionCapacity(position.ID, shiftType)
		if err != nil {
			return false, err
		}
		if capacity != nil {
			limit = capacity.MaxConcurrent
		}
		return occupied < limit, nil
	}

	return occupied == 0, nil
}
