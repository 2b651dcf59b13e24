package services

import (
	"fmt"
	"sort"
	"time"
)

// Coverage statuses for closing-station requirements
const (
	CoverageCovered    = "COVERED"
	CoveragePartial    = "PARTIAL"
	CoverageNotCovered = "NOT_COVERED"
)

// ClosingValidation is the outcome of checking one staff member's closing
// training for one position
type ClosingValidation struct {
	Qualified        bool    `json:"qualified"`
	Reason           string  `json:"reason,omitempty"`
	TrainedDate      *string `json:"trained_date,omitempty"`
	ManagerSignedOff bool    `json:"manager_signed_off"`
}

// ValidateClosingTraining checks whether a staff member currently holds
// valid closing training for a position. Expiry here is compared against the
// current time; GetClosingTrainedStaff filters against the deployment date
// instead. The two bases are intentionally different and must stay that way:
// point validation answers "is this person qualified now", the batch listing
// answers "who was qualified for that shift".
func (e *Engine) ValidateClosingTraining(staffID, positionID string) (*ClosingValidation, error) {
	record, err := e.store.GetClosingTrainingRecord(staffID, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load closing training record: %w", err)
	}

	if record == nil || !record.IsTrained {
		return &ClosingValidation{Qualified: false, Reason: "No closing training record found"}, nil
	}

	if record.ExpiryDate != nil {
		expiry, err := time.Parse("2006-01-02", *record.ExpiryDate)
		if err != nil || expiry.Before(time.Now()) {
			return &ClosingValidation{Qualified: false, Reason: "Closing training has expired"}, nil
		}
	}

	return &ClosingValidation{
		Qualified:        true,
		TrainedDate:      record.TrainedDate,
		ManagerSignedOff: record.ManagerSignoffDate != nil,
	}, nil
}

// closingTrainingValidOn reports whether a record is trained and unexpired
// as of the given date (used for deployment-date based checks)
func closingTrainingValidOn(isTrained bool, expiryDate *string, asOf time.Time) bool {
	if !isTrained {
		return false
	}
	if expiryDate == nil {
		return true
	}
	expiry, err := time.Parse("2006-01-02", *expiryDate)
	if err != nil {
		return false
	}
	return !expiry.Before(asOf)
}

// ClosingTrainedStaff is one entry in the ranked closing-trained staff list
type ClosingTrainedStaff struct {
	StaffID         string  `json:"staff_id"`
	StaffName       string  `json:"staff_name"`
	AlreadyDeployed bool    `json:"already_deployed"`
	Score           float64 `json:"score"`
	SeniorityDays   float64 `json:"seniority_days"`
	AverageRanking  float64 `json:"average_ranking"`
	TrainedDate     *string `json:"trained_date,omitempty"`
	ExpiryDate      *string `json:"expiry_date,omitempty"`
}

// GetClosingTrainedStaff lists staff with valid (non-expired as of the shift
// date) closing training for a position, ranked by a seniority/ranking
// composite. Staff already deployed that date/shift sink to the bottom so
// managers see who can still be called in first.
func (e *Engine) GetClosingTrainedStaff(positionID, date, shiftType string) ([]ClosingTrainedStaff, error) {
	shiftDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	records, err := e.store.GetClosingTrainingRecordsForPosition(positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load closing training records: %w", err)
	}

	deployments, err := e.store.GetDeployments(date, shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments: %w", err)
	}
	deployed := make(map[string]bool, len(deployments))
	for _, d := range deployments {
		deployed[d.StaffID] = true
	}

	now := time.Now()
	result := []ClosingTrainedStaff{}
	for _, record := range records {
		if !closingTrainingValidOn(record.IsTrained, record.ExpiryDate, shiftDate) {
			continue
		}

		staff, err := e.store.GetStaffByID(record.StaffID)
		if err != nil {
			return nil, fmt.Errorf("failed to load staff %s: %w", record.StaffID, err)
		}
		if staff == nil {
			continue
		}

		rankings, err := e.store.GetAllStaffRankings(staff.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load rankings for %s: %w", staff.Name, err)
		}
		avgRanking := averageRating(rankings)

		seniorityDays := now.Sub(time.Unix(staff.CreatedAt, 0)).Hours() / 24
		if seniorityDays < 0 {
			seniorityDays = 0
		}

		result = append(result, ClosingTrainedStaff{
			StaffID:         staff.ID,
			StaffName:       staff.Name,
			AlreadyDeployed: deployed[staff.ID],
			Score:           seniorityDays*0.6 + avgRanking*0.4,
			SeniorityDays:   seniorityDays,
			AverageRanking:  avgRanking,
			TrainedDate:     record.TrainedDate,
			ExpiryDate:      record.ExpiryDate,
		})
	}

	// Undeployed staff first, then by composite score within each group
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].AlreadyDeployed != result[j].AlreadyDeployed {
			return !result[i].AlreadyDeployed
		}
		return result[i].Score > result[j].Score
	})

	return result, nil
}

// ClosingCoverageEntry reports assignment coverage for one closing-station
// requirement
type ClosingCoverageEntry struct {
	PositionID   string `json:"position_id"`
	PositionName string `json:"position_name"`
	Required     int    `json:"required"`
	Assigned     int    `json:"assigned"`
	Status       string `json:"status"`
}

// ClosingCoverageSummary tallies requirement statuses
type ClosingCoverageSummary struct {
	Covered    int `json:"covered"`
	Partial    int `json:"partial"`
	NotCovered int `json:"not_covered"`
	Total      int `json:"total"`
}

// ClosingCoverageReport is the full coverage picture for one date/shift
type ClosingCoverageReport struct {
	Date      string                 `json:"date"`
	ShiftType string                 `json:"shift_type"`
	Positions []ClosingCoverageEntry `json:"positions"`
	Summary   ClosingCoverageSummary `json:"summary"`
}

// GetClosingCoverageReport compares assigned closing-duty deployments
// against each active closing-station requirement's minimum
func (e *Engine) GetClosingCoverageReport(date, shiftType string) (*ClosingCoverageReport, error) {
	requirements, err := e.store.GetClosingStationRequirements(shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to load closing station requirements: %w", err)
	}

	deployments, err := e.store.GetDeployments(date, shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments: %w", err)
	}

	report := &ClosingCoverageReport{
		Date:      date,
		ShiftType: shiftType,
		Positions: []ClosingCoverageEntry{},
	}

	for _, requirement := range requirements {
		position, err := e.store.GetPositionByID(requirement.PositionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load position %s: %w", requirement.PositionID, err)
		}
		if position == nil {
			continue
		}

		assigned := 0
		for _, d := range deployments {
			if d.HasPosition() && *d.Position == position.Name && d.IsClosingDuty {
				assigned++
			}
		}

		status := CoverageNotCovered
		switch {
		case assigned >= requirement.MinimumTrainedStaff:
			status = CoverageCovered
		case assigned > 0:
			status = CoveragePartial
		}

		report.Positions = append(report.Positions, ClosingCoverageEntry{
			PositionID:   requirement.PositionID,
			PositionName: position.Name,
			Required:     requirement.MinimumTrainedStaff,
			Assigned:     assigned,
			Status:       status,
		})

		switch status {
		case CoverageCovered:
			report.Summary.Covered++
		case CoveragePartial:
			report.Summary.Partial++
		default:
			report.Summary.NotCovered++
		}
		report.Summary.Total++
	}

	return report, nil
}

// ClosingAssigned records one deployment marked for closing duty
type ClosingAssigned struct {
	DeploymentID string `json:"deployment_id"`
	StaffID      string `json:"staff_id"`
	StaffName    string `json:"staff_name"`
	Position     string `json:"position"`
}

// ClosingSkipped records one deployment that could not be marked, with the
// validator's reason
type ClosingSkipped struct {
	DeploymentID string `json:"deployment_id"`
	StaffName    string `json:"staff_name"`
	Position     string `json:"position"`
	Reason       string `json:"reason"`
}

// ClosingAssignmentOutcome is the structured result of AssignClosingStations
type ClosingAssignmentOutcome struct {
	Assigned []ClosingAssigned  `json:"assigned"`
	Skipped  []ClosingSkipped   `json:"skipped"`
	Failed   []FailedDeployment `json:"failed"`
}

// AssignClosingStations walks every active closing requirement and marks
// qualifying deployments on that position as closing duty. Per-deployment
// failures are accumulated, never fatal.
func (e *Engine) AssignClosingStations(date, shiftType string) (*ClosingAssignmentOutcome, error) {
	requirements, err := e.store.GetClosingStationRequirements(shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to load closing station requirements: %w", err)
	}

	deployments, err := e.store.GetDeployments(date, shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments: %w", err)
	}

	outcome := &ClosingAssignmentOutcome{
		Assigned: []ClosingAssigned{},
		Skipped:  []ClosingSkipped{},
		Failed:   []FailedDeployment{},
	}

	for _, requirement := range requirements {
		position, err := e.store.GetPositionByID(requirement.PositionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load position %s: %w", requirement.PositionID, err)
		}
		if position == nil {
			continue
		}

		for _, deployment := range deployments {
			if !deployment.HasPosition() || *deployment.Position != position.Name {
				continue
			}
			if deployment.IsClosingDuty {
				continue
			}

			validation, err := e.ValidateClosingTraining(deployment.StaffID, requirement.PositionID)
			if err != nil {
				outcome.Failed = append(outcome.Failed, FailedDeployment{
					DeploymentID: deployment.ID,
					StaffName:    deployment.StaffName,
					Error:        err.Error(),
				})
				continue
			}

			if !validation.Qualified {
				outcome.Skipped = append(outcome.Skipped, ClosingSkipped{
					DeploymentID: deployment.ID,
					StaffName:    deployment.StaffName,
					Position:     position.Name,
					Reason:       validation.Reason,
				})
				continue
			}

			if err := e.store.UpdateDeploymentClosing(deployment.ID, true, true); err != nil {
				outcome.Failed = append(outcome.Failed, FailedDeployment{
					DeploymentID: deployment.ID,
					StaffName:    deployment.StaffName,
					Error:        err.Error(),
				})
				continue
			}

			outcome.Assigned = append(outcome.Assigned, ClosingAssigned{
				DeploymentID: deployment.ID,
				StaffID:      deployment.StaffID,
				StaffName:    deployment.StaffName,
				Position:     position.Name,
			})
		}
	}

	return outcome, nil
}
