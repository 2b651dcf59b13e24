package services

import (
	"fmt"
	"log"
	"sort"
	"time"

	"crewdeploy-backend/internal/models"
)

// AssignedDeployment records one successful primary assignment
type AssignedDeployment struct {
	DeploymentID     string          `json:"deployment_id"`
	StaffID          string          `json:"staff_id"`
	StaffName        string          `json:"staff_name"`
	Position         string          `json:"position"`
	Score            float64         `json:"score"`
	Source           CandidateSource `json:"source"`
	IsClosingDuty    bool            `json:"is_closing_duty"`
	ClosingValidated bool            `json:"closing_validated"`
}

// SkippedDeployment records a deployment the engine chose not to assign,
// with a human-readable reason
type SkippedDeployment struct {
	DeploymentID string `json:"deployment_id"`
	StaffName    string `json:"staff_name"`
	Reason       string `json:"reason"`
}

// FailedDeployment records a data-access failure while processing one
// deployment; the batch continues past it
type FailedDeployment struct {
	DeploymentID string `json:"deployment_id"`
	StaffName    string `json:"staff_name"`
	Error        string `json:"error"`
}

// AssignmentOutcome is the structured result of an auto-assignment run.
// Business outcomes land in the lists; only infrastructure failures surface
// as errors from the orchestrator itself.
type AssignmentOutcome struct {
	Error             string                  `json:"error,omitempty"`
	Assigned          []AssignedDeployment    `json:"assigned"`
	Skipped           []SkippedDeployment     `json:"skipped"`
	Failed            []FailedDeployment      `json:"failed"`
	AppliedRules      []AppliedRule           `json:"applied_rules,omitempty"`
	Config            *EffectiveConfig        `json:"config,omitempty"`
	RequiredPositions []RequiredPositionEntry `json:"required_positions,omitempty"`
}

func emptyOutcome() *AssignmentOutcome {
	return &AssignmentOutcome{
		Assigned: []AssignedDeployment{},
		Skipped:  []SkippedDeployment{},
		Failed:   []FailedDeployment{},
	}
}

// IntelligentAutoDeployment assigns a primary position to every unassigned
// deployment for the date/shift. Deployments are processed sequentially, one
// persisted write at a time; concurrent invocations for the same date/shift
// are not protected against each other (single-writer semantics, see the
// deployment docs).
func (e *Engine) IntelligentAutoDeployment(date, shiftType string, override *AssignmentConfig) (*AssignmentOutcome, error) {
	config := DefaultAssignmentConfig()
	if override != nil {
		config = *override
	}

	if !config.Enabled {
		outcome := emptyOutcome()
		outcome.Error = "Auto-assignment is disabled"
		return outcome, nil
	}

	log.Printf("🤖 Auto-assignment starting for %s / %s", date, shiftType)

	shiftInfo, err := e.store.GetShiftInfo(date)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift info: %w", err)
	}

	assignmentContext, err := e.BuildAssignmentContext(date, shiftType, shiftInfo)
	if err != nil {
		return nil, err
	}

	requiredPositions, err := e.ResolveRequiredPositions(date, shiftType, &assignmentContext.Config)
	if err != nil {
		return nil, err
	}

	deployments, err := e.store.GetDeployments(date, shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments: %w", err)
	}

	outcome := emptyOutcome()
	outcome.AppliedRules = assignmentContext.AppliedRules
	outcome.Config = &assignmentContext.Config
	outcome.RequiredPositions = requiredPositions

	for _, deployment := range deployments {
		if deployment.HasPosition() {
			continue
		}

		if err := e.assignDeployment(deployment, date, shiftType, config, &assignmentContext.Config, outcome); err != nil {
			outcome.Failed = append(outcome.Failed, FailedDeployment{
				DeploymentID: deployment.ID,
				StaffName:    deployment.StaffName,
				Error:        err.Error(),
			})
		}
	}

	log.Printf("🤖 Auto-assignment finished: %d assigned, %d skipped, %d failed",
		len(outcome.Assigned), len(outcome.Skipped), len(outcome.Failed))

	return outcome, nil
}

// assignDeployment scores and persists one deployment. Returned errors are
// per-deployment failures accumulated by the caller.
func (e *Engine) assignDeployment(
	deployment models.Deployment,
	date, shiftType string,
	config AssignmentConfig,
	effective *EffectiveConfig,
	outcome *AssignmentOutcome,
) error {
	candidates, err := e.generateCandidates(deployment.StaffID, date, shiftType, config)
	if err != nil {
		return err
	}

	if shiftType == models.ShiftTypeNight {
		candidates, err = e.applyClosingOverlay(candidates, deployment.StaffID, date)
		if err != nil {
			return err
		}
	}

	if len(candidates) == 0 {
		outcome.Skipped = append(outcome.Skipped, SkippedDeployment{
			DeploymentID: deployment.ID,
			StaffName:    deployment.StaffName,
			Reason:       "No suitable position found",
		})
		return nil
	}

	// Stable sort so earlier-generated candidates win ties
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	winner := candidates[0]

	// When the top candidate's position is excluded the deployment is
	// skipped outright; the next-best candidate is deliberately not tried
	// (long-standing behavior, guarded by tests).
	if positionExcluded(winner.Position, effective.ExcludedPositions) {
		outcome.Skipped = append(outcome.Skipped, SkippedDeployment{
			DeploymentID: deployment.ID,
			StaffName:    deployment.StaffName,
			Reason:       fmt.Sprintf("Position %s is excluded by staffing rules", winner.Position),
		})
		return nil
	}

	isClosingDuty := shiftType == models.ShiftTypeNight && winner.ClosingRequired
	closingValidated := isClosingDuty && winner.ClosingValidated

	if err := e.store.UpdateDeploymentPosition(deployment.ID, winner.Position, isClosingDuty, closingValidated); err != nil {
		return err
	}

	log.Printf("   ✅ %s → %s (score %.1f, %s)", deployment.StaffName, winner.Position, winner.Score, winner.Source)

	outcome.Assigned = append(outcome.Assigned, AssignedDeployment{
		DeploymentID:     deployment.ID,
		StaffID:          deployment.StaffID,
		StaffName:        deployment.StaffName,
		Position:         winner.Position,
		Score:            winner.Score,
		Source:           winner.Source,
		IsClosingDuty:    isClosingDuty,
		ClosingValidated: closingValidated,
	})
	return nil
}

// applyClosingOverlay adjusts night-shift candidate scores for positions
// that require closing training: validated training earns a bonus, missing
// or expired training a heavy penalty. Penalized candidates stay on the list
// so they can still win when no validated alternative exists.
func (e *Engine) applyClosingOverlay(candidates []Candidate, staffID, date string) ([]Candidate, error) {
	shiftDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	for i := range candidates {
		position, err := e.store.GetPositionByName(candidates[i].Position)
		if err != nil {
			return nil, err
		}
		if position == nil {
			continue
		}

		requirement, err := e.store.GetClosingStationRequirement(position.ID, models.ShiftTypeNight)
		if err != nil {
			return nil, err
		}
		if requirement == nil || !requirement.RequiresClosingTraining {
			continue
		}

		candidates[i].ClosingRequired = true

		record, err := e.store.GetClosingTrainingRecord(staffID, position.ID)
		if err != nil {
			return nil, err
		}

		if record != nil && closingTrainingValidOn(record.IsTrained, record.ExpiryDate, shiftDate) {
			candidates[i].Score += closingValidatedBonus
			candidates[i].ClosingValidated = true
		} else {
			candidates[i].Score -= closingUnvalidatedPenalty
		}
	}

	return candidates, nil
}

func positionExcluded(position string, excluded []string) bool {
	for _, name := range excluded {
		if name == position {
			return true
		}
	}
	return false
}
