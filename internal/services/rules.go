package services

import (
	"encoding/json"
	"fmt"

	"crewdeploy-backend/internal/models"
)

// RuleActionKind enumerates the action types a staffing rule may carry
type RuleActionKind string

const (
	RuleActionRequirePosition     RuleActionKind = "require_position"
	RuleActionExcludePosition     RuleActionKind = "exclude_position"
	RuleActionAdjustPositionCount RuleActionKind = "adjust_position_count"
)

// RuleAction is the decoded, typed form of a staffing rule's action.
// Decoding rejects malformed actions at load time instead of letting them
// silently no-op during assignment.
type RuleAction struct {
	Kind     RuleActionKind `json:"type"`
	Position string         `json:"position"`
	Count    int            `json:"count,omitempty"` // require_position only, defaults to 1
	Delta    int            `json:"delta,omitempty"` // adjust_position_count only
}

// DecodeRuleAction parses and validates a rule's raw action JSON
func DecodeRuleAction(raw json.RawMessage) (RuleAction, error) {
	var action RuleAction
	if len(raw) == 0 {
		return action, fmt.Errorf("rule action is empty")
	}
	if err := json.Unmarshal(raw, &action); err != nil {
		return action, fmt.Errorf("invalid rule action JSON: %w", err)
	}

	switch action.Kind {
	case RuleActionRequirePosition:
		if action.Position == "" {
			return action, fmt.Errorf("require_position action is missing a position")
		}
		if action.Count <= 0 {
			action.Count = 1
		}
	case RuleActionExcludePosition:
		if action.Position == "" {
			return action, fmt.Errorf("exclude_position action is missing a position")
		}
	case RuleActionAdjustPositionCount:
		if action.Position == "" {
			return action, fmt.Errorf("adjust_position_count action is missing a position")
		}
		if action.Delta == 0 {
			return action, fmt.Errorf("adjust_position_count action has a zero delta")
		}
	default:
		return action, fmt.Errorf("unknown rule action type %q", action.Kind)
	}

	return action, nil
}

// RequiredPosition is a position requirement folded into the effective
// configuration by a matching rule
type RequiredPosition struct {
	Position string `json:"position"`
	Count    int    `json:"count"`
	Source   string `json:"source"` // rule name that required it
}

// EffectiveConfig is the working staffing configuration after all matching
// rule actions have been folded into the resolved shift configuration
type EffectiveConfig struct {
	DTType              string                 `json:"dt_type"`
	NumCooks            int                    `json:"num_cooks"`
	NumPackStations     int                    `json:"num_pack_stations"`
	RequireShiftRunner  bool                   `json:"require_shift_runner"`
	RequireManager      bool                   `json:"require_manager"`
	RequiredPositions   []RequiredPosition     `json:"required_positions"`
	ExcludedPositions   []string               `json:"excluded_positions"`
	PositionAdjustments map[string]int         `json:"position_adjustments"`
	Settings            map[string]interface{} `json:"settings,omitempty"`
}

// AppliedRule records a rule whose condition matched the shift context
type AppliedRule struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// AssignmentConfig controls the auto-assignment engine itself (as opposed to
// the staffing template, which describes the shift)
type AssignmentConfig struct {
	Enabled             bool    `json:"enabled"`
	UseDefaultPositions bool    `json:"use_default_positions"`
	UseTrainingData     bool    `json:"use_training_data"`
	UseRankings         bool    `json:"use_rankings"`
	MinRankingThreshold float64 `json:"min_ranking_threshold"`
	PreferSignedOffOnly bool    `json:"prefer_signed_off_only"`
}

// DefaultAssignmentConfig returns the engine configuration used when the
// caller supplies no override
func DefaultAssignmentConfig() AssignmentConfig {
	return AssignmentConfig{
		Enabled:             true,
		UseDefaultPositions: true,
		UseTrainingData:     true,
		UseRankings:         true,
		MinRankingThreshold: 0,
		PreferSignedOffOnly: false,
	}
}

// matchesShiftType reports whether a configuration row scoped to recordType
// applies to a deployment's shiftType. Rows may use "Both", the full shift
// name ("Day Shift") or the short form ("Day"/"Night").
func matchesShiftType(recordType, shiftType string) bool {
	if recordType == models.ShiftTypeBoth || recordType == shiftType {
		return true
	}
	switch recordType {
	case "Day":
		return shiftType == models.ShiftTypeDay
	case "Night":
		return shiftType == models.ShiftTypeNight
	}
	return false
}
