package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"crewdeploy-backend/internal/models"
)

// Engine runs the deployment assignment pipeline: it folds conditional
// staffing rules into an effective configuration, scores candidates per
// deployment and persists the winners through the Store.
type Engine struct {
	store Store
}

// NewEngine creates an assignment engine over the given store
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// AssignmentContext is the result of resolving configuration and folding
// rules for one date/shift
type AssignmentContext struct {
	Config       EffectiveConfig        `json:"config"`
	Context      map[string]interface{} `json:"context"`
	AppliedRules []AppliedRule          `json:"applied_rules"`
}

// fallbackConfiguration is used when no active "default" shift configuration
// row matches the requested shift type and date
func fallbackConfiguration() *models.ShiftConfiguration {
	return &models.ShiftConfiguration{
		ConfigName:         "default",
		ShiftType:          models.ShiftTypeBoth,
		DTType:             models.DTTypeDT1,
		NumCooks:           1,
		NumPackStations:    2,
		RequireShiftRunner: true,
		RequireManager:     true,
		IsActive:           true,
	}
}

// BuildAssignmentContext resolves the active shift configuration, builds the
// rule evaluation context and folds every matching rule's action into a
// working copy of the configuration. Rules are evaluated in ascending
// priority order and their effects accumulate: exclusions and requirements
// append, count adjustments merge last-write-wins per position.
func (e *Engine) BuildAssignmentContext(date, shiftType string, shiftInfo *models.ShiftInfo) (*AssignmentContext, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	config, err := e.store.GetActiveShiftConfiguration(shiftType, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load shift configuration: %w", err)
	}
	if config == nil {
		log.Printf("⚙️  No active shift configuration for %s on %s, using fallback defaults", shiftType, date)
		config = fallbackConfiguration()
	}

	settings := decodeSettings(config.Settings)

	context := map[string]interface{}{
		"date":                 date,
		"day_of_week":          day.Weekday().String(),
		"shift_type":           shiftType,
		"dt_type":              config.DTType,
		"num_cooks":            config.NumCooks,
		"num_pack_stations":    config.NumPackStations,
		"require_shift_runner": config.RequireShiftRunner,
		"require_manager":      config.RequireManager,
		"forecast":             forecastForShift(shiftInfo, shiftType),
	}
	for key, value := range settings {
		if _, reserved := context[key]; !reserved {
			context[key] = value
		}
	}

	effective := EffectiveConfig{
		DTType:              config.DTType,
		NumCooks:            config.NumCooks,
		NumPackStations:     config.NumPackStations,
		RequireShiftRunner:  config.RequireShiftRunner,
		RequireManager:      config.RequireManager,
		RequiredPositions:   []RequiredPosition{},
		ExcludedPositions:   []string{},
		PositionAdjustments: map[string]int{},
		Settings:            settings,
	}

	rules, err := e.store.GetActiveStaffingRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load staffing rules: %w", err)
	}

	applied := []AppliedRule{}
	for _, rule := range rules {
		var condition map[string]interface{}
		if err := json.Unmarshal(rule.Condition, &condition); err != nil {
			log.Printf("⚠️  Rule %q has an unreadable condition, skipping: %v", rule.Name, err)
			continue
		}

		if !EvaluateCondition(condition, context) {
			continue
		}

		action, err := DecodeRuleAction(rule.Action)
		if err != nil {
			// Rule creation validates actions, but rows edited out-of-band
			// can still be malformed. A broken action must not abort the run.
			log.Printf("⚠️  Rule %q matched but has an invalid action, skipping: %v", rule.Name, err)
			continue
		}

		applied = append(applied, AppliedRule{ID: rule.ID, Name: rule.Name, Priority: rule.Priority})

		switch action.Kind {
		case RuleActionRequirePosition:
			effective.RequiredPositions = append(effective.RequiredPositions, RequiredPosition{
				Position: action.Position,
				Count:    action.Count,
				Source:   rule.Name,
			})
		case RuleActionExcludePosition:
			effective.ExcludedPositions = append(effective.ExcludedPositions, action.Position)
		case RuleActionAdjustPositionCount:
			effective.PositionAdjustments[action.Position] = action.Delta
		}
	}

	return &AssignmentContext{
		Config:       effective,
		Context:      context,
		AppliedRules: applied,
	}, nil
}

func decodeSettings(raw json.RawMessage) map[string]interface{} {
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var settings map[string]interface{}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return map[string]interface{}{}
	}
	return settings
}

// forecastForShift parses the shift-specific forecast text on the shift info
// record. Managers enter these as currency strings ("£4,250.00"); anything
// unparsable counts as 0.
func forecastForShift(info *models.ShiftInfo, shiftType string) float64 {
	if info == nil {
		return 0
	}

	var text *string
	if shiftType == models.ShiftTypeNight {
		text = info.NightForecast
	} else {
		text = info.DayForecast
	}
	if text == nil {
		return 0
	}

	return parseCurrency(*text)
}

func parseCurrency(text string) float64 {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimLeft(cleaned, "£$€ ")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}
