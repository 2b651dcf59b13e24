package services

import (
	"fmt"
	"sort"
	"strings"
)

// RequiredPositionEntry is one entry in the resolved required-position list.
// The list is descriptive: it feeds reporting and coverage validation, it
// does not drive per-staff assignment (candidate scoring does).
type RequiredPositionEntry struct {
	Position string `json:"position"`
	MinCount int    `json:"min_count"`
	MaxCount int    `json:"max_count"`
	Priority int    `json:"priority"` // lower = checked first
	Source   string `json:"source"`
}

// ResolveRequiredPositions builds the ordered required-position list for a
// shift: mandatory core requirements, then rule-required positions, then
// positions implied by the configuration (DT presenter, cooks, shift runner,
// manager).
func (e *Engine) ResolveRequiredPositions(date, shiftType string, config *EffectiveConfig) ([]RequiredPositionEntry, error) {
	core, err := e.store.GetCorePositionRequirements(shiftType)
	if err != nil {
		return nil, fmt.Errorf("failed to load core position requirements: %w", err)
	}

	entries := []RequiredPositionEntry{}
	for _, req := range core {
		if !req.IsMandatory {
			continue
		}
		entries = append(entries, RequiredPositionEntry{
			Position: req.Position,
			MinCount: req.MinCount,
			MaxCount: req.MaxCount,
			Priority: req.Priority,
			Source:   "core",
		})
	}

	for _, required := range config.RequiredPositions {
		entries = append(entries, RequiredPositionEntry{
			Position: required.Position,
			MinCount: required.Count,
			MaxCount: required.Count,
			Priority: 8,
			Source:   required.Source,
		})
	}

	if config.DTType == "DT1" && !hasPositionNamed(entries, "DT Presenter") {
		entries = append(entries, RequiredPositionEntry{
			Position: "DT Presenter",
			MinCount: 1,
			MaxCount: 1,
			Priority: 10,
			Source:   "dt1_config",
		})
	}

	if config.NumCooks > 0 && !hasPositionNamed(entries, "Cook") && !hasPositionNamed(entries, "Cook2") {
		for i := 0; i < config.NumCooks; i++ {
			name := "Cook"
			if i > 0 {
				name = fmt.Sprintf("Cook%d", i+1)
			}
			entries = append(entries, RequiredPositionEntry{
				Position: name,
				MinCount: 1,
				MaxCount: 1,
				Priority: 5,
				Source:   "cook_config",
			})
		}
	}

	if config.RequireShiftRunner && !hasShiftRunnerEntry(entries) {
		entries = append(entries, RequiredPositionEntry{
			Position: "Shift Runner",
			MinCount: 1,
			MaxCount: 1,
			Priority: 3,
			Source:   "shift_runner_config",
		})
	}

	if config.RequireManager && !hasManagerEntry(entries) {
		entries = append(entries, RequiredPositionEntry{
			Position: "Manager",
			MinCount: 1,
			MaxCount: 1,
			Priority: 2,
			Source:   "manager_config",
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority < entries[j].Priority
	})

	return entries, nil
}

func hasPositionNamed(entries []RequiredPositionEntry, name string) bool {
	for _, entry := range entries {
		if entry.Position == name {
			return true
		}
	}
	return false
}

func hasShiftRunnerEntry(entries []RequiredPositionEntry) bool {
	for _, entry := range entries {
		lower := strings.ToLower(entry.Position)
		if strings.Contains(lower, "shift runner") || lower == "sr" {
			return true
		}
	}
	return false
}

func hasManagerEntry(entries []RequiredPositionEntry) bool {
	for _, entry := range entries {
		lower := strings.ToLower(entry.Position)
		if strings.Contains(lower, "manager") || strings.Contains(lower, "am") {
			return true
		}
	}
	return false
}
