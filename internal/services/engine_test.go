package services

import (
	"encoding/json"
	"testing"

	"crewdeploy-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBuildAssignmentContext_InvalidDate(t *testing.T) {
	engine := NewEngine(newFakeStore())

	_, err := engine.BuildAssignmentContext("15/06/2024", models.ShiftTypeDay, nil)
	assert.Error(t, err)
}

func TestBuildAssignmentContext_FallbackConfiguration(t *testing.T) {
	store := newFakeStore() // no configuration row
	engine := NewEngine(store)

	ctx, err := engine.BuildAssignmentContext("2024-06-15", models.ShiftTypeDay, nil)
	require.NoError(t, err)

	assert.Equal(t, "DT1", ctx.Config.DTType)
	assert.Equal(t, 1, ctx.Config.NumCooks)
	assert.Equal(t, 2, ctx.Config.NumPackStations)
	assert.True(t, ctx.Config.RequireShiftRunner)
	assert.True(t, ctx.Config.RequireManager)
}

func TestBuildAssignmentContext_ContextFields(t *testing.T) {
	store := newFakeStore()
	store.config = &models.ShiftConfiguration{
		ConfigName:      "default",
		ShiftType:       models.ShiftTypeBoth,
		DTType:          "DT2",
		NumCooks:        2,
		NumPackStations: 3,
		RequireManager:  true,
		Settings:        json.RawMessage(`{"region":"north","shift_type":"should not override"}`),
		IsActive:        true,
	}
	store.shiftInfo = &models.ShiftInfo{
		Date:          "2024-06-15",
		DayForecast:   strPtr("£4,250.00"),
		NightForecast: strPtr("$3,100"),
	}
	engine := NewEngine(store)

	ctx, err := engine.BuildAssignmentContext("2024-06-15", models.ShiftTypeNight, store.shiftInfo)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-15", ctx.Context["date"])
	assert.Equal(t, "Saturday", ctx.Context["day_of_week"])
	assert.Equal(t, models.ShiftTypeNight, ctx.Context["shift_type"])
	assert.Equal(t, "DT2", ctx.Context["dt_type"])
	assert.Equal(t, 2, ctx.Context["num_cooks"])
	assert.Equal(t, 3100.0, ctx.Context["forecast"])

	// Settings merge in, but never override reserved keys
	assert.Equal(t, "north", ctx.Context["region"])
	assert.Equal(t, models.ShiftTypeNight, ctx.Context["shift_type"])
}

func TestBuildAssignmentContext_RuleAccumulation(t *testing.T) {
	store := newFakeStore()
	store.rules = []models.StaffingRule{
		{
			ID:        "r1",
			Name:      "weekend fries",
			Priority:  10,
			Condition: json.RawMessage(`{"day_of_week":{"in":["Saturday","Sunday"]}}`),
			Action:    json.RawMessage(`{"type":"require_position","position":"Fries","count":2}`),
			IsActive:  true,
		},
		{
			ID:        "r2",
			Name:      "close dining",
			Priority:  20,
			Condition: json.RawMessage(`{"shift_type":"Night Shift"}`),
			Action:    json.RawMessage(`{"type":"exclude_position","position":"Dining Area"}`),
			IsActive:  true,
		},
		{
			ID:        "r3",
			Name:      "extra cook early",
			Priority:  30,
			Condition: json.RawMessage(`{}`),
			Action:    json.RawMessage(`{"type":"adjust_position_count","position":"Cook","delta":1}`),
			IsActive:  true,
		},
		{
			ID:        "r4",
			Name:      "cook adjustment override",
			Priority:  40,
			Condition: json.RawMessage(`{}`),
			Action:    json.RawMessage(`{"type":"adjust_position_count","position":"Cook","delta":-1}`),
			IsActive:  true,
		},
		{
			ID:        "r5",
			Name:      "weekday only",
			Priority:  50,
			Condition: json.RawMessage(`{"day_of_week":{"nin":["Saturday","Sunday"]}}`),
			Action:    json.RawMessage(`{"type":"require_position","position":"Dining Area"}`),
			IsActive:  true,
		},
	}
	engine := NewEngine(store)

	// 2024-06-15 is a Saturday
	ctx, err := engine.BuildAssignmentContext("2024-06-15", models.ShiftTypeNight, nil)
	require.NoError(t, err)

	require.Len(t, ctx.AppliedRules, 4)
	assert.Equal(t, "weekend fries", ctx.AppliedRules[0].Name)

	require.Len(t, ctx.Config.RequiredPositions, 1)
	assert.Equal(t, "Fries", ctx.Config.RequiredPositions[0].Position)
	assert.Equal(t, 2, ctx.Config.RequiredPositions[0].Count)
	assert.Equal(t, "weekend fries", ctx.Config.RequiredPositions[0].Source)

	assert.Equal(t, []string{"Dining Area"}, ctx.Config.ExcludedPositions)

	// Later adjustment for the same position wins
	assert.Equal(t, -1, ctx.Config.PositionAdjustments["Cook"])
}

func TestBuildAssignmentContext_SkipsBrokenRules(t *testing.T) {
	store := newFakeStore()
	store.rules = []models.StaffingRule{
		{
			ID:        "bad-cond",
			Name:      "unreadable condition",
			Priority:  1,
			Condition: json.RawMessage(`{`),
			Action:    json.RawMessage(`{"type":"exclude_position","position":"Fries"}`),
			IsActive:  true,
		},
		{
			ID:        "bad-action",
			Name:      "matched but broken action",
			Priority:  2,
			Condition: json.RawMessage(`{}`),
			Action:    json.RawMessage(`{"type":"promote_position","position":"Fries"}`),
			IsActive:  true,
		},
		{
			ID:        "good",
			Name:      "still applies",
			Priority:  3,
			Condition: json.RawMessage(`{}`),
			Action:    json.RawMessage(`{"type":"exclude_position","position":"Dining Area"}`),
			IsActive:  true,
		},
	}
	engine := NewEngine(store)

	ctx, err := engine.BuildAssignmentContext("2024-06-15", models.ShiftTypeDay, nil)
	require.NoError(t, err)

	require.Len(t, ctx.AppliedRules, 1)
	assert.Equal(t, "still applies", ctx.AppliedRules[0].Name)
	assert.Equal(t, []string{"Dining Area"}, ctx.Config.ExcludedPositions)
}

func TestForecastParsing(t *testing.T) {
	info := &models.ShiftInfo{
		DayForecast:   strPtr("£4,250.00"),
		NightForecast: strPtr("not a number"),
	}

	assert.Equal(t, 4250.0, forecastForShift(info, models.ShiftTypeDay))
	assert.Equal(t, 0.0, forecastForShift(info, models.ShiftTypeNight))
	assert.Equal(t, 0.0, forecastForShift(nil, models.ShiftTypeDay))
	assert.Equal(t, 0.0, forecastForShift(&models.ShiftInfo{}, models.ShiftTypeDay))
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"£4,250.00", 4250},
		{"$3,100", 3100},
		{"€900.50", 900.5},
		{" 1200 ", 1200},
		{"", 0},
		{"TBD", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCurrency(tt.text), "parseCurrency(%q)", tt.text)
	}
}
