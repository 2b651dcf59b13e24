package services

import (
	"encoding/json"
	"testing"

	"crewdeploy-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "2024-06-15"

func TestAutoAssign_DisabledShortCircuits(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	engine := NewEngine(store)

	config := DefaultAssignmentConfig()
	config.Enabled = false

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, &config)
	require.NoError(t, err)
	assert.Equal(t, "Auto-assignment is disabled", outcome.Error)
	assert.Empty(t, outcome.Assigned)
	assert.Empty(t, store.positionUpdates)
}

func TestAutoAssign_DefaultPositionWins(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Fries", Priority: 1, ShiftType: models.ShiftTypeBoth},
	}
	// Strong training signal that must still lose to the default
	store.trainingStations["s1"] = []models.StaffTrainingStation{{StaffID: "s1", Station: "Grill"}}
	store.stationMappings["Grill"] = []models.StationPositionMapping{{Station: "Grill", Position: "Cook", Priority: 1}}
	store.rankings[key2("s1", "Grill")] = []models.StaffRanking{{StaffID: "s1", Station: "Grill", Rating: 10}}
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assert.Equal(t, "Fries", outcome.Assigned[0].Position)
	assert.Equal(t, CandidateSourceDefault, outcome.Assigned[0].Source)
	assert.Equal(t, 1009.0, outcome.Assigned[0].Score)
	assert.Equal(t, "Fries", store.positionUpdates["d1"])
}

func TestAutoAssign_DefaultPriorityOrdering(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Drinks", Priority: 3, ShiftType: models.ShiftTypeBoth},
		{StaffID: "s1", Position: "Fries", Priority: 1, ShiftType: models.ShiftTypeBoth},
	}
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assert.Equal(t, "Fries", outcome.Assigned[0].Position)
}

func TestAutoAssign_DefaultFilteredByShiftType(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeNight, nil)
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Fries", Priority: 1, ShiftType: "Day"},
		{StaffID: "s1", Position: "Drinks", Priority: 2, ShiftType: "Night"},
	}
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeNight, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assert.Equal(t, "Drinks", outcome.Assigned[0].Position)
}

func TestAutoAssign_SkipsAlreadyPositioned(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, strPtr("Cook"))
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Fries", Priority: 1, ShiftType: models.ShiftTypeBoth},
	}
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	assert.Empty(t, outcome.Assigned)
	assert.Empty(t, outcome.Skipped)
	assert.Empty(t, store.positionUpdates)
}

func TestAutoAssign_NoCandidates(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, "No suitable position found", outcome.Skipped[0].Reason)
}

func TestAutoAssign_ExcludedTopCandidateSkips(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Fries", Priority: 1, ShiftType: models.ShiftTypeBoth},
		{StaffID: "s1", Position: "Drinks", Priority: 2, ShiftType: models.ShiftTypeBoth},
	}
	store.rules = []models.StaffingRule{
		{
			ID:        "r1",
			Name:      "no fries today",
			Priority:  1,
			Condition: json.RawMessage(`{}`),
			Action:    json.RawMessage(`{"type":"exclude_position","position":"Fries"}`),
			IsActive:  true,
		},
	}
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	// The runner-up is deliberately not consulted
	assert.Empty(t, outcome.Assigned)
	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, "Position Fries is excluded by staffing rules", outcome.Skipped[0].Reason)
	assert.Empty(t, store.positionUpdates)
}

func TestAutoAssign_TrainingScoring(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.trainingStations["s1"] = []models.StaffTrainingStation{{StaffID: "s1", Station: "Grill"}}
	store.stationMappings["Grill"] = []models.StationPositionMapping{
		{Station: "Grill", Position: "Cook", Priority: 1},
		{Station: "Grill", Position: "Cook2", Priority: 2},
	}
	store.rankings[key2("s1", "Grill")] = []models.StaffRanking{
		{StaffID: "s1", Station: "Grill", Rating: 8},
		{StaffID: "s1", Station: "Grill", Rating: 6},
	}
	store.signOffs[key2("s1", "Grill")] = true
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assigned := outcome.Assigned[0]
	assert.Equal(t, "Cook", assigned.Position)
	assert.Equal(t, CandidateSourceTraining, assigned.Source)
	// 100 base + avg(8,6)*10 + 20 sign-off - priority 1 * 5
	assert.Equal(t, 185.0, assigned.Score)
}

func TestAutoAssign_RankingThresholdDiscards(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.trainingStations["s1"] = []models.StaffTrainingStation{{StaffID: "s1", Station: "Grill"}}
	store.stationMappings["Grill"] = []models.StationPositionMapping{{Station: "Grill", Position: "Cook", Priority: 1}}
	store.rankings[key2("s1", "Grill")] = []models.StaffRanking{{StaffID: "s1", Station: "Grill", Rating: 4}}
	engine := NewEngine(store)

	config := DefaultAssignmentConfig()
	config.MinRankingThreshold = 5

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, &config)
	require.NoError(t, err)

	assert.Empty(t, outcome.Assigned)
	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, "No suitable position found", outcome.Skipped[0].Reason)
}

func TestAutoAssign_UnratedStaffSurvivesThreshold(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.trainingStations["s1"] = []models.StaffTrainingStation{{StaffID: "s1", Station: "Grill"}}
	store.stationMappings["Grill"] = []models.StationPositionMapping{{Station: "Grill", Position: "Cook", Priority: 1}}
	engine := NewEngine(store)

	config := DefaultAssignmentConfig()
	config.MinRankingThreshold = 5

	// No rankings at all: the threshold only applies when ratings exist
	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, &config)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assert.Equal(t, "Cook", outcome.Assigned[0].Position)
}

func TestAutoAssign_PreferSignedOffOnly(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.trainingStations["s1"] = []models.StaffTrainingStation{{StaffID: "s1", Station: "Grill"}}
	store.stationMappings["Grill"] = []models.StationPositionMapping{{Station: "Grill", Position: "Cook", Priority: 1}}
	engine := NewEngine(store)

	config := DefaultAssignmentConfig()
	config.PreferSignedOffOnly = true

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, &config)
	require.NoError(t, err)
	assert.Empty(t, outcome.Assigned)

	store.signOffs[key2("s1", "Grill")] = true
	outcome, err = engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, &config)
	require.NoError(t, err)
	require.Len(t, outcome.Assigned, 1)
}

func TestAutoAssign_ClosingPenaltyReordersNightCandidates(t *testing.T) {
	store := newFakeStore()
	store.addPosition("p-cook", "Cook", models.PositionKindOrdinary)
	store.addPosition("p-fries", "Fries", models.PositionKindOrdinary)
	store.closingReqs = []models.ClosingStationRequirement{
		{PositionID: "p-cook", ShiftType: models.ShiftTypeNight, RequiresClosingTraining: true, MinimumTrainedStaff: 1, IsActive: true},
	}
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeNight, nil)
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Cook", Priority: 1, ShiftType: models.ShiftTypeBoth},
		{StaffID: "s1", Position: "Fries", Priority: 2, ShiftType: models.ShiftTypeBoth},
	}
	engine := NewEngine(store)

	// Ana holds no closing training, so Cook takes the penalty and Fries wins
	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeNight, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assert.Equal(t, "Fries", outcome.Assigned[0].Position)
	assert.False(t, outcome.Assigned[0].IsClosingDuty)
}

func TestAutoAssign_ValidatedClosingTrainingKeepsPosition(t *testing.T) {
	store := newFakeStore()
	store.addPosition("p-cook", "Cook", models.PositionKindOrdinary)
	store.closingReqs = []models.ClosingStationRequirement{
		{PositionID: "p-cook", ShiftType: models.ShiftTypeNight, RequiresClosingTraining: true, MinimumTrainedStaff: 1, IsActive: true},
	}
	store.closingRecords[key2("s1", "p-cook")] = &models.ClosingTrainingRecord{
		StaffID: "s1", PositionID: "p-cook", IsTrained: true, ExpiryDate: strPtr("2025-01-01"),
	}
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeNight, nil)
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Cook", Priority: 1, ShiftType: models.ShiftTypeBoth},
	}
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeNight, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assigned := outcome.Assigned[0]
	assert.Equal(t, "Cook", assigned.Position)
	assert.True(t, assigned.IsClosingDuty)
	assert.True(t, assigned.ClosingValidated)
	// 1000 + (10-1) + 100 closing bonus
	assert.Equal(t, 1109.0, assigned.Score)
	assert.True(t, store.closingUpdates["d1"])
}

func TestAutoAssign_CapacityConsumedDuringBatch(t *testing.T) {
	store := newFakeStore()
	store.addPosition("p-cook", "Cook", models.PositionKindOrdinary)
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.addDeployment("d2", "s2", "Ben", testDate, models.ShiftTypeDay, nil)
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Cook", Priority: 1, ShiftType: models.ShiftTypeBoth},
	}
	store.defaultPositions["s2"] = []models.StaffDefaultPosition{
		{StaffID: "s2", Position: "Cook", Priority: 1, ShiftType: models.ShiftTypeBoth},
	}
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assert.Equal(t, "d1", outcome.Assigned[0].DeploymentID)
	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, "d2", outcome.Skipped[0].DeploymentID)
}

func TestAutoAssign_PerDeploymentFailureAccumulates(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", testDate, models.ShiftTypeDay, nil)
	store.addDeployment("d2", "s2", "Ben", testDate, models.ShiftTypeDay, nil)
	store.defaultPositions["s1"] = []models.StaffDefaultPosition{
		{StaffID: "s1", Position: "Fries", Priority: 1, ShiftType: models.ShiftTypeBoth},
	}
	store.defaultPositionErrs["s2"] = errBoom
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Assigned, 1)
	assert.Equal(t, "Ana", outcome.Assigned[0].StaffName)
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, "Ben", outcome.Failed[0].StaffName)
	assert.Contains(t, outcome.Failed[0].Error, "boom")
}

func TestAutoAssign_OutcomeCarriesRuleContext(t *testing.T) {
	store := newFakeStore()
	store.rules = []models.StaffingRule{
		{
			ID:        "r1",
			Name:      "weekend fries",
			Priority:  1,
			Condition: json.RawMessage(`{"day_of_week":"Saturday"}`),
			Action:    json.RawMessage(`{"type":"require_position","position":"Fries","count":2}`),
			IsActive:  true,
		},
	}
	engine := NewEngine(store)

	outcome, err := engine.IntelligentAutoDeployment(testDate, models.ShiftTypeDay, nil)
	require.NoError(t, err)

	require.Len(t, outcome.AppliedRules, 1)
	assert.Equal(t, "weekend fries", outcome.AppliedRules[0].Name)
	require.NotNil(t, outcome.Config)
	require.Len(t, outcome.Config.RequiredPositions, 1)
	assert.Contains(t, positionNames(outcome.RequiredPositions), "Fries")
}
