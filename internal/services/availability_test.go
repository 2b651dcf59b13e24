package services

import (
	"testing"

	"crewdeploy-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPositionAvailable_EmptyPositionIsAlwaysAvailable(t *testing.T) {
	engine := NewEngine(newFakeStore())

	// No occupants: available even without a position record
	available, err := engine.IsPositionAvailable("Cook", "2024-06-15", models.ShiftTypeDay)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsPositionAvailable_ImplicitSingleOccupant(t *testing.T) {
	store := newFakeStore()
	store.addPosition("p1", "Cook", models.PositionKindOrdinary)
	store.addDeployment("d1", "s1", "Ana", "2024-06-15", models.ShiftTypeDay, strPtr("Cook"))
	engine := NewEngine(store)

	available, err := engine.IsPositionAvailable("Cook", "2024-06-15", models.ShiftTypeDay)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsPositionAvailable_OccupiedWithoutPositionRecord(t *testing.T) {
	store := newFakeStore()
	store.addDeployment("d1", "s1", "Ana", "2024-06-15", models.ShiftTypeDay, strPtr("Cook"))
	engine := NewEngine(store)

	available, err := engine.IsPositionAvailable("Cook", "2024-06-15", models.ShiftTypeDay)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsPositionAvailable_CapacityRaisesLimit(t *testing.T) {
	store := newFakeStore()
	store.addPosition("p1", "Front Counter", models.PositionKindOrdinary)
	store.capacities = []models.PositionCapacity{
		{PositionID: "p1", ShiftType: models.ShiftTypeDay, MaxConcurrent: 3},
	}
	store.addDeployment("d1", "s1", "Ana", "2024-06-15", models.ShiftTypeDay, strPtr("Front Counter"))
	store.addDeployment("d2", "s2", "Ben", "2024-06-15", models.ShiftTypeDay, strPtr("Front Counter"))
	engine := NewEngine(store)

	available, err := engine.IsPositionAvailable("Front Counter", "2024-06-15", models.ShiftTypeDay)
	require.NoError(t, err)
	assert.True(t, available)

	store.addDeployment("d3", "s3", "Cam", "2024-06-15", models.ShiftTypeDay, strPtr("Front Counter"))
	available, err = engine.IsPositionAvailable("Front Counter", "2024-06-15", models.ShiftTypeDay)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestIsPositionAvailable_BothCapacityAppliesToEitherShift(t *testing.T) {
	store := newFakeStore()
	store.addPosition("p1", "Pack 1", models.PositionKindPack)
	store.capacities = []models.PositionCapacity{
		{PositionID: "p1", ShiftType: models.ShiftTypeBoth, MaxConcurrent: 2},
	}
	store.addDeployment("d1", "s1", "Ana", "2024-06-15", models.ShiftTypeNight, strPtr("Pack 1"))
	engine := NewEngine(store)

	available, err := engine.IsPositionAvailable("Pack 1", "2024-06-15", models.ShiftTypeNight)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsPositionAvailable_ShiftsCountedSeparately(t *testing.T) {
	store := newFakeStore()
	store.addPosition("p1", "Cook", models.PositionKindOrdinary)
	store.addDeployment("d1", "s1", "Ana", "2024-06-15", models.ShiftTypeDay, strPtr("Cook"))
	engine := NewEngine(store)

	available, err := engine.IsPositionAvailable("Cook", "2024-06-15", models.ShiftTypeNight)
	require.NoError(t, err)
	assert.True(t, available)
}
