package services

import "fmt"

// IsPositionAvailable reports whether a position can take one more occupant
// for the given date/shift. Positions without a capacity record are
// single-occupant; a capacity record (exact shift type or "Both") raises the
// limit to max_concurrent.
func (e *Engine) IsPositionAvailable(positionName, date, shiftType string) (bool, error) {
	occupied, err := e.store.CountPositionOccupancy(positionName, date, shiftType)
	if err != nil {
		return false, fmt.Errorf("failed to count occupancy for %s: %w", positionName, err)
	}

	if occupied == 0 {
		return true, nil
	}

	position, err := e.store.GetPositionByName(positionName)
	if err != nil {
		return false, fmt.Errorf("failed to look up position %s: %w", positionName, err)
	}
	if position == nil {
		// No position record means no capacity record either
		return false, nil
	}

	capacity, err := e.store.GetPositionCapacity(position.ID, shiftType)
	if err != nil {
		return false, fmt.Errorf("failed to look up capacity for %s: %w", positionName, err)
	}
	if capacity == nil {
		return false, nil
	}

	return occupied < capacity.MaxConcurrent, nil
}
