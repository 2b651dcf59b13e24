package models

// PositionKind distinguishes ordinary single-role positions from pack
// stations, which allow multiple concurrent occupants
type PositionKind string

const (
	PositionKindOrdinary PositionKind = "ordinary"
	PositionKindPack     PositionKind = "pack"
)

// Position is a named job slot staff can be deployed to
type Position struct {
	ID         string       `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	Kind       PositionKind `json:"kind" db:"kind"`
	LocationID *string      `json:"location_id" db:"location_id"`
	IsActive   bool         `json:"is_active" db:"is_active"`
	CreatedAt  int64        `json:"created_at" db:"created_at"`
	UpdatedAt  int64        `json:"updated_at" db:"updated_at"`
}

// PositionCapacity overrides the implicit single-occupant rule for a
// position, optionally differentiated by shift type ("Both" matches either).
type PositionCapacity struct {
	ID            string `json:"id" db:"id"`
	PositionID    string `json:"position_id" db:"position_id"`
	ShiftType     string `json:"shift_type" db:"shift_type"`
	MaxConcurrent int    `json:"max_concurrent" db:"max_concurrent"`
	CreatedAt     int64  `json:"created_at" db:"created_at"`
}

// StationPositionMapping maps a trained station to a position eligible to
// receive staff trained at that station. Lower priority numbers are
// considered first.
type StationPositionMapping struct {
	ID        string `json:"id" db:"id"`
	Station   string `json:"station" db:"station"`
	Position  string `json:"position" db:"position"`
	Priority  int    `json:"priority" db:"priority"`
	IsActive  bool   `json:"is_active" db:"is_active"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// PositionSecondaryMapping maps a primary position to an eligible secondary
// (helper) position, gated by auto_deploy and scoped to a shift type.
type PositionSecondaryMapping struct {
	ID                string `json:"id" db:"id"`
	PrimaryPositionID string `json:"primary_position_id" db:"primary_position_id"`
	SecondaryPosition string `json:"secondary_position" db:"secondary_position"`
	ShiftType         string `json:"shift_type" db:"shift_type"`
	Priority          int    `json:"priority" db:"priority"`
	AutoDeploy        bool   `json:"auto_deploy" db:"auto_deploy"`
	IsEnabled         bool   `json:"is_enabled" db:"is_enabled"`
	CreatedAt         int64  `json:"created_at" db:"created_at"`
}
