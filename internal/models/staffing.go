package models

import "encoding/json"

// Drive-through configuration values
const (
	DTTypeDT1  = "DT1" // single-lane
	DTTypeDT2  = "DT2" // dual-lane
	DTTypeNone = "None"
)

// ShiftConfiguration is the active staffing template per shift type. The row
// with config_name = "default" and is_active = true is the one the engine
// resolves; Settings carries free-form extras merged into the rule context.
type ShiftConfiguration struct {
	ID                 string          `json:"id" db:"id"`
	ConfigName         string          `json:"config_name" db:"config_name"`
	ShiftType          string          `json:"shift_type" db:"shift_type"` // "Day Shift", "Night Shift" or "Both"
	DTType             string          `json:"dt_type" db:"dt_type"`
	NumCooks           int             `json:"num_cooks" db:"num_cooks"`
	NumPackStations    int             `json:"num_pack_stations" db:"num_pack_stations"`
	RequireShiftRunner bool            `json:"require_shift_runner" db:"require_shift_runner"`
	RequireManager     bool            `json:"require_manager" db:"require_manager"`
	EffectiveDate      *string         `json:"effective_date" db:"effective_date"` // ISO date, optional
	Settings           json.RawMessage `json:"settings" db:"settings"`             // free-form JSON object
	IsActive           bool            `json:"is_active" db:"is_active"`
	CreatedAt          int64           `json:"created_at" db:"created_at"`
	UpdatedAt          int64           `json:"updated_at" db:"updated_at"`
}

// CorePositionRequirement is a mandatory/optional position entry with
// min/max counts, scoped to a shift type
type CorePositionRequirement struct {
	ID          string `json:"id" db:"id"`
	ShiftType   string `json:"shift_type" db:"shift_type"`
	Position    string `json:"position" db:"position"`
	MinCount    int    `json:"min_count" db:"min_count"`
	MaxCount    int    `json:"max_count" db:"max_count"`
	Priority    int    `json:"priority" db:"priority"` // lower = filled/checked first
	IsMandatory bool   `json:"is_mandatory" db:"is_mandatory"`
	IsActive    bool   `json:"is_active" db:"is_active"`
	CreatedAt   int64  `json:"created_at" db:"created_at"`
}

// StaffingRule is a priority-ordered conditional rule. Condition is a
// declarative JSON tree evaluated against the shift context; Action is
// decoded into a typed rule action by the services package at load time.
type StaffingRule struct {
	ID        string          `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Priority  int             `json:"priority" db:"priority"` // ascending evaluation order
	Condition json.RawMessage `json:"condition" db:"condition"`
	Action    json.RawMessage `json:"action" db:"action"`
	IsActive  bool            `json:"is_active" db:"is_active"`
	CreatedAt int64           `json:"created_at" db:"created_at"`
	UpdatedAt int64           `json:"updated_at" db:"updated_at"`
}
