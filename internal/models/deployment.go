package models

// Shift type values used across deployments and configuration records.
// Configuration rows may also carry "Both" to apply to either shift.
const (
	ShiftTypeDay   = "Day Shift"
	ShiftTypeNight = "Night Shift"
	ShiftTypeBoth  = "Both"
)

// Deployment represents one staff member's work assignment for a date/shift.
// The assignment engine only ever touches position, secondary, has_secondary,
// is_closing_duty and closing_validated; everything else belongs to the
// scheduling CRUD screens.
type Deployment struct {
	ID               string  `json:"id" db:"id"`
	StaffID          string  `json:"staff_id" db:"staff_id"`
	StaffName        string  `json:"staff_name" db:"staff_name"` // joined from staff for display/results
	Date             string  `json:"date" db:"date"`             // ISO calendar date, e.g. "2024-06-15"
	ShiftType        string  `json:"shift_type" db:"shift_type"` // "Day Shift" or "Night Shift"
	Position         *string `json:"position" db:"position"`
	Secondary        *string `json:"secondary" db:"secondary"`
	HasSecondary     bool    `json:"has_secondary" db:"has_secondary"`
	IsClosingDuty    bool    `json:"is_closing_duty" db:"is_closing_duty"`
	ClosingValidated bool    `json:"closing_validated" db:"closing_validated"`
	CreatedAt        int64   `json:"created_at" db:"created_at"`
	UpdatedAt        int64   `json:"updated_at" db:"updated_at"`
}

// HasPosition reports whether a primary position has been assigned.
func (d *Deployment) HasPosition() bool {
	return d.Position != nil && *d.Position != ""
}

// ShiftInfo carries per-date shift metadata, notably the forecast sales
// figures entered as currency text by managers.
type ShiftInfo struct {
	ID            string  `json:"id" db:"id"`
	Date          string  `json:"date" db:"date"`
	DayForecast   *string `json:"day_forecast" db:"day_forecast"`     // e.g. "£4,250.00"
	NightForecast *string `json:"night_forecast" db:"night_forecast"` // e.g. "$3,100"
	Notes         *string `json:"notes" db:"notes"`
	CreatedAt     int64   `json:"created_at" db:"created_at"`
	UpdatedAt     int64   `json:"updated_at" db:"updated_at"`
}
