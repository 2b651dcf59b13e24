package models

// ClosingTrainingRecord marks a staff member as qualified for closing duty
// on a position. A record only counts if is_trained is true and the expiry
// date (when set) has not passed.
type ClosingTrainingRecord struct {
	ID                 string  `json:"id" db:"id"`
	StaffID            string  `json:"staff_id" db:"staff_id"`
	PositionID         string  `json:"position_id" db:"position_id"`
	IsTrained          bool    `json:"is_trained" db:"is_trained"`
	TrainedDate        *string `json:"trained_date" db:"trained_date"`                 // ISO date
	ExpiryDate         *string `json:"expiry_date" db:"expiry_date"`                   // ISO date, optional
	ManagerSignoffDate *string `json:"manager_signoff_date" db:"manager_signoff_date"` // ISO date, optional
	CreatedAt          int64   `json:"created_at" db:"created_at"`
	UpdatedAt          int64   `json:"updated_at" db:"updated_at"`
}

// ClosingStationRequirement declares, per (position, shift type), whether
// closing training is required and how many trained staff must be assigned
type ClosingStationRequirement struct {
	ID                      string `json:"id" db:"id"`
	PositionID              string `json:"position_id" db:"position_id"`
	ShiftType               string `json:"shift_type" db:"shift_type"`
	RequiresClosingTraining bool   `json:"requires_closing_training" db:"requires_closing_training"`
	MinimumTrainedStaff     int    `json:"minimum_trained_staff" db:"minimum_trained_staff"`
	IsActive                bool   `json:"is_active" db:"is_active"`
	CreatedAt               int64  `json:"created_at" db:"created_at"`
}
