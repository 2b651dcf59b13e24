package models

// Staff represents an employee who can be deployed to positions
type Staff struct {
	ID        string  `json:"id" db:"id"`
	UserID    *string `json:"user_id" db:"user_id"` // linked login account, if any
	Name      string  `json:"name" db:"name"`
	Email     *string `json:"email" db:"email"`
	IsActive  bool    `json:"is_active" db:"is_active"`
	CreatedAt int64   `json:"created_at" db:"created_at"` // also drives closing-staff seniority
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}

// StaffDefaultPosition is an explicit staff -> position preference with a
// priority and shift-type applicability ("Day", "Night" or "Both").
type StaffDefaultPosition struct {
	ID        string `json:"id" db:"id"`
	StaffID   string `json:"staff_id" db:"staff_id"`
	Position  string `json:"position" db:"position"`
	Priority  int    `json:"priority" db:"priority"` // lower number = stronger preference
	ShiftType string `json:"shift_type" db:"shift_type"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// StaffTrainingStation marks a staff member as trained on a station
type StaffTrainingStation struct {
	ID        string `json:"id" db:"id"`
	StaffID   string `json:"staff_id" db:"staff_id"`
	Station   string `json:"station" db:"station"`
	IsPrimary bool   `json:"is_primary" db:"is_primary"`
	CreatedAt int64  `json:"created_at" db:"created_at"`
}

// StaffRanking is one rater's rating of a staff member at a station.
// Multiple raters are averaged by the engine.
type StaffRanking struct {
	ID        string  `json:"id" db:"id"`
	RaterID   string  `json:"rater_id" db:"rater_id"`
	StaffID   string  `json:"staff_id" db:"staff_id"`
	Station   string  `json:"station" db:"station"`
	Rating    float64 `json:"rating" db:"rating"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
}

// StaffSignOff is a manager's confirmation that a staff member is approved
// for a station
type StaffSignOff struct {
	ID          string `json:"id" db:"id"`
	StaffID     string `json:"staff_id" db:"staff_id"`
	Station     string `json:"station" db:"station"`
	ManagerID   string `json:"manager_id" db:"manager_id"`
	SignedOffAt int64  `json:"signed_off_at" db:"signed_off_at"`
}
