package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"crewdeploy-backend/internal/middleware"
	"crewdeploy-backend/internal/models"
	"crewdeploy-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GetAllStaff returns every staff member ordered by hire date
func GetAllStaff(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: GET /api/staff")

		var staff []models.Staff
		query := `SELECT * FROM staff ORDER BY created_at ASC`
		if err := db.Select(&staff, query); err != nil {
			log.Printf("❌ Error fetching staff: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, staff)
	}
}

// GetStaff returns a single staff member by ID
func GetStaff(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		var staff models.Staff
		query := `SELECT * FROM staff WHERE id = $1`
		err := db.Get(&staff, query, staffID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Staff member not found")
			return
		}
		if err != nil {
			log.Printf("❌ Error fetching staff member: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, staff)
	}
}

type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive *bool  `json:"is_active"`
}

// CreateStaff creates a new staff member
func CreateStaff(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/staff")

		var req CreateStaffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" {
			utils.RespondError(w, http.StatusBadRequest, "Name is required")
			return
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		staffID := uuid.New().String()
		now := time.Now().Unix()

		query := `
			INSERT INTO staff (id, name, email, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := db.Exec(query, staffID, req.Name, req.Email, isActive, now, now); err != nil {
			log.Printf("❌ Error creating staff member: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create staff member")
			return
		}

		log.Printf("✅ Staff member created: %s (%s)", req.Name, staffID)
		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{
			"id":   staffID,
			"name": req.Name,
		})
	}
}

type UpdateStaffRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	IsActive *bool   `json:"is_active"`
}

// UpdateStaff applies a partial update to a staff member
func UpdateStaff(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		var req UpdateStaffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var existing models.Staff
		if err := db.Get(&existing, `SELECT * FROM staff WHERE id = $1`, staffID); err != nil {
			utils.RespondError(w, http.StatusNotFound, "Staff member not found")
			return
		}

		if req.Name != nil {
			existing.Name = *req.Name
		}
		if req.Email != nil {
			existing.Email = req.Email
		}
		if req.IsActive != nil {
			existing.IsActive = *req.IsActive
		}

		query := `
			UPDATE staff
			SET name = $1, email = $2, is_active = $3, updated_at = $4
			WHERE id = $5
		`
		if _, err := db.Exec(query, existing.Name, existing.Email, existing.IsActive, time.Now().Unix(), staffID); err != nil {
			log.Printf("❌ Error updating staff member: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update staff member")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, existing)
	}
}

// DeleteStaff removes a staff member and their dependent records
func DeleteStaff(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		tx, err := db.Beginx()
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}
		defer tx.Rollback()

		// Dependent rows first
		dependents := []string{
			`DELETE FROM staff_default_positions WHERE staff_id = $1`,
			`DELETE FROM staff_training_stations WHERE staff_id = $1`,
			`DELETE FROM staff_rankings WHERE staff_id = $1`,
			`DELETE FROM staff_sign_offs WHERE staff_id = $1`,
			`DELETE FROM closing_training_records WHERE staff_id = $1`,
			`DELETE FROM deployments WHERE staff_id = $1`,
		}
		for _, q := range dependents {
			if _, err := tx.Exec(q, staffID); err != nil {
				log.Printf("❌ Error deleting staff dependents: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to delete staff member")
				return
			}
		}

		result, err := tx.Exec(`DELETE FROM staff WHERE id = $1`, staffID)
		if err != nil {
			log.Printf("❌ Error deleting staff member: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete staff member")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Staff member not found")
			return
		}

		if err := tx.Commit(); err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete staff member")
			return
		}

		log.Printf("🗑️ Staff member deleted: %s", staffID)
		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": staffID})
	}
}

// GetStaffDefaultPositions lists a staff member's default positions by priority
func GetStaffDefaultPositions(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		var positions []models.StaffDefaultPosition
		query := `SELECT * FROM staff_default_positions WHERE staff_id = $1 ORDER BY priority ASC`
		if err := db.Select(&positions, query, staffID); err != nil {
			log.Printf("❌ Error fetching default positions: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, positions)
	}
}

type SetDefaultPositionRequest struct {
	Position  string `json:"position"`
	Priority  int    `json:"priority"`
	ShiftType string `json:"shift_type"`
}

// SetStaffDefaultPosition adds a default position preference for a staff member
func SetStaffDefaultPosition(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		var req SetDefaultPositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Position == "" {
			utils.RespondError(w, http.StatusBadRequest, "Position is required")
			return
		}
		if req.ShiftType == "" {
			req.ShiftType = models.ShiftTypeBoth
		}

		query := `
			INSERT INTO staff_default_positions (id, staff_id, position, priority, shift_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		id := uuid.New().String()
		if _, err := db.Exec(query, id, staffID, req.Position, req.Priority, req.ShiftType, time.Now().Unix()); err != nil {
			log.Printf("❌ Error setting default position: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to set default position")
			return
		}

		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": id})
	}
}

// GetStaffTrainingStations lists a staff member's trained stations
func GetStaffTrainingStations(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		var stations []models.StaffTrainingStation
		query := `SELECT * FROM staff_training_stations WHERE staff_id = $1 ORDER BY is_primary DESC, station ASC`
		if err := db.Select(&stations, query, staffID); err != nil {
			log.Printf("❌ Error fetching training stations: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, stations)
	}
}

type AddTrainingStationRequest struct {
	Station   string `json:"station"`
	IsPrimary bool   `json:"is_primary"`
}

// AddStaffTrainingStation records a trained station for a staff member
func AddStaffTrainingStation(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		var req AddTrainingStationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Station == "" {
			utils.RespondError(w, http.StatusBadRequest, "Station is required")
			return
		}

		query := `
			INSERT INTO staff_training_stations (id, staff_id, station, is_primary, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (staff_id, station) DO UPDATE SET is_primary = $4
		`
		id := uuid.New().String()
		if _, err := db.Exec(query, id, staffID, req.Station, req.IsPrimary, time.Now().Unix()); err != nil {
			log.Printf("❌ Error adding training station: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to add training station")
			return
		}

		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": id})
	}
}

type AddRankingRequest struct {
	Station string  `json:"station"`
	Rating  float64 `json:"rating"`
}

// AddStaffRanking records a performance rating for a staff member on a station
func AddStaffRanking(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		var req AddRankingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Station == "" {
			utils.RespondError(w, http.StatusBadRequest, "Station is required")
			return
		}
		if req.Rating < 0 || req.Rating > 10 {
			utils.RespondError(w, http.StatusBadRequest, "Rating must be between 0 and 10")
			return
		}

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		query := `
			INSERT INTO staff_rankings (id, rater_id, staff_id, station, rating, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		id := uuid.New().String()
		if _, err := db.Exec(query, id, userClaims.UserID, staffID, req.Station, req.Rating, time.Now().Unix()); err != nil {
			log.Printf("❌ Error adding ranking: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to add ranking")
			return
		}

		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": id})
	}
}

type AddSignOffRequest struct {
	Station string `json:"station"`
}

// AddStaffSignOff records a manager sign-off for a staff member on a station
func AddStaffSignOff(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID := chi.URLParam(r, "id")

		var req AddSignOffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Station == "" {
			utils.RespondError(w, http.StatusBadRequest, "Station is required")
			return
		}

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		query := `
			INSERT INTO staff_sign_offs (id, staff_id, station, manager_id, signed_off_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (staff_id, station) DO UPDATE SET manager_id = $4, signed_off_at = $5
		`
		id := uuid.New().String()
		if _, err := db.Exec(query, id, staffID, req.Station, userClaims.UserID, time.Now().Unix()); err != nil {
			log.Printf("❌ Error adding sign-off: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to add sign-off")
			return
		}

		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": id})
	}
}
