package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"crewdeploy-backend/internal/models"
	"crewdeploy-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GetAllPositions returns every active position
func GetAllPositions(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var positions []models.Position
		query := `SELECT * FROM positions WHERE is_active = TRUE ORDER BY name ASC`
		if err := db.Select(&positions, query); err != nil {
			log.Printf("❌ Error fetching positions: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, positions)
	}
}

type CreatePositionRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// CreatePosition creates a new position
func CreatePosition(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/manager/positions")

		var req CreatePositionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			utils.RespondError(w, http.StatusBadRequest, "Name is required")
			return
		}
		if req.Kind == "" {
			req.Kind = string(models.PositionKindOrdinary)
		}
		if req.Kind != string(models.PositionKindOrdinary) && req.Kind != string(models.PositionKindPack) {
			utils.RespondError(w, http.StatusBadRequest, "Kind must be 'ordinary' or 'pack'")
			return
		}

		positionID := uuid.New().String()
		now := time.Now().Unix()

		query := `
			INSERT INTO positions (id, name, kind, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, TRUE, $4, $5)
		`
		if _, err := db.Exec(query, positionID, req.Name, req.Kind, now, now); err != nil {
			log.Printf("❌ Error creating position: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create position")
			return
		}

		log.Printf("✅ Position created: %s (%s)", req.Name, positionID)
		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{
			"id":   positionID,
			"name": req.Name,
			"kind": req.Kind,
		})
	}
}

// DeletePosition soft-deletes a position
func DeletePosition(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positionID := chi.URLParam(r, "id")

		result, err := db.Exec(`UPDATE positions SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().Unix(), positionID)
		if err != nil {
			log.Printf("❌ Error deleting position: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete position")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Position not found")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": positionID})
	}
}

// GetPositionCapacities lists capacity overrides for a position
func GetPositionCapacities(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positionID := chi.URLParam(r, "id")

		var capacities []models.PositionCapacity
		query := `SELECT * FROM position_capacities WHERE position_id = $1 ORDER BY shift_type ASC`
		if err := db.Select(&capacities, query, positionID); err != nil {
			log.Printf("❌ Error fetching capacities: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, capacities)
	}
}

type SetCapacityRequest struct {
	ShiftType     string `json:"shift_type"`
	MaxConcurrent int    `json:"max_concurrent"`
}

// SetPositionCapacity sets the concurrent-occupancy limit for a position on a
// shift type. Positions without a capacity row hold a single person.
func SetPositionCapacity(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positionID := chi.URLParam(r, "id")

		var req SetCapacityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.MaxConcurrent < 1 {
			utils.RespondError(w, http.StatusBadRequest, "max_concurrent must be at least 1")
			return
		}
		if req.ShiftType == "" {
			req.ShiftType = models.ShiftTypeBoth
		}

		// Make sure the position exists
		var exists bool
		if err := db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM positions WHERE id = $1)`, positionID); err != nil || !exists {
			utils.RespondError(w, http.StatusNotFound, "Position not found")
			return
		}

		query := `
			INSERT INTO position_capacities (id, position_id, shift_type, max_concurrent, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (position_id, shift_type) DO UPDATE SET max_concurrent = $4
		`
		if _, err := db.Exec(query, uuid.New().String(), positionID, req.ShiftType, req.MaxConcurrent, time.Now().Unix()); err != nil {
			log.Printf("❌ Error setting capacity: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to set capacity")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
			"position_id":    positionID,
			"shift_type":     req.ShiftType,
			"max_concurrent": req.MaxConcurrent,
		})
	}
}

type SecondaryMappingRequest struct {
	SecondaryPosition string `json:"secondary_position"`
	ShiftType         string `json:"shift_type"`
	Priority          int    `json:"priority"`
	AutoDeploy        *bool  `json:"auto_deploy"`
	IsEnabled         *bool  `json:"is_enabled"`
}

// AddSecondaryMapping registers a secondary position behind a primary position
func AddSecondaryMapping(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positionID := chi.URLParam(r, "id")

		var req SecondaryMappingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.SecondaryPosition == "" {
			utils.RespondError(w, http.StatusBadRequest, "secondary_position is required")
			return
		}
		if req.ShiftType == "" {
			req.ShiftType = models.ShiftTypeBoth
		}

		var position models.Position
		err := db.Get(&position, `SELECT * FROM positions WHERE id = $1`, positionID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Position not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		autoDeploy := true
		if req.AutoDeploy != nil {
			autoDeploy = *req.AutoDeploy
		}
		isEnabled := true
		if req.IsEnabled != nil {
			isEnabled = *req.IsEnabled
		}

		query := `
			INSERT INTO position_secondary_mappings (id, primary_position_id, secondary_position, shift_type, priority, auto_deploy, is_enabled, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		id := uuid.New().String()
		if _, err := db.Exec(query, id, positionID, req.SecondaryPosition, req.ShiftType, req.Priority, autoDeploy, isEnabled, time.Now().Unix()); err != nil {
			log.Printf("❌ Error adding secondary mapping: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to add secondary mapping")
			return
		}

		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": id})
	}
}
