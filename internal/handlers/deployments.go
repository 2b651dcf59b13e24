package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"crewdeploy-backend/internal/middleware"
	"crewdeploy-backend/internal/models"
	"crewdeploy-backend/internal/websocket"
	"crewdeploy-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GetDeployments returns the deployment board for a date/shift
func GetDeployments(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		shiftType := r.URL.Query().Get("shift_type")

		if date == "" {
			utils.RespondError(w, http.StatusBadRequest, "date query parameter is required")
			return
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		var deployments []models.Deployment
		var err error
		if shiftType != "" {
			query := `
				SELECT d.*, st.name AS staff_name
				FROM deployments d
				JOIN staff st ON st.id = d.staff_id
				WHERE d.date = $1 AND d.shift_type = $2
				ORDER BY st.name ASC
			`
			err = db.Select(&deployments, query, date, shiftType)
		} else {
			query := `
				SELECT d.*, st.name AS staff_name
				FROM deployments d
				JOIN staff st ON st.id = d.staff_id
				WHERE d.date = $1
				ORDER BY d.shift_type ASC, st.name ASC
			`
			err = db.Select(&deployments, query, date)
		}
		if err != nil {
			log.Printf("❌ Error fetching deployments: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, deployments)
	}
}

type CreateDeploymentRequest struct {
	StaffID   string  `json:"staff_id"`
	Date      string  `json:"date"`
	ShiftType string  `json:"shift_type"`
	Position  *string `json:"position"`
}

// CreateDeployment rosters a staff member onto a date/shift
func CreateDeployment(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/manager/deployments")

		var req CreateDeploymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.StaffID == "" || req.Date == "" {
			utils.RespondError(w, http.StatusBadRequest, "staff_id and date are required")
			return
		}
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		if req.ShiftType != models.ShiftTypeDay && req.ShiftType != models.ShiftTypeNight {
			utils.RespondError(w, http.StatusBadRequest, "shift_type must be 'Day Shift' or 'Night Shift'")
			return
		}

		deploymentID := uuid.New().String()
		now := time.Now().Unix()

		query := `
			INSERT INTO deployments (id, staff_id, date, shift_type, position, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := db.Exec(query, deploymentID, req.StaffID, req.Date, req.ShiftType, req.Position, now, now); err != nil {
			log.Printf("❌ Error creating deployment: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create deployment")
			return
		}

		log.Printf("✅ Deployment created: %s (%s %s)", deploymentID, req.Date, req.ShiftType)

		hub.BroadcastToRole("manager", map[string]interface{}{
			"type": "deployment_created",
			"data": map[string]interface{}{
				"deployment_id": deploymentID,
				"date":          req.Date,
				"shift_type":    req.ShiftType,
			},
		})

		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": deploymentID})
	}
}

type UpdateDeploymentRequest struct {
	Position  *string `json:"position"`
	Secondary *string `json:"secondary"`
}

// UpdateDeployment manually overrides a deployment's positions
func UpdateDeployment(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deploymentID := chi.URLParam(r, "id")

		var req UpdateDeploymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var deployment models.Deployment
		query := `
			SELECT d.*, st.name AS staff_name
			FROM deployments d
			JOIN staff st ON st.id = d.staff_id
			WHERE d.id = $1
		`
		if err := db.Get(&deployment, query, deploymentID); err != nil {
			utils.RespondError(w, http.StatusNotFound, "Deployment not found")
			return
		}

		if req.Position != nil {
			deployment.Position = req.Position
			// A manual position change invalidates engine-derived closing state
			deployment.IsClosingDuty = false
			deployment.ClosingValidated = false
		}
		if req.Secondary != nil {
			deployment.Secondary = req.Secondary
			deployment.HasSecondary = *req.Secondary != ""
		}

		update := `
			UPDATE deployments
			SET position = $1, secondary = $2, has_secondary = $3, is_closing_duty = $4, closing_validated = $5, updated_at = $6
			WHERE id = $7
		`
		if _, err := db.Exec(update, deployment.Position, deployment.Secondary, deployment.HasSecondary,
			deployment.IsClosingDuty, deployment.ClosingValidated, time.Now().Unix(), deploymentID); err != nil {
			log.Printf("❌ Error updating deployment: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update deployment")
			return
		}

		hub.BroadcastToRole("manager", map[string]interface{}{
			"type": "deployment_updated",
			"data": deployment,
		})

		utils.RespondSuccess(w, http.StatusOK, deployment)
	}
}

// DeleteDeployment removes a staff member from the board
func DeleteDeployment(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deploymentID := chi.URLParam(r, "id")

		result, err := db.Exec(`DELETE FROM deployments WHERE id = $1`, deploymentID)
		if err != nil {
			log.Printf("❌ Error deleting deployment: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete deployment")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Deployment not found")
			return
		}

		hub.BroadcastToRole("manager", map[string]interface{}{
			"type": "deployment_deleted",
			"data": map[string]interface{}{"deployment_id": deploymentID},
		})

		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": deploymentID})
	}
}

type ShiftInfoRequest struct {
	Date          string  `json:"date"`
	DayForecast   *string `json:"day_forecast"`
	NightForecast *string `json:"night_forecast"`
	Notes         *string `json:"notes"`
}

// UpsertShiftInfo stores per-date forecast text used by the rule engine
func UpsertShiftInfo(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ShiftInfoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		now := time.Now().Unix()
		query := `
			INSERT INTO shift_info (id, date, day_forecast, night_forecast, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (date) DO UPDATE SET
				day_forecast = EXCLUDED.day_forecast,
				night_forecast = EXCLUDED.night_forecast,
				notes = EXCLUDED.notes,
				updated_at = EXCLUDED.updated_at
		`
		if _, err := db.Exec(query, uuid.New().String(), req.Date, req.DayForecast, req.NightForecast, req.Notes, now, now); err != nil {
			log.Printf("❌ Error saving shift info: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save shift info")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"date": req.Date})
	}
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}

// RegisterFCMToken stores a device push token for the authenticated user
func RegisterFCMToken(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req RegisterFCMTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "Token is required")
			return
		}
		if req.DeviceType == "" {
			req.DeviceType = "unknown"
		}

		now := time.Now().Unix()
		query := `
			INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (token) DO UPDATE SET user_id = $1, device_type = $3, updated_at = $5
		`
		if _, err := db.Exec(query, userClaims.UserID, req.Token, req.DeviceType, now, now); err != nil {
			log.Printf("❌ Error registering FCM token: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}

		log.Printf("✅ FCM token registered for user: %s", userClaims.UserID)
		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"registered": true})
	}
}
