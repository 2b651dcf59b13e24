package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"crewdeploy-backend/internal/models"
	"crewdeploy-backend/internal/services"
	"crewdeploy-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// GetShiftConfigurations lists active staffing templates
func GetShiftConfigurations(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var configs []models.ShiftConfiguration
		query := `SELECT * FROM shift_configurations WHERE is_active = TRUE ORDER BY created_at DESC`
		if err := db.Select(&configs, query); err != nil {
			log.Printf("❌ Error fetching shift configurations: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, configs)
	}
}

type ShiftConfigurationRequest struct {
	ConfigName         string          `json:"config_name"`
	ShiftType          string          `json:"shift_type"`
	DTType             string          `json:"dt_type"`
	NumCooks           int             `json:"num_cooks"`
	NumPackStations    int             `json:"num_pack_stations"`
	RequireShiftRunner bool            `json:"require_shift_runner"`
	RequireManager     bool            `json:"require_manager"`
	EffectiveDate      *string         `json:"effective_date"`
	Settings           json.RawMessage `json:"settings"`
}

// CreateShiftConfiguration stores a new staffing template
func CreateShiftConfiguration(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/manager/shift-configurations")

		var req ShiftConfigurationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.ConfigName == "" {
			req.ConfigName = "default"
		}
		if req.ShiftType == "" {
			req.ShiftType = models.ShiftTypeBoth
		}
		if req.DTType == "" {
			req.DTType = models.DTTypeDT1
		}
		if req.DTType != models.DTTypeDT1 && req.DTType != models.DTTypeDT2 && req.DTType != models.DTTypeNone {
			utils.RespondError(w, http.StatusBadRequest, "dt_type must be 'DT1', 'DT2' or 'None'")
			return
		}
		if req.EffectiveDate != nil {
			if _, err := time.Parse("2006-01-02", *req.EffectiveDate); err != nil {
				utils.RespondError(w, http.StatusBadRequest, "effective_date must be YYYY-MM-DD")
				return
			}
		}
		if len(req.Settings) == 0 {
			req.Settings = json.RawMessage(`{}`)
		} else if !json.Valid(req.Settings) {
			utils.RespondError(w, http.StatusBadRequest, "settings must be valid JSON")
			return
		}

		configID := uuid.New().String()
		now := time.Now().Unix()

		query := `
			INSERT INTO shift_configurations
				(id, config_name, shift_type, dt_type, num_cooks, num_pack_stations,
				 require_shift_runner, require_manager, effective_date, settings, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11, $12)
		`
		if _, err := db.Exec(query, configID, req.ConfigName, req.ShiftType, req.DTType,
			req.NumCooks, req.NumPackStations, req.RequireShiftRunner, req.RequireManager,
			req.EffectiveDate, req.Settings, now, now); err != nil {
			log.Printf("❌ Error creating shift configuration: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create shift configuration")
			return
		}

		log.Printf("✅ Shift configuration created: %s (%s)", req.ConfigName, configID)
		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": configID})
	}
}

// DeleteShiftConfiguration deactivates a staffing template
func DeleteShiftConfiguration(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		configID := chi.URLParam(r, "id")

		result, err := db.Exec(`UPDATE shift_configurations SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().Unix(), configID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete shift configuration")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Shift configuration not found")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": configID})
	}
}

// GetCoreRequirements lists active core position requirements
func GetCoreRequirements(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var requirements []models.CorePositionRequirement
		query := `SELECT * FROM core_position_requirements WHERE is_active = TRUE ORDER BY priority ASC`
		if err := db.Select(&requirements, query); err != nil {
			log.Printf("❌ Error fetching core requirements: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, requirements)
	}
}

type CoreRequirementRequest struct {
	ShiftType   string `json:"shift_type"`
	Position    string `json:"position"`
	MinCount    int    `json:"min_count"`
	MaxCount    int    `json:"max_count"`
	Priority    int    `json:"priority"`
	IsMandatory *bool  `json:"is_mandatory"`
}

// CreateCoreRequirement adds a core position requirement
func CreateCoreRequirement(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CoreRequirementRequest
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
		if req.MinCount < 1 {
			req.MinCount = 1
		}
		if req.MaxCount < req.MinCount {
			req.MaxCount = req.MinCount
		}

		isMandatory := true
		if req.IsMandatory != nil {
			isMandatory = *req.IsMandatory
		}

		id := uuid.New().String()
		query := `
			INSERT INTO core_position_requirements (id, shift_type, position, min_count, max_count, priority, is_mandatory, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
		`
		if _, err := db.Exec(query, id, req.ShiftType, req.Position, req.MinCount, req.MaxCount, req.Priority, isMandatory, time.Now().Unix()); err != nil {
			log.Printf("❌ Error creating core requirement: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create core requirement")
			return
		}

		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": id})
	}
}

// DeleteCoreRequirement deactivates a core position requirement
func DeleteCoreRequirement(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		result, err := db.Exec(`UPDATE core_position_requirements SET is_active = FALSE WHERE id = $1`, id)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete core requirement")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Core requirement not found")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": id})
	}
}

// GetStaffingRules lists active rules in evaluation order
func GetStaffingRules(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rules []models.StaffingRule
		query := `SELECT * FROM staffing_rules WHERE is_active = TRUE ORDER BY priority ASC, created_at ASC`
		if err := db.Select(&rules, query); err != nil {
			log.Printf("❌ Error fetching staffing rules: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, rules)
	}
}

type StaffingRuleRequest struct {
	Name      string          `json:"name"`
	Priority  int             `json:"priority"`
	Condition json.RawMessage `json:"condition"`
	Action    json.RawMessage `json:"action"`
}

// CreateStaffingRule validates and stores a conditional staffing rule.
// The action is decoded up front so malformed rules are rejected here
// instead of being skipped silently at assignment time.
func CreateStaffingRule(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/manager/staffing-rules")

		var req StaffingRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" {
			utils.RespondError(w, http.StatusBadRequest, "Name is required")
			return
		}

		if len(req.Condition) == 0 {
			req.Condition = json.RawMessage(`{}`)
		}
		var condition map[string]interface{}
		if err := json.Unmarshal(req.Condition, &condition); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Condition must be a JSON object")
			return
		}

		if _, err := services.DecodeRuleAction(req.Action); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid action: "+err.Error())
			return
		}

		ruleID := uuid.New().String()
		now := time.Now().Unix()

		query := `
			INSERT INTO staffing_rules (id, name, priority, condition, action, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)
		`
		if _, err := db.Exec(query, ruleID, req.Name, req.Priority, req.Condition, req.Action, now, now); err != nil {
			log.Printf("❌ Error creating staffing rule: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create staffing rule")
			return
		}

		log.Printf("✅ Staffing rule created: %s (%s)", req.Name, ruleID)
		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": ruleID})
	}
}

// DeleteStaffingRule deactivates a staffing rule
func DeleteStaffingRule(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ruleID := chi.URLParam(r, "id")

		result, err := db.Exec(`UPDATE staffing_rules SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now().Unix(), ruleID)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete staffing rule")
			return
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			utils.RespondError(w, http.StatusNotFound, "Staffing rule not found")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"deleted": ruleID})
	}
}

type ClosingRequirementRequest struct {
	PositionID              string `json:"position_id"`
	ShiftType               string `json:"shift_type"`
	RequiresClosingTraining *bool  `json:"requires_closing_training"`
	MinimumTrainedStaff     int    `json:"minimum_trained_staff"`
}

// CreateClosingRequirement declares closing-training rules for a position
func CreateClosingRequirement(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClosingRequirementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.PositionID == "" {
			utils.RespondError(w, http.StatusBadRequest, "position_id is required")
			return
		}
		if req.ShiftType == "" {
			req.ShiftType = models.ShiftTypeNight
		}
		if req.MinimumTrainedStaff < 1 {
			req.MinimumTrainedStaff = 1
		}

		requiresTraining := true
		if req.RequiresClosingTraining != nil {
			requiresTraining = *req.RequiresClosingTraining
		}

		var position models.Position
		err := db.Get(&position, `SELECT * FROM positions WHERE id = $1`, req.PositionID)
		if err == sql.ErrNoRows {
			utils.RespondError(w, http.StatusNotFound, "Position not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		id := uuid.New().String()
		query := `
			INSERT INTO closing_station_requirements (id, position_id, shift_type, requires_closing_training, minimum_trained_staff, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
			ON CONFLICT (position_id, shift_type) DO UPDATE SET
				requires_closing_training = $4,
				minimum_trained_staff = $5,
				is_active = TRUE
		`
		if _, err := db.Exec(query, id, req.PositionID, req.ShiftType, requiresTraining, req.MinimumTrainedStaff, time.Now().Unix()); err != nil {
			log.Printf("❌ Error creating closing requirement: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create closing requirement")
			return
		}

		utils.RespondSuccess(w, http.StatusCreated, map[string]interface{}{"id": id})
	}
}

type ClosingTrainingRequest struct {
	StaffID            string  `json:"staff_id"`
	PositionID         string  `json:"position_id"`
	IsTrained          bool    `json:"is_trained"`
	TrainedDate        *string `json:"trained_date"`
	ExpiryDate         *string `json:"expiry_date"`
	ManagerSignoffDate *string `json:"manager_signoff_date"`
}

// UpsertClosingTraining records a staff member's closing training status
func UpsertClosingTraining(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClosingTrainingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.StaffID == "" || req.PositionID == "" {
			utils.RespondError(w, http.StatusBadRequest, "staff_id and position_id are required")
			return
		}
		for _, d := range []*string{req.TrainedDate, req.ExpiryDate, req.ManagerSignoffDate} {
			if d != nil {
				if _, err := time.Parse("2006-01-02", *d); err != nil {
					utils.RespondError(w, http.StatusBadRequest, "Dates must be YYYY-MM-DD")
					return
				}
			}
		}

		now := time.Now().Unix()
		query := `
			INSERT INTO closing_training_records (id, staff_id, position_id, is_trained, trained_date, expiry_date, manager_signoff_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (staff_id, position_id) DO UPDATE SET
				is_trained = $4,
				trained_date = $5,
				expiry_date = $6,
				manager_signoff_date = $7,
				updated_at = $9
		`
		if _, err := db.Exec(query, uuid.New().String(), req.StaffID, req.PositionID, req.IsTrained,
			req.TrainedDate, req.ExpiryDate, req.ManagerSignoffDate, now, now); err != nil {
			log.Printf("❌ Error saving closing training record: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save closing training record")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
			"staff_id":    req.StaffID,
			"position_id": req.PositionID,
		})
	}
}
