package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"crewdeploy-backend/internal/models"
	"crewdeploy-backend/internal/services"
	"crewdeploy-backend/internal/websocket"
	"crewdeploy-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

type AutoAssignRequest struct {
	Date      string                     `json:"date"`
	ShiftType string                     `json:"shift_type"`
	Config    *services.AssignmentConfig `json:"config"`
}

func validAssignmentTarget(date, shiftType string) (string, bool) {
	if date == "" {
		return "date is required", false
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "date must be YYYY-MM-DD", false
	}
	if shiftType != models.ShiftTypeDay && shiftType != models.ShiftTypeNight {
		return "shift_type must be 'Day Shift' or 'Night Shift'", false
	}
	return "", true
}

// staffFCMTokens returns the push tokens registered for the user account
// linked to a staff member, if any
func staffFCMTokens(db *sqlx.DB, staffID string) []string {
	var tokens []string
	query := `
		SELECT t.token
		FROM fcm_tokens t
		JOIN staff s ON s.user_id = t.user_id
		WHERE s.id = $1
	`
	if err := db.Select(&tokens, query, staffID); err != nil {
		log.Printf("⚠️ Error fetching FCM tokens for staff %s: %v", staffID, err)
		return nil
	}
	return tokens
}

// AutoAssign runs the primary auto-assignment engine for a date/shift
func AutoAssign(db *sqlx.DB, engine *services.Engine, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/manager/assignments/auto-assign")

		var req AutoAssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if msg, ok := validAssignmentTarget(req.Date, req.ShiftType); !ok {
			utils.RespondError(w, http.StatusBadRequest, msg)
			return
		}

		outcome, err := engine.IntelligentAutoDeployment(req.Date, req.ShiftType, req.Config)
		if err != nil {
			log.Printf("❌ Auto-assignment failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Auto-assignment failed")
			return
		}

		log.Printf("✅ Auto-assignment complete: %d assigned, %d skipped, %d failed",
			len(outcome.Assigned), len(outcome.Skipped), len(outcome.Failed))

		hub.BroadcastToRole("manager", map[string]interface{}{
			"type": "assignment_completed",
			"data": map[string]interface{}{
				"date":       req.Date,
				"shift_type": req.ShiftType,
				"assigned":   len(outcome.Assigned),
				"skipped":    len(outcome.Skipped),
				"failed":     len(outcome.Failed),
			},
		})

		// Push a notification to each assigned staff member's devices
		if fcmService != nil {
			for _, assigned := range outcome.Assigned {
				for _, token := range staffFCMTokens(db, assigned.StaffID) {
					if err := fcmService.SendPositionAssignedNotification(token, assigned.Position, req.Date, req.ShiftType); err != nil {
						log.Printf("⚠️ FCM push failed for %s: %v", assigned.StaffName, err)
					}
				}
			}
		}

		utils.RespondSuccess(w, http.StatusOK, outcome)
	}
}

// AutoAssignSecondary runs the secondary-position pass for a date/shift
func AutoAssignSecondary(engine *services.Engine, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/manager/assignments/auto-assign-secondary")

		var req AutoAssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if msg, ok := validAssignmentTarget(req.Date, req.ShiftType); !ok {
			utils.RespondError(w, http.StatusBadRequest, msg)
			return
		}

		outcome, err := engine.AutoAssignSecondaryPositions(req.Date, req.ShiftType)
		if err != nil {
			log.Printf("❌ Secondary assignment failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Secondary assignment failed")
			return
		}

		log.Printf("✅ Secondary assignment complete: %d assigned, %d skipped",
			len(outcome.Assigned), len(outcome.Skipped))

		hub.BroadcastToRole("manager", map[string]interface{}{
			"type": "secondary_assignment_completed",
			"data": map[string]interface{}{
				"date":       req.Date,
				"shift_type": req.ShiftType,
				"assigned":   len(outcome.Assigned),
			},
		})

		utils.RespondSuccess(w, http.StatusOK, outcome)
	}
}

// AssignClosing marks validated closing-duty deployments for a night shift
func AssignClosing(db *sqlx.DB, engine *services.Engine, hub *websocket.Hub, fcmService *services.FCMService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/manager/assignments/assign-closing-stations")

		var req AutoAssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if msg, ok := validAssignmentTarget(req.Date, req.ShiftType); !ok {
			utils.RespondError(w, http.StatusBadRequest, msg)
			return
		}

		outcome, err := engine.AssignClosingStations(req.Date, req.ShiftType)
		if err != nil {
			log.Printf("❌ Closing assignment failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Closing assignment failed")
			return
		}

		log.Printf("✅ Closing assignment complete: %d assigned, %d skipped",
			len(outcome.Assigned), len(outcome.Skipped))

		hub.BroadcastToRole("manager", map[string]interface{}{
			"type": "closing_assignment_completed",
			"data": map[string]interface{}{
				"date":       req.Date,
				"shift_type": req.ShiftType,
				"assigned":   len(outcome.Assigned),
			},
		})

		if fcmService != nil {
			for _, assigned := range outcome.Assigned {
				for _, token := range staffFCMTokens(db, assigned.StaffID) {
					if err := fcmService.SendClosingDutyNotification(token, assigned.Position, req.Date); err != nil {
						log.Printf("⚠️ FCM push failed for %s: %v", assigned.StaffName, err)
					}
				}
			}
		}

		utils.RespondSuccess(w, http.StatusOK, outcome)
	}
}

// GetClosingCoverage reports trained-staff coverage for every closing
// requirement on a date/shift
func GetClosingCoverage(engine *services.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		shiftType := r.URL.Query().Get("shift_type")
		if shiftType == "" {
			shiftType = models.ShiftTypeNight
		}
		if msg, ok := validAssignmentTarget(date, shiftType); !ok {
			utils.RespondError(w, http.StatusBadRequest, msg)
			return
		}

		report, err := engine.GetClosingCoverageReport(date, shiftType)
		if err != nil {
			log.Printf("❌ Error building closing coverage report: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to build coverage report")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, report)
	}
}

// GetClosingTrainedStaff lists staff valid for closing duty on a position,
// ranked undeployed-first
func GetClosingTrainedStaff(engine *services.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		positionID := r.URL.Query().Get("position_id")
		date := r.URL.Query().Get("date")
		shiftType := r.URL.Query().Get("shift_type")
		if shiftType == "" {
			shiftType = models.ShiftTypeNight
		}

		if positionID == "" {
			utils.RespondError(w, http.StatusBadRequest, "position_id is required")
			return
		}
		if msg, ok := validAssignmentTarget(date, shiftType); !ok {
			utils.RespondError(w, http.StatusBadRequest, msg)
			return
		}

		staff, err := engine.GetClosingTrainedStaff(positionID, date, shiftType)
		if err != nil {
			log.Printf("❌ Error fetching closing-trained staff: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch closing-trained staff")
			return
		}

		utils.RespondSuccess(w, http.StatusOK, staff)
	}
}
