package main

import (
	"log"
	"net/http"
	"os"

	"crewdeploy-backend/internal/database"
	"crewdeploy-backend/internal/handlers"
	"crewdeploy-backend/internal/middleware"
	"crewdeploy-backend/internal/services"
	"crewdeploy-backend/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 CREWDEPLOY BACKEND SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  Warning: .env file not found, using environment variables from system")
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	// Connect to database
	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}
	log.Println("✅ Database migrations completed")

	// Seed database
	log.Println("🌱 Seeding database with initial data...")
	if err := database.SeedUsers(db); err != nil {
		log.Fatal(err)
	}
	if err := database.SeedStaffingData(db); err != nil {
		log.Fatal(err)
	}
	log.Println("✅ Seed data loaded")

	// Initialize Firebase Cloud Messaging
	// Supports both file path and base64-encoded credentials (for Railway/cloud deployments)
	var fcmService *services.FCMService
	fcmCredsBase64 := os.Getenv("FIREBASE_CREDENTIALS_BASE64")

	if fcmCredsBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(fcmCredsBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else {
		fcmCredentialsFile := os.Getenv("FIREBASE_CREDENTIALS_FILE")
		if fcmCredentialsFile == "" {
			fcmCredentialsFile = "./firebase-service-account.json"
		}

		fcmService, err = services.NewFCMService(fcmCredentialsFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	}

	// Assignment engine over the Postgres store
	engine := services.NewEngine(database.NewStore(db))

	// Initialize WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()
	log.Println("✅ WebSocket hub started")

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Authentication routes (no auth required)
	r.Post("/api/auth/login", handlers.Login(db))

	// WebSocket endpoint (authentication handled in handler via query param)
	r.Get("/ws", websocket.HandleWebSocket(wsHub))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Authenticated endpoints (any role)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)

			r.Get("/auth/status", handlers.GetAuthStatus())

			// Board views
			r.Get("/deployments", handlers.GetDeployments(db))
			r.Get("/staff", handlers.GetAllStaff(db))
			r.Get("/staff/{id}", handlers.GetStaff(db))
			r.Get("/positions", handlers.GetAllPositions(db))

			// FCM token registration
			r.Post("/fcm-token", handlers.RegisterFCMToken(db))
		})

		// Manager endpoints (require authentication + manager role)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth)
			r.Use(middleware.RequireRole("manager"))

			// Staff management
			r.Post("/manager/staff", handlers.CreateStaff(db))
			r.Patch("/manager/staff/{id}", handlers.UpdateStaff(db))
			r.Delete("/manager/staff/{id}", handlers.DeleteStaff(db))
			r.Get("/manager/staff/{id}/default-positions", handlers.GetStaffDefaultPositions(db))
			r.Post("/manager/staff/{id}/default-positions", handlers.SetStaffDefaultPosition(db))
			r.Get("/manager/staff/{id}/training-stations", handlers.GetStaffTrainingStations(db))
			r.Post("/manager/staff/{id}/training-stations", handlers.AddStaffTrainingStation(db))
			r.Post("/manager/staff/{id}/rankings", handlers.AddStaffRanking(db))
			r.Post("/manager/staff/{id}/sign-offs", handlers.AddStaffSignOff(db))

			// Position management
			r.Post("/manager/positions", handlers.CreatePosition(db))
			r.Delete("/manager/positions/{id}", handlers.DeletePosition(db))
			r.Get("/manager/positions/{id}/capacities", handlers.GetPositionCapacities(db))
			r.Post("/manager/positions/{id}/capacities", handlers.SetPositionCapacity(db))
			r.Post("/manager/positions/{id}/secondary-mappings", handlers.AddSecondaryMapping(db))

			// Deployment board
			r.Post("/manager/deployments", handlers.CreateDeployment(db, wsHub))
			r.Patch("/manager/deployments/{id}", handlers.UpdateDeployment(db, wsHub))
			r.Delete("/manager/deployments/{id}", handlers.DeleteDeployment(db, wsHub))
			r.Post("/manager/shift-info", handlers.UpsertShiftInfo(db))

			// Staffing configuration
			r.Get("/manager/shift-configurations", handlers.GetShiftConfigurations(db))
			r.Post("/manager/shift-configurations", handlers.CreateShiftConfiguration(db))
			r.Delete("/manager/shift-configurations/{id}", handlers.DeleteShiftConfiguration(db))
			r.Get("/manager/core-requirements", handlers.GetCoreRequirements(db))
			r.Post("/manager/core-requirements", handlers.CreateCoreRequirement(db))
			r.Delete("/manager/core-requirements/{id}", handlers.DeleteCoreRequirement(db))
			r.Get("/manager/staffing-rules", handlers.GetStaffingRules(db))
			r.Post("/manager/staffing-rules", handlers.CreateStaffingRule(db))
			r.Delete("/manager/staffing-rules/{id}", handlers.DeleteStaffingRule(db))
			r.Post("/manager/closing-requirements", handlers.CreateClosingRequirement(db))
			r.Post("/manager/closing-training", handlers.UpsertClosingTraining(db))

			// Assignment engine
			r.Post("/manager/assignments/auto-assign", handlers.AutoAssign(db, engine, wsHub, fcmService))
			r.Post("/manager/assignments/auto-assign-secondary", handlers.AutoAssignSecondary(engine, wsHub))
			r.Post("/manager/assignments/assign-closing-stations", handlers.AssignClosing(db, engine, wsHub, fcmService))
			r.Get("/manager/closing-coverage", handlers.GetClosingCoverage(engine))
			r.Get("/manager/closing-trained-staff", handlers.GetClosingTrainedStaff(engine))
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Server listening on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}
