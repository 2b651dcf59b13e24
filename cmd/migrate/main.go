package main

import (
	"fmt"
	"log"
	"os"

	"crewdeploy-backend/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}

	if err := database.SeedStaffingData(db); err != nil {
		log.Fatalf("Staffing data seeding failed: %v", err)
	}

	// Query and display summary
	var result struct {
		Positions int `db:"positions"`
		Staff     int `db:"staff"`
		Rules     int `db:"rules"`
		Users     int `db:"users"`
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM positions) AS positions,
			(SELECT COUNT(*) FROM staff) AS staff,
			(SELECT COUNT(*) FROM staffing_rules) AS rules,
			(SELECT COUNT(*) FROM users) AS users
	`
	if err := db.Get(&result, query); err != nil {
		log.Fatalf("Failed to query summary: %v", err)
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Users:            %d\n", result.Users)
	fmt.Printf("Staff:            %d\n", result.Staff)
	fmt.Printf("Positions:        %d\n", result.Positions)
	fmt.Printf("Staffing rules:   %d\n", result.Rules)
	fmt.Println("============================================================")
}
