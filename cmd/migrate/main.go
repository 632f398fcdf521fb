// Command migrate creates the campus-records schema.
//
//	go run ./cmd/migrate              # GORM AutoMigrate (postgres or sqlite)
//	go run ./cmd/migrate -mode=sql    # reviewed DDL over lib/pq, postgres only
package main

import (
	"flag"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/campus-records/config"
	"github.com/sahilchouksey/campus-records/database"
)

func main() {
	mode := flag.String("mode", "gorm", "migration mode: gorm or sql")
	flag.Parse()

	// Load environment variables
	if err := config.LoadENV(); err != nil {
		log.Fatalf("Failed to load environment variables: %v", err)
	}

	getEnv, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	var store database.Storage
	switch *mode {
	case "gorm":
		store, err = database.StartGORM(getEnv)
	case "sql":
		store, err = database.Start(getEnv)
	default:
		log.Fatalf("Unknown mode %q, expected gorm or sql", *mode)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	// Health check
	if err := store.HealthCheck(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	// Run migrations
	if err := store.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Info("✅ All migrations completed successfully!")
	log.Info("Tables: institute, course, student, cron_job_logs")
}
