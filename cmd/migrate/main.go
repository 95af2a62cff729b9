package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"pelada-api/config"
	"pelada-api/migrations"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Println("Failed to read .env file, using environment variables:", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	cfg := config.Load()
	db, err := config.OpenDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// The SQL migrations target postgres; sqlite databases are built from the models.
	if cfg.Database.Driver == "sqlite" {
		if os.Args[1] != "migrate" {
			log.Fatalf("%s is not supported for sqlite databases", os.Args[1])
		}
		if err := migrations.AutoMigrateModels(db); err != nil {
			log.Fatal("Migration failed:", err)
		}
		fmt.Println("Schema migrated from models")
		return
	}

	migrator, err := migrations.NewDefaultMigrator(db)
	if err != nil {
		log.Fatal("Failed to prepare migrator:", err)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		if err := migrator.Migrate(); err != nil {
			log.Fatal("Migration failed:", err)
		}
	case "rollback":
		steps := 1
		if len(os.Args) > 2 {
			if s, err := strconv.Atoi(os.Args[2]); err == nil && s > 0 {
				steps = s
			}
		}
		if err := migrator.Rollback(steps); err != nil {
			log.Fatal("Rollback failed:", err)
		}
	case "status":
		showStatus(migrator)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/migrate migrate          - Run pending migrations")
	fmt.Println("  go run ./cmd/migrate rollback [steps] - Rollback migrations (default: 1)")
	fmt.Println("  go run ./cmd/migrate status           - Show migration status")
}

func showStatus(migrator *migrations.Migrator) {
	statuses, err := migrator.Status()
	if err != nil {
		log.Fatal("Failed to read migration status:", err)
	}

	fmt.Println("Migration Status:")
	fmt.Println("Batch | Ran | Name")
	fmt.Println("------|-----|-----")

	for _, status := range statuses {
		ran := "no"
		batch := "-"
		if status.Ran {
			ran = "yes"
			batch = strconv.Itoa(status.Batch)
		}
		fmt.Printf("%-5s | %-3s | %s\n", batch, ran, status.Name)
	}
}
