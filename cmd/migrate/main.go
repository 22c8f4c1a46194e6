package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"stayauth/pkg/database"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "stayauth.db"
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: migrate [up|down|status]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		fmt.Println("✅ Migrations applied successfully")

	case "down":
		if err := database.Rollback(ctx, db); err != nil {
			log.Fatalf("Failed to roll back: %v", err)
		}
		fmt.Println("✅ Last migration rolled back successfully")

	case "status":
		version, err := database.MigrationStatus(ctx, db)
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		fmt.Printf("%s is at schema version %d\n", path, version)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: migrate [up|down|status]")
		os.Exit(1)
	}
}
