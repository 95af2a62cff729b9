package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"pelada-api/config"
	"pelada-api/fixtures"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Println("Failed to read .env file, using environment variables:", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		return
	}

	config.ConnectDatabase()
	fixtureManager := fixtures.NewFixtures(config.DB)
	ctx := context.Background()

	command := os.Args[1]

	switch command {
	case "generate":
		generate(ctx, fixtureManager)
	case "clear":
		if err := fixtureManager.ClearAllData(ctx); err != nil {
			log.Fatal("Failed to clear fixtures:", err)
		}
		fmt.Println("All fixture data cleared")
	case "regenerate":
		fmt.Println("Clearing existing data...")
		if err := fixtureManager.ClearAllData(ctx); err != nil {
			log.Fatal("Failed to clear fixtures:", err)
		}
		fmt.Println("Generating new fixtures...")
		generate(ctx, fixtureManager)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func generate(ctx context.Context, fixtureManager *fixtures.Fixtures) {
	summary, err := fixtureManager.GenerateTestData(ctx)
	if err != nil {
		log.Fatal("Failed to generate fixtures:", err)
	}
	fmt.Printf("Fixtures generated: %d players, matches by status %v\n", summary.Users, summary.Matches)
	fmt.Printf("Every fixture account uses the password %q\n", fixtures.DefaultPassword)
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/fixtures generate    - Seed players and matches in every state")
	fmt.Println("  go run ./cmd/fixtures clear       - Clear all fixture data")
	fmt.Println("  go run ./cmd/fixtures regenerate  - Clear and regenerate all data")
}
