// Command seed populates the marketplace database with demo data.
package main

import (
	"flag"
	"log"

	"bazar/internal/config"
	"bazar/internal/database"
	"bazar/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numListings := flag.Int("listings", 60, "Number of listings to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumListings: *numListings,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
