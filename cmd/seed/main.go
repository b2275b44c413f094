// Command main runs the database seeder for the lovediary backend.
package main

import (
	"flag"
	"log"

	"lovediary/internal/config"
	"lovediary/internal/database"
	"lovediary/internal/seed"
)

func main() {
	numEntries := flag.Int("entries", 25, "Number of diary entries to create")
	maxComments := flag.Int("comments", 4, "Maximum comments per entry")
	maxReplies := flag.Int("replies", 2, "Maximum replies per comment")
	shouldClean := flag.Bool("clean", true, "Clean existing entries before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d entries, up to %d comments each, clean=%v",
		*numEntries, *maxComments, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumEntries:  *numEntries,
		MaxComments: *maxComments,
		MaxReplies:  *maxReplies,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Done. The database is populated with demo entries.")
}
