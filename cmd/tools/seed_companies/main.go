// Command seed_companies loads a JSON file of companies into the companies
// table. Existing rows are matched by name and only filled in, never
// overwritten; curated URLs get curated-list provenance so automated
// failure handling can never clear them.
//
// Usage:
//
//	go run cmd/tools/seed_companies/main.go companies.json
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/jonathan/fursa/internal/db"
)

type seedCompany struct {
	Name        string `json:"name"`
	Tier        int    `json:"tier,omitempty"`
	HomepageURL string `json:"homepage_url,omitempty"`
	CareerURL   string `json:"career_url,omitempty"`
	ATSPlatform string `json:"ats_platform,omitempty"`
	ATSSlug     string `json:"ats_slug,omitempty"`
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: seed_companies <companies.json>")
		os.Exit(1)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to read seed file: %v\n", err)
		os.Exit(1)
	}

	var seeds []seedCompany
	if err := json.Unmarshal(data, &seeds); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to parse seed file: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to apply schema: %v\n", err)
		os.Exit(1)
	}

	created := 0
	for _, seed := range seeds {
		if seed.Name == "" {
			continue
		}
		tier := seed.Tier
		if tier == 0 {
			tier = 2
		}

		company, err := database.CreateCompany(ctx, seed.Name, tier)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", seed.Name, err)
			continue
		}

		if seed.HomepageURL != "" && company.HomepageURL == nil {
			if err := database.SetHomepageURL(ctx, company.ID, seed.HomepageURL); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", seed.Name, err)
			}
		}
		if seed.CareerURL != "" && company.CareerURL == nil {
			if err := database.SetCareerURL(ctx, company.ID, seed.CareerURL, db.ProvenanceCuratedList); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", seed.Name, err)
			}
		}
		if seed.ATSPlatform != "" && seed.ATSSlug != "" && company.ATSPlatform == nil {
			if err := database.SetATSHint(ctx, company.ID, seed.ATSPlatform, seed.ATSSlug); err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %s: %v\n", seed.Name, err)
			}
		}
		created++
	}

	fmt.Printf("Seeded %d/%d companies\n", created, len(seeds))
}
