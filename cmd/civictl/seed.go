package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/civictrack/civictrackd/internal/repository"
)

// seedCmd loads a minimal reference-data baseline (categories, a city's
// districts, and a fallback team) into a fresh
// database — enough for a local client to create and route its first
// ticket. Production category/team/district management is an external
// admin surface's job, out of this service's scope; this command exists
// purely to make `civictl serve` usable against an empty database.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load baseline reference data (categories, districts, fallback team)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := repository.Open(rootCtx, cfg.DatabaseDSN, cfg.DatabaseMaxConn)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		return runSeed(rootCtx, db)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, db *repository.DB) error {
	categories := []string{"Pothole", "Streetlight", "Graffiti", "Illegal Dumping", "Noise Complaint"}
	for _, name := range categories {
		if _, err := db.Pool.Exec(ctx, `
			INSERT INTO categories (id, name) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, uuid.New(), name); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}

	var fallbackID uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO teams (id, name, is_fallback) VALUES ($1, 'General Services', true)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, uuid.New()).Scan(&fallbackID)
	if err != nil {
		return fmt.Errorf("seed fallback team: %w", err)
	}

	districts := []string{"Downtown", "Riverside", "Eastside", "Westfield"}
	for _, name := range districts {
		if _, err := db.Pool.Exec(ctx, `
			INSERT INTO districts (id, name, city) VALUES ($1, $2, 'Springfield')
			ON CONFLICT (name, city) DO NOTHING
		`, uuid.New(), name); err != nil {
			return fmt.Errorf("seed district %q: %w", name, err)
		}
	}

	fmt.Println("seed data loaded")
	return nil
}
