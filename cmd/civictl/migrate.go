package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civictrack/civictrackd/internal/repository"
)

// migrateCmd applies pending schema migrations and exits. repository.Open
// already runs migrations as part of connecting, so this is mainly for
// CI/deploy steps that want migration to happen as its own, auditable
// step ahead of starting the server.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := repository.Open(rootCtx, cfg.DatabaseDSN, cfg.DatabaseMaxConn)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		defer db.Close()
		fmt.Println("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
