package main

// Apply, revert or inspect the Postgres schema:
//   go run ./cmd/migrate            # up
//   go run ./cmd/migrate down
//   go run ./cmd/migrate status

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err})
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var handle *sql.DB
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the resume-builder Postgres schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			var err error
			handle, err = db.Open(cmd.Context(), cfg.DatabaseURL, db.MigratePool().WithEnv())
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if handle != nil {
				_ = handle.Close()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return up(cmd, handle)
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE:  func(cmd *cobra.Command, _ []string) error { return up(cmd, handle) },
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the latest migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := db.Rollback(cmd.Context(), handle); err != nil {
					return err
				}
				return status(cmd, handle)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the current schema version",
			RunE:  func(cmd *cobra.Command, _ []string) error { return status(cmd, handle) },
		},
	)
	return root
}

func up(cmd *cobra.Command, handle *sql.DB) error {
	if err := db.Migrate(cmd.Context(), handle); err != nil {
		return err
	}
	telemetry.Info("migrate.done", nil)
	return status(cmd, handle)
}

func status(cmd *cobra.Command, handle *sql.DB) error {
	v, err := db.Version(cmd.Context(), handle)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
	return nil
}
