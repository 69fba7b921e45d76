// Package migrate implements the `helios migrate` command.
package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helios-home/helios/internal/infrastructure/config"
	"github.com/helios-home/helios/internal/infrastructure/database"
	"github.com/helios-home/helios/internal/infrastructure/migration"
	"github.com/helios-home/helios/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Apply, roll back and inspect the versioned database schema.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  withMigrator(func(m *migration.Migrator) error { return m.Up() }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE:  withMigrator(func(m *migration.Migrator) error { return m.Down() }),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			RunE: withMigrator(func(m *migration.Migrator) error {
				version, err := m.Status()
				if err != nil {
					return err
				}
				fmt.Printf("schema version: %d\n", version)
				return nil
			}),
		},
	)

	return cmd
}

func withMigrator(fn func(*migration.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(env)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, err := logger.New(&cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err := database.New(&cfg.Database, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Errorw("failed to close database", "error", err)
			}
		}()

		migrator, err := migration.NewMigrator(db, log)
		if err != nil {
			return err
		}
		return fn(migrator)
	}
}
