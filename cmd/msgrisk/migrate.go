package main

import (
	"fmt"

	"github.com/spf13/cobra"

	infrapg "github.com/antifraud/msgrisk/internal/infrastructure/postgres"
	"github.com/antifraud/msgrisk/pkg/postgres"
)

func (c *cli) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	run := func(name string, step func(*postgres.Migrator) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("Run migrations %s", name),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				m, err := postgres.NewMigrator(infrapg.Migrations, infrapg.MigrationsDir, c.cfg.Database.Postgres().DSN())
				if err != nil {
					return err
				}
				defer func() { _ = m.Close() }()

				if err := step(m); err != nil {
					return err
				}
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				c.logger.Info("migrations applied", "direction", name, "version", version, "dirty", dirty)
				fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
				return nil
			},
		}
	}

	cmd.AddCommand(
		run("up", (*postgres.Migrator).Up),
		run("down", (*postgres.Migrator).Down),
	)
	return cmd
}
