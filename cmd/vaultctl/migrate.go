package main

import (
	"fmt"

	"vault/internal/repository/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newMigrateDirectionCommand(postgres.MigrateUp, "Apply all pending migrations"))
	cmd.AddCommand(newMigrateDirectionCommand(postgres.MigrateDown, "Roll back the most recent migration"))
	cmd.AddCommand(newMigrateDirectionCommand(postgres.MigrateStatus, "Print the status of every migration"))
	return cmd
}

func newMigrateDirectionCommand(direction postgres.MigrationDirection, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			env, err := openEnvironment(ctx)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := postgres.Migrate(ctx, env.pool, env.tables, direction); err != nil {
				return fmt.Errorf("migrate %s: %w", direction, err)
			}
			env.logger.Info("migrate complete", "direction", direction, "table_prefix", env.cfg.TablePrefix)
			return nil
		},
	}
}
