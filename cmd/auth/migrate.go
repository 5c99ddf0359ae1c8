package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AlibekovAA/credauth/internal/common/config"
	"github.com/AlibekovAA/credauth/internal/common/db"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *db.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(cmd *cobra.Command, m *db.Migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("all migrations rolled back")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE:  withMigrator(printVersion),
	})

	return cmd
}

func withMigrator(run func(cmd *cobra.Command, m *db.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadAuthConfig(cmd.Flags())
		if err != nil {
			return oops.Code("CONFIG_INVALID").Wrap(err)
		}
		if err := cfg.RequireDatabase(); err != nil {
			return oops.Code("CONFIG_INVALID").Wrap(err)
		}

		m, err := db.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(); err != nil {
				cmd.PrintErrf("failed to close migrator: %v\n", err)
			}
		}()

		return run(cmd, m)
	}
}

func printVersion(cmd *cobra.Command, m *db.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		cmd.Println("no migrations applied")
		return nil
	}
	cmd.Printf("schema version %d (dirty=%t)\n", version, dirty)
	return nil
}
