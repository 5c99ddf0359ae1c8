package main

import (
	"github.com/spf13/cobra"

	"github.com/AlibekovAA/credauth/internal/common/config"
)

// NewRootCmd serves when run without a subcommand.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "auth",
		Short:        "Credential registration and session service",
		SilenceUsage: true,
		RunE:         runServe,
	}

	config.RegisterAuthFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
