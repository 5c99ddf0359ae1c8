package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AlibekovAA/credauth/internal/common/bootstrap"
	"github.com/AlibekovAA/credauth/internal/common/config"
	srv "github.com/AlibekovAA/credauth/internal/common/server"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadAuthConfig(cmd.Flags())
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	app, err := bootstrap.NewAuthApp(appCtx, cfg)
	if err != nil {
		return oops.Code("STARTUP_FAILED").Wrap(err)
	}
	defer app.Close()

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), app.Handler)

	return srv.Run(ctx, server, app.Log, "auth", func(context.Context) error {
		app.Log.Info("auth service: stopping background workers")
		cancel()
		return nil
	})
}
