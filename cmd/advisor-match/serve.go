// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/advisor-match/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the advisor search HTTP API",
	Long: `Serve starts the HTTP API: POST /api/search ranks advisors, GET
/api/advisor/:id and /api/publication/:id return details, /health reports
database and retriever readiness, and /metrics exposes Prometheus metrics.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(cfg.Server, server.Deps{
		Service: a.service,
		DB:      a.store,
		Ready:   a.ready,
		Version: version,
		Logger:  slog.Default(),
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
