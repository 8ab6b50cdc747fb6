package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"workerscope/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Long: `Run an HTTP server exposing the report.

Endpoints:
  GET /healthz
  GET /v1/report?deployment=&target=&format=json|text|yaml
  GET /v1/workers/top?deployment=

server.deployment and server.target are used when a request omits them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	app := NewApplication(configPath)

	if err := app.Initialize(app.serveSteps()); err != nil {
		app.Close()
		return err
	}

	if err := app.Start(); err != nil {
		app.Close()
		return err
	}

	// Wait for exit signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.InfoCtx(app.ctx, "Received exit signal: %v", sig)
	case err := <-app.serverErr:
		logger.ErrorCtx(app.ctx, "HTTP server error: %v", err)
		_ = app.Shutdown(shutdownTimeout)
		return err
	}

	if err := app.Shutdown(shutdownTimeout); err != nil {
		return err
	}

	logger.InfoCtx(app.ctx, "Application safely exited")
	return nil
}
