package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/coursecat/internal/server"
	"github.com/desertthunder/coursecat/internal/shared"
	"github.com/desertthunder/coursecat/internal/tasks"
	"github.com/desertthunder/coursecat/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the catalog JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	ctrl := tasks.NewController(r.controllerOpts(nil))
	defer ctrl.Close()

	if err := ctrl.Bootstrap(ctx); err != nil {
		logger.Warn("using built-in sample data", "error", err)
	}

	router := r.newRouter(ctrl)
	logger.Debug("routes registered", "routes", router.Routes())
	return server.Run(ctx, server.New(addr, router), logger)
}

// newRouter wires middleware and the catalog handler.
func (r *Runner) newRouter(ctrl *tasks.Controller) *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(
		server.RequestIDMiddleware(),
		server.LoggingMiddleware(r.logger),
		server.RecoverMiddleware(r.logger),
	)
	router.Handler(web.NewCatalogHandler(ctrl, r.logger))
	return router
}
