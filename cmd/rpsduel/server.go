package main

import (
	"context"
	"errors"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/tlau/rpsduel/cmd/rpsduel/shared"
	"github.com/tlau/rpsduel/internal/arena"
	"github.com/tlau/rpsduel/internal/config"
	"github.com/tlau/rpsduel/internal/server"
)

// ServerCmd runs the duel server.
type ServerCmd struct {
	Config string `kong:"default='conf.ini',help='Path to the configuration file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (c *ServerCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	a := arena.New(logger, quartz.NewReal(), arena.DefaultTimings())
	srv := server.New(cfg, a, logger)

	ctx := shared.SetupSignalHandler(logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
