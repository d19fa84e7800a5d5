package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eringen/letterpress"
)

const shutdownTimeout = 10 * time.Second

func runServe() error {
	cfg, err := letterpress.LoadConfig(context.Background())
	if err != nil {
		return err
	}
	logger := letterpress.NewLogger(cfg)
	letterpress.SetGlobalLogger(logger)

	app := letterpress.New(cfg, letterpress.WithLogger(logger))
	defer app.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		return err
	}
	return <-errCh
}
