package main

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kylycht/currconv/controller/converter"
	"github.com/kylycht/currconv/controller/repl"
	"github.com/kylycht/currconv/service/forex"
	"github.com/kylycht/currconv/service/rates"
	"github.com/kylycht/currconv/storage/cache"
	"github.com/kylycht/currconv/storage/persistence"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const shutdownTimeout = 5 * time.Second

type Application struct {
	cfg      Config                   // application configuration
	snapshot *persistence.Persistence // rates file
	rates    *rates.Rates             // update/load surface
	fiberApp *fiber.App               // serve mode http server
	cache    *cache.MCache            // serve mode rates holder
}

func New(cfg Config, fsys afero.Fs) (*Application, error) {
	a := &Application{cfg: cfg}
	return a, a.init(fsys)
}

func (a *Application) init(fsys afero.Fs) error {
	fetcher, err := forex.New(a.cfg.ForexOptions())
	if err != nil {
		log.Error().Err(err).Msg("unable to create rates client")
		return err
	}

	a.snapshot = persistence.New(fsys, a.cfg.SnapshotPath)
	a.rates = rates.New(fetcher, a.snapshot)

	log.Debug().Str("snapshot", a.snapshot.Path()).Str("url", a.cfg.RatesURL).Msg("application initialized")
	return nil
}

// Interactive starts the REPL on stdin/stdout.
func (a *Application) Interactive(ctx context.Context) error {
	return repl.New(a.rates, a.cfg.NoColor).Run(ctx)
}

// Update fetches and persists rates for date, zero means today.
func (a *Application) Update(ctx context.Context, date time.Time) error {
	if err := a.rates.Update(ctx, date); err != nil {
		return err
	}

	log.Info().Str("path", a.snapshot.Path()).Msg("rates file updated")
	return nil
}

// Query answers one REPL command from the persisted snapshot only.
func (a *Application) Query(ctx context.Context, args ...string) error {
	console := repl.New(a.rates, a.cfg.NoColor)
	if err := console.Load(ctx); err != nil {
		return err
	}
	return console.Execute(ctx, strings.Join(args, " "))
}

// Serve exposes the converter over HTTP until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	mcache, err := cache.New(a.rates, a.cfg.RefreshInterval)
	if err != nil {
		log.Error().Err(err).Msg("unable to create cache")
		return err
	}

	a.cache = mcache
	a.fiberApp = fiber.New(fiber.Config{DisableStartupMessage: true})
	a.buildRoutes()

	go a.stop(ctx)
	log.Info().Str("addr", a.cfg.HTTPPort).Msg("starting fiber http server")

	if err := a.fiberApp.Listen(a.cfg.HTTPPort); err != nil {
		log.Error().Err(err).Msg("unable to start http server")
		a.cache.Close()
		return err
	}

	return nil
}

func (a *Application) buildRoutes() {
	converter.New(a.cache).Register(a.fiberApp)
}

func (a *Application) stop(ctx context.Context) {
	<-ctx.Done()
	log.Info().Msg("shutting down")

	if err := a.fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("unable to shutdown http server")
	}
	a.cache.Close()
}
