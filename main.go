package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kylycht/currconv/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLI().RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("currconv failed")
		stop()
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	var (
		cfg  Config
		fsys = afero.NewOsFs()
	)

	// app builds the application once flags and config are resolved
	app := func() (*Application, error) {
		return New(cfg, fsys)
	}

	return &cli.App{
		Name:  "currconv",
		Usage: "convert currencies at the Bank of Russia daily rates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   defaultConfigFile,
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"CURRCONV_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"CURRCONV_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "rates-file",
				Usage:   "path of the rates snapshot file",
				EnvVars: []string{"CURRCONV_RATES_FILE"},
			},
			&cli.StringFlag{
				Name:    "rates-url",
				Usage:   "daily rates feed URL",
				EnvVars: []string{"CURRCONV_RATES_URL"},
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "disable colored output",
				EnvVars: []string{"CURRCONV_NO_COLOR"},
			},
		},
		Before: func(c *cli.Context) error {
			loaded, err := LoadConfig(fsys, c.String("config"), c.IsSet("config"))
			if err != nil {
				return err
			}

			cfg = applyFlags(c, loaded)
			if err := cfg.Validate(); err != nil {
				return err
			}

			return setupLogger(cfg)
		},
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return fmt.Errorf("unknown arguments %q, run `currconv help` for usage", c.Args().Slice())
			}

			a, err := app()
			if err != nil {
				return err
			}
			return a.Interactive(c.Context)
		},
		Commands: []*cli.Command{
			{
				Name:  "update",
				Usage: "fetch rates and store them in the rates file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "rates date, dd.MM.yyyy, defaults to today"},
				},
				Action: func(c *cli.Context) error {
					var date time.Time
					if raw := c.String("date"); raw != "" {
						parsed, err := model.ParseDate(raw)
						if err != nil {
							return err
						}
						date = parsed
					}

					a, err := app()
					if err != nil {
						return err
					}
					return a.Update(c.Context, date)
				},
			},
			{
				Name:    "list",
				Aliases: []string{"l"},
				Usage:   "list currencies of the rates file",
				Action: func(c *cli.Context) error {
					return query(c, app, 0, "list")
				},
			},
			{
				Name:      "rate",
				Usage:     "rate of one FROM unit in TO",
				ArgsUsage: "FROM TO",
				Action: func(c *cli.Context) error {
					return query(c, app, 2, c.Args().Get(0), "to", c.Args().Get(1))
				},
			},
			{
				Name:      "convert",
				Usage:     "convert AMOUNT of FROM into TO",
				ArgsUsage: "AMOUNT FROM TO",
				Action: func(c *cli.Context) error {
					return query(c, app, 3, c.Args().Get(0), c.Args().Get(1), "to", c.Args().Get(2))
				},
			},
			{
				Name:  "serve",
				Usage: "serve conversions over HTTP",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address", EnvVars: []string{"CURRCONV_HTTP_PORT"}},
					&cli.DurationFlag{Name: "refresh", Usage: "rates refresh interval, 0 disables", EnvVars: []string{"CURRCONV_REFRESH_INTERVAL"}},
				},
				Action: func(c *cli.Context) error {
					if c.IsSet("addr") {
						cfg.HTTPPort = c.String("addr")
					}
					if c.IsSet("refresh") {
						cfg.RefreshInterval = c.Duration("refresh")
					}

					a, err := app()
					if err != nil {
						return err
					}
					return a.Serve(c.Context)
				},
			},
		},
	}
}

// query runs a one-shot REPL command; its failure is already printed.
func query(c *cli.Context, app func() (*Application, error), nargs int, words ...string) error {
	if c.NArg() != nargs {
		return fmt.Errorf("%s expects %d arguments, got %d", c.Command.Name, nargs, c.NArg())
	}

	a, err := app()
	if err != nil {
		return err
	}

	if err := a.Query(c.Context, words...); err != nil {
		return cli.Exit("", 1)
	}
	return nil
}

func applyFlags(c *cli.Context, cfg Config) Config {
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("rates-file") {
		cfg.SnapshotPath = c.String("rates-file")
	}
	if c.IsSet("rates-url") {
		cfg.RatesURL = c.String("rates-url")
	}
	if c.IsSet("no-color") {
		cfg.NoColor = c.Bool("no-color")
	}
	return cfg
}

func setupLogger(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    cfg.NoColor,
		TimeFormat: time.TimeOnly,
	})

	return nil
}
