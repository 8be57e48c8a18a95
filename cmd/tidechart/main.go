// tidechart renders daily tide charts from NOAA predictions.
//
// Usage:
//
//	tidechart build --stations stations.json --out ./charts
//	tidechart serve --addr :8080
//	tidechart predictions --tz America/New_York 8443970
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/bbernstein/tidechart/internal/app"
	"github.com/bbernstein/tidechart/internal/chart"
	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/handler"
)

var version = "dev"

// newApp is replaced in tests
var newApp = app.New

func main() {
	if err := newCLI(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCLI(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:    "tidechart",
		Usage:   "Render daily tide charts from NOAA predictions",
		Version: version,
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Environment file loaded before configuration",
			},
			&cli.StringFlag{
				Name:    "font",
				Usage:   "TrueType font for chart text",
				EnvVars: []string{"TIDE_FONT_PATH"},
			},
		},
		Before: func(c *cli.Context) error {
			config.LoadDotEnv(c.String("env-file"))
			config.LoadFromEnv().InitializeLogging()
			return nil
		},
		Commands: []*cli.Command{
			buildCommand(),
			serveCommand(),
			predictionsCommand(),
		},
	}
}

func appOptions(c *cli.Context) app.Options {
	style := chart.DefaultChartStyle()
	style.FontPath = c.String("font")
	return app.Options{
		Style:        &style,
		StationsFile: c.String("stations"),
	}
}

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Render today's chart for every configured station",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "stations",
				Aliases: []string{"s"},
				Usage:   "JSON station list; TIDE_STATION and friends are used when unset",
				EnvVars: []string{"TIDE_STATIONS_FILE"},
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory",
				EnvVars: []string{"TIDE_OUTPUT_DIR"},
			},
			&cli.StringFlag{
				Name:    "bucket",
				Usage:   "S3 bucket; overrides --out",
				EnvVars: []string{"TIDE_S3_BUCKET"},
			},
		},
		Action: func(c *cli.Context) error {
			sinkCfg := config.GetSinkConfig()
			if out := c.String("out"); out != "" {
				sinkCfg.OutputDir = out
			}
			if bucket := c.String("bucket"); bucket != "" {
				sinkCfg.Bucket = bucket
			}

			opts := appOptions(c)
			opts.Sink = sinkCfg
			a, err := newApp(c.Context, opts)
			if err != nil {
				return err
			}
			if len(a.Stations) == 0 {
				return errors.New("no stations configured")
			}

			written, err := a.Builder.CreateImages(c.Context, a.Stations)
			if err != nil {
				return cli.Exit(fmt.Sprintf("building charts: %v", err), 1)
			}

			fmt.Fprintf(c.App.Writer, "wrote %d of %d charts\n", written, len(a.Stations))
			if written < len(a.Stations) {
				return cli.Exit("some charts were not written", 2)
			}
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve charts over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   ":8080",
				Usage:   "Listen address",
				EnvVars: []string{"TIDE_ADDR"},
			},
			&cli.StringFlag{
				Name:    "stations",
				Aliases: []string{"s"},
				Usage:   "JSON station list used for request defaults",
				EnvVars: []string{"TIDE_STATIONS_FILE"},
			},
		},
		Action: func(c *cli.Context) error {
			a, err := newApp(c.Context, appOptions(c))
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              c.String("addr"),
				Handler:           handler.NewRouter(handler.NewImagesHandler(a.Builder, a.Stations)),
				ReadHeaderTimeout: 5 * time.Second,
				WriteTimeout:      30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Int("stations", len(a.Stations)).Msg("Serving tide charts")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			log.Info().Msg("Shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func predictionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "predictions",
		Usage:     "Print today's predictions for a station as JSON",
		ArgsUsage: "<station>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "tz",
				Usage:    "IANA time zone of the station",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "application",
				Usage:   "Application name sent to NOAA",
				EnvVars: []string{"TIDE_APPLICATION"},
			},
		},
		Action: func(c *cli.Context) error {
			stationID := c.Args().First()
			if stationID == "" {
				return errors.New("station is required")
			}

			a, err := newApp(c.Context, appOptions(c))
			if err != nil {
				return err
			}

			predictions, err := a.Store.Fetch(c.Context, stationID, c.String("tz"), c.String("application"))
			if err != nil {
				return err
			}
			if predictions == nil {
				return cli.Exit("no tide data available", 2)
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(predictions)
		},
	}
}
