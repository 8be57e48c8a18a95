// Package app wires the prediction store, renderer, sink and builder from
// configuration for the CLI and Lambda entry points.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/builder"
	"github.com/bbernstein/tidechart/internal/cache"
	"github.com/bbernstein/tidechart/internal/chart"
	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/sink"
	"github.com/bbernstein/tidechart/internal/tide"
	"github.com/bbernstein/tidechart/pkg/http/client"
)

type App struct {
	Config   *config.Config
	Cache    *cache.CacheService
	Store    *tide.Store
	Renderer *chart.Renderer
	Builder  *builder.Builder
	Stations []config.Station
}

type Options struct {
	Config *config.Config
	Cache  *config.CacheConfig
	Sink   *config.SinkConfig
	// Style defaults to chart.DefaultChartStyle
	Style *chart.ChartStyle
	// StationsFile is a JSON station list; TIDE_* variables are used when empty
	StationsFile string
	// Out replaces the sink selected by Sink
	Out sink.Sink
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.LoadFromEnv()
	}
	cacheCfg := opts.Cache
	if cacheCfg == nil {
		cacheCfg = config.GetCacheConfig()
	}
	style := chart.DefaultChartStyle()
	if opts.Style != nil {
		style = *opts.Style
	}
	if style.FontPath == "" {
		style.FontPath = os.Getenv("TIDE_FONT_PATH")
	}

	predictionCache, err := cache.NewCacheService(ctx, cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing cache: %w", err)
	}

	httpClient := client.New(client.Options{
		BaseURL: cfg.NOAABaseURL,
		Timeout: cfg.HTTPTimeout,
		Headers: map[string]string{
			"User-Agent": cfg.UserAgent,
			"Accept":     "application/json",
		},
	})
	store := tide.NewStore(httpClient, predictionCache)

	renderer, err := chart.NewRenderer(style)
	if err != nil {
		return nil, fmt.Errorf("initializing renderer: %w", err)
	}

	out := opts.Out
	if out == nil {
		sinkCfg := opts.Sink
		if sinkCfg == nil {
			sinkCfg = config.GetSinkConfig()
		}
		out, err = sink.New(ctx, sinkCfg)
		if err != nil {
			return nil, fmt.Errorf("initializing sink: %w", err)
		}
	}

	stations, err := loadStations(opts.StationsFile)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("stations", len(stations)).
		Str("noaa_base_url", cfg.NOAABaseURL).
		Dur("http_timeout", cfg.HTTPTimeout).
		Msg("Application initialized")

	return &App{
		Config:   cfg,
		Cache:    predictionCache,
		Store:    store,
		Renderer: renderer,
		Builder:  builder.New(store, renderer, out, cfg.Application),
		Stations: stations,
	}, nil
}

// loadStations reads the station list file, or a single station from the
// environment. No stations is not an error for the HTTP server.
func loadStations(path string) ([]config.Station, error) {
	if path == "" {
		path = os.Getenv("TIDE_STATIONS_FILE")
	}
	if path != "" {
		return config.LoadStations(path)
	}

	if os.Getenv("TIDE_STATION") == "" {
		return nil, nil
	}
	st, err := config.LoadStationFromEnv()
	if err != nil {
		return nil, err
	}
	return []config.Station{st}, nil
}
