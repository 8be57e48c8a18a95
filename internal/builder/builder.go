// Package builder turns a configured station into a written tide chart.
package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/cache"
	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/models"
	"github.com/bbernstein/tidechart/internal/sink"
	"github.com/bbernstein/tidechart/internal/tide"
)

type PredictionStore interface {
	FetchDetailed(ctx context.Context, stationID, timezone, application string) (*cache.Entry, error)
}

type ChartRenderer interface {
	Render(predictions []models.Prediction, location, timezone string) (*models.RenderedImage, error)
}

type Builder struct {
	store       PredictionStore
	renderer    ChartRenderer
	sink        sink.Sink
	application string
}

func New(store PredictionStore, renderer ChartRenderer, out sink.Sink, application string) *Builder {
	return &Builder{
		store:       store,
		renderer:    renderer,
		sink:        out,
		application: application,
	}
}

// Build renders today's chart for a station. It returns nil without an error
// when no predictions are available. The image expires with its predictions.
func (b *Builder) Build(ctx context.Context, station config.Station) (*models.RenderedImage, error) {
	if err := station.Validate(); err != nil {
		return nil, err
	}

	entry, err := b.store.FetchDetailed(ctx, station.ID, station.TimeZone, b.application)
	if err != nil {
		var unavailable *tide.DataUnavailableError
		if errors.As(err, &unavailable) {
			log.Warn().
				Err(err).
				Str("station_id", station.ID).
				Msg("Failed to get data, no image available")
			return nil, nil
		}
		return nil, err
	}

	img, err := b.renderer.Render(entry.Predictions, station.Location, station.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("rendering chart for %s: %w", station.ID, err)
	}
	if img == nil {
		return nil, nil
	}

	img.Expires = entry.ExpiresAt
	return img, nil
}

// CreateImage builds a station's chart and writes it to the sink under the
// station's file name. It reports false when there was no data or the write
// failed; render failures are returned as errors.
func (b *Builder) CreateImage(ctx context.Context, station config.Station) (bool, error) {
	img, err := b.Build(ctx, station)
	if err != nil {
		return false, err
	}
	if img == nil {
		log.Error().Str("station_id", station.ID).Msg("No image data returned")
		return false, nil
	}

	name := station.ImageName()
	if err := b.sink.Write(ctx, name, img); err != nil {
		log.Error().Err(err).Str("station_id", station.ID).Str("file", name).Msg("Failed to write image")
		return false, nil
	}
	return true, nil
}

// CreateImages runs CreateImage for every station and returns how many were
// written. A render failure stops the run.
func (b *Builder) CreateImages(ctx context.Context, stations []config.Station) (int, error) {
	written := 0
	for _, st := range stations {
		ok, err := b.CreateImage(ctx, st)
		if err != nil {
			return written, err
		}
		if ok {
			written++
		}
	}
	return written, nil
}
