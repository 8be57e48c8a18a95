package handler

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/api"
	"github.com/bbernstein/tidechart/internal/config"
)

type BatchBuilder interface {
	CreateImages(ctx context.Context, stations []config.Station) (int, error)
}

// ScheduledHandler rebuilds every configured station's chart on a
// CloudWatch schedule.
type ScheduledHandler struct {
	builder  BatchBuilder
	stations []config.Station
}

func NewScheduledHandler(builder BatchBuilder, stations []config.Station) *ScheduledHandler {
	return &ScheduledHandler{
		builder:  builder,
		stations: stations,
	}
}

func (h *ScheduledHandler) HandleEvent(ctx context.Context, event events.CloudWatchEvent) (*api.BuildResponse, error) {
	log.Info().
		Str("event_id", event.ID).
		Str("source", event.Source).
		Int("stations", len(h.stations)).
		Msg("Handling scheduled build")

	written, err := h.builder.CreateImages(ctx, h.stations)
	if err != nil {
		return nil, fmt.Errorf("building charts: %w", err)
	}

	if written < len(h.stations) {
		log.Warn().Int("written", written).Int("total", len(h.stations)).Msg("Some charts were not written")
	}
	return api.NewBuildResponse(written, len(h.stations)), nil
}
