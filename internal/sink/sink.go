// Package sink persists rendered charts.
package sink

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/models"
)

type Sink interface {
	Write(ctx context.Context, name string, img *models.RenderedImage) error
}

// New returns an S3 sink when a bucket is configured and a directory sink
// otherwise.
func New(ctx context.Context, cfg *config.SinkConfig) (Sink, error) {
	if cfg.Bucket == "" {
		log.Debug().Str("dir", cfg.OutputDir).Msg("Writing charts to local directory")
		return NewFileSink(cfg.OutputDir), nil
	}

	client, err := NewS3Client(ctx, cfg.S3Endpoint)
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	log.Debug().Str("bucket", cfg.Bucket).Str("prefix", cfg.Prefix).Msg("Writing charts to S3")
	return NewS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}
