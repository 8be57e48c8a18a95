package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/api"
	"github.com/bbernstein/tidechart/internal/app"
	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/handler"
)

var (
	images      *handler.ImagesHandler
	scheduled   *handler.ScheduledHandler
	setupOnce   sync.Once
	initHandler = defaultInitHandler
)

func defaultInitHandler(ctx context.Context) (*handler.ImagesHandler, *handler.ScheduledHandler, error) {
	a, err := app.New(ctx, app.Options{})
	if err != nil {
		return nil, nil, err
	}
	return handler.NewImagesHandler(a.Builder, a.Stations), handler.NewScheduledHandler(a.Builder, a.Stations), nil
}

// eventEnvelope holds the fields that tell the two event shapes apart
type eventEnvelope struct {
	HTTPMethod string `json:"httpMethod"`
	DetailType string `json:"detail-type"`
}

// handleEvent serves API Gateway chart requests and rebuilds every station on
// scheduled CloudWatch events.
func handleEvent(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	if images == nil || scheduled == nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error":"Handler not initialized"}`,
		}, errors.New("handler not initialized")
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}

	switch {
	case envelope.HTTPMethod != "":
		var request events.APIGatewayProxyRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return api.Error("Invalid request", http.StatusBadRequest)
		}
		return images.HandleRequest(ctx, request)
	case envelope.DetailType != "":
		var event events.CloudWatchEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("decoding scheduled event: %w", err)
		}
		return scheduled.HandleEvent(ctx, event)
	default:
		return nil, errors.New("unsupported event")
	}
}

func InitializeService() error {
	var initError error
	setupOnce.Do(func() {
		config.LoadFromEnv().InitializeLogging()

		log.Debug().Msg("Initializing tide chart service...")
		var err error
		images, scheduled, err = initHandler(context.Background())
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %w", err)
			log.Error().Err(err).Msg("Failed to initialize handler")
			return
		}
		log.Debug().Msg("Tide chart service initialized successfully")
	})
	return initError
}

func main() {
	if err := InitializeService(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	lambda.Start(handleEvent)
}
