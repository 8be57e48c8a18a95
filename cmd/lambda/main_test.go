package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/tidechart/internal/api"
	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/handler"
	"github.com/bbernstein/tidechart/internal/models"
)

type stubBuilder struct {
	builds int
}

func (s *stubBuilder) Build(context.Context, config.Station) (*models.RenderedImage, error) {
	s.builds++
	return &models.RenderedImage{
		Data:      []byte{0xff, 0xd8, 0xff, 0xd9},
		ImageType: models.ImageTypeJPEG,
		Expires:   time.Date(2024, 1, 16, 4, 59, 59, 0, time.UTC),
	}, nil
}

func (s *stubBuilder) CreateImages(_ context.Context, stations []config.Station) (int, error) {
	return len(stations), nil
}

var stations = []config.Station{
	{ID: "8443970", Location: "Boston", TimeZone: "America/New_York"},
}

func setupHandlers(t *testing.T, init func(ctx context.Context) (*handler.ImagesHandler, *handler.ScheduledHandler, error)) error {
	t.Helper()
	originalInit := initHandler
	t.Cleanup(func() {
		initHandler = originalInit
		images, scheduled = nil, nil
		setupOnce = sync.Once{}
	})

	images, scheduled = nil, nil
	setupOnce = sync.Once{}
	initHandler = init
	return InitializeService()
}

func TestHandleEvent(t *testing.T) {
	b := &stubBuilder{}
	require.NoError(t, setupHandlers(t, func(context.Context) (*handler.ImagesHandler, *handler.ScheduledHandler, error) {
		return handler.NewImagesHandler(b, stations), handler.NewScheduledHandler(b, stations), nil
	}))

	t.Run("chart request", func(t *testing.T) {
		raw, err := json.Marshal(events.APIGatewayProxyRequest{
			HTTPMethod:     http.MethodGet,
			Path:           "/tides/8443970.jpg",
			PathParameters: map[string]string{"station": "8443970.jpg"},
		})
		require.NoError(t, err)

		out, err := handleEvent(context.Background(), raw)
		require.NoError(t, err)
		resp, ok := out.(events.APIGatewayProxyResponse)
		require.True(t, ok)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, resp.IsBase64Encoded)
		assert.Equal(t, 1, b.builds)
	})

	t.Run("scheduled build", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"evt-1","detail-type":"Scheduled Event","source":"aws.events"}`)

		out, err := handleEvent(context.Background(), raw)
		require.NoError(t, err)
		resp, ok := out.(*api.BuildResponse)
		require.True(t, ok)
		assert.Equal(t, 1, resp.Written)
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := handleEvent(context.Background(), json.RawMessage(`{"foo":"bar"}`))
		assert.EqualError(t, err, "unsupported event")
	})

	t.Run("malformed event", func(t *testing.T) {
		_, err := handleEvent(context.Background(), json.RawMessage(`not json`))
		assert.Error(t, err)
	})
}

func TestInitializeService_Failure(t *testing.T) {
	err := setupHandlers(t, func(context.Context) (*handler.ImagesHandler, *handler.ScheduledHandler, error) {
		return nil, nil, errors.New("no stations")
	})
	assert.ErrorContains(t, err, "no stations")

	out, err := handleEvent(context.Background(), json.RawMessage(`{"httpMethod":"GET"}`))
	assert.Error(t, err)
	resp, ok := out.(events.APIGatewayProxyResponse)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
