package builder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/tidechart/internal/cache"
	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/models"
	"github.com/bbernstein/tidechart/internal/tide"
)

type mockStore struct {
	fetchFunc func(ctx context.Context, stationID, timezone, application string) (*cache.Entry, error)
	calls     int
}

func (m *mockStore) FetchDetailed(ctx context.Context, stationID, timezone, application string) (*cache.Entry, error) {
	m.calls++
	return m.fetchFunc(ctx, stationID, timezone, application)
}

type mockRenderer struct {
	renderFunc func(predictions []models.Prediction, location, timezone string) (*models.RenderedImage, error)
	calls      int
}

func (m *mockRenderer) Render(predictions []models.Prediction, location, timezone string) (*models.RenderedImage, error) {
	m.calls++
	if m.renderFunc != nil {
		return m.renderFunc(predictions, location, timezone)
	}
	return &models.RenderedImage{Data: []byte{1}, ImageType: models.ImageTypeJPEG}, nil
}

type mockSink struct {
	writeErr error
	written  map[string]*models.RenderedImage
}

func (m *mockSink) Write(_ context.Context, name string, img *models.RenderedImage) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.written == nil {
		m.written = make(map[string]*models.RenderedImage)
	}
	m.written[name] = img
	return nil
}

var (
	testStation = config.Station{ID: "8443970", Location: "Boston", TimeZone: "America/New_York", FileName: "boston.jpg"}
	testExpiry  = time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)
)

func okStore() *mockStore {
	return &mockStore{
		fetchFunc: func(_ context.Context, stationID, _, _ string) (*cache.Entry, error) {
			return &cache.Entry{
				StationID:   stationID,
				Predictions: []models.Prediction{{Time: "2024-01-15 00:00", Level: decimal.NewFromInt(1)}},
				ExpiresAt:   testExpiry,
			}, nil
		},
	}
}

func TestBuild_SetsExpiryFromPredictions(t *testing.T) {
	store := okStore()
	renderer := &mockRenderer{
		renderFunc: func(predictions []models.Prediction, location, timezone string) (*models.RenderedImage, error) {
			assert.Len(t, predictions, 1)
			assert.Equal(t, "Boston", location)
			assert.Equal(t, "America/New_York", timezone)
			return &models.RenderedImage{Data: []byte{1}, ImageType: models.ImageTypeJPEG}, nil
		},
	}
	b := New(store, renderer, &mockSink{}, "tidechart")

	img, err := b.Build(context.Background(), testStation)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.True(t, testExpiry.Equal(img.Expires))
}

func TestCreateImage(t *testing.T) {
	unavailable := &mockStore{
		fetchFunc: func(_ context.Context, stationID, _, _ string) (*cache.Entry, error) {
			return nil, &tide.DataUnavailableError{StationID: stationID, Err: errors.New("timeout")}
		},
	}

	tests := []struct {
		name        string
		station     config.Station
		store       *mockStore
		renderer    *mockRenderer
		sink        *mockSink
		want        bool
		wantErr     bool
		wantRenders int
	}{
		{
			name:        "writes image",
			station:     testStation,
			store:       okStore(),
			renderer:    &mockRenderer{},
			sink:        &mockSink{},
			want:        true,
			wantRenders: 1,
		},
		{
			name:     "no data skips rendering",
			station:  testStation,
			store:    unavailable,
			renderer: &mockRenderer{},
			sink:     &mockSink{},
		},
		{
			name:        "sink failure",
			station:     testStation,
			store:       okStore(),
			renderer:    &mockRenderer{},
			sink:        &mockSink{writeErr: errors.New("disk full")},
			wantRenders: 1,
		},
		{
			name:    "render failure propagates",
			station: testStation,
			store:   okStore(),
			renderer: &mockRenderer{
				renderFunc: func([]models.Prediction, string, string) (*models.RenderedImage, error) {
					return nil, errors.New("encoding chart image")
				},
			},
			sink:        &mockSink{},
			wantErr:     true,
			wantRenders: 1,
		},
		{
			name:     "invalid station",
			station:  config.Station{ID: "8443970"},
			store:    okStore(),
			renderer: &mockRenderer{},
			sink:     &mockSink{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.store, tt.renderer, tt.sink, "tidechart")

			got, err := b.CreateImage(context.Background(), tt.station)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRenders, tt.renderer.calls)
			if tt.want {
				assert.Contains(t, tt.sink.written, tt.station.ImageName())
			}
		})
	}
}

func TestCreateImages(t *testing.T) {
	store := &mockStore{
		fetchFunc: func(ctx context.Context, stationID, timezone, application string) (*cache.Entry, error) {
			if stationID == "down" {
				return nil, &tide.DataUnavailableError{StationID: stationID, Err: errors.New("no data")}
			}
			return okStore().fetchFunc(ctx, stationID, timezone, application)
		},
	}
	out := &mockSink{}
	b := New(store, &mockRenderer{}, out, "tidechart")

	stations := []config.Station{
		testStation,
		{ID: "down", Location: "Nowhere", TimeZone: "UTC"},
		{ID: "9414290", Location: "San Francisco", TimeZone: "America/Los_Angeles"},
	}
	written, err := b.CreateImages(context.Background(), stations)
	require.NoError(t, err)
	assert.Equal(t, 2, written)
	assert.Contains(t, out.written, "boston.jpg")
	assert.Contains(t, out.written, "9414290-tides.jpg")
}
