package tide

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/bbernstein/tidechart/internal/cache"
	"github.com/bbernstein/tidechart/internal/clock"
	"github.com/bbernstein/tidechart/internal/metrics"
	"github.com/bbernstein/tidechart/internal/models"
	"github.com/bbernstein/tidechart/pkg/http/client"
)

const (
	datagetterPath  = "/api/prod/datagetter"
	queryDateFormat = "20060102 15:04"
)

// Store fetches one local day of predictions per station and caches them
// until the end of that day in the station's zone.
type Store struct {
	httpClient client.Interface
	cache      cache.PredictionCache
	// dataWindowClock picks the local day to fetch and the entry expiry
	dataWindowClock clock.Clock
	inflight        singleflight.Group
}

type StoreOption func(*Store)

// WithClock replaces the clock used for the day window and expiry
func WithClock(c clock.Clock) StoreOption {
	return func(s *Store) {
		s.dataWindowClock = c
	}
}

func NewStore(httpClient client.Interface, predictionCache cache.PredictionCache, opts ...StoreOption) *Store {
	s := &Store{
		httpClient:      httpClient,
		cache:           predictionCache,
		dataWindowClock: clock.System{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns today's predictions for the station, or nil when none could
// be obtained. Provider and transport failures are logged, not returned.
func (s *Store) Fetch(ctx context.Context, stationID, timezone, application string) ([]models.Prediction, error) {
	entry, err := s.FetchDetailed(ctx, stationID, timezone, application)
	if err != nil {
		var unavailable *DataUnavailableError
		if errors.As(err, &unavailable) {
			log.Warn().
				Err(err).
				Str("station_id", stationID).
				Str("timezone", timezone).
				Msg("No tide data available")
			return nil, nil
		}
		return nil, err
	}
	return entry.Predictions, nil
}

// FetchDetailed is Fetch with the cache entry and the typed failure exposed.
// Every provider or transport failure is a *DataUnavailableError.
func (s *Store) FetchDetailed(ctx context.Context, stationID, timezone, application string) (*cache.Entry, error) {
	if stationID == "" {
		return nil, fmt.Errorf("station ID is required")
	}
	if timezone == "" {
		return nil, fmt.Errorf("timezone is required")
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, newDataUnavailableError(stationID, fmt.Errorf("loading timezone %q: %w", timezone, err))
	}

	if entry := s.cached(ctx, stationID); entry != nil {
		return entry, nil
	}

	v, err, shared := s.inflight.Do(stationID, func() (interface{}, error) {
		return s.fetchAndCache(ctx, stationID, loc, application)
	})
	if shared {
		log.Debug().Str("station_id", stationID).Msg("Joined in-flight prediction fetch")
	}
	if err != nil {
		return nil, err
	}
	return v.(*cache.Entry), nil
}

func (s *Store) cached(ctx context.Context, stationID string) *cache.Entry {
	entry, err := s.cache.Get(ctx, stationID)
	if err != nil {
		log.Warn().Err(err).Str("station_id", stationID).Msg("Prediction cache lookup failed")
		return nil
	}
	if entry == nil {
		return nil
	}

	log.Debug().
		Str("station_id", stationID).
		Time("expires_at", entry.ExpiresAt).
		Msg("Using cached predictions")
	return entry
}

func (s *Store) fetchAndCache(ctx context.Context, stationID string, loc *time.Location, application string) (*cache.Entry, error) {
	start := time.Now()
	predictions, err := s.fetchNoaaPredictions(ctx, stationID, loc, application)
	if err != nil {
		metrics.ObserveFetch("error", time.Since(start))
		return nil, newDataUnavailableError(stationID, err)
	}
	metrics.ObserveFetch("ok", time.Since(start))

	// Expiry is taken at response time, not request time.
	entry := cache.Entry{
		StationID:   stationID,
		Predictions: predictions,
		ExpiresAt:   clock.EndOfDay(s.dataWindowClock.Now(), loc),
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		log.Warn().Err(err).Str("station_id", stationID).Msg("Failed to cache predictions")
	}

	return &entry, nil
}

func (s *Store) fetchNoaaPredictions(ctx context.Context, stationID string, loc *time.Location, application string) ([]models.Prediction, error) {
	path := datagetterPath + "?" + predictionQuery(stationID, s.dataWindowClock.Now(), loc, application).Encode()

	resp, err := s.httpClient.Get(ctx, path)
	if err != nil {
		return nil, NewNoaaAPIError("request failed", err)
	}

	log.Debug().
		Str("station_id", stationID).
		Int("status", resp.StatusCode).
		Msg("Fetched predictions from NOAA")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewNoaaAPIError(fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var noaaResp models.NoaaResponse
	if err := json.Unmarshal(resp.Body, &noaaResp); err != nil {
		return nil, NewNoaaAPIError("decoding response", err)
	}

	if noaaResp.Error != nil {
		return nil, NewNoaaAPIError(noaaResp.Error.Message, nil)
	}

	if len(noaaResp.Predictions) == 0 {
		return nil, NewNoaaAPIError("response contained no predictions", nil)
	}

	for _, p := range noaaResp.Predictions {
		if err := p.Validate(); err != nil {
			return nil, NewNoaaAPIError("malformed prediction", err)
		}
	}

	return noaaResp.Predictions, nil
}

// predictionQuery covers the local day containing now, 00:00 through the
// last six-minute sample at 23:54.
func predictionQuery(stationID string, now time.Time, loc *time.Location, application string) url.Values {
	begin := clock.StartOfDay(now, loc)
	end := time.Date(begin.Year(), begin.Month(), begin.Day(), 23, 54, 0, 0, loc)

	q := url.Values{}
	q.Set("station", stationID)
	q.Set("begin_date", begin.Format(queryDateFormat))
	q.Set("end_date", end.Format(queryDateFormat))
	q.Set("product", "predictions")
	q.Set("datum", "MLLW")
	q.Set("units", "english")
	q.Set("time_zone", "lst_ldt")
	q.Set("format", "json")
	if application != "" {
		q.Set("application", application)
	}
	return q
}
