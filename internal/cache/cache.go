package cache

import (
	"context"
	"time"

	"github.com/bbernstein/tidechart/internal/models"
)

// Entry is one station's predictions for a local day. It is replaced
// wholesale on refresh and must never be served at or after ExpiresAt.
type Entry struct {
	StationID   string              `json:"stationId"`
	Predictions []models.Prediction `json:"predictions"`
	ExpiresAt   time.Time           `json:"expiresAt"`
}

// Valid reports whether the entry may still be served at now
func (e *Entry) Valid(now time.Time) bool {
	return e != nil && now.Before(e.ExpiresAt)
}

// PredictionCache stores one Entry per station. Get returns nil without an
// error when the station is absent or its entry has expired.
type PredictionCache interface {
	Get(ctx context.Context, stationID string) (*Entry, error)
	Set(ctx context.Context, entry Entry) error
}

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
