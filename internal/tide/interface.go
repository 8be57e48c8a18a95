package tide

import (
	"context"

	"github.com/bbernstein/tidechart/internal/cache"
	"github.com/bbernstein/tidechart/internal/models"
)

// PredictionStore resolves a station's predictions for the current local day
type PredictionStore interface {
	Fetch(ctx context.Context, stationID, timezone, application string) ([]models.Prediction, error)
	FetchDetailed(ctx context.Context, stationID, timezone, application string) (*cache.Entry, error)
}
