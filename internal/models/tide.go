package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// NoaaTimeFormat is the local timestamp layout used by the NOAA datagetter API
const NoaaTimeFormat = "2006-01-02 15:04"

// Prediction is a single predicted water level sample. Time is the station's
// local wall clock ("2006-01-02 15:04") and Level is in feet above MLLW.
type Prediction struct {
	Time  string          `json:"t"`
	Level decimal.Decimal `json:"v"`
}

// Feet returns the level as a float for layout arithmetic
func (p Prediction) Feet() float64 {
	return p.Level.InexactFloat64()
}

// LocalTime parses the prediction timestamp in the given location
func (p Prediction) LocalTime(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(NoaaTimeFormat, p.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing prediction time %q: %w", p.Time, err)
	}
	return t, nil
}

// Validate checks if a Prediction's fields are valid
func (p Prediction) Validate() error {
	if _, err := time.Parse(NoaaTimeFormat, p.Time); err != nil {
		return fmt.Errorf("invalid prediction time format: %s", p.Time)
	}
	return nil
}

// NoaaResponse is the body returned by the datagetter API. A request NOAA
// rejects still answers 200 with only the error object populated.
type NoaaResponse struct {
	Predictions []Prediction `json:"predictions"`
	Error       *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// MaxLevel returns the highest level in feet, never below zero
func MaxLevel(predictions []Prediction) float64 {
	maxLevel := 0.0
	for _, p := range predictions {
		if v := p.Feet(); v > maxLevel {
			maxLevel = v
		}
	}
	return maxLevel
}
