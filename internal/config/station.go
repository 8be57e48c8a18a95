package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Station is one chart to build: the NOAA station, the title location, the
// zone its day is computed in and the image name it is written under.
type Station struct {
	ID       string `json:"station" envconfig:"STATION"`
	Location string `json:"location" envconfig:"LOCATION"`
	TimeZone string `json:"timeZone" envconfig:"TIMEZONE"`
	FileName string `json:"fileName" envconfig:"FILE_NAME"`
}

// Validate only checks presence; NOAA reports unknown stations itself
func (s Station) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("station id is required"))
	}
	if s.Location == "" {
		errs = append(errs, errors.New("location is required"))
	}
	if s.TimeZone == "" {
		errs = append(errs, errors.New("time zone is required"))
	}
	return errors.Join(errs...)
}

// Zone loads the station's IANA time zone
func (s Station) Zone() (*time.Location, error) {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// ImageName is the configured file name or "<station>-tides.jpg"
func (s Station) ImageName() string {
	if s.FileName != "" {
		return s.FileName
	}
	return s.ID + "-tides.jpg"
}

// LoadStationFromEnv reads a single station from TIDE_STATION, TIDE_LOCATION,
// TIDE_TIMEZONE and TIDE_FILE_NAME.
func LoadStationFromEnv() (Station, error) {
	var s Station
	if err := envconfig.Process("tide", &s); err != nil {
		return Station{}, fmt.Errorf("processing station environment: %w", err)
	}
	return s, s.Validate()
}

// LoadStations reads a JSON array of stations from path
func LoadStations(path string) ([]Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading station list: %w", err)
	}

	var stations []Station
	if err := json.Unmarshal(data, &stations); err != nil {
		return nil, fmt.Errorf("decoding station list: %w", err)
	}

	for i, s := range stations {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("station at index %d: %w", i, err)
		}
	}
	return stations, nil
}
