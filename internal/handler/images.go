package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/api"
	"github.com/bbernstein/tidechart/internal/config"
	"github.com/bbernstein/tidechart/internal/metrics"
	"github.com/bbernstein/tidechart/internal/models"
)

type ImageBuilder interface {
	Build(ctx context.Context, station config.Station) (*models.RenderedImage, error)
}

// ImagesHandler serves a station's chart for today. Configured stations
// supply defaults that the location and tz query parameters override.
type ImagesHandler struct {
	builder  ImageBuilder
	stations map[string]config.Station
}

func NewImagesHandler(builder ImageBuilder, stations []config.Station) *ImagesHandler {
	byID := make(map[string]config.Station, len(stations))
	for _, s := range stations {
		byID[s.ID] = s
	}
	return &ImagesHandler{
		builder:  builder,
		stations: byID,
	}
}

type requestError struct {
	message string
	status  int
}

func (e *requestError) Error() string {
	return e.message
}

// resolve builds the chart for a request. A nil image with a nil error
// never escapes; missing data is reported as a requestError.
func (h *ImagesHandler) resolve(ctx context.Context, stationID string, params map[string]string) (*models.RenderedImage, error) {
	if stationID == "" {
		return nil, &requestError{message: "Station is required", status: http.StatusBadRequest}
	}

	station, ok := h.stations[stationID]
	if !ok {
		station = config.Station{ID: stationID, Location: stationID}
	}
	if location := params["location"]; location != "" {
		station.Location = location
	}
	if tz := params["tz"]; tz != "" {
		station.TimeZone = tz
	}

	if _, err := api.ParseTimeZone(station.TimeZone); err != nil {
		return nil, &requestError{message: err.Error(), status: http.StatusBadRequest}
	}

	img, err := h.builder.Build(ctx, station)
	if err != nil {
		log.Error().Err(err).Str("station_id", stationID).Msg("Error building tide chart")
		return nil, &requestError{message: "Error building tide chart", status: http.StatusInternalServerError}
	}
	if img == nil {
		return nil, &requestError{message: "No tide data available", status: http.StatusServiceUnavailable}
	}
	return img, nil
}

// HandleRequest serves API Gateway requests for /tides/{station}.jpg
func (h *ImagesHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	stationID := api.StationFromPath(request.PathParameters["station"])
	log.Info().Str("station_id", stationID).Msg("Handling tide chart request")

	img, err := h.resolve(ctx, stationID, request.QueryStringParameters)
	if err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			return api.Error(reqErr.message, reqErr.status)
		}
		return api.Error("Internal Server Error", http.StatusInternalServerError)
	}
	return api.Image(img)
}

func (h *ImagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["station"]
	params := map[string]string{
		"location": r.URL.Query().Get("location"),
		"tz":       r.URL.Query().Get("tz"),
	}

	img, err := h.resolve(r.Context(), stationID, params)
	if err != nil {
		status := http.StatusInternalServerError
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			status = reqErr.status
		}
		http.Error(w, err.Error(), status)
		return
	}

	for k, v := range api.ImageHeaders(img) {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		log.Warn().Err(err).Str("station_id", stationID).Msg("Failed to write response")
	}
}

// NewRouter wires the chart, health and metrics endpoints
func NewRouter(images *ImagesHandler) *mux.Router {
	r := mux.NewRouter().StrictSlash(true)
	r.Handle("/tides/{station:[A-Za-z0-9_-]+}.jpg", metrics.LatencyHandler(images)).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
