package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/bbernstein/tidechart/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

type BuildResponse struct {
	APIResponse
	Written int `json:"written"`
	Total   int `json:"total"`
}

func (r APIResponse) GetResponseType() string {
	return r.ResponseType
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

func NewBuildResponse(written, total int) *BuildResponse {
	return &BuildResponse{
		APIResponse: APIResponse{ResponseType: "build"},
		Written:     written,
		Total:       total,
	}
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}, nil
}

// Image returns the chart as a base64 body for API Gateway binary media
func Image(img *models.RenderedImage) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode:      http.StatusOK,
		Headers:         ImageHeaders(img),
		Body:            base64.StdEncoding.EncodeToString(img.Data),
		IsBase64Encoded: true,
	}, nil
}

// ImageHeaders are the headers for serving img over HTTP
func ImageHeaders(img *models.RenderedImage) map[string]string {
	headers := map[string]string{
		"Content-Type":                img.ContentType(),
		"Access-Control-Allow-Origin": "*",
	}
	if !img.Expires.IsZero() {
		headers["Expires"] = img.Expires.UTC().Format(http.TimeFormat)
	}
	return headers
}

// StationFromPath extracts "8443970" from "8443970.jpg"
func StationFromPath(name string) string {
	return strings.TrimSuffix(name, "."+models.ImageTypeJPEG)
}

// ParseTimeZone validates an IANA zone name from a request
func ParseTimeZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, InvalidTimeZoneError{Name: name}
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, InvalidTimeZoneError{Name: name}
	}
	return loc, nil
}

type InvalidTimeZoneError struct {
	Name string
}

func (e InvalidTimeZoneError) Error() string {
	if e.Name == "" {
		return "Time zone is required"
	}
	return "Invalid time zone: " + e.Name
}
