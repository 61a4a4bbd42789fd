package handler

import (
	"time"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

// errorResponse documents the {"error": "..."} envelope for swagger.
type errorResponse struct {
	Error string `json:"error"`
}

type coordinateRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

func (r coordinateRequest) toDomain() domain.Coordinate {
	return domain.Coordinate{Lat: *r.Lat, Lng: *r.Lng}
}

type reportEmergencyRequest struct {
	Type       string            `json:"type"        validate:"required,max=64"`
	VictimName string            `json:"victim_name" validate:"max=128"`
	Location   coordinateRequest `json:"location"    validate:"required"`
}

type resolveEmergencyRequest struct {
	Cancelled bool `json:"cancelled"`
}

type locationUpdateRequest struct {
	Lat       *float64   `json:"lat"       validate:"required,gte=-90,lte=90"`
	Lng       *float64   `json:"lng"       validate:"required,gte=-180,lte=180"`
	Timestamp *time.Time `json:"timestamp"`
	Source    string     `json:"source"    validate:"max=64"`
}

type acceptEmergencyResponse struct {
	Message   string            `json:"message"`
	Redirect  string            `json:"redirect"`
	Emergency *domain.Emergency `json:"emergency"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}
