package ports

import (
	"context"
	"time"
)

// LocationUpdateInput is the DTO passed from the transport layer to LocationService.
type LocationUpdateInput struct {
	EmergencyID int64
	Role        string
	Username    string
	Lat         float64
	Lng         float64
	Timestamp   time.Time
	Source      string
}

// LocationService processes incoming location reports.
type LocationService interface {
	Process(ctx context.Context, update LocationUpdateInput) error
}
