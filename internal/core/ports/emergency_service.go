package ports

import (
	"context"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

// ReportEmergencyInput carries the data a victim submits when raising an emergency.
type ReportEmergencyInput struct {
	Type       string
	VictimName string
	VictimID   string
	Location   domain.Coordinate
}

// ResolveEmergencyInput closes an emergency on behalf of an authenticated actor.
type ResolveEmergencyInput struct {
	EmergencyID int64
	Role        string
	Username    string
	Cancelled   bool
}

// EmergencyService defines use-case operations for emergencies.
type EmergencyService interface {
	Report(ctx context.Context, input ReportEmergencyInput) (*domain.Emergency, error)
	ListActive(ctx context.Context) ([]*domain.Emergency, error)
	Locations(ctx context.Context, emergencyID int64) (domain.LocationPair, error)
	Accept(ctx context.Context, emergencyID int64, responderID string) (*domain.Emergency, error)
	Resolve(ctx context.Context, input ResolveEmergencyInput) error
}
