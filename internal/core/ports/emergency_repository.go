package ports

import (
	"context"
	"time"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

// EmergencyRepository defines persistence operations for emergencies.
type EmergencyRepository interface {
	Create(ctx context.Context, e *domain.Emergency) error
	FindByID(ctx context.Context, id int64) (*domain.Emergency, error)
	// ListActive returns pending and accepted emergencies, newest first.
	ListActive(ctx context.Context, limit int) ([]*domain.Emergency, error)
	// Assign sets the responder on a pending emergency and moves it to accepted.
	// It returns domain.ErrAlreadyAccepted when the emergency is no longer pending.
	Assign(ctx context.Context, id int64, responderID string, at time.Time) (*domain.Emergency, error)
	// UpdateStatus moves the emergency to a terminal status.
	UpdateStatus(ctx context.Context, id int64, status domain.EmergencyStatus, at time.Time) error
}

// LocationCache keeps the latest victim/responder coordinate per emergency.
type LocationCache interface {
	SetLatest(ctx context.Context, emergencyID int64, party domain.Party, c domain.Coordinate, ts time.Time) error
	Latest(ctx context.Context, emergencyID int64) (domain.LocationPair, error)
	Clear(ctx context.Context, emergencyID int64) error
}

// LocationHistoryRepository stores every accepted location update for auditing.
type LocationHistoryRepository interface {
	Insert(ctx context.Context, u *domain.LocationUpdate) error
}

// IDGenerator hands out unique emergency identifiers.
type IDGenerator interface {
	NextID() (int64, error)
}
