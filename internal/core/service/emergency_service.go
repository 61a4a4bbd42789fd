package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rapidaid/livetracker/internal/api/metrics"
	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/ports"
)

const activeListLimit = 200

type EmergencyService struct {
	repo   ports.EmergencyRepository
	cache  ports.LocationCache
	ids    ports.IDGenerator
	logger zerolog.Logger
}

func NewEmergencyService(
	repo ports.EmergencyRepository,
	cache ports.LocationCache,
	ids ports.IDGenerator,
	logger zerolog.Logger,
) *EmergencyService {
	return &EmergencyService{repo: repo, cache: cache, ids: ids, logger: logger}
}

// Report creates a pending emergency and seeds the victim's latest location.
func (s *EmergencyService) Report(ctx context.Context, input ports.ReportEmergencyInput) (*domain.Emergency, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("report emergency: next id: %w", err)
	}

	victimName := strings.TrimSpace(input.VictimName)
	if victimName == "" {
		victimName = input.VictimID
	}

	now := time.Now().UTC()
	e := &domain.Emergency{
		ID:         id,
		Type:       strings.TrimSpace(input.Type),
		VictimName: victimName,
		VictimID:   input.VictimID,
		Status:     domain.EmergencyPending,
		Location:   input.Location,
		CreatedAt:  now,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error().Err(err).Msg("failed to create emergency")
		return nil, err
	}

	if err := s.cache.SetLatest(ctx, e.ID, domain.PartyVictim, e.Location, now); err != nil {
		s.logger.Warn().Err(err).Int64("emergency_id", e.ID).Msg("failed to seed victim location")
	}

	metrics.EmergenciesReportedTotal.WithLabelValues(e.Type).Inc()
	s.logger.Info().Int64("emergency_id", e.ID).Str("type", e.Type).Msg("emergency reported")
	return e, nil
}

// ListActive returns the emergencies responders can still act on.
func (s *EmergencyService) ListActive(ctx context.Context) ([]*domain.Emergency, error) {
	return s.repo.ListActive(ctx, activeListLimit)
}

// Locations returns the latest known victim and responder positions. When the
// cache has no victim position the emergency's reported location is used.
func (s *EmergencyService) Locations(ctx context.Context, emergencyID int64) (domain.LocationPair, error) {
	e, err := s.repo.FindByID(ctx, emergencyID)
	if err != nil {
		return domain.LocationPair{}, err
	}

	pair, err := s.cache.Latest(ctx, emergencyID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("emergency_id", emergencyID).Msg("location cache read failed")
		pair = domain.LocationPair{}
	}

	if pair.Victim == nil {
		loc := e.Location
		pair.Victim = &loc
	}
	return pair, nil
}

// Accept assigns responderID to a pending emergency.
func (s *EmergencyService) Accept(ctx context.Context, emergencyID int64, responderID string) (*domain.Emergency, error) {
	e, err := s.repo.FindByID(ctx, emergencyID)
	if err != nil {
		return nil, err
	}
	if !e.Status.Active() {
		return nil, domain.ErrEmergencyClosed
	}
	if e.Status == domain.EmergencyAccepted {
		if e.ResponderID == responderID {
			return e, nil
		}
		return nil, domain.ErrAlreadyAccepted
	}

	accepted, err := s.repo.Assign(ctx, emergencyID, responderID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("accept emergency: %w", err)
	}

	metrics.EmergenciesAcceptedTotal.Inc()
	s.logger.Info().Int64("emergency_id", emergencyID).Str("responder", responderID).Msg("emergency accepted")
	return accepted, nil
}

// Resolve closes an emergency. Victims may only close their own emergencies and
// responders only the ones assigned to them.
func (s *EmergencyService) Resolve(ctx context.Context, input ports.ResolveEmergencyInput) error {
	e, err := s.repo.FindByID(ctx, input.EmergencyID)
	if err != nil {
		return err
	}

	switch input.Role {
	case domain.RoleAdmin:
	case domain.RoleVictim:
		if e.VictimID != input.Username {
			return domain.ErrForbidden
		}
	case domain.RoleResponder:
		if e.ResponderID != input.Username {
			return domain.ErrForbidden
		}
	default:
		return domain.ErrForbidden
	}

	next := domain.EmergencyResolved
	if input.Cancelled {
		next = domain.EmergencyCancelled
	}
	if !e.Status.CanTransitionTo(next) {
		return fmt.Errorf("resolve emergency: %w (from %s to %s)", domain.ErrInvalidTransition, e.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, e.ID, next, time.Now().UTC()); err != nil {
		return fmt.Errorf("resolve emergency: %w", err)
	}
	if err := s.cache.Clear(ctx, e.ID); err != nil {
		s.logger.Warn().Err(err).Int64("emergency_id", e.ID).Msg("failed to clear cached locations")
	}

	s.logger.Info().Int64("emergency_id", e.ID).Str("status", string(next)).Msg("emergency closed")
	return nil
}
