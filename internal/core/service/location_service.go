package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rapidaid/livetracker/internal/api/metrics"
	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/geo"
	"github.com/rapidaid/livetracker/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, emergencyID int64, party string, ts time.Time) (bool, error)
	Mark(ctx context.Context, emergencyID int64, party string, ts time.Time) error
}

type locationService struct {
	emergencies ports.EmergencyRepository
	cache       ports.LocationCache
	history     ports.LocationHistoryRepository
	dedup       DedupChecker
	log         zerolog.Logger
}

// NewLocationService returns a LocationService implementation.
func NewLocationService(
	emergencies ports.EmergencyRepository,
	cache ports.LocationCache,
	history ports.LocationHistoryRepository,
	dedup DedupChecker,
	log zerolog.Logger,
) ports.LocationService {
	return &locationService{
		emergencies: emergencies,
		cache:       cache,
		history:     history,
		dedup:       dedup,
		log:         log,
	}
}

// Process validates, deduplicates, and stores a single location report.
func (s *locationService) Process(ctx context.Context, in ports.LocationUpdateInput) error {
	start := time.Now()

	party, err := domain.PartyForRole(in.Role)
	if err != nil {
		return s.fail("invalid_party", fmt.Errorf("process location: %w", err))
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	// 1. Idempotency check; duplicates are skipped silently.
	isDup, err := s.dedup.IsDuplicate(ctx, in.EmergencyID, string(party), ts)
	if err != nil {
		s.log.Warn().Err(err).Int64("emergency_id", in.EmergencyID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		metrics.LocationDedupTotal.WithLabelValues("hit").Inc()
		s.log.Debug().Int64("emergency_id", in.EmergencyID).Str("party", string(party)).Msg("duplicate location skipped")
		return nil
	}
	metrics.LocationDedupTotal.WithLabelValues("miss").Inc()

	// 2. The emergency must exist and still be tracked.
	e, err := s.emergencies.FindByID(ctx, in.EmergencyID)
	if err != nil {
		return s.fail("emergency_not_found", fmt.Errorf("process location: %w", err))
	}
	if !e.Status.Active() {
		return s.fail("emergency_closed", fmt.Errorf("process location: %w", domain.ErrEmergencyClosed))
	}

	// 3. Only the owning victim or the assigned responder may move a marker.
	switch party {
	case domain.PartyVictim:
		if e.VictimID != "" && e.VictimID != in.Username {
			return s.fail("forbidden", fmt.Errorf("process location: %w", domain.ErrForbidden))
		}
	case domain.PartyResponder:
		if e.ResponderID != in.Username {
			return s.fail("forbidden", fmt.Errorf("process location: %w", domain.ErrForbidden))
		}
	}

	if markErr := s.dedup.Mark(ctx, in.EmergencyID, string(party), ts); markErr != nil {
		s.log.Warn().Err(markErr).Int64("emergency_id", in.EmergencyID).Msg("failed to set dedup key")
	}

	coord := domain.Coordinate{Lat: in.Lat, Lng: in.Lng}

	// 4. Latest position is what trackers poll.
	if err := s.cache.SetLatest(ctx, in.EmergencyID, party, coord, ts); err != nil {
		return s.fail("cache_failed", fmt.Errorf("process location: cache: %w", err))
	}

	// 5. Audit trail (non-fatal on failure).
	update := &domain.LocationUpdate{
		EmergencyID: in.EmergencyID,
		Party:       party,
		Reporter:    in.Username,
		Coordinate:  coord,
		Timestamp:   ts,
		Source:      in.Source,
	}
	if err := s.history.Insert(ctx, update); err != nil {
		s.log.Warn().Err(err).Int64("emergency_id", in.EmergencyID).Msg("failed to insert location history")
	}

	if pair, err := s.cache.Latest(ctx, in.EmergencyID); err == nil && pair.Complete() {
		km := geo.Distance(*pair.Victim, *pair.Responder)
		metrics.ResponderDistanceKm.Observe(km)
		s.log.Debug().Int64("emergency_id", in.EmergencyID).Float64("distance_km", km).Msg("responder distance")
	}

	metrics.LocationUpdatesProcessedTotal.WithLabelValues(string(party)).Inc()
	metrics.LocationProcessingDuration.WithLabelValues(string(party)).Observe(time.Since(start).Seconds())

	s.log.Info().
		Int64("emergency_id", in.EmergencyID).
		Str("party", string(party)).
		Str("source", in.Source).
		Msg("location processed")

	return nil
}

func (s *locationService) fail(reason string, err error) error {
	metrics.LocationUpdateErrorsTotal.WithLabelValues(reason).Inc()
	return err
}
