package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/ports"
)

func newEmergencySvc(repo *stubEmergencyRepo, cache *stubLocationCache) *EmergencyService {
	return NewEmergencyService(repo, cache, &sequenceIDs{next: 100}, discardLogger)
}

// ---------------------------------------------------------------------------
// Report
// ---------------------------------------------------------------------------

func TestEmergencyService_Report_Success(t *testing.T) {
	repo := newStubEmergencyRepo()
	cache := newStubLocationCache()
	svc := newEmergencySvc(repo, cache)

	e, err := svc.Report(context.Background(), ports.ReportEmergencyInput{
		Type:       " fire ",
		VictimName: "Asha",
		VictimID:   "asha",
		Location:   domain.Coordinate{Lat: 12.97, Lng: 77.59},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != 101 {
		t.Errorf("expected generated id 101, got %d", e.ID)
	}
	if e.Status != domain.EmergencyPending {
		t.Errorf("expected status %q, got %q", domain.EmergencyPending, e.Status)
	}
	if e.Type != "fire" {
		t.Errorf("expected trimmed type, got %q", e.Type)
	}
	if _, ok := repo.byID[e.ID]; !ok {
		t.Error("emergency was not stored")
	}

	pair := cache.pairs[e.ID]
	if pair.Victim == nil || pair.Victim.Lat != 12.97 {
		t.Errorf("victim location not seeded: %+v", pair)
	}
	if pair.Responder != nil {
		t.Error("responder location must not be set on report")
	}
}

func TestEmergencyService_Report_DefaultsVictimName(t *testing.T) {
	repo := newStubEmergencyRepo()
	svc := newEmergencySvc(repo, newStubLocationCache())

	e, err := svc.Report(context.Background(), ports.ReportEmergencyInput{Type: "medical", VictimID: "asha"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.VictimName != "asha" {
		t.Errorf("expected victim name to default to username, got %q", e.VictimName)
	}
}

func TestEmergencyService_Report_RepoError(t *testing.T) {
	repo := newStubEmergencyRepo()
	repo.createErr = errUnavailable
	svc := newEmergencySvc(repo, newStubLocationCache())

	if _, err := svc.Report(context.Background(), ports.ReportEmergencyInput{Type: "medical"}); err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}

func TestEmergencyService_Report_IDError(t *testing.T) {
	svc := NewEmergencyService(newStubEmergencyRepo(), newStubLocationCache(), &sequenceIDs{err: errors.New("clock moved backwards")}, discardLogger)

	if _, err := svc.Report(context.Background(), ports.ReportEmergencyInput{Type: "medical"}); err == nil {
		t.Fatal("expected error when id generation fails")
	}
}

// ---------------------------------------------------------------------------
// ListActive / Locations
// ---------------------------------------------------------------------------

func TestEmergencyService_ListActive_ExcludesClosed(t *testing.T) {
	repo := newStubEmergencyRepo()
	seedEmergency(repo, 1, domain.EmergencyPending, "a", "")
	seedEmergency(repo, 2, domain.EmergencyAccepted, "b", "r1")
	seedEmergency(repo, 3, domain.EmergencyResolved, "c", "r2")
	svc := newEmergencySvc(repo, newStubLocationCache())

	list, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 active emergencies, got %d", len(list))
	}
	for _, e := range list {
		if e.ID == 3 {
			t.Error("resolved emergency must not be listed")
		}
	}
}

func TestEmergencyService_Locations_FallsBackToReportedLocation(t *testing.T) {
	repo := newStubEmergencyRepo()
	seeded := seedEmergency(repo, 7, domain.EmergencyPending, "asha", "")
	svc := newEmergencySvc(repo, newStubLocationCache())

	pair, err := svc.Locations(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pair.Victim == nil || *pair.Victim != seeded.Location {
		t.Errorf("expected reported location as victim, got %+v", pair.Victim)
	}
	if pair.Responder != nil {
		t.Errorf("expected no responder, got %+v", pair.Responder)
	}
}

func TestEmergencyService_Locations_UsesCache(t *testing.T) {
	repo := newStubEmergencyRepo()
	seedEmergency(repo, 7, domain.EmergencyAccepted, "asha", "ravi")
	cache := newStubLocationCache()
	_ = cache.SetLatest(context.Background(), 7, domain.PartyVictim, domain.Coordinate{Lat: 1, Lng: 2}, time.Now())
	_ = cache.SetLatest(context.Background(), 7, domain.PartyResponder, domain.Coordinate{Lat: 3, Lng: 4}, time.Now())
	svc := newEmergencySvc(repo, cache)

	pair, err := svc.Locations(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pair.Complete() {
		t.Fatalf("expected complete pair, got %+v", pair)
	}
	if pair.Victim.Lat != 1 || pair.Responder.Lat != 3 {
		t.Errorf("unexpected pair: %+v / %+v", pair.Victim, pair.Responder)
	}
}

func TestEmergencyService_Locations_CacheErrorDegrades(t *testing.T) {
	repo := newStubEmergencyRepo()
	seedEmergency(repo, 7, domain.EmergencyPending, "asha", "")
	cache := newStubLocationCache()
	cache.readErr = errors.New("redis down")
	svc := newEmergencySvc(repo, cache)

	pair, err := svc.Locations(context.Background(), 7)
	if err != nil {
		t.Fatalf("cache failure must not fail the read, got %v", err)
	}
	if pair.Victim == nil {
		t.Error("expected fallback victim location")
	}
}

func TestEmergencyService_Locations_NotFound(t *testing.T) {
	svc := newEmergencySvc(newStubEmergencyRepo(), newStubLocationCache())

	_, err := svc.Locations(context.Background(), 404)
	if !errors.Is(err, domain.ErrEmergencyNotFound) {
		t.Errorf("expected ErrEmergencyNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Accept
// ---------------------------------------------------------------------------

func TestEmergencyService_Accept_Success(t *testing.T) {
	repo := newStubEmergencyRepo()
	seedEmergency(repo, 9, domain.EmergencyPending, "asha", "")
	svc := newEmergencySvc(repo, newStubLocationCache())

	e, err := svc.Accept(context.Background(), 9, "ravi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != domain.EmergencyAccepted || e.ResponderID != "ravi" {
		t.Errorf("unexpected emergency after accept: %+v", e)
	}
	if e.AcceptedAt == nil {
		t.Error("AcceptedAt must be set")
	}
}

func TestEmergencyService_Accept_SameResponderIsIdempotent(t *testing.T) {
	repo := newStubEmergencyRepo()
	seedEmergency(repo, 9, domain.EmergencyAccepted, "asha", "ravi")
	svc := newEmergencySvc(repo, newStubLocationCache())

	if _, err := svc.Accept(context.Background(), 9, "ravi"); err != nil {
		t.Fatalf("re-accept by the same responder should succeed, got %v", err)
	}
}

func TestEmergencyService_Accept_OtherResponderConflicts(t *testing.T) {
	repo := newStubEmergencyRepo()
	seedEmergency(repo, 9, domain.EmergencyAccepted, "asha", "ravi")
	svc := newEmergencySvc(repo, newStubLocationCache())

	_, err := svc.Accept(context.Background(), 9, "meera")
	if !errors.Is(err, domain.ErrAlreadyAccepted) {
		t.Errorf("expected ErrAlreadyAccepted, got %v", err)
	}
}

func TestEmergencyService_Accept_Closed(t *testing.T) {
	repo := newStubEmergencyRepo()
	seedEmergency(repo, 9, domain.EmergencyResolved, "asha", "")
	svc := newEmergencySvc(repo, newStubLocationCache())

	_, err := svc.Accept(context.Background(), 9, "ravi")
	if !errors.Is(err, domain.ErrEmergencyClosed) {
		t.Errorf("expected ErrEmergencyClosed, got %v", err)
	}
}

func TestEmergencyService_Accept_LostRace(t *testing.T) {
	repo := newStubEmergencyRepo()
	seedEmergency(repo, 9, domain.EmergencyPending, "asha", "")
	repo.assignErr = domain.ErrAlreadyAccepted
	svc := newEmergencySvc(repo, newStubLocationCache())

	_, err := svc.Accept(context.Background(), 9, "ravi")
	if !errors.Is(err, domain.ErrAlreadyAccepted) {
		t.Errorf("expected wrapped ErrAlreadyAccepted, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestEmergencyService_Resolve(t *testing.T) {
	cases := []struct {
		name      string
		status    domain.EmergencyStatus
		role      string
		username  string
		cancelled bool
		wantErr   error
		want      domain.EmergencyStatus
	}{
		{"victim resolves own", domain.EmergencyPending, domain.RoleVictim, "asha", false, nil, domain.EmergencyResolved},
		{"victim cancels own", domain.EmergencyAccepted, domain.RoleVictim, "asha", true, nil, domain.EmergencyCancelled},
		{"assigned responder resolves", domain.EmergencyAccepted, domain.RoleResponder, "ravi", false, nil, domain.EmergencyResolved},
		{"admin resolves", domain.EmergencyPending, domain.RoleAdmin, "root", false, nil, domain.EmergencyResolved},
		{"other victim forbidden", domain.EmergencyPending, domain.RoleVictim, "mallory", false, domain.ErrForbidden, domain.EmergencyPending},
		{"other responder forbidden", domain.EmergencyAccepted, domain.RoleResponder, "meera", false, domain.ErrForbidden, domain.EmergencyAccepted},
		{"already resolved", domain.EmergencyResolved, domain.RoleAdmin, "root", false, domain.ErrInvalidTransition, domain.EmergencyResolved},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubEmergencyRepo()
			seedEmergency(repo, 5, tc.status, "asha", "ravi")
			cache := newStubLocationCache()
			svc := newEmergencySvc(repo, cache)

			err := svc.Resolve(context.Background(), ports.ResolveEmergencyInput{
				EmergencyID: 5,
				Role:        tc.role,
				Username:    tc.username,
				Cancelled:   tc.cancelled,
			})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := repo.byID[5].Status; got != tc.want {
				t.Errorf("status: want %q, got %q", tc.want, got)
			}
			if tc.wantErr == nil && len(cache.cleared) != 1 {
				t.Error("expected cached locations to be cleared")
			}
		})
	}
}
