package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubEmergencyRepo struct {
	byID      map[int64]*domain.Emergency
	createErr error
	assignErr error
}

func newStubEmergencyRepo() *stubEmergencyRepo {
	return &stubEmergencyRepo{byID: make(map[int64]*domain.Emergency)}
}

func (r *stubEmergencyRepo) Create(_ context.Context, e *domain.Emergency) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *e
	r.byID[e.ID] = &clone
	return nil
}

func (r *stubEmergencyRepo) FindByID(_ context.Context, id int64) (*domain.Emergency, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEmergencyNotFound
	}
	clone := *e
	return &clone, nil
}

func (r *stubEmergencyRepo) ListActive(_ context.Context, limit int) ([]*domain.Emergency, error) {
	var out []*domain.Emergency
	for _, e := range r.byID {
		if e.Status.Active() {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubEmergencyRepo) Assign(_ context.Context, id int64, responderID string, at time.Time) (*domain.Emergency, error) {
	if r.assignErr != nil {
		return nil, r.assignErr
	}
	e, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrEmergencyNotFound
	}
	if e.Status != domain.EmergencyPending {
		return nil, domain.ErrAlreadyAccepted
	}
	e.Status = domain.EmergencyAccepted
	e.ResponderID = responderID
	e.AcceptedAt = &at
	clone := *e
	return &clone, nil
}

func (r *stubEmergencyRepo) UpdateStatus(_ context.Context, id int64, status domain.EmergencyStatus, at time.Time) error {
	e, ok := r.byID[id]
	if !ok {
		return domain.ErrEmergencyNotFound
	}
	e.Status = status
	e.ResolvedAt = &at
	return nil
}

type stubLocationCache struct {
	mu      sync.Mutex
	pairs   map[int64]domain.LocationPair
	setErr  error
	readErr error
	cleared []int64
}

func newStubLocationCache() *stubLocationCache {
	return &stubLocationCache{pairs: make(map[int64]domain.LocationPair)}
}

func (c *stubLocationCache) SetLatest(_ context.Context, id int64, party domain.Party, coord domain.Coordinate, _ time.Time) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	pair := c.pairs[id]
	switch party {
	case domain.PartyVictim:
		pair.Victim = &coord
	case domain.PartyResponder:
		pair.Responder = &coord
	}
	c.pairs[id] = pair
	return nil
}

func (c *stubLocationCache) Latest(_ context.Context, id int64) (domain.LocationPair, error) {
	if c.readErr != nil {
		return domain.LocationPair{}, c.readErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pairs[id], nil
}

func (c *stubLocationCache) Clear(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pairs, id)
	c.cleared = append(c.cleared, id)
	return nil
}

type stubHistoryRepo struct {
	insertErr error
	inserted  []*domain.LocationUpdate
}

func (r *stubHistoryRepo) Insert(_ context.Context, u *domain.LocationUpdate) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, u)
	return nil
}

type stubDedup struct {
	dupResult bool
	dupErr    error
	markErr   error
	marked    []string
}

func (d *stubDedup) IsDuplicate(_ context.Context, _ int64, _ string, _ time.Time) (bool, error) {
	return d.dupResult, d.dupErr
}

func (d *stubDedup) Mark(_ context.Context, _ int64, party string, _ time.Time) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, party)
	return nil
}

type sequenceIDs struct {
	next int64
	err  error
}

func (s *sequenceIDs) NextID() (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.next++
	return s.next, nil
}

var errUnavailable = errors.New("db unavailable")

func seedEmergency(repo *stubEmergencyRepo, id int64, status domain.EmergencyStatus, victim, responder string) *domain.Emergency {
	e := &domain.Emergency{
		ID:          id,
		Type:        "medical",
		VictimName:  "Asha",
		VictimID:    victim,
		ResponderID: responder,
		Status:      status,
		Location:    domain.Coordinate{Lat: 12.9716, Lng: 77.5946},
		CreatedAt:   time.Now().UTC(),
	}
	repo.byID[id] = e
	return e
}

type stubUserRepo struct {
	users map[string]domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]domain.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, taken := r.users[u.Username]; taken {
		return nil, domain.ErrUserExists
	}
	stored := *u
	stored.ID = "id-" + u.Username
	r.users[u.Username] = stored
	return &stored, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}
