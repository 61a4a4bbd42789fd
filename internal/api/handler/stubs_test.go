package handler

import (
	"context"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/rapidaid/livetracker/internal/api/middleware"
	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/ports"
)

type stubEmergencyService struct {
	reportFn    func(ctx context.Context, in ports.ReportEmergencyInput) (*domain.Emergency, error)
	listFn      func(ctx context.Context) ([]*domain.Emergency, error)
	locationsFn func(ctx context.Context, id int64) (domain.LocationPair, error)
	acceptFn    func(ctx context.Context, id int64, responderID string) (*domain.Emergency, error)
	resolveFn   func(ctx context.Context, in ports.ResolveEmergencyInput) error
}

func (s *stubEmergencyService) Report(ctx context.Context, in ports.ReportEmergencyInput) (*domain.Emergency, error) {
	return s.reportFn(ctx, in)
}

func (s *stubEmergencyService) ListActive(ctx context.Context) ([]*domain.Emergency, error) {
	return s.listFn(ctx)
}

func (s *stubEmergencyService) Locations(ctx context.Context, id int64) (domain.LocationPair, error) {
	return s.locationsFn(ctx, id)
}

func (s *stubEmergencyService) Accept(ctx context.Context, id int64, responderID string) (*domain.Emergency, error) {
	return s.acceptFn(ctx, id, responderID)
}

func (s *stubEmergencyService) Resolve(ctx context.Context, in ports.ResolveEmergencyInput) error {
	return s.resolveFn(ctx, in)
}

type recordingDispatcher struct {
	mu      sync.Mutex
	updates []ports.LocationUpdateInput
}

func (d *recordingDispatcher) Enqueue(u ports.LocationUpdateInput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates = append(d.updates, u)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func withClaims(c echo.Context, role, username string) {
	c.Set(middleware.ClaimRole, role)
	c.Set(middleware.ClaimUsername, username)
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
