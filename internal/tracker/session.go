package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/geo"
)

// DefaultPollInterval is how often a running session asks for new locations.
const DefaultPollInterval = 5 * time.Second

var (
	ErrSessionStarted = errors.New("tracking session already started")
	ErrSessionClosed  = errors.New("tracking session closed")
)

type SessionConfig struct {
	EmergencyID  int64
	PollInterval time.Duration
}

// SessionState is a point-in-time copy of a session for callers that print or assert on it.
type SessionState struct {
	Victim     *domain.Coordinate
	Responder  *domain.Coordinate
	DistanceKm float64
	HasRoute   bool
	Connected  bool
	Paused     bool
	LastUpdate time.Time
	LastError  error
}

// ticker abstracts time.Ticker so tests can drive polls by hand.
type ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Option customises a Session or an Overview.
type Option func(*options)

type options struct {
	log       zerolog.Logger
	now       func() time.Time
	newTicker func(time.Duration) ticker
}

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithClock replaces time.Now for status timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func withTicker(fn func(time.Duration) ticker) Option {
	return func(o *options) { o.newTicker = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		log:       zerolog.Nop(),
		now:       time.Now,
		newTicker: newTimeTicker,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Session tracks a single emergency. It loads the locations once on Start and
// then every PollInterval until paused or closed. Each poll runs in its own
// goroutine; results are applied under the session mutex in arrival order.
type Session struct {
	cfg      SessionConfig
	source   LocationSource
	surface  MapSurface
	renderer *Renderer
	status   *StatusReporter
	opts     options

	mu         sync.Mutex
	ctx        context.Context
	started    bool
	closed     bool
	paused     bool
	connected  bool
	stop       chan struct{}
	victim     *domain.Coordinate
	responder  *domain.Coordinate
	distanceKm float64
	lastUpdate time.Time
	lastErr    error

	loops sync.WaitGroup
}

func NewSession(cfg SessionConfig, source LocationSource, surface MapSurface, display Display, opts ...Option) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	o := buildOptions(opts)
	o.log = o.log.With().Int64("emergency_id", cfg.EmergencyID).Logger()

	return &Session{
		cfg:      cfg,
		source:   source,
		surface:  surface,
		renderer: NewRenderer(surface),
		status:   NewStatusReporter(display),
		opts:     o,
	}
}

// Start performs the initial load and starts polling. The session stops
// polling when ctx is cancelled or Close is called. Pause and Resume may be
// called while the initial load is still running.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.started {
		s.mu.Unlock()
		return ErrSessionStarted
	}
	s.started = true
	s.ctx = ctx
	s.surface.SetCenter(DefaultCenter)
	s.surface.SetZoom(TrackingZoom)
	s.setConnectedLocked(true)
	s.status.SetPaused(false)
	s.mu.Unlock()

	s.poll()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && !s.paused {
		s.startLoopLocked()
	}
	return nil
}

// Pause stops the poll timer. Requests already in flight still complete.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.paused {
		return
	}
	s.pauseLocked()
}

func (s *Session) pauseLocked() {
	s.paused = true
	s.stopLoopLocked()
	s.status.SetPaused(true)
	s.setConnectedLocked(false)
	s.opts.log.Info().Msg("tracking paused")
}

// Resume restarts the poll timer. The next load happens on the next tick.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.paused {
		return
	}
	s.resumeLocked()
}

func (s *Session) resumeLocked() {
	s.paused = false
	if s.started {
		s.startLoopLocked()
	}
	s.status.SetPaused(false)
	s.setConnectedLocked(true)
	s.opts.log.Info().Msg("tracking resumed")
}

// Toggle flips between paused and running and returns the new paused state.
func (s *Session) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.paused
	}
	if s.paused {
		s.resumeLocked()
	} else {
		s.pauseLocked()
	}
	return s.paused
}

// CenterOnVictim recentres the map on the victim. It reports false when no
// victim location is known yet.
func (s *Session) CenterOnVictim() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.CenterOnVictim()
}

// Close stops the poll timer. Requests already in flight are not cancelled;
// their results are discarded. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopLoopLocked()
	s.mu.Unlock()

	s.loops.Wait()
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := SessionState{
		DistanceKm: s.distanceKm,
		HasRoute:   s.renderer.HasRoute(),
		Connected:  s.connected,
		Paused:     s.paused,
		LastUpdate: s.lastUpdate,
		LastError:  s.lastErr,
	}
	if s.victim != nil {
		v := *s.victim
		st.Victim = &v
	}
	if s.responder != nil {
		r := *s.responder
		st.Responder = &r
	}
	return st
}

// startLoopLocked is a no-op while a loop is already running, so at most one
// ticker exists per session.
func (s *Session) startLoopLocked() {
	if s.stop != nil {
		return
	}
	t := s.opts.newTicker(s.cfg.PollInterval)
	stop := make(chan struct{})
	s.stop = stop
	ctx := s.ctx

	s.loops.Add(1)
	go func() {
		defer s.loops.Done()
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-t.C():
				select {
				case <-stop:
					return
				default:
				}
				go s.poll()
			}
		}
	}()
}

func (s *Session) stopLoopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *Session) poll() {
	pair, err := s.source.Locations(s.ctx, s.cfg.EmergencyID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.lastErr = err
		s.opts.log.Error().Err(err).Msg("failed to load locations")
		s.setConnectedLocked(false)
		s.status.ShowError(err)
		return
	}
	s.applyLocked(pair)
}

func (s *Session) applyLocked(pair domain.LocationPair) {
	now := s.opts.now()

	if pair.Victim != nil {
		v := *pair.Victim
		s.victim = &v
		s.renderer.UpdateVictim(v)
		s.status.SetLocation(domain.PartyVictim, v, now)
	}
	if pair.Responder != nil {
		r := *pair.Responder
		s.responder = &r
		s.renderer.UpdateResponder(r)
		s.status.SetLocation(domain.PartyResponder, r, now)
	}

	if s.victim != nil && s.responder != nil {
		s.renderer.DrawRoute()
		s.distanceKm = geo.Distance(*s.victim, *s.responder)
		s.status.SetDistance(s.distanceKm)
	}

	s.lastUpdate = now
	s.lastErr = nil
	s.status.SetLastUpdate(now)
	s.status.HideError()
	if !s.paused {
		s.setConnectedLocked(true)
	}
}

func (s *Session) setConnectedLocked(connected bool) {
	s.connected = connected
	s.status.SetConnected(connected)
}
