package tracker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/geo"
)

type sessionFixture struct {
	session *Session
	source  *stubSource
	surface *GeoJSONSurface
	display *recordDisplay
	tickers *tickerFactory
}

func newSessionFixture(t *testing.T, respond func(n int) (domain.LocationPair, error)) *sessionFixture {
	t.Helper()
	f := &sessionFixture{
		source:  &stubSource{respond: respond},
		surface: NewGeoJSONSurface(),
		display: newRecordDisplay(),
		tickers: &tickerFactory{},
	}
	f.session = NewSession(
		SessionConfig{EmergencyID: 42, PollInterval: time.Second},
		f.source, f.surface, f.display,
		WithClock(fixedClock), withTicker(f.tickers.new),
	)
	t.Cleanup(f.session.Close)
	return f
}

func TestSession_StartLoadsImmediately(t *testing.T) {
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{Victim: coord(12.9716, 77.5946)}, nil
	})

	require.NoError(t, f.session.Start(context.Background()))

	assert.Equal(t, 1, f.source.Calls())
	assert.Equal(t, 1, f.tickers.count(), "poll timer should start after the first load")
	assert.Equal(t, "Victim: 12.9716, 77.5946 (Updated: 3:04:05 PM)", f.display.Text(FieldVictimInfo))
	assert.Equal(t, "Last updated: 3:04:05 PM", f.display.Text(FieldLastUpdate))
	assert.Equal(t, "🟢 Connected", f.display.Text(FieldConnectionStatus))
	assert.Equal(t, ClassConnected, f.display.Class(FieldConnectionStatus))
	assert.Equal(t, LabelPause, f.display.Text(FieldToggleTracking))
}

func TestSession_VictimOnlyHasNoRouteOrDistance(t *testing.T) {
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{Victim: coord(12.9716, 77.5946)}, nil
	})

	require.NoError(t, f.session.Start(context.Background()))

	st := f.session.State()
	require.NotNil(t, st.Victim)
	assert.Nil(t, st.Responder)
	assert.False(t, st.HasRoute)
	assert.Empty(t, f.display.Text(FieldDistanceInfo))
	assert.Empty(t, f.display.Text(FieldETAInfo))
	assert.Equal(t, 1, f.surface.FeatureCount())
}

func TestSession_BothPartiesDrawRouteAndDistance(t *testing.T) {
	victim := coord(12.9716, 77.5946)
	responder := coord(12.9352, 77.6245)
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{Victim: victim, Responder: responder}, nil
	})

	require.NoError(t, f.session.Start(context.Background()))

	km := geo.Distance(*victim, *responder)
	st := f.session.State()
	assert.True(t, st.HasRoute)
	assert.InDelta(t, km, st.DistanceKm, 1e-9)
	assert.Equal(t, DistanceText(km), f.display.Text(FieldDistanceInfo))
	assert.Equal(t, ETAText(geo.EstimateTravelTime(km)), f.display.Text(FieldETAInfo))
	assert.Equal(t, 3, f.surface.FeatureCount(), "victim, responder and route")
}

func TestSession_UpdatesMarkersInPlace(t *testing.T) {
	f := newSessionFixture(t, func(n int) (domain.LocationPair, error) {
		step := float64(n) * 0.001
		return domain.LocationPair{
			Victim:    coord(12.9716+step, 77.5946),
			Responder: coord(12.9352, 77.6245-step),
		}, nil
	})

	require.NoError(t, f.session.Start(context.Background()))
	require.Equal(t, 3, f.surface.FeatureCount())

	for n := 2; n <= 4; n++ {
		want := 12.9716 + float64(n)*0.001
		require.True(t, f.tickers.latest().tick())
		require.Eventually(t, func() bool {
			st := f.session.State()
			return st.Victim != nil && abs(st.Victim.Lat-want) < 1e-9
		}, time.Second, 5*time.Millisecond)
	}

	assert.Equal(t, 3, f.surface.FeatureCount(), "updates must not add features")
}

func TestSession_CentersOnFirstVictimOnly(t *testing.T) {
	f := newSessionFixture(t, func(n int) (domain.LocationPair, error) {
		return domain.LocationPair{Victim: coord(10+float64(n), 20)}, nil
	})

	require.NoError(t, f.session.Start(context.Background()))
	assert.Equal(t, domain.Coordinate{Lat: 11, Lng: 20}, f.surface.Center())
	assert.Equal(t, TrackingZoom, f.surface.Zoom())

	require.True(t, f.tickers.latest().tick())
	require.Eventually(t, func() bool { return f.source.Calls() == 2 && f.session.State().Victim.Lat == 12 },
		time.Second, 5*time.Millisecond)

	assert.Equal(t, domain.Coordinate{Lat: 11, Lng: 20}, f.surface.Center())
}

func TestSession_PauseStopsPollingUntilResume(t *testing.T) {
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{Victim: coord(1, 2)}, nil
	})
	require.NoError(t, f.session.Start(context.Background()))
	first := f.tickers.latest()

	f.session.Pause()
	assert.Equal(t, LabelResume, f.display.Text(FieldToggleTracking))
	assert.Equal(t, "🔴 Disconnected", f.display.Text(FieldConnectionStatus))
	assert.True(t, f.session.State().Paused)

	first.tick()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, f.source.Calls(), "no fetch while paused")

	f.session.Resume()
	assert.Equal(t, LabelPause, f.display.Text(FieldToggleTracking))
	assert.Equal(t, "🟢 Connected", f.display.Text(FieldConnectionStatus))
	assert.Equal(t, 1, f.source.Calls(), "resume waits for the next tick")

	second := f.tickers.latest()
	require.NotSame(t, first, second)
	require.Eventually(t, first.stopped.Load, time.Second, 5*time.Millisecond)

	require.True(t, second.tick())
	require.Eventually(t, func() bool { return f.source.Calls() == 2 }, time.Second, 5*time.Millisecond)
}

func TestSession_Toggle(t *testing.T) {
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{}, nil
	})
	require.NoError(t, f.session.Start(context.Background()))

	assert.True(t, f.session.Toggle())
	assert.Equal(t, LabelResume, f.display.Text(FieldToggleTracking))
	assert.False(t, f.session.Toggle())
	assert.Equal(t, LabelPause, f.display.Text(FieldToggleTracking))
}

func TestSession_FetchErrorThenRecovery(t *testing.T) {
	f := newSessionFixture(t, func(n int) (domain.LocationPair, error) {
		if n == 1 {
			return domain.LocationPair{}, errors.New("connection refused")
		}
		return domain.LocationPair{Victim: coord(1, 2)}, nil
	})

	require.NoError(t, f.session.Start(context.Background()))

	assert.Equal(t, "Failed to load locations: connection refused", f.display.Text(FieldErrorDisplay))
	visible, _ := f.display.Visible(FieldErrorDisplay)
	assert.True(t, visible)
	assert.Equal(t, "🔴 Disconnected", f.display.Text(FieldConnectionStatus))
	assert.False(t, f.session.State().Connected)
	assert.Equal(t, 1, f.tickers.count(), "errors do not stop polling")

	require.True(t, f.tickers.latest().tick())
	require.Eventually(t, func() bool { return f.session.State().Connected }, time.Second, 5*time.Millisecond)

	visible, _ = f.display.Visible(FieldErrorDisplay)
	assert.False(t, visible)
	assert.NoError(t, f.session.State().LastError)
}

func TestSession_CenterOnVictim(t *testing.T) {
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{Responder: coord(5, 6)}, nil
	})
	require.NoError(t, f.session.Start(context.Background()))

	assert.False(t, f.session.CenterOnVictim(), "no victim yet")
	assert.Equal(t, TrackingZoom, f.surface.Zoom())
}

func TestSession_CenterOnVictimZooms(t *testing.T) {
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{Victim: coord(3, 4), Responder: coord(5, 6)}, nil
	})
	require.NoError(t, f.session.Start(context.Background()))
	f.surface.SetCenter(domain.Coordinate{})

	assert.True(t, f.session.CenterOnVictim())
	assert.Equal(t, domain.Coordinate{Lat: 3, Lng: 4}, f.surface.Center())
	assert.Equal(t, VictimZoom, f.surface.Zoom())
}

func TestSession_Lifecycle(t *testing.T) {
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{}, nil
	})

	require.NoError(t, f.session.Start(context.Background()))
	assert.ErrorIs(t, f.session.Start(context.Background()), ErrSessionStarted)

	f.session.Close()
	f.session.Close()
	assert.True(t, f.tickers.latest().stopped.Load())
	assert.ErrorIs(t, f.session.Start(context.Background()), ErrSessionClosed)
	assert.False(t, f.tickers.latest().tick(), "closed session must not poll")
}

func TestSession_CloseLeavesInFlightFetchAlone(t *testing.T) {
	src := newGatedSource()
	tickers := &tickerFactory{}
	surface := NewGeoJSONSurface()
	s := NewSession(SessionConfig{EmergencyID: 1}, src, surface, newRecordDisplay(), withTicker(tickers.new))

	startErr := make(chan error, 1)
	go func() { startErr <- s.Start(context.Background()) }()
	<-src.started

	s.Close()
	close(src.release)

	require.NoError(t, <-startErr)
	assert.NoError(t, <-src.ctxErr, "in-flight fetch must not be cancelled")
	assert.Equal(t, 0, surface.FeatureCount(), "result of a fetch finishing after Close is dropped")
	assert.Equal(t, 0, tickers.count(), "no timer after Close")
}

func TestSession_PauseResumeDuringInitialLoadKeepsOneTimer(t *testing.T) {
	src := newGatedSource()
	tickers := &tickerFactory{}
	s := NewSession(SessionConfig{EmergencyID: 1}, src, NewGeoJSONSurface(), newRecordDisplay(), withTicker(tickers.new))
	t.Cleanup(s.Close)

	startErr := make(chan error, 1)
	go func() { startErr <- s.Start(context.Background()) }()
	<-src.started

	s.Pause()
	s.Resume()
	close(src.release)
	require.NoError(t, <-startErr)
	assert.Equal(t, 1, tickers.count(), "Start must reuse the loop Resume started")

	s.Pause()
	for _, tk := range tickers.all() {
		assert.False(t, tk.tick(), "a ticker is still polling after Pause")
	}
	assert.Equal(t, 1, src.Calls(), "no fetch after Pause")
}

func TestSession_ConcurrentTogglesAlternate(t *testing.T) {
	f := newSessionFixture(t, func(int) (domain.LocationPair, error) {
		return domain.LocationPair{}, nil
	})
	require.NoError(t, f.session.Start(context.Background()))

	for i := 0; i < 50; i++ {
		results := make(chan bool, 2)
		for j := 0; j < 2; j++ {
			go func() { results <- f.session.Toggle() }()
		}
		a, b := <-results, <-results
		require.NotEqual(t, a, b, "two toggles must pause once and resume once")
		require.False(t, f.session.State().Paused)
	}
}

// gatedSource blocks its first call until release is closed. Later calls
// return immediately.
type gatedSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 1),
	}
}

func (g *gatedSource) Locations(ctx context.Context, _ int64) (domain.LocationPair, error) {
	if g.calls.Add(1) > 1 {
		return domain.LocationPair{}, nil
	}
	close(g.started)
	<-g.release
	g.ctxErr <- ctx.Err()
	return domain.LocationPair{Victim: coord(1, 2)}, nil
}

func (g *gatedSource) Calls() int { return int(g.calls.Load()) }

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
