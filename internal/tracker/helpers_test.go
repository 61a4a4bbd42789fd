package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

var fixedNow = time.Date(2026, 3, 14, 15, 4, 5, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

type recordDisplay struct {
	mu      sync.Mutex
	text    map[Field]string
	class   map[Field]string
	visible map[Field]bool
}

func newRecordDisplay() *recordDisplay {
	return &recordDisplay{
		text:    make(map[Field]string),
		class:   make(map[Field]string),
		visible: make(map[Field]bool),
	}
}

func (d *recordDisplay) SetText(f Field, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text[f] = text
}

func (d *recordDisplay) SetClass(f Field, class string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.class[f] = class
}

func (d *recordDisplay) SetVisible(f Field, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visible[f] = visible
}

func (d *recordDisplay) Text(f Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text[f]
}

func (d *recordDisplay) Class(f Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.class[f]
}

func (d *recordDisplay) Visible(f Field) (visible, set bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	visible, set = d.visible[f]
	return visible, set
}

// stubSource answers each poll with respond(n), n counting from 1.
type stubSource struct {
	calls   atomic.Int32
	respond func(n int) (domain.LocationPair, error)
}

func (s *stubSource) Locations(ctx context.Context, emergencyID int64) (domain.LocationPair, error) {
	n := int(s.calls.Add(1))
	return s.respond(n)
}

func (s *stubSource) Calls() int { return int(s.calls.Load()) }

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.stopped.Store(true) }

// tick delivers one tick if a loop is listening within a short grace period.
func (m *manualTicker) tick() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

type tickerFactory struct {
	mu   sync.Mutex
	made []*manualTicker
}

func (f *tickerFactory) new(time.Duration) ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time)}
	f.made = append(f.made, t)
	return t
}

func (f *tickerFactory) latest() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.made) == 0 {
		return nil
	}
	return f.made[len(f.made)-1]
}

func (f *tickerFactory) all() []*manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*manualTicker(nil), f.made...)
}

func (f *tickerFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.made)
}

type recordNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func coord(lat, lng float64) *domain.Coordinate {
	return &domain.Coordinate{Lat: lat, Lng: lng}
}
