package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

// Overview shows every active emergency on one map and lets a responder accept one.
type Overview struct {
	dir     EmergencyDirectory
	surface MapSurface
	status  *StatusReporter
	nav     Navigator
	opts    options

	mu      sync.Mutex
	markers map[int64]Marker
	unsubs  []func()
}

func NewOverview(dir EmergencyDirectory, surface MapSurface, display Display, nav Navigator, opts ...Option) *Overview {
	return &Overview{
		dir:     dir,
		surface: surface,
		status:  NewStatusReporter(display),
		nav:     nav,
		opts:    buildOptions(opts),
		markers: make(map[int64]Marker),
	}
}

// MarkerTitle is the hover title of an overview marker.
func MarkerTitle(e domain.Emergency) string {
	return fmt.Sprintf("%s - %s", e.Type, e.VictimName)
}

// PopupContent is the text shown when an overview marker is clicked.
func PopupContent(e domain.Emergency) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 %s\n", e.Type)
	fmt.Fprintf(&b, "Victim: %s\n", e.VictimName)
	fmt.Fprintf(&b, "Time: %s\n", Clock(e.CreatedAt.Local()))
	fmt.Fprintf(&b, "Accept: /responder/accept/%d", e.ID)
	return b.String()
}

// Load fetches the active emergencies and places one marker per emergency.
// Markers already on the map are moved rather than duplicated.
func (o *Overview) Load(ctx context.Context) ([]domain.Emergency, error) {
	list, err := o.dir.ActiveEmergencies(ctx)
	if err != nil {
		o.opts.log.Error().Err(err).Msg("failed to load active emergencies")
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.markers) == 0 {
		o.surface.SetCenter(DefaultCenter)
		o.surface.SetZoom(OverviewZoom)
	}

	for _, e := range list {
		if m, ok := o.markers[e.ID]; ok {
			m.SetPosition(e.Location)
			continue
		}
		m := o.surface.AddMarker(MarkerOptions{
			Position: e.Location,
			Title:    MarkerTitle(e),
			Icon:     EmergencyIcon,
		})
		content := PopupContent(e)
		o.unsubs = append(o.unsubs, m.OnClick(func() {
			o.surface.OpenPopup(m, content)
		}))
		o.markers[e.ID] = m
	}

	o.status.SetLastUpdate(o.opts.now())
	return list, nil
}

// Accept claims the emergency for the current responder and navigates to its
// live map. Failures are logged and returned; no navigation happens.
func (o *Overview) Accept(ctx context.Context, emergencyID int64) error {
	if err := o.dir.Accept(ctx, emergencyID); err != nil {
		o.opts.log.Error().Err(err).Int64("emergency_id", emergencyID).Msg("failed to accept emergency")
		return err
	}
	if o.nav != nil {
		o.nav.Navigate(fmt.Sprintf("/map/%d", emergencyID))
	}
	return nil
}

// Close removes the marker click subscriptions.
func (o *Overview) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, unsub := range o.unsubs {
		unsub()
	}
	o.unsubs = nil
}
