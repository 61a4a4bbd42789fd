package tracker

import (
	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/geo"
)

var (
	VictimIcon = Icon{
		URL:    "http://maps.google.com/mapfiles/ms/icons/red-dot.png",
		Color:  "red",
		Width:  40,
		Height: 40,
	}
	ResponderIcon = Icon{
		URL:    "http://maps.google.com/mapfiles/ms/icons/blue-dot.png",
		Color:  "blue",
		Width:  35,
		Height: 35,
	}
	EmergencyIcon = Icon{
		URL:   "http://maps.google.com/mapfiles/ms/icons/red-dot.png",
		Color: "red",
	}
)

const (
	victimTitle    = "Victim Location"
	responderTitle = "Responder Location"
)

// RouteStyle is applied to the victim-responder polyline.
var RouteStyle = PolylineOptions{
	Geodesic:      true,
	StrokeColor:   "#FF0000",
	StrokeOpacity: 1.0,
	StrokeWeight:  3,
}

// Renderer owns the victim marker, the responder marker and the route between
// them. Each is created once and moved in place afterwards. Not safe for
// concurrent use; Session serialises access.
type Renderer struct {
	surface   MapSurface
	victim    Marker
	responder Marker
	route     Polyline
}

func NewRenderer(surface MapSurface) *Renderer {
	return &Renderer{surface: surface}
}

// UpdateVictim places or moves the victim marker. The map is centred on the
// victim when the marker is first created and no responder is shown yet.
func (r *Renderer) UpdateVictim(c domain.Coordinate) {
	if r.victim != nil {
		r.victim.SetPosition(c)
		return
	}
	r.victim = r.surface.AddMarker(MarkerOptions{Position: c, Title: victimTitle, Icon: VictimIcon})
	if r.responder == nil {
		r.surface.SetCenter(c)
	}
}

func (r *Renderer) UpdateResponder(c domain.Coordinate) {
	if r.responder != nil {
		r.responder.SetPosition(c)
		return
	}
	r.responder = r.surface.AddMarker(MarkerOptions{Position: c, Title: responderTitle, Icon: ResponderIcon})
}

// DrawRoute connects the two markers. It does nothing until both exist.
func (r *Renderer) DrawRoute() {
	if r.victim == nil || r.responder == nil {
		return
	}
	path := geo.Path(r.victim.Position(), r.responder.Position())
	if r.route != nil {
		r.route.SetPath(path)
		return
	}
	opts := RouteStyle
	opts.Path = path
	r.route = r.surface.AddPolyline(opts)
}

// CenterOnVictim zooms to the victim marker. It reports false when there is none.
func (r *Renderer) CenterOnVictim() bool {
	if r.victim == nil {
		return false
	}
	r.surface.SetCenter(r.victim.Position())
	r.surface.SetZoom(VictimZoom)
	return true
}

func (r *Renderer) HasRoute() bool {
	return r.route != nil
}
