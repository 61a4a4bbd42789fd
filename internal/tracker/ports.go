// Package tracker is the live tracking client: it polls the server for the
// latest victim/responder locations and keeps a map surface and a status
// display up to date. Rendering targets are injected, so the same session
// drives a browser bridge, a GeoJSON file or a test double.
package tracker

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

// Map defaults.
var DefaultCenter = domain.Coordinate{Lat: 20.5937, Lng: 78.9629}

const (
	TrackingZoom = 15
	OverviewZoom = 10
	VictimZoom   = 16
)

// Icon describes a marker pin.
type Icon struct {
	URL    string
	Color  string
	Width  int
	Height int
}

type MarkerOptions struct {
	Position domain.Coordinate
	Title    string
	Icon     Icon
}

type PolylineOptions struct {
	Path          orb.LineString
	Geodesic      bool
	StrokeColor   string
	StrokeOpacity float64
	StrokeWeight  int
}

// MapSurface is the drawing target for markers and routes.
type MapSurface interface {
	AddMarker(opts MarkerOptions) Marker
	AddPolyline(opts PolylineOptions) Polyline
	SetCenter(c domain.Coordinate)
	SetZoom(zoom int)
	OpenPopup(m Marker, content string)
}

type Marker interface {
	Position() domain.Coordinate
	SetPosition(c domain.Coordinate)
	// OnClick registers fn for click events and returns a func that removes it.
	OnClick(fn func()) (unsubscribe func())
}

type Polyline interface {
	Path() orb.LineString
	SetPath(path orb.LineString)
}

// Field names a status element. Values match the element ids of the web page.
type Field string

const (
	FieldMap              Field = "map"
	FieldCenterButton     Field = "center-btn"
	FieldToggleTracking   Field = "toggle-tracking"
	FieldConnectionStatus Field = "connection-status"
	FieldErrorDisplay     Field = "error-display"
	FieldLastUpdate       Field = "last-update"
	FieldDistanceInfo     Field = "distance-info"
	FieldVictimInfo       Field = "victim-info"
	FieldResponderInfo    Field = "responder-info"
	FieldETAInfo          Field = "eta-info"
)

// Display receives status text. Implementations may ignore fields they do not render.
type Display interface {
	SetText(f Field, text string)
	SetClass(f Field, class string)
	SetVisible(f Field, visible bool)
}

// Navigator moves the client to another page, e.g. after accepting an emergency.
type Navigator interface {
	Navigate(path string)
}

// LocationSource fetches the latest location pair of one emergency.
type LocationSource interface {
	Locations(ctx context.Context, emergencyID int64) (domain.LocationPair, error)
}

// EmergencyDirectory lists active emergencies and accepts them.
type EmergencyDirectory interface {
	ActiveEmergencies(ctx context.Context) ([]domain.Emergency, error)
	Accept(ctx context.Context, emergencyID int64) error
}
