package tracker

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/geo"
)

// GeoJSONSurface is a headless MapSurface that keeps markers and routes as a
// GeoJSON feature collection. Marker styling follows the simplestyle property
// names (marker-color, stroke, stroke-width) so the output renders as-is in
// geojson.io and most map viewers.
type GeoJSONSurface struct {
	mu     sync.Mutex
	fc     *geojson.FeatureCollection
	center domain.Coordinate
	zoom   int
	popup  *geoPopup
	nextID int
}

type geoPopup struct {
	Title   string            `json:"title"`
	At      domain.Coordinate `json:"at"`
	Content string            `json:"content"`
}

func NewGeoJSONSurface() *GeoJSONSurface {
	return &GeoJSONSurface{fc: geojson.NewFeatureCollection()}
}

func (s *GeoJSONSurface) AddMarker(opts MarkerOptions) Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := geojson.NewFeature(geo.Point(opts.Position))
	s.nextID++
	f.ID = s.nextID
	f.Properties["title"] = opts.Title
	if opts.Icon.Color != "" {
		f.Properties["marker-color"] = opts.Icon.Color
	}
	if opts.Icon.Width > 0 {
		f.Properties["marker-size"] = markerSize(opts.Icon.Width)
	}
	if opts.Icon.URL != "" {
		f.Properties["icon"] = opts.Icon.URL
	}
	s.fc.Append(f)

	return &geoMarker{surface: s, feature: f, handlers: make(map[int]func())}
}

func (s *GeoJSONSurface) AddPolyline(opts PolylineOptions) Polyline {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := geojson.NewFeature(opts.Path.Clone())
	s.nextID++
	f.ID = s.nextID
	f.Properties["stroke"] = opts.StrokeColor
	f.Properties["stroke-opacity"] = opts.StrokeOpacity
	f.Properties["stroke-width"] = opts.StrokeWeight
	f.Properties["geodesic"] = opts.Geodesic
	s.fc.Append(f)

	return &geoPolyline{surface: s, feature: f}
}

func (s *GeoJSONSurface) SetCenter(c domain.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = c
}

func (s *GeoJSONSurface) SetZoom(zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = zoom
}

func (s *GeoJSONSurface) OpenPopup(m Marker, content string) {
	gm, ok := m.(*geoMarker)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	title, _ := gm.feature.Properties["title"].(string)
	s.popup = &geoPopup{Title: title, At: coordinateOf(gm.feature.Geometry), Content: content}
}

func (s *GeoJSONSurface) Center() domain.Coordinate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

func (s *GeoJSONSurface) Zoom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// FeatureCount returns the number of markers plus routes on the surface.
func (s *GeoJSONSurface) FeatureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fc.Features)
}

// Popup returns the content of the open popup, if any.
func (s *GeoJSONSurface) Popup() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.popup == nil {
		return "", false
	}
	return s.popup.Content, true
}

// MarshalJSON encodes the features plus the current view as foreign members.
func (s *GeoJSONSurface) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	fc.Features = s.fc.Features
	fc.ExtraMembers = geojson.Properties{
		"center": []float64{s.center.Lng, s.center.Lat},
		"zoom":   s.zoom,
	}
	if s.popup != nil {
		fc.ExtraMembers["popup"] = s.popup
	}
	return fc.MarshalJSON()
}

// WriteTo writes the indented GeoJSON document to w.
func (s *GeoJSONSurface) WriteTo(w io.Writer) (int64, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return 0, err
	}
	var out json.RawMessage = raw
	pretty, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(pretty, '\n'))
	return int64(n), err
}

func markerSize(width int) string {
	switch {
	case width >= 40:
		return "large"
	case width >= 30:
		return "medium"
	default:
		return "small"
	}
}

func coordinateOf(g orb.Geometry) domain.Coordinate {
	if p, ok := g.(orb.Point); ok {
		return domain.Coordinate{Lat: p.Lat(), Lng: p.Lon()}
	}
	return domain.Coordinate{}
}

type geoMarker struct {
	surface  *GeoJSONSurface
	feature  *geojson.Feature
	handlers map[int]func()
	nextSub  int
}

func (m *geoMarker) Position() domain.Coordinate {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	return coordinateOf(m.feature.Geometry)
}

func (m *geoMarker) SetPosition(c domain.Coordinate) {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	m.feature.Geometry = geo.Point(c)
}

func (m *geoMarker) OnClick(fn func()) func() {
	m.surface.mu.Lock()
	defer m.surface.mu.Unlock()
	m.nextSub++
	id := m.nextSub
	m.handlers[id] = fn
	return func() {
		m.surface.mu.Lock()
		defer m.surface.mu.Unlock()
		delete(m.handlers, id)
	}
}

// Click fires the marker's click handlers, as a user clicking the pin would.
func (m *geoMarker) Click() {
	m.surface.mu.Lock()
	fns := make([]func(), 0, len(m.handlers))
	for _, fn := range m.handlers {
		fns = append(fns, fn)
	}
	m.surface.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

type geoPolyline struct {
	surface *GeoJSONSurface
	feature *geojson.Feature
}

func (p *geoPolyline) Path() orb.LineString {
	p.surface.mu.Lock()
	defer p.surface.mu.Unlock()
	ls, _ := p.feature.Geometry.(orb.LineString)
	return ls.Clone()
}

func (p *geoPolyline) SetPath(path orb.LineString) {
	p.surface.mu.Lock()
	defer p.surface.mu.Unlock()
	p.feature.Geometry = path.Clone()
}
