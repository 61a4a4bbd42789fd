package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/rapidaid/livetracker/internal/core/domain"
	"github.com/rapidaid/livetracker/internal/core/geo"
)

const clockLayout = "3:04:05 PM"

const (
	ClassConnected    = "connected"
	ClassDisconnected = "disconnected"

	LabelPause  = "⏸️ Pause Updates"
	LabelResume = "▶️ Resume Updates"
)

// Clock formats t the way every status line shows time.
func Clock(t time.Time) string {
	return t.Format(clockLayout)
}

// ConnectionLabel returns the status text and CSS class for a connection state.
func ConnectionLabel(connected bool) (text, class string) {
	if connected {
		return "🟢 Connected", ClassConnected
	}
	return "🔴 Disconnected", ClassDisconnected
}

func ToggleLabel(paused bool) string {
	if paused {
		return LabelResume
	}
	return LabelPause
}

func LastUpdatedText(t time.Time) string {
	return "Last updated: " + Clock(t)
}

// EntityText renders "Victim: 12.3456, 78.9012 (Updated: 3:04:05 PM)".
func EntityText(party domain.Party, c domain.Coordinate, at time.Time) string {
	name := string(party)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return fmt.Sprintf("%s: %.4f, %.4f (Updated: %s)", name, c.Lat, c.Lng, Clock(at))
}

func DistanceText(km float64) string {
	return fmt.Sprintf("Distance: %.2f km (%.2f miles)", km, geo.KmToMiles(km))
}

func ETAText(d time.Duration) string {
	if d < time.Minute {
		return "ETA: <1 min"
	}
	return fmt.Sprintf("ETA: ~%d min", int(d.Minutes()))
}

func ErrorText(err error) string {
	return "Failed to load locations: " + err.Error()
}

// StatusReporter writes status lines to a Display. A nil display is allowed.
type StatusReporter struct {
	display Display
}

func NewStatusReporter(display Display) *StatusReporter {
	return &StatusReporter{display: display}
}

func (s *StatusReporter) SetConnected(connected bool) {
	if s.display == nil {
		return
	}
	text, class := ConnectionLabel(connected)
	s.display.SetText(FieldConnectionStatus, text)
	s.display.SetClass(FieldConnectionStatus, class)
}

func (s *StatusReporter) SetPaused(paused bool) {
	if s.display == nil {
		return
	}
	s.display.SetText(FieldToggleTracking, ToggleLabel(paused))
}

func (s *StatusReporter) SetLastUpdate(t time.Time) {
	if s.display == nil {
		return
	}
	s.display.SetText(FieldLastUpdate, LastUpdatedText(t))
}

func (s *StatusReporter) SetLocation(party domain.Party, c domain.Coordinate, at time.Time) {
	if s.display == nil {
		return
	}
	field := FieldVictimInfo
	if party == domain.PartyResponder {
		field = FieldResponderInfo
	}
	s.display.SetText(field, EntityText(party, c, at))
}

// SetDistance updates both the distance line and the ETA estimate.
func (s *StatusReporter) SetDistance(km float64) {
	if s.display == nil {
		return
	}
	s.display.SetText(FieldDistanceInfo, DistanceText(km))
	s.display.SetText(FieldETAInfo, ETAText(geo.EstimateTravelTime(km)))
}

func (s *StatusReporter) ShowError(err error) {
	if s.display == nil {
		return
	}
	s.display.SetText(FieldErrorDisplay, ErrorText(err))
	s.display.SetVisible(FieldErrorDisplay, true)
}

func (s *StatusReporter) HideError() {
	if s.display == nil {
		return
	}
	s.display.SetVisible(FieldErrorDisplay, false)
}
