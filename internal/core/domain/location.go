package domain

import (
	"errors"
	"time"
)

// Coordinate represents a geographic point in WGS84 degrees.
type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Party identifies which side of an emergency a location belongs to.
type Party string

const (
	PartyVictim    Party = "victim"
	PartyResponder Party = "responder"
)

var ErrInvalidParty = errors.New("invalid party")

// LocationPair is the latest known victim/responder position for one emergency.
// Either side may be missing.
type LocationPair struct {
	Victim    *Coordinate `json:"victim_location,omitempty"`
	Responder *Coordinate `json:"responder_location,omitempty"`
}

// Complete reports whether both sides of the pair are known.
func (p LocationPair) Complete() bool {
	return p.Victim != nil && p.Responder != nil
}

// LocationUpdate is a single position report received from a victim or responder device.
type LocationUpdate struct {
	EmergencyID int64
	Party       Party
	Reporter    string
	Coordinate  Coordinate
	Timestamp   time.Time
	Source      string
}
