package domain

import (
	"errors"
	"time"
)

// EmergencyStatus represents the lifecycle state of an emergency.
type EmergencyStatus string

const (
	EmergencyPending   EmergencyStatus = "pending"
	EmergencyAccepted  EmergencyStatus = "accepted"
	EmergencyResolved  EmergencyStatus = "resolved"
	EmergencyCancelled EmergencyStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[EmergencyStatus][]EmergencyStatus{
	EmergencyPending:  {EmergencyAccepted, EmergencyResolved, EmergencyCancelled},
	EmergencyAccepted: {EmergencyResolved, EmergencyCancelled},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrEmergencyNotFound = errors.New("emergency not found")
var ErrEmergencyClosed = errors.New("emergency is no longer active")
var ErrAlreadyAccepted = errors.New("emergency already accepted")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s EmergencyStatus) CanTransitionTo(next EmergencyStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether an emergency in this status is still being tracked.
func (s EmergencyStatus) Active() bool {
	return s == EmergencyPending || s == EmergencyAccepted
}

// Emergency is a tracked incident with a victim and, once accepted, a responder.
type Emergency struct {
	ID          int64           `json:"id,string" bson:"_id"`
	Type        string          `json:"type" bson:"type"`
	VictimName  string          `json:"victim_name" bson:"victim_name"`
	VictimID    string          `json:"victim_id,omitempty" bson:"victim_id"`
	ResponderID string          `json:"responder_id,omitempty" bson:"responder_id,omitempty"`
	Status      EmergencyStatus `json:"status" bson:"status"`
	Location    Coordinate      `json:"location" bson:"location"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	AcceptedAt  *time.Time      `json:"accepted_at,omitempty" bson:"accepted_at,omitempty"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}
