package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleVictim    = "victim"
	RoleResponder = "responder"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PartyForRole maps an authenticated role to the side of an emergency it reports for.
func PartyForRole(role string) (Party, error) {
	switch role {
	case RoleVictim:
		return PartyVictim, nil
	case RoleResponder:
		return PartyResponder, nil
	default:
		return "", ErrInvalidParty
	}
}
