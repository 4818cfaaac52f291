package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Identity is the viewer of a meeting: either a principal resolved from
// the identity provider or an ad-hoc guest. Identities live for a single
// session and are never persisted.
type Identity struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Guest  bool   `json:"guest"`
}

func (v Identity) Authenticated() bool {
	return !v.Guest && len(v.ID) > 0
}

func NewGuestIdentity() Identity {
	id := uuid.NewString()
	return Identity{
		ID:    fmt.Sprintf("guest-%s", id),
		Name:  fmt.Sprintf("Guest %s", id[:8]),
		Guest: true,
	}
}
