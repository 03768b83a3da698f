// Package auth carries the authenticated caller through a request context.
package auth

import (
	"context"

	"taskboard/internal/domain"
)

// Identity is the caller resolved from a session.
type Identity struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func (i Identity) Owner() domain.OwnerID {
	return domain.OwnerID(i.UserID)
}

// FromUser builds the identity attached to requests for u.
func FromUser(u *domain.User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Name: u.Name}
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the caller, if any. A zero user id never counts.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID <= 0 {
		return Identity{}, false
	}
	return id, true
}
