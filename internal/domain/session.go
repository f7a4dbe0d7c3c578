package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is an opaque login token bound to exactly one principal in exactly
// one role namespace. Lookup is by (namespace, token); a token issued under
// one namespace can never resolve a principal of another.
//
// Expiry is lazy: nothing sweeps the sessions table. Expired rows persist
// until the next login for the same principal overwrites them or a logout
// deletes them, and every consumer re-checks ExpiresAt on every resolve.
type Session struct {
	Token       string    `json:"-"`
	Namespace   Role      `json:"namespace"`
	PrincipalID uuid.UUID `json:"principalId"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Expired reports whether the session is past its expiry at the given
// instant. An expired session behaves identically to a missing one.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
