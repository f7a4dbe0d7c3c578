package service

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/homesteadmarket/homestead/internal/domain"
)

// LoginThrottle counts failed login attempts per (role, username) in an
// in-process TTL cache. It exists to slow online guessing, not to survive
// restarts.
type LoginThrottle struct {
	attempts *gocache.Cache
	limit    int
}

func NewLoginThrottle(limit int, window time.Duration) *LoginThrottle {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{
		attempts: gocache.New(window, 2*window),
		limit:    limit,
	}
}

func throttleKey(role domain.Role, username string) string {
	return string(role) + ":" + username
}

// Allow reports whether another attempt may proceed for the account.
func (t *LoginThrottle) Allow(role domain.Role, username string) bool {
	key := throttleKey(role, username)
	v, found := t.attempts.Get(key)
	if !found {
		return true
	}
	n, ok := v.(int)
	return !ok || n < t.limit
}

// Fail records a failed attempt against the account.
func (t *LoginThrottle) Fail(role domain.Role, username string) {
	key := throttleKey(role, username)
	if _, err := t.attempts.IncrementInt(key, 1); err != nil {
		t.attempts.SetDefault(key, 1)
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(role domain.Role, username string) {
	t.attempts.Delete(throttleKey(role, username))
}
