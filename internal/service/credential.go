package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"

	"github.com/homesteadmarket/homestead/internal/domain"
)

var tracer = otel.Tracer("credential")

// DefaultSessionTTL matches the reference behavior of 30-day sessions.
const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionRepository is the sole storage surface for sessions. Nothing else
// in the system touches session rows.
type SessionRepository interface {
	Put(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, ns domain.Role, token string) (domain.Session, error)
	Delete(ctx context.Context, ns domain.Role, token string) error
}

// CredentialStore hashes and verifies passwords and manages opaque session
// tokens, independently namespaced per role.
type CredentialStore struct {
	sessions SessionRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewCredentialStore(sessions SessionRepository, ttl time.Duration) *CredentialStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &CredentialStore{
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
	}
}

// HashPassword produces a salted bcrypt hash. Cost is the library default,
// which is deliberately expensive.
func (s *CredentialStore) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt hash failed")
	}
	return string(hash), nil
}

// VerifyPassword compares without leaking timing correlated with match
// length; bcrypt's comparison provides that property.
func (s *CredentialStore) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueSession mints an unguessable token for the principal in the given
// namespace, valid for the configured TTL.
func (s *CredentialStore) IssueSession(ctx context.Context, principalID uuid.UUID, ns domain.Role) (string, time.Time, error) {
	ctx, span := tracer.Start(ctx, "Credential.IssueSession")
	defer span.End()

	token, err := generateToken()
	if err != nil {
		span.RecordError(err)
		return "", time.Time{}, err
	}

	now := s.now()
	session := domain.Session{
		Token:       token,
		Namespace:   ns,
		PrincipalID: principalID,
		ExpiresAt:   now.Add(s.ttl),
		CreatedAt:   now,
	}

	if err := s.sessions.Put(ctx, session); err != nil {
		span.RecordError(err)
		return "", time.Time{}, errors.Wrap(err, "storing session failed")
	}

	return token, session.ExpiresAt, nil
}

// ResolveSession maps a token to a principal id within one namespace.
// Unknown and expired tokens both return domain.ErrNotFound; callers must
// not be able to tell the two apart.
func (s *CredentialStore) ResolveSession(ctx context.Context, token string, ns domain.Role) (uuid.UUID, error) {
	ctx, span := tracer.Start(ctx, "Credential.ResolveSession")
	defer span.End()

	session, err := s.sessions.Get(ctx, ns, token)
	if err != nil {
		return uuid.Nil, domain.NotFoundError{Resource: "session"}
	}

	if session.Expired(s.now()) {
		// Lazy expiry: the row stays, the lookup behaves as not found.
		return uuid.Nil, domain.NotFoundError{Resource: "session"}
	}

	return session.PrincipalID, nil
}

// RevokeSession deletes a session. Revoking an unknown or already-revoked
// token is not an error.
func (s *CredentialStore) RevokeSession(ctx context.Context, token string, ns domain.Role) error {
	ctx, span := tracer.Start(ctx, "Credential.RevokeSession")
	defer span.End()

	err := s.sessions.Delete(ctx, ns, token)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return errors.Wrap(err, "revoking session failed")
	}
	return nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "reading random bytes failed")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
