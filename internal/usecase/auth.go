package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/homesteadmarket/homestead/internal/domain"
)

// CredentialStore is the port onto the session/password service.
type CredentialStore interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool
	IssueSession(ctx context.Context, principalID uuid.UUID, ns domain.Role) (string, time.Time, error)
	ResolveSession(ctx context.Context, token string, ns domain.Role) (uuid.UUID, error)
	RevokeSession(ctx context.Context, token string, ns domain.Role) error
}

// LoginThrottle is the port onto the per-account attempt limiter.
type LoginThrottle interface {
	Allow(role domain.Role, username string) bool
	Fail(role domain.Role, username string)
	Reset(role domain.Role, username string)
}

type AuthUsecase struct {
	principals PrincipalRepository
	creds      CredentialStore
	throttle   LoginThrottle
	now        func() time.Time
}

func NewAuthUsecase(principals PrincipalRepository, creds CredentialStore, throttle LoginThrottle) *AuthUsecase {
	return &AuthUsecase{
		principals: principals,
		creds:      creds,
		throttle:   throttle,
		now:        time.Now,
	}
}

// RegisterInput carries the union of per-role registration fields. Role
// decides which ones are required.
type RegisterInput struct {
	Role     domain.Role
	Username string
	Email    string
	Password string
	FullName string
	Phone    string

	// institutional only
	Institution string
	JobTitle    string

	// partner only
	Company string
}

// Register creates a principal in the role's namespace. Admin accounts are
// provisioned out of band, never through public registration.
func (uc *AuthUsecase) Register(ctx context.Context, input RegisterInput) (domain.Principal, error) {
	if input.Role == domain.RoleAdmin {
		return nil, domain.ForbiddenError{Reason: "admin accounts cannot self-register"}
	}

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.Username == "" {
		return nil, domain.ValidationError{Field: "username", Reason: "required"}
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, domain.ValidationError{Field: "email", Reason: "invalid"}
	}
	if len(input.Password) < 8 {
		return nil, domain.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}

	hash, err := uc.creds.HashPassword(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password failed")
	}

	principal, err := uc.buildPrincipal(input, hash)
	if err != nil {
		return nil, err
	}

	if err := uc.principals.Create(ctx, principal); err != nil {
		return nil, err
	}

	return principal, nil
}

func (uc *AuthUsecase) buildPrincipal(input RegisterInput, hash string) (domain.Principal, error) {
	now := uc.now()
	switch input.Role {
	case domain.RoleInvestor:
		return domain.CommonInvestor{
			ID:           uuid.New(),
			Username:     input.Username,
			Email:        input.Email,
			PasswordHash: hash,
			FullName:     input.FullName,
			Phone:        input.Phone,
			Active:       true,
			CreatedAt:    now,
		}, nil
	case domain.RoleInstitutional:
		if input.Institution == "" {
			return nil, domain.ValidationError{Field: "institution", Reason: "required"}
		}
		return domain.InstitutionalInvestor{
			ID:           uuid.New(),
			Username:     input.Username,
			Email:        input.Email,
			PasswordHash: hash,
			Institution:  input.Institution,
			JobTitle:     input.JobTitle,
			Phone:        input.Phone,
			Active:       true,
			CreatedAt:    now,
		}, nil
	case domain.RolePartner:
		if input.Company == "" {
			return nil, domain.ValidationError{Field: "company", Reason: "required"}
		}
		return domain.Partner{
			ID:           uuid.New(),
			Username:     input.Username,
			Email:        input.Email,
			PasswordHash: hash,
			Company:      input.Company,
			FullName:     input.FullName,
			Phone:        input.Phone,
			Active:       true,
			CreatedAt:    now,
		}, nil
	}
	return nil, domain.ValidationError{Field: "role", Reason: "unknown"}
}

// LoginResult is what a successful login hands back to the surface.
type LoginResult struct {
	Principal domain.Principal
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials in the role's namespace and issues a session.
// Unknown usernames and wrong passwords are indistinguishable; inactive
// accounts fail the same way a bad password does.
func (uc *AuthUsecase) Login(ctx context.Context, role domain.Role, username, password string) (*LoginResult, error) {
	if !uc.throttle.Allow(role, username) {
		return nil, domain.ErrThrottled
	}

	principal, err := uc.principals.GetByUsername(ctx, role, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.throttle.Fail(role, username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.creds.VerifyPassword(password, passwordHashOf(principal)) {
		uc.throttle.Fail(role, username)
		return nil, domain.ErrInvalidCredentials
	}

	if !principal.IsActive() {
		return nil, domain.ForbiddenError{Reason: "account inactive"}
	}

	token, expiry, err := uc.creds.IssueSession(ctx, principal.PrincipalID(), role)
	if err != nil {
		return nil, errors.Wrap(err, "issuing session failed")
	}

	uc.throttle.Reset(role, username)

	return &LoginResult{Principal: principal, Token: token, ExpiresAt: expiry}, nil
}

// Logout revokes the session. Idempotent; never fails outward.
func (uc *AuthUsecase) Logout(ctx context.Context, role domain.Role, token string) {
	_ = uc.creds.RevokeSession(ctx, token, role)
}

// Resolve maps a token to a full principal in the role's namespace. Used by
// the role authenticator middleware.
func (uc *AuthUsecase) Resolve(ctx context.Context, role domain.Role, token string) (domain.Principal, error) {
	id, err := uc.creds.ResolveSession(ctx, token, role)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	principal, err := uc.principals.GetByID(ctx, role, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	if !principal.IsActive() {
		return nil, domain.ForbiddenError{Reason: "account inactive"}
	}

	return principal, nil
}

func passwordHashOf(p domain.Principal) string {
	switch v := p.(type) {
	case domain.CommonInvestor:
		return v.PasswordHash
	case domain.InstitutionalInvestor:
		return v.PasswordHash
	case domain.Partner:
		return v.PasswordHash
	case domain.Admin:
		return v.PasswordHash
	}
	return ""
}
