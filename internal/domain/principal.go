package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the namespace a principal authenticates under. A principal's role
// is fixed at creation and never changes.
type Role string

const (
	RoleInvestor      Role = "investor"
	RoleInstitutional Role = "institutional"
	RolePartner       Role = "partner"
	RoleAdmin         Role = "admin"
)

// ParseRole maps a path/segment value onto the closed role set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleInvestor, RoleInstitutional, RolePartner, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// InvestorRole reports whether the role may create offers and bids.
func (r Role) InvestorRole() bool {
	return r == RoleInvestor || r == RoleInstitutional
}

// Principal is the closed set of authenticated actors. Exactly four types
// implement it: CommonInvestor, InstitutionalInvestor, Partner and Admin.
// Role-specific behavior lives on the concrete types, not in string
// comparisons at call sites.
type Principal interface {
	PrincipalID() uuid.UUID
	Role() Role
	IsActive() bool
	DisplayName() string
}

// CommonInvestor is an individual investor. Foreclosure access is gated on
// its subscription state.
type CommonInvestor struct {
	ID           uuid.UUID    `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	FullName     string       `json:"fullName"`
	Phone        string       `json:"phone,omitempty"`
	Active       bool         `json:"active"`
	Subscription Subscription `json:"subscription"`
	CreatedAt    time.Time    `json:"createdAt"`
}

func (p CommonInvestor) PrincipalID() uuid.UUID { return p.ID }
func (p CommonInvestor) Role() Role             { return RoleInvestor }
func (p CommonInvestor) IsActive() bool         { return p.Active }
func (p CommonInvestor) DisplayName() string    { return p.FullName }

// InstitutionalInvestor represents a fund or company buyer. Institutional
// accounts have blanket foreclosure access.
type InstitutionalInvestor struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Institution  string    `json:"institution"`
	JobTitle     string    `json:"jobTitle,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p InstitutionalInvestor) PrincipalID() uuid.UUID { return p.ID }
func (p InstitutionalInvestor) Role() Role             { return RoleInstitutional }
func (p InstitutionalInvestor) IsActive() bool         { return p.Active }
func (p InstitutionalInvestor) DisplayName() string    { return p.Institution }

// Partner is a property seller. Partners list properties and decide offers on
// them; they have no foreclosure bidding capability.
type Partner struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Company      string    `json:"company"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p Partner) PrincipalID() uuid.UUID { return p.ID }
func (p Partner) Role() Role             { return RolePartner }
func (p Partner) IsActive() bool         { return p.Active }
func (p Partner) DisplayName() string    { return p.Company }

// Admin operates the marketplace back office. Admins bypass the entitlement
// gate and are the only role allowed to move foreclosure bids.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p Admin) PrincipalID() uuid.UUID { return p.ID }
func (p Admin) Role() Role             { return RoleAdmin }
func (p Admin) IsActive() bool         { return p.Active }
func (p Admin) DisplayName() string    { return p.FullName }
