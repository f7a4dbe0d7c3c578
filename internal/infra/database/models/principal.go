package models

import (
	"time"

	"github.com/google/uuid"
)

// One table per role: username/email uniqueness is scoped to the role's
// namespace by construction, and a role can never change after creation.

type CommonInvestor struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:text;uniqueIndex;not null"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	FullName     string    `gorm:"type:text"`
	Phone        string    `gorm:"type:text"`
	Active       bool      `gorm:"not null;default:true"`

	SubscriptionActive    bool       `gorm:"not null;default:false"`
	SubscriptionPlanID    string     `gorm:"type:text"`
	SubscriptionExpiresAt *time.Time `gorm:"type:timestamp with time zone"`

	CDate time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate time.Time `gorm:"autoUpdateTime"`
}

type InstitutionalInvestor struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:text;uniqueIndex;not null"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Institution  string    `gorm:"type:text;not null"`
	JobTitle     string    `gorm:"type:text"`
	Phone        string    `gorm:"type:text"`
	Active       bool      `gorm:"not null;default:true"`

	CDate time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate time.Time `gorm:"autoUpdateTime"`
}

type Partner struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:text;uniqueIndex;not null"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Company      string    `gorm:"type:text;not null"`
	FullName     string    `gorm:"type:text"`
	Phone        string    `gorm:"type:text"`
	Active       bool      `gorm:"not null;default:true"`

	CDate time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate time.Time `gorm:"autoUpdateTime"`
}

type Admin struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:text;uniqueIndex;not null"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	FullName     string    `gorm:"type:text"`
	Active       bool      `gorm:"not null;default:true"`

	CDate time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate time.Time `gorm:"autoUpdateTime"`
}

// Session rows are keyed by (namespace, token): a token can only ever be
// looked up inside the namespace it was issued for. Expired rows are not
// swept; they persist until a later login for the same principal overwrites
// them or a logout deletes them.
type Session struct {
	Namespace   string    `gorm:"type:text;primaryKey"`
	Token       string    `gorm:"type:text;primaryKey"`
	PrincipalID uuid.UUID `gorm:"type:uuid;not null;index"`
	ExpiresAt   time.Time `gorm:"type:timestamp with time zone;not null"`
	CDate       time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
