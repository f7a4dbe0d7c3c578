package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Offer struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PropertyID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvestorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvestorRole  string          `gorm:"type:text;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric;not null"`
	EarnestMoney  decimal.Decimal `gorm:"type:numeric;not null"`
	ClosingDate   time.Time       `gorm:"type:timestamp with time zone;not null"`
	FinancingType string          `gorm:"type:text;not null"`
	Contingencies string          `gorm:"type:jsonb;default:'null'"`
	Message       string          `gorm:"type:text"`
	Status        string          `gorm:"type:text;not null;default:'pending'"`
	CounterOf     *uuid.UUID      `gorm:"type:uuid;index"`
	CDate         time.Time       `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate         time.Time       `gorm:"autoUpdateTime"`
}

type ForeclosureBid struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ListingID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvestorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvestorRole  string          `gorm:"type:text;not null"`
	BidAmount     decimal.Decimal `gorm:"type:numeric;not null"`
	MaxBidAmount  decimal.Decimal `gorm:"type:numeric;not null"`
	Experience    string          `gorm:"type:text"`
	ContactMethod string          `gorm:"type:text;not null"`
	Timeframe     string          `gorm:"type:text"`
	Notes         string          `gorm:"type:text"`
	Status        string          `gorm:"type:text;not null;default:'pending'"`
	CDate         time.Time       `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate         time.Time       `gorm:"autoUpdateTime"`
}

type Plan struct {
	ID         string          `gorm:"type:text;primaryKey"`
	Name       string          `gorm:"type:text;not null"`
	Price      decimal.Decimal `gorm:"type:numeric;not null"`
	PeriodDays int             `gorm:"not null"`
}

type SubscriptionRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvestorID uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanID     string    `gorm:"type:text;not null"`
	Message    string    `gorm:"type:text"`
	Status     string    `gorm:"type:text;not null;default:'pending'"`
	CDate      time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate      time.Time `gorm:"autoUpdateTime"`
}
