package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Property struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PartnerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title     string          `gorm:"type:text;not null"`
	Address   string          `gorm:"type:text;not null"`
	City      string          `gorm:"type:text;index"`
	State     string          `gorm:"type:text"`
	Price     decimal.Decimal `gorm:"type:numeric;not null"`
	Bedrooms  int
	Bathrooms int
	AreaSqFt  float64
	Status    string    `gorm:"type:text;not null;default:'listed'"`
	Active    bool      `gorm:"not null;default:true"`
	CDate     time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate     time.Time `gorm:"autoUpdateTime"`
}

type ForeclosureListing struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Title       string          `gorm:"type:text;not null"`
	Address     string          `gorm:"type:text;not null"`
	City        string          `gorm:"type:text;index"`
	State       string          `gorm:"type:text"`
	StartingBid decimal.Decimal `gorm:"type:numeric;not null"`
	AuctionDate time.Time       `gorm:"type:timestamp with time zone"`
	Active      bool            `gorm:"not null;default:true"`
	CDate       time.Time       `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate       time.Time       `gorm:"autoUpdateTime"`
}
