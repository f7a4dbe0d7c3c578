package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyStatus is the listing lifecycle of a standard property.
type PropertyStatus string

const (
	PropertyListed        PropertyStatus = "listed"
	PropertyUnderContract PropertyStatus = "under_contract"
	PropertySold          PropertyStatus = "sold"
	PropertyWithdrawn     PropertyStatus = "withdrawn"
)

// Property is a standard sale listing owned by a partner.
type Property struct {
	ID        uuid.UUID       `json:"id"`
	PartnerID uuid.UUID       `json:"partnerId"`
	Title     string          `json:"title"`
	Address   string          `json:"address"`
	City      string          `json:"city"`
	State     string          `json:"state"`
	Price     decimal.Decimal `json:"price"`
	Bedrooms  int             `json:"bedrooms,omitempty"`
	Bathrooms int             `json:"bathrooms,omitempty"`
	AreaSqFt  float64         `json:"areaSqFt,omitempty"`
	Status    PropertyStatus  `json:"status"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Offerable reports whether new offers may target the property. Accepting an
// offer moves the property to under_contract, which closes it.
func (p Property) Offerable() bool {
	return p.Active && p.Status == PropertyListed
}

// ForeclosureListing is an auction listing. Reads are subscription-gated for
// common investors.
type ForeclosureListing struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	State       string          `json:"state"`
	StartingBid decimal.Decimal `json:"startingBid"`
	AuctionDate time.Time       `json:"auctionDate"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PropertyFilter narrows public property browsing.
type PropertyFilter struct {
	City     string
	MaxPrice *decimal.Decimal
}
