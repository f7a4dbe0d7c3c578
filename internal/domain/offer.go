package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancingType enumerates how a buyer intends to fund a purchase.
type FinancingType string

const (
	FinancingCash         FinancingType = "cash"
	FinancingConventional FinancingType = "conventional"
	FinancingFHA          FinancingType = "fha"
	FinancingVA           FinancingType = "va"
	FinancingHardMoney    FinancingType = "hard_money"
	FinancingOther        FinancingType = "other"
)

// ValidFinancingType reports membership in the closed financing set.
func ValidFinancingType(t FinancingType) bool {
	switch t {
	case FinancingCash, FinancingConventional, FinancingFHA, FinancingVA, FinancingHardMoney, FinancingOther:
		return true
	}
	return false
}

// OfferStatus is the offer state machine. Pending is the only non-terminal
// state; a counter reopens negotiation by spawning a new linked offer rather
// than mutating this one.
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferCountered OfferStatus = "countered"
)

// ValidOfferStatus reports membership in the closed status set.
func ValidOfferStatus(s OfferStatus) bool {
	switch s {
	case OfferPending, OfferAccepted, OfferRejected, OfferCountered:
		return true
	}
	return false
}

// CanTransition reports whether the edge from -> to is legal. The only legal
// edges are pending -> accepted|rejected|countered.
func (from OfferStatus) CanTransition(to OfferStatus) bool {
	if from != OfferPending {
		return false
	}
	switch to {
	case OfferAccepted, OfferRejected, OfferCountered:
		return true
	}
	return false
}

// Offer is a purchase proposal on a standard property. Terms are immutable
// after creation; only Status moves, and only by the owning partner or an
// admin.
type Offer struct {
	ID            uuid.UUID       `json:"id"`
	PropertyID    uuid.UUID       `json:"propertyId"`
	InvestorID    uuid.UUID       `json:"investorId"`
	InvestorRole  Role            `json:"investorRole"`
	Amount        decimal.Decimal `json:"amount"`
	EarnestMoney  decimal.Decimal `json:"earnestMoney"`
	ClosingDate   time.Time       `json:"closingDate"`
	FinancingType FinancingType   `json:"financingType"`
	Contingencies []string        `json:"contingencies,omitempty"`
	Message       string          `json:"message,omitempty"`
	Status        OfferStatus     `json:"status"`
	// CounterOf links a partner's counter proposal back to the offer it
	// answers. Nil for investor-originated offers.
	CounterOf *uuid.UUID `json:"counterOf,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CounterTerms carries the partner's counter proposal attached to a
// countered transition. The spawned offer keeps the investor as counterparty
// and links back via CounterOf.
type CounterTerms struct {
	Amount      decimal.Decimal `json:"amount"`
	ClosingDate time.Time       `json:"closingDate"`
	Message     string          `json:"message,omitempty"`
}
