package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactMethod is how the auction desk reaches a bidder.
type ContactMethod string

const (
	ContactEmail ContactMethod = "email"
	ContactPhone ContactMethod = "phone"
)

// ValidContactMethod reports membership in the closed contact set.
func ValidContactMethod(m ContactMethod) bool {
	return m == ContactEmail || m == ContactPhone
}

// BidStatus is the foreclosure bid state machine. Transitions are strictly
// forward: pending -> reviewed -> contacted -> won|lost. Won and lost are
// terminal.
type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidReviewed  BidStatus = "reviewed"
	BidContacted BidStatus = "contacted"
	BidWon       BidStatus = "won"
	BidLost      BidStatus = "lost"
)

// ValidBidStatus reports membership in the closed status set.
func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidReviewed, BidContacted, BidWon, BidLost:
		return true
	}
	return false
}

// CanTransition reports whether the edge from -> to is legal. No edge skips
// a step or moves backward.
func (from BidStatus) CanTransition(to BidStatus) bool {
	switch from {
	case BidPending:
		return to == BidReviewed
	case BidReviewed:
		return to == BidContacted
	case BidContacted:
		return to == BidWon || to == BidLost
	}
	return false
}

// ForeclosureBid is an investor's proposal on a foreclosure auction listing.
// Only admins move its status.
type ForeclosureBid struct {
	ID            uuid.UUID       `json:"id"`
	ListingID     uuid.UUID       `json:"listingId"`
	InvestorID    uuid.UUID       `json:"investorId"`
	InvestorRole  Role            `json:"investorRole"`
	BidAmount     decimal.Decimal `json:"bidAmount"`
	MaxBidAmount  decimal.Decimal `json:"maxBidAmount"`
	Experience    string          `json:"experience,omitempty"`
	ContactMethod ContactMethod   `json:"contactMethod"`
	Timeframe     string          `json:"timeframe,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Status        BidStatus       `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
