package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Subscription is the entitlement state attached to a CommonInvestor.
//
// Entitlement is a two-field check: the Active flag AND the expiry. The two
// can disagree (cancel leaves the flag set, the expiry lapses on its own), so
// this must never be collapsed into a single boolean.
type Subscription struct {
	Active    bool       `json:"active"`
	PlanID    string     `json:"planId,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Entitled reports whether the subscription grants foreclosure access at the
// given instant. A nil expiry means a non-lapsing subscription.
func (s Subscription) Entitled(now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.ExpiresAt == nil {
		return true
	}
	return now.Before(*s.ExpiresAt)
}

// Plan is a purchasable subscription tier.
type Plan struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	PeriodDays int             `json:"periodDays"`
}

// SubscriptionRequestStatus tracks a pending plan intake.
type SubscriptionRequestStatus string

const (
	SubscriptionRequestPending   SubscriptionRequestStatus = "pending"
	SubscriptionRequestConfirmed SubscriptionRequestStatus = "confirmed"
)

// SubscriptionRequest is an investor's intake for a plan, awaiting payment
// confirmation before activation.
type SubscriptionRequest struct {
	ID         uuid.UUID                 `json:"id"`
	InvestorID uuid.UUID                 `json:"investorId"`
	PlanID     string                    `json:"planId"`
	Message    string                    `json:"message,omitempty"`
	Status     SubscriptionRequestStatus `json:"status"`
	CreatedAt  time.Time                 `json:"createdAt"`
}
