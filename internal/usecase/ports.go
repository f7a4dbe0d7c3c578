package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/homesteadmarket/homestead/internal/domain"
)

// PrincipalRepository defines persistence/lookup for the four principal
// kinds. Uniqueness of username/email is enforced per role namespace; a
// violation surfaces as domain.DuplicateError.
type PrincipalRepository interface {
	Create(ctx context.Context, p domain.Principal) error
	GetByID(ctx context.Context, role domain.Role, id uuid.UUID) (domain.Principal, error)
	GetByUsername(ctx context.Context, role domain.Role, username string) (domain.Principal, error)
}

// PropertyRepository defines persistence/lookup for standard listings.
type PropertyRepository interface {
	Create(ctx context.Context, p domain.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error)
	List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Property, error)
	ListAll(ctx context.Context) ([]domain.Property, error)
	SetStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus, active bool) error
}

// ForeclosureRepository defines lookup for auction listings.
type ForeclosureRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.ForeclosureListing, error)
	List(ctx context.Context) ([]domain.ForeclosureListing, error)
}

// OfferRepository defines persistence for offers. Transition applies the
// status edge atomically: for an accept it also moves the property to
// under_contract inside the same transaction, re-checking both the edge and
// the property's offerable state under a row lock so concurrent accepts
// cannot both succeed. A non-nil counter is created in that same
// transaction.
type OfferRepository interface {
	Create(ctx context.Context, o domain.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Offer, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Offer, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Offer, error)
	ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Offer, error)
	ListAll(ctx context.Context) ([]domain.Offer, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.OfferStatus, counter *domain.Offer) (domain.Offer, error)
}

// BidRepository defines persistence for foreclosure bids. Transition
// re-checks the forward-only edge under a row lock.
type BidRepository interface {
	Create(ctx context.Context, b domain.ForeclosureBid) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.ForeclosureBid, error)
	ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.ForeclosureBid, error)
	ListAll(ctx context.Context) ([]domain.ForeclosureBid, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.BidStatus) (domain.ForeclosureBid, error)
}

// SubscriptionRepository defines persistence for plans, intake requests and
// the per-investor subscription state.
type SubscriptionRepository interface {
	GetState(ctx context.Context, investorID uuid.UUID) (domain.Subscription, error)
	SetState(ctx context.Context, investorID uuid.UUID, s domain.Subscription) error
	CreateRequest(ctx context.Context, r domain.SubscriptionRequest) error
	ConfirmRequests(ctx context.Context, investorID uuid.UUID, planID string) error
	GetPlan(ctx context.Context, planID string) (domain.Plan, error)
	ListPlans(ctx context.Context) ([]domain.Plan, error)
}

// Notifier delivers fire-and-forget notifications. Implementations log
// failures and never propagate them; callers invoke these only after their
// own transaction has committed.
type Notifier interface {
	PropertyListed(ctx context.Context, p domain.Property)
	PropertyUpdate(ctx context.Context, p domain.Property)
	ForeclosureUpdate(ctx context.Context, b domain.ForeclosureBid)
}

// PaymentProcessor charges a plan against an opaque payment method. A false
// return is a declined charge; an error is a collaborator fault and maps to
// domain.DependencyFailureError at the boundary.
type PaymentProcessor interface {
	Charge(ctx context.Context, planID string, paymentMethod string) (bool, error)
}

// ListingCache is a best-effort read cache for public listing queries. A nil
// or failing cache must never fail a request.
type ListingCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context, key string)
}
