package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/homesteadmarket/homestead/internal/domain"
)

type BidUsecase struct {
	bids     BidRepository
	listings ForeclosureRepository
	gate     *EntitlementGate
	notifier Notifier
	now      func() time.Time
}

func NewBidUsecase(bids BidRepository, listings ForeclosureRepository, gate *EntitlementGate, notifier Notifier) *BidUsecase {
	return &BidUsecase{
		bids:     bids,
		listings: listings,
		gate:     gate,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateBidInput carries the terms of a new foreclosure bid.
type CreateBidInput struct {
	ListingID     uuid.UUID
	BidAmount     decimal.Decimal
	MaxBidAmount  decimal.Decimal
	Experience    string
	ContactMethod domain.ContactMethod
	Timeframe     string
	Notes         string
}

// Create validates the bid and stores it pending. The entitlement gate runs
// here as well as on the read path, so a common investor whose subscription
// lapsed mid-session cannot bid.
func (uc *BidUsecase) Create(ctx context.Context, investor domain.Principal, input CreateBidInput) (domain.ForeclosureBid, error) {
	if !investor.Role().InvestorRole() {
		return domain.ForeclosureBid{}, domain.ForbiddenError{Reason: "only investors may bid"}
	}

	if err := uc.gate.CanAccessForeclosures(ctx, investor); err != nil {
		return domain.ForeclosureBid{}, err
	}

	listing, err := uc.listings.GetByID(ctx, input.ListingID)
	if err != nil {
		return domain.ForeclosureBid{}, err
	}
	if !listing.Active {
		return domain.ForeclosureBid{}, domain.ValidationError{Field: "listingId", Reason: "listing is closed"}
	}

	// Boundary equality is valid on both checks.
	if input.BidAmount.Cmp(listing.StartingBid) < 0 {
		return domain.ForeclosureBid{}, domain.ValidationError{Field: "bidAmount", Reason: "below the starting bid"}
	}
	if input.MaxBidAmount.Cmp(input.BidAmount) < 0 {
		return domain.ForeclosureBid{}, domain.ValidationError{Field: "maxBidAmount", Reason: "below the bid amount"}
	}
	if !domain.ValidContactMethod(input.ContactMethod) {
		return domain.ForeclosureBid{}, domain.ValidationError{Field: "contactMethod", Reason: "unknown"}
	}

	now := uc.now()
	bid := domain.ForeclosureBid{
		ID:            uuid.New(),
		ListingID:     listing.ID,
		InvestorID:    investor.PrincipalID(),
		InvestorRole:  investor.Role(),
		BidAmount:     input.BidAmount,
		MaxBidAmount:  input.MaxBidAmount,
		Experience:    input.Experience,
		ContactMethod: input.ContactMethod,
		Timeframe:     input.Timeframe,
		Notes:         input.Notes,
		Status:        domain.BidPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.bids.Create(ctx, bid); err != nil {
		return domain.ForeclosureBid{}, errors.Wrap(err, "storing bid failed")
	}

	return bid, nil
}

// Transition moves a bid along its forward-only ladder. Admin only.
func (uc *BidUsecase) Transition(ctx context.Context, acting domain.Principal, bidID uuid.UUID, to domain.BidStatus) (domain.ForeclosureBid, error) {
	if _, ok := acting.(domain.Admin); !ok {
		return domain.ForeclosureBid{}, domain.ForbiddenError{Reason: "only admins may move bids"}
	}

	if !domain.ValidBidStatus(to) {
		return domain.ForeclosureBid{}, domain.IllegalTransitionError{To: string(to)}
	}

	bid, err := uc.bids.GetByID(ctx, bidID)
	if err != nil {
		return domain.ForeclosureBid{}, err
	}

	if !bid.Status.CanTransition(to) {
		return domain.ForeclosureBid{}, domain.IllegalTransitionError{From: string(bid.Status), To: string(to)}
	}

	// Re-checked under a row lock inside the repository.
	updated, err := uc.bids.Transition(ctx, bidID, to)
	if err != nil {
		return domain.ForeclosureBid{}, err
	}

	uc.notifier.ForeclosureUpdate(ctx, updated)

	return updated, nil
}

func (uc *BidUsecase) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.ForeclosureBid, error) {
	return uc.bids.ListByInvestor(ctx, investorID)
}

func (uc *BidUsecase) ListAll(ctx context.Context) ([]domain.ForeclosureBid, error) {
	return uc.bids.ListAll(ctx)
}
