package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/homesteadmarket/homestead/internal/domain"
)

const closingDateLayout = "2006-01-02"

type OfferUsecase struct {
	offers     OfferRepository
	properties PropertyRepository
	notifier   Notifier
	now        func() time.Time
}

func NewOfferUsecase(offers OfferRepository, properties PropertyRepository, notifier Notifier) *OfferUsecase {
	return &OfferUsecase{
		offers:     offers,
		properties: properties,
		notifier:   notifier,
		now:        time.Now,
	}
}

// CreateOfferInput carries the immutable terms of a new offer.
type CreateOfferInput struct {
	PropertyID    uuid.UUID
	Amount        decimal.Decimal
	EarnestMoney  decimal.Decimal
	ClosingDate   string // YYYY-MM-DD, must parse to a future date
	FinancingType domain.FinancingType
	Contingencies []string
	Message       string
}

// Create validates the terms and stores a pending offer.
func (uc *OfferUsecase) Create(ctx context.Context, investor domain.Principal, input CreateOfferInput) (domain.Offer, error) {
	if !investor.Role().InvestorRole() {
		return domain.Offer{}, domain.ForbiddenError{Reason: "only investors may create offers"}
	}

	if !input.Amount.IsPositive() {
		return domain.Offer{}, domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !input.EarnestMoney.IsPositive() {
		return domain.Offer{}, domain.ValidationError{Field: "earnestMoney", Reason: "must be positive"}
	}
	closing, err := time.Parse(closingDateLayout, input.ClosingDate)
	if err != nil {
		return domain.Offer{}, domain.ValidationError{Field: "closingDate", Reason: "must be YYYY-MM-DD"}
	}
	if !closing.After(uc.now()) {
		return domain.Offer{}, domain.ValidationError{Field: "closingDate", Reason: "must be in the future"}
	}
	if !domain.ValidFinancingType(input.FinancingType) {
		return domain.Offer{}, domain.ValidationError{Field: "financingType", Reason: "unknown"}
	}

	property, err := uc.properties.GetByID(ctx, input.PropertyID)
	if err != nil {
		return domain.Offer{}, err
	}
	if !property.Offerable() {
		return domain.Offer{}, domain.ValidationError{Field: "propertyId", Reason: "property is not open to offers"}
	}

	now := uc.now()
	offer := domain.Offer{
		ID:            uuid.New(),
		PropertyID:    property.ID,
		InvestorID:    investor.PrincipalID(),
		InvestorRole:  investor.Role(),
		Amount:        input.Amount,
		EarnestMoney:  input.EarnestMoney,
		ClosingDate:   closing,
		FinancingType: input.FinancingType,
		Contingencies: dedupe(input.Contingencies),
		Message:       input.Message,
		Status:        domain.OfferPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.offers.Create(ctx, offer); err != nil {
		return domain.Offer{}, errors.Wrap(err, "storing offer failed")
	}

	return offer, nil
}

// Transition moves an offer out of pending. Only the property's owning
// partner or an admin may call it. Accepting also moves the property to
// under_contract in the same repository transaction; countering with terms
// spawns a new linked offer. Notifications fire after commit, best-effort.
func (uc *OfferUsecase) Transition(ctx context.Context, acting domain.Principal, offerID uuid.UUID, to domain.OfferStatus, counter *domain.CounterTerms) (domain.Offer, error) {
	if !domain.ValidOfferStatus(to) || to == domain.OfferPending {
		return domain.Offer{}, domain.IllegalTransitionError{To: string(to)}
	}

	offer, err := uc.offers.GetByID(ctx, offerID)
	if err != nil {
		return domain.Offer{}, err
	}

	property, err := uc.properties.GetByID(ctx, offer.PropertyID)
	if err != nil {
		return domain.Offer{}, err
	}

	switch p := acting.(type) {
	case domain.Admin:
		// admins may decide any offer
	case domain.Partner:
		if p.ID != property.PartnerID {
			return domain.Offer{}, domain.ForbiddenError{Reason: "offer belongs to another partner's property"}
		}
	default:
		return domain.Offer{}, domain.ForbiddenError{Reason: "only the owning partner or an admin may decide offers"}
	}

	if !offer.Status.CanTransition(to) {
		return domain.Offer{}, domain.IllegalTransitionError{From: string(offer.Status), To: string(to)}
	}

	var spawned *domain.Offer
	if to == domain.OfferCountered && counter != nil {
		if !counter.Amount.IsPositive() {
			return domain.Offer{}, domain.ValidationError{Field: "counter.amount", Reason: "must be positive"}
		}
		now := uc.now()
		// A zero date falls back to the original's; an explicit one must
		// clear the same bar Create sets.
		if !counter.ClosingDate.IsZero() && !counter.ClosingDate.After(now) {
			return domain.Offer{}, domain.ValidationError{Field: "counter.closingDate", Reason: "must be in the future"}
		}
		spawned = &domain.Offer{
			ID:            uuid.New(),
			PropertyID:    offer.PropertyID,
			InvestorID:    offer.InvestorID,
			InvestorRole:  offer.InvestorRole,
			Amount:        counter.Amount,
			EarnestMoney:  offer.EarnestMoney,
			ClosingDate:   counter.ClosingDate,
			FinancingType: offer.FinancingType,
			Message:       counter.Message,
			Status:        domain.OfferPending,
			CounterOf:     &offer.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if spawned.ClosingDate.IsZero() {
			spawned.ClosingDate = offer.ClosingDate
		}
	}

	// The repository re-checks the edge and the property state under a row
	// lock; a concurrent accept on the same property makes the second call
	// fail here.
	updated, err := uc.offers.Transition(ctx, offerID, to, spawned)
	if err != nil {
		return domain.Offer{}, err
	}

	if to == domain.OfferAccepted {
		property.Status = domain.PropertyUnderContract
		uc.notifier.PropertyUpdate(ctx, property)
	}

	return updated, nil
}

func (uc *OfferUsecase) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Offer, error) {
	return uc.offers.ListByInvestor(ctx, investorID)
}

func (uc *OfferUsecase) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Offer, error) {
	return uc.offers.ListByProperty(ctx, propertyID)
}

// ListForPartner returns every offer targeting one of the partner's
// properties.
func (uc *OfferUsecase) ListForPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Offer, error) {
	return uc.offers.ListByPartner(ctx, partnerID)
}

func (uc *OfferUsecase) ListAll(ctx context.Context) ([]domain.Offer, error) {
	return uc.offers.ListAll(ctx)
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
