package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/homesteadmarket/homestead/internal/domain"
)

const (
	propertiesCacheKey   = "listings:properties"
	foreclosuresCacheKey = "listings:foreclosures"
)

type ListingUsecase struct {
	properties   PropertyRepository
	foreclosures ForeclosureRepository
	gate         *EntitlementGate
	cache        ListingCache
	notifier     Notifier
	now          func() time.Time
}

func NewListingUsecase(
	properties PropertyRepository,
	foreclosures ForeclosureRepository,
	gate *EntitlementGate,
	cache ListingCache,
	notifier Notifier,
) *ListingUsecase {
	return &ListingUsecase{
		properties:   properties,
		foreclosures: foreclosures,
		gate:         gate,
		cache:        cache,
		notifier:     notifier,
		now:          time.Now,
	}
}

// BrowseProperties serves the public property list. The unfiltered query
// goes through the read cache; filtered queries hit storage directly.
func (uc *ListingUsecase) BrowseProperties(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	unfiltered := filter.City == "" && filter.MaxPrice == nil

	if unfiltered && uc.cache != nil {
		if raw, ok := uc.cache.Get(ctx, propertiesCacheKey); ok {
			var cached []domain.Property
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	listings, err := uc.properties.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if unfiltered && uc.cache != nil {
		if raw, err := json.Marshal(listings); err == nil {
			uc.cache.Set(ctx, propertiesCacheKey, raw)
		}
	}

	return listings, nil
}

func (uc *ListingUsecase) GetProperty(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	return uc.properties.GetByID(ctx, id)
}

// BrowseForeclosures is the gated read path. The entitlement check runs on
// every call; there is no cached pass.
func (uc *ListingUsecase) BrowseForeclosures(ctx context.Context, p domain.Principal) ([]domain.ForeclosureListing, error) {
	if err := uc.gate.CanAccessForeclosures(ctx, p); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, ok := uc.cache.Get(ctx, foreclosuresCacheKey); ok {
			var cached []domain.ForeclosureListing
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	listings, err := uc.foreclosures.List(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(listings); err == nil {
			uc.cache.Set(ctx, foreclosuresCacheKey, raw)
		}
	}

	return listings, nil
}

func (uc *ListingUsecase) GetForeclosure(ctx context.Context, p domain.Principal, id uuid.UUID) (domain.ForeclosureListing, error) {
	if err := uc.gate.CanAccessForeclosures(ctx, p); err != nil {
		return domain.ForeclosureListing{}, err
	}
	return uc.foreclosures.GetByID(ctx, id)
}

// CreatePropertyInput carries a partner's new listing.
type CreatePropertyInput struct {
	Title     string
	Address   string
	City      string
	State     string
	Price     decimal.Decimal
	Bedrooms  int
	Bathrooms int
	AreaSqFt  float64
}

// CreateProperty lists a new property for the partner and announces it
// after the write has committed.
func (uc *ListingUsecase) CreateProperty(ctx context.Context, partner domain.Principal, input CreatePropertyInput) (domain.Property, error) {
	if _, ok := partner.(domain.Partner); !ok {
		return domain.Property{}, domain.ForbiddenError{Reason: "only partners list properties"}
	}

	if input.Title == "" {
		return domain.Property{}, domain.ValidationError{Field: "title", Reason: "required"}
	}
	if input.Address == "" {
		return domain.Property{}, domain.ValidationError{Field: "address", Reason: "required"}
	}
	if !input.Price.IsPositive() {
		return domain.Property{}, domain.ValidationError{Field: "price", Reason: "must be positive"}
	}

	property := domain.Property{
		ID:        uuid.New(),
		PartnerID: partner.PrincipalID(),
		Title:     input.Title,
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		Price:     input.Price,
		Bedrooms:  input.Bedrooms,
		Bathrooms: input.Bathrooms,
		AreaSqFt:  input.AreaSqFt,
		Status:    domain.PropertyListed,
		Active:    true,
		CreatedAt: uc.now(),
	}

	if err := uc.properties.Create(ctx, property); err != nil {
		return domain.Property{}, errors.Wrap(err, "storing property failed")
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, propertiesCacheKey)
	}
	uc.notifier.PropertyListed(ctx, property)

	return property, nil
}

// WithdrawProperty takes a partner's own listing off the market.
func (uc *ListingUsecase) WithdrawProperty(ctx context.Context, partner domain.Principal, id uuid.UUID) (domain.Property, error) {
	property, err := uc.properties.GetByID(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}

	switch p := partner.(type) {
	case domain.Admin:
	case domain.Partner:
		if p.ID != property.PartnerID {
			return domain.Property{}, domain.ForbiddenError{Reason: "property belongs to another partner"}
		}
	default:
		return domain.Property{}, domain.ForbiddenError{Reason: "only partners withdraw properties"}
	}

	if property.Status == domain.PropertyUnderContract {
		return domain.Property{}, domain.IllegalTransitionError{From: string(property.Status), To: string(domain.PropertyWithdrawn)}
	}

	if err := uc.properties.SetStatus(ctx, id, domain.PropertyWithdrawn, false); err != nil {
		return domain.Property{}, err
	}
	property.Status = domain.PropertyWithdrawn
	property.Active = false

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, propertiesCacheKey)
	}

	return property, nil
}

// PartnerProperties lists a partner's own listings, active or not.
func (uc *ListingUsecase) PartnerProperties(ctx context.Context, partnerID uuid.UUID) ([]domain.Property, error) {
	return uc.properties.ListByPartner(ctx, partnerID)
}

// AllProperties is the admin view, unfiltered.
func (uc *ListingUsecase) AllProperties(ctx context.Context) ([]domain.Property, error) {
	return uc.properties.ListAll(ctx)
}
