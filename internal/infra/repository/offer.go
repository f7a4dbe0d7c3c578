package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/infra/database/models"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, o domain.Offer) error {
	model, err := offerToModel(o)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return storageError("creating offer", err)
	}
	return nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Offer, error) {
	var m models.Offer
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Offer{}, domain.NotFoundError{Resource: "offer"}
		}
		return domain.Offer{}, storageError("loading offer", err)
	}
	return offerToDomain(m), nil
}

// Transition applies the status edge inside one transaction. The offer row
// is locked, the edge re-checked, and for an accept the property row is
// locked and re-checked as well before both writes land. Two concurrent
// accepts on the same property serialize on the property lock; the second
// sees under_contract and fails with IllegalTransition.
func (r *OfferRepository) Transition(ctx context.Context, id uuid.UUID, to domain.OfferStatus, counter *domain.Offer) (domain.Offer, error) {
	var updated domain.Offer

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&offer, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "offer"}
			}
			return storageError("locking offer", err)
		}

		if !domain.OfferStatus(offer.Status).CanTransition(to) {
			return domain.IllegalTransitionError{From: offer.Status, To: string(to)}
		}

		if to == domain.OfferAccepted {
			var property models.Property
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&property, "id = ?", offer.PropertyID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.NotFoundError{Resource: "property"}
				}
				return storageError("locking property", err)
			}

			prop := propertyToDomain(property)
			if !prop.Offerable() {
				return domain.IllegalTransitionError{From: offer.Status, To: string(to)}
			}

			err = tx.Model(&models.Property{}).
				Where("id = ?", property.ID).
				Update("status", string(domain.PropertyUnderContract)).Error
			if err != nil {
				return storageError("marking property under contract", err)
			}
		}

		if err := tx.Model(&models.Offer{}).Where("id = ?", id).Update("status", string(to)).Error; err != nil {
			return storageError("updating offer status", err)
		}

		if counter != nil {
			model, err := offerToModel(*counter)
			if err != nil {
				return err
			}
			if err := tx.Create(&model).Error; err != nil {
				return storageError("creating counter offer", err)
			}
		}

		offer.Status = string(to)
		updated = offerToDomain(offer)
		return nil
	})
	if err != nil {
		return domain.Offer{}, err
	}

	return updated, nil
}

func (r *OfferRepository) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.Offer, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("investor_id = ?", investorID))
}

func (r *OfferRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Offer, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("property_id = ?", propertyID))
}

func (r *OfferRepository) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Offer, error) {
	query := r.db.WithContext(ctx).
		Where("property_id IN (?)", r.db.Model(&models.Property{}).Select("id").Where("partner_id = ?", partnerID))
	return r.list(ctx, query)
}

func (r *OfferRepository) ListAll(ctx context.Context) ([]domain.Offer, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *OfferRepository) list(ctx context.Context, query *gorm.DB) ([]domain.Offer, error) {
	var rows []models.Offer
	if err := query.Order("c_date DESC").Find(&rows).Error; err != nil {
		return nil, storageError("listing offers", err)
	}
	out := make([]domain.Offer, 0, len(rows))
	for _, m := range rows {
		out = append(out, offerToDomain(m))
	}
	return out, nil
}

func offerToModel(o domain.Offer) (models.Offer, error) {
	contingencies, err := json.Marshal(o.Contingencies)
	if err != nil {
		return models.Offer{}, storageError("encoding contingencies", err)
	}
	return models.Offer{
		ID:            o.ID,
		PropertyID:    o.PropertyID,
		InvestorID:    o.InvestorID,
		InvestorRole:  string(o.InvestorRole),
		Amount:        o.Amount,
		EarnestMoney:  o.EarnestMoney,
		ClosingDate:   o.ClosingDate,
		FinancingType: string(o.FinancingType),
		Contingencies: string(contingencies),
		Message:       o.Message,
		Status:        string(o.Status),
		CounterOf:     o.CounterOf,
	}, nil
}

func offerToDomain(m models.Offer) domain.Offer {
	var contingencies []string
	// Stored by offerToModel; a decode failure means a hand-edited row and
	// degrades to no contingencies.
	_ = json.Unmarshal([]byte(m.Contingencies), &contingencies)

	return domain.Offer{
		ID:            m.ID,
		PropertyID:    m.PropertyID,
		InvestorID:    m.InvestorID,
		InvestorRole:  domain.Role(m.InvestorRole),
		Amount:        m.Amount,
		EarnestMoney:  m.EarnestMoney,
		ClosingDate:   m.ClosingDate,
		FinancingType: domain.FinancingType(m.FinancingType),
		Contingencies: contingencies,
		Message:       m.Message,
		Status:        domain.OfferStatus(m.Status),
		CounterOf:     m.CounterOf,
		CreatedAt:     m.CDate,
		UpdatedAt:     m.MDate,
	}
}
