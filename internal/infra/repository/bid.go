package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/infra/database/models"
)

type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) Create(ctx context.Context, b domain.ForeclosureBid) error {
	err := r.db.WithContext(ctx).Create(&models.ForeclosureBid{
		ID:            b.ID,
		ListingID:     b.ListingID,
		InvestorID:    b.InvestorID,
		InvestorRole:  string(b.InvestorRole),
		BidAmount:     b.BidAmount,
		MaxBidAmount:  b.MaxBidAmount,
		Experience:    b.Experience,
		ContactMethod: string(b.ContactMethod),
		Timeframe:     b.Timeframe,
		Notes:         b.Notes,
		Status:        string(b.Status),
	}).Error
	if err != nil {
		return storageError("creating bid", err)
	}
	return nil
}

func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.ForeclosureBid, error) {
	var m models.ForeclosureBid
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ForeclosureBid{}, domain.NotFoundError{Resource: "bid"}
		}
		return domain.ForeclosureBid{}, storageError("loading bid", err)
	}
	return bidToDomain(m), nil
}

func (r *BidRepository) ListByInvestor(ctx context.Context, investorID uuid.UUID) ([]domain.ForeclosureBid, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("investor_id = ?", investorID))
}

func (r *BidRepository) ListAll(ctx context.Context) ([]domain.ForeclosureBid, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *BidRepository) list(ctx context.Context, query *gorm.DB) ([]domain.ForeclosureBid, error) {
	var rows []models.ForeclosureBid
	if err := query.Order("c_date DESC").Find(&rows).Error; err != nil {
		return nil, storageError("listing bids", err)
	}
	out := make([]domain.ForeclosureBid, 0, len(rows))
	for _, m := range rows {
		out = append(out, bidToDomain(m))
	}
	return out, nil
}

// Transition re-checks the forward-only edge under a row lock so two
// concurrent moves on the same bid cannot both apply.
func (r *BidRepository) Transition(ctx context.Context, id uuid.UUID, to domain.BidStatus) (domain.ForeclosureBid, error) {
	var updated domain.ForeclosureBid

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bid models.ForeclosureBid
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&bid, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "bid"}
			}
			return storageError("locking bid", err)
		}

		if !domain.BidStatus(bid.Status).CanTransition(to) {
			return domain.IllegalTransitionError{From: bid.Status, To: string(to)}
		}

		if err := tx.Model(&models.ForeclosureBid{}).Where("id = ?", id).Update("status", string(to)).Error; err != nil {
			return storageError("updating bid status", err)
		}

		bid.Status = string(to)
		updated = bidToDomain(bid)
		return nil
	})
	if err != nil {
		return domain.ForeclosureBid{}, err
	}

	return updated, nil
}

func bidToDomain(m models.ForeclosureBid) domain.ForeclosureBid {
	return domain.ForeclosureBid{
		ID:            m.ID,
		ListingID:     m.ListingID,
		InvestorID:    m.InvestorID,
		InvestorRole:  domain.Role(m.InvestorRole),
		BidAmount:     m.BidAmount,
		MaxBidAmount:  m.MaxBidAmount,
		Experience:    m.Experience,
		ContactMethod: domain.ContactMethod(m.ContactMethod),
		Timeframe:     m.Timeframe,
		Notes:         m.Notes,
		Status:        domain.BidStatus(m.Status),
		CreatedAt:     m.CDate,
		UpdatedAt:     m.MDate,
	}
}
