package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/infra/database/models"
)

// SubscriptionRepository keeps the entitlement state on the common investor
// row itself; plans and intake requests live in their own tables.
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetState(ctx context.Context, investorID uuid.UUID) (domain.Subscription, error) {
	var m models.CommonInvestor
	if err := r.db.WithContext(ctx).First(&m, "id = ?", investorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Subscription{}, domain.NotFoundError{Resource: "investor"}
		}
		return domain.Subscription{}, storageError("loading subscription state", err)
	}
	return domain.Subscription{
		Active:    m.SubscriptionActive,
		PlanID:    m.SubscriptionPlanID,
		ExpiresAt: m.SubscriptionExpiresAt,
	}, nil
}

func (r *SubscriptionRepository) SetState(ctx context.Context, investorID uuid.UUID, s domain.Subscription) error {
	result := r.db.WithContext(ctx).
		Model(&models.CommonInvestor{}).
		Where("id = ?", investorID).
		Updates(map[string]any{
			"subscription_active":     s.Active,
			"subscription_plan_id":    s.PlanID,
			"subscription_expires_at": s.ExpiresAt,
		})
	if result.Error != nil {
		return storageError("updating subscription state", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "investor"}
	}
	return nil
}

func (r *SubscriptionRepository) CreateRequest(ctx context.Context, req domain.SubscriptionRequest) error {
	err := r.db.WithContext(ctx).Create(&models.SubscriptionRequest{
		ID:         req.ID,
		InvestorID: req.InvestorID,
		PlanID:     req.PlanID,
		Message:    req.Message,
		Status:     string(req.Status),
	}).Error
	if err != nil {
		return storageError("creating subscription request", err)
	}
	return nil
}

// ConfirmRequests flips every pending request the investor holds for the
// plan. Zero matches is fine: checkout does not require a prior request.
func (r *SubscriptionRepository) ConfirmRequests(ctx context.Context, investorID uuid.UUID, planID string) error {
	err := r.db.WithContext(ctx).
		Model(&models.SubscriptionRequest{}).
		Where("investor_id = ? AND plan_id = ? AND status = ?", investorID, planID, string(domain.SubscriptionRequestPending)).
		Update("status", string(domain.SubscriptionRequestConfirmed)).Error
	if err != nil {
		return storageError("confirming subscription requests", err)
	}
	return nil
}

func (r *SubscriptionRepository) GetPlan(ctx context.Context, planID string) (domain.Plan, error) {
	var m models.Plan
	if err := r.db.WithContext(ctx).First(&m, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Plan{}, domain.NotFoundError{Resource: "plan"}
		}
		return domain.Plan{}, storageError("loading plan", err)
	}
	return planToDomain(m), nil
}

func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	var rows []models.Plan
	if err := r.db.WithContext(ctx).Order("price ASC").Find(&rows).Error; err != nil {
		return nil, storageError("listing plans", err)
	}
	out := make([]domain.Plan, 0, len(rows))
	for _, m := range rows {
		out = append(out, planToDomain(m))
	}
	return out, nil
}

// SeedPlans inserts the default plan catalog, skipping ids that already
// exist. Called once at startup after migration.
func (r *SubscriptionRepository) SeedPlans(ctx context.Context, plans []domain.Plan) error {
	for _, p := range plans {
		err := r.db.WithContext(ctx).
			Where("id = ?", p.ID).
			FirstOrCreate(&models.Plan{
				ID:         p.ID,
				Name:       p.Name,
				Price:      p.Price,
				PeriodDays: p.PeriodDays,
			}).Error
		if err != nil {
			return errors.Wrapf(err, "seeding plan %s failed", p.ID)
		}
	}
	return nil
}

func planToDomain(m models.Plan) domain.Plan {
	return domain.Plan{
		ID:         m.ID,
		Name:       m.Name,
		Price:      m.Price,
		PeriodDays: m.PeriodDays,
	}
}
