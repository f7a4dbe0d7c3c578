package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/infra/database/models"
)

// PrincipalRepository stores the four principal kinds in four tables, so
// username/email uniqueness is scoped to the role namespace by schema
// rather than by query discipline.
type PrincipalRepository struct {
	db *gorm.DB
}

func NewPrincipalRepository(db *gorm.DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

func (r *PrincipalRepository) Create(ctx context.Context, p domain.Principal) error {
	var err error
	switch v := p.(type) {
	case domain.CommonInvestor:
		err = r.db.WithContext(ctx).Create(&models.CommonInvestor{
			ID:                    v.ID,
			Username:              v.Username,
			Email:                 v.Email,
			PasswordHash:          v.PasswordHash,
			FullName:              v.FullName,
			Phone:                 v.Phone,
			Active:                v.Active,
			SubscriptionActive:    v.Subscription.Active,
			SubscriptionPlanID:    v.Subscription.PlanID,
			SubscriptionExpiresAt: v.Subscription.ExpiresAt,
		}).Error
	case domain.InstitutionalInvestor:
		err = r.db.WithContext(ctx).Create(&models.InstitutionalInvestor{
			ID:           v.ID,
			Username:     v.Username,
			Email:        v.Email,
			PasswordHash: v.PasswordHash,
			Institution:  v.Institution,
			JobTitle:     v.JobTitle,
			Phone:        v.Phone,
			Active:       v.Active,
		}).Error
	case domain.Partner:
		err = r.db.WithContext(ctx).Create(&models.Partner{
			ID:           v.ID,
			Username:     v.Username,
			Email:        v.Email,
			PasswordHash: v.PasswordHash,
			Company:      v.Company,
			FullName:     v.FullName,
			Phone:        v.Phone,
			Active:       v.Active,
		}).Error
	case domain.Admin:
		err = r.db.WithContext(ctx).Create(&models.Admin{
			ID:           v.ID,
			Username:     v.Username,
			Email:        v.Email,
			PasswordHash: v.PasswordHash,
			FullName:     v.FullName,
			Active:       v.Active,
		}).Error
	default:
		return domain.ValidationError{Field: "role", Reason: "unknown principal kind"}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.DuplicateError{Field: "username or email"}
	}
	if err != nil {
		return storageError("creating principal", err)
	}
	return nil
}

func (r *PrincipalRepository) GetByID(ctx context.Context, role domain.Role, id uuid.UUID) (domain.Principal, error) {
	return r.get(ctx, role, "id = ?", id)
}

func (r *PrincipalRepository) GetByUsername(ctx context.Context, role domain.Role, username string) (domain.Principal, error) {
	return r.get(ctx, role, "username = ?", username)
}

func (r *PrincipalRepository) get(ctx context.Context, role domain.Role, query string, arg any) (domain.Principal, error) {
	db := r.db.WithContext(ctx)

	switch role {
	case domain.RoleInvestor:
		var m models.CommonInvestor
		if err := db.First(&m, query, arg).Error; err != nil {
			return nil, notFoundOr(err, "investor")
		}
		return domain.CommonInvestor{
			ID:           m.ID,
			Username:     m.Username,
			Email:        m.Email,
			PasswordHash: m.PasswordHash,
			FullName:     m.FullName,
			Phone:        m.Phone,
			Active:       m.Active,
			Subscription: domain.Subscription{
				Active:    m.SubscriptionActive,
				PlanID:    m.SubscriptionPlanID,
				ExpiresAt: m.SubscriptionExpiresAt,
			},
			CreatedAt: m.CDate,
		}, nil
	case domain.RoleInstitutional:
		var m models.InstitutionalInvestor
		if err := db.First(&m, query, arg).Error; err != nil {
			return nil, notFoundOr(err, "institutional investor")
		}
		return domain.InstitutionalInvestor{
			ID:           m.ID,
			Username:     m.Username,
			Email:        m.Email,
			PasswordHash: m.PasswordHash,
			Institution:  m.Institution,
			JobTitle:     m.JobTitle,
			Phone:        m.Phone,
			Active:       m.Active,
			CreatedAt:    m.CDate,
		}, nil
	case domain.RolePartner:
		var m models.Partner
		if err := db.First(&m, query, arg).Error; err != nil {
			return nil, notFoundOr(err, "partner")
		}
		return domain.Partner{
			ID:           m.ID,
			Username:     m.Username,
			Email:        m.Email,
			PasswordHash: m.PasswordHash,
			Company:      m.Company,
			FullName:     m.FullName,
			Phone:        m.Phone,
			Active:       m.Active,
			CreatedAt:    m.CDate,
		}, nil
	case domain.RoleAdmin:
		var m models.Admin
		if err := db.First(&m, query, arg).Error; err != nil {
			return nil, notFoundOr(err, "admin")
		}
		return domain.Admin{
			ID:           m.ID,
			Username:     m.Username,
			Email:        m.Email,
			PasswordHash: m.PasswordHash,
			FullName:     m.FullName,
			Active:       m.Active,
			CreatedAt:    m.CDate,
		}, nil
	}

	return nil, domain.ValidationError{Field: "role", Reason: "unknown"}
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFoundError{Resource: resource}
	}
	return storageError("loading "+resource, err)
}
