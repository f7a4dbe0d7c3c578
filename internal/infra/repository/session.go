package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/infra/database/models"
)

// SessionRepository is the only component writing the sessions table; the
// credential store owns all its callers. Expired rows are left in place
// (lazy expiry) — the store re-checks expiry on every resolve.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Put(ctx context.Context, s domain.Session) error {
	model := models.Session{
		Namespace:   string(s.Namespace),
		Token:       s.Token,
		PrincipalID: s.PrincipalID,
		ExpiresAt:   s.ExpiresAt,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"principal_id", "expires_at"}),
	}).Create(&model).Error
	if err != nil {
		return storageError("storing session", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, ns domain.Role, token string) (domain.Session, error) {
	var m models.Session
	err := r.db.WithContext(ctx).
		First(&m, "namespace = ? AND token = ?", string(ns), token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, domain.NotFoundError{Resource: "session"}
		}
		return domain.Session{}, storageError("loading session", err)
	}

	return domain.Session{
		Token:       m.Token,
		Namespace:   domain.Role(m.Namespace),
		PrincipalID: m.PrincipalID,
		ExpiresAt:   m.ExpiresAt,
		CreatedAt:   m.CDate,
	}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, ns domain.Role, token string) error {
	// Deleting zero rows is fine: revocation is idempotent.
	err := r.db.WithContext(ctx).
		Where("namespace = ? AND token = ?", string(ns), token).
		Delete(&models.Session{}).Error
	if err != nil {
		return storageError("deleting session", err)
	}
	return nil
}
