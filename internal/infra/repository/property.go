package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/homesteadmarket/homestead/internal/domain"
	"github.com/homesteadmarket/homestead/internal/infra/database/models"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, p domain.Property) error {
	err := r.db.WithContext(ctx).Create(&models.Property{
		ID:        p.ID,
		PartnerID: p.PartnerID,
		Title:     p.Title,
		Address:   p.Address,
		City:      p.City,
		State:     p.State,
		Price:     p.Price,
		Bedrooms:  p.Bedrooms,
		Bathrooms: p.Bathrooms,
		AreaSqFt:  p.AreaSqFt,
		Status:    string(p.Status),
		Active:    p.Active,
	}).Error
	if err != nil {
		return storageError("creating property", err)
	}
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	var m models.Property
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Property{}, domain.NotFoundError{Resource: "property"}
		}
		return domain.Property{}, storageError("loading property", err)
	}
	return propertyToDomain(m), nil
}

func (r *PropertyRepository) List(ctx context.Context, filter domain.PropertyFilter) ([]domain.Property, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", filter.MaxPrice)
	}

	var rows []models.Property
	if err := query.Order("c_date DESC").Find(&rows).Error; err != nil {
		return nil, storageError("listing properties", err)
	}
	return propertiesToDomain(rows), nil
}

func (r *PropertyRepository) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Property, error) {
	var rows []models.Property
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("c_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, storageError("listing partner properties", err)
	}
	return propertiesToDomain(rows), nil
}

func (r *PropertyRepository) ListAll(ctx context.Context) ([]domain.Property, error) {
	var rows []models.Property
	if err := r.db.WithContext(ctx).Order("c_date DESC").Find(&rows).Error; err != nil {
		return nil, storageError("listing all properties", err)
	}
	return propertiesToDomain(rows), nil
}

func (r *PropertyRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus, active bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "active": active})
	if result.Error != nil {
		return storageError("updating property status", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "property"}
	}
	return nil
}

func propertyToDomain(m models.Property) domain.Property {
	return domain.Property{
		ID:        m.ID,
		PartnerID: m.PartnerID,
		Title:     m.Title,
		Address:   m.Address,
		City:      m.City,
		State:     m.State,
		Price:     m.Price,
		Bedrooms:  m.Bedrooms,
		Bathrooms: m.Bathrooms,
		AreaSqFt:  m.AreaSqFt,
		Status:    domain.PropertyStatus(m.Status),
		Active:    m.Active,
		CreatedAt: m.CDate,
	}
}

func propertiesToDomain(rows []models.Property) []domain.Property {
	out := make([]domain.Property, 0, len(rows))
	for _, m := range rows {
		out = append(out, propertyToDomain(m))
	}
	return out
}

// ForeclosureRepository serves the gated auction listings.
type ForeclosureRepository struct {
	db *gorm.DB
}

func NewForeclosureRepository(db *gorm.DB) *ForeclosureRepository {
	return &ForeclosureRepository{db: db}
}

func (r *ForeclosureRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.ForeclosureListing, error) {
	var m models.ForeclosureListing
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ForeclosureListing{}, domain.NotFoundError{Resource: "foreclosure listing"}
		}
		return domain.ForeclosureListing{}, storageError("loading foreclosure listing", err)
	}
	return foreclosureToDomain(m), nil
}

func (r *ForeclosureRepository) List(ctx context.Context) ([]domain.ForeclosureListing, error) {
	var rows []models.ForeclosureListing
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("auction_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageError("listing foreclosures", err)
	}

	out := make([]domain.ForeclosureListing, 0, len(rows))
	for _, m := range rows {
		out = append(out, foreclosureToDomain(m))
	}
	return out, nil
}

func foreclosureToDomain(m models.ForeclosureListing) domain.ForeclosureListing {
	return domain.ForeclosureListing{
		ID:          m.ID,
		Title:       m.Title,
		Address:     m.Address,
		City:        m.City,
		State:       m.State,
		StartingBid: m.StartingBid,
		AuctionDate: m.AuctionDate,
		Active:      m.Active,
		CreatedAt:   m.CDate,
	}
}
