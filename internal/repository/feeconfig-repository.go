package repository

import (
	"github.com/matriculausa/payment_service/internal/domain"
	"gorm.io/gorm"
)

type FeeConfigRepository interface {
	FindOverride(universityID uint, feeType domain.FeeType) (*domain.UniversityFeeConfiguration, error)
	ListByUniversity(universityID uint) ([]domain.UniversityFeeConfiguration, error)
	Upsert(cfg *domain.UniversityFeeConfiguration) error
}

type feeConfigRepository struct {
	db *gorm.DB
}

func NewFeeConfigRepository(db *gorm.DB) FeeConfigRepository {
	return &feeConfigRepository{db: db}
}

func (r *feeConfigRepository) FindOverride(universityID uint, feeType domain.FeeType) (*domain.UniversityFeeConfiguration, error) {
	cfg := &domain.UniversityFeeConfiguration{}

	err := r.db.
		Where("university_id = ? AND fee_type = ? AND active = ?", universityID, feeType, true).
		First(cfg).Error
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *feeConfigRepository) ListByUniversity(universityID uint) ([]domain.UniversityFeeConfiguration, error) {
	var configs []domain.UniversityFeeConfiguration

	err := r.db.Where("university_id = ?", universityID).
		Order("fee_type ASC").
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}

func (r *feeConfigRepository) Upsert(cfg *domain.UniversityFeeConfiguration) error {
	existing := &domain.UniversityFeeConfiguration{}
	err := r.db.
		Where("university_id = ? AND fee_type = ?", cfg.UniversityID, cfg.FeeType).
		First(existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(cfg).Error
	}
	if err != nil {
		return err
	}

	existing.AmountCentsOverride = cfg.AmountCentsOverride
	existing.Active = cfg.Active
	return r.db.Save(existing).Error
}
