package repository

import (
	"errors"
	"time"

	"github.com/matriculausa/payment_service/internal/domain"
	"gorm.io/gorm"
)

type ZelleRepository interface {
	CreateZellePayment(p *domain.ZellePayment) (*domain.ZellePayment, error)
	FindByID(zellePaymentID uint) (*domain.ZellePayment, error)
	ListByStatus(status domain.ZelleStatus, limit, offset int) ([]domain.ZellePayment, error)

	// Transition moves from -> to and appends a history row in one
	// transaction. The WHERE guard on the current status makes concurrent
	// reviews race-safe: the loser gets ErrRecordNotFound.
	Transition(zellePaymentID uint, from, to domain.ZelleStatus, changedBy *uint, reason *string) error
}

type zelleRepository struct {
	db *gorm.DB
}

func NewZelleRepository(db *gorm.DB) ZelleRepository {
	return &zelleRepository{db: db}
}

func (r *zelleRepository) CreateZellePayment(p *domain.ZellePayment) (*domain.ZellePayment, error) {
	if p == nil {
		return nil, errors.New("nil zelle payment")
	}

	if err := r.db.Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *zelleRepository) FindByID(zellePaymentID uint) (*domain.ZellePayment, error) {
	payment := &domain.ZellePayment{}

	err := r.db.
		Preload("History").
		First(payment, zellePaymentID).Error
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *zelleRepository) ListByStatus(status domain.ZelleStatus, limit, offset int) ([]domain.ZellePayment, error) {
	var payments []domain.ZellePayment

	err := r.db.Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *zelleRepository) Transition(zellePaymentID uint, from, to domain.ZelleStatus, changedBy *uint, reason *string) error {
	now := time.Now()

	return r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status": to,
		}
		if to == domain.ZelleStatusApproved || to == domain.ZelleStatusRejected {
			updates["reviewed_by"] = changedBy
			updates["reviewed_at"] = now
		}

		res := tx.Model(&domain.ZellePayment{}).
			Where("id = ? AND status = ?", zellePaymentID, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		history := &domain.ZellePaymentHistory{
			ZellePaymentID: zellePaymentID,
			FromStatus:     from,
			ToStatus:       to,
			ChangedBy:      changedBy,
			Reason:         reason,
		}
		return tx.Create(history).Error
	})
}
