package repository

import (
	"errors"
	"log"
	"time"

	"github.com/matriculausa/payment_service/internal/domain"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	CreatePayment(payment *domain.Payment) (*domain.Payment, error)
	FindBySessionID(sessionID string) (*domain.Payment, error)
	FindByID(paymentID uint) (*domain.Payment, error)

	// MarkPaid flips pending -> paid in a single conditional UPDATE and
	// reports whether this call made the transition. A second delivery
	// (verifier or webhook) sees false and must not re-apply side effects.
	MarkPaid(paymentID uint, paymentIntentID string) (bool, error)
	MarkStatus(paymentID uint, to domain.PaymentStatus) error

	ListByStudent(studentID uint, limit, offset int) ([]domain.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreatePayment(payment *domain.Payment) (*domain.Payment, error) {
	if payment == nil {
		return nil, errors.New("nil payment")
	}

	if err := r.db.Create(payment).Error; err != nil {
		log.Printf("create payment error: %v", err)
		return nil, errors.New("failed to create payment")
	}

	return payment, nil
}

func (r *paymentRepository) FindBySessionID(sessionID string) (*domain.Payment, error) {
	payment := &domain.Payment{}

	if err := r.db.Where("stripe_session_id = ?", sessionID).First(payment).Error; err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *paymentRepository) FindByID(paymentID uint) (*domain.Payment, error) {
	payment := &domain.Payment{}

	if err := r.db.First(payment, paymentID).Error; err != nil {
		return nil, err
	}

	return payment, nil
}

func (r *paymentRepository) MarkPaid(paymentID uint, paymentIntentID string) (bool, error) {
	now := time.Now()

	res := r.db.Model(&domain.Payment{}).
		Where("id = ? AND status = ?", paymentID, domain.PaymentStatusPending).
		Updates(map[string]any{
			"status":                   domain.PaymentStatusPaid,
			"stripe_payment_intent_id": paymentIntentID,
			"paid_at":                  now,
		})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (r *paymentRepository) MarkStatus(paymentID uint, to domain.PaymentStatus) error {
	res := r.db.Model(&domain.Payment{}).
		Where("id = ? AND status = ?", paymentID, domain.PaymentStatusPending).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentRepository) ListByStudent(studentID uint, limit, offset int) ([]domain.Payment, error) {
	var payments []domain.Payment

	err := r.db.Where("student_id = ?", studentID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
