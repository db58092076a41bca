package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/matriculausa/payment_service/internal/repository"
	"github.com/matriculausa/payment_service/pkg/utils"
	"gorm.io/gorm"
)

var (
	ErrZellePaymentNotFound   = errors.New("zelle payment not found")
	ErrZelleInvalidTransition = errors.New("invalid status transition")
	ErrZelleCodeMismatch      = errors.New("confirmation code does not match")
)

type ZelleService interface {
	Create(studentID uint, input dto.CreateZellePaymentRequest) (*domain.ZellePayment, error)
	ValidateCode(zellePaymentID uint, adminID uint, confirmationCode string) (*domain.ZellePayment, error)
	Review(zellePaymentID uint, adminID uint, input dto.ReviewZellePaymentRequest) (*domain.ZellePayment, error)
	ListPending(limit, offset int) ([]domain.ZellePayment, error)
}

type zelleService struct {
	repo      repository.ZelleRepository
	notifySvc NotificationService
}

func NewZelleService(repo repository.ZelleRepository, notifySvc NotificationService) ZelleService {
	return &zelleService{
		repo:      repo,
		notifySvc: notifySvc,
	}
}

func (s *zelleService) Create(studentID uint, input dto.CreateZellePaymentRequest) (*domain.ZellePayment, error) {
	feeType, ok := domain.ParseFeeType(strings.TrimSpace(input.FeeType))
	if !ok {
		return nil, fmt.Errorf("unknown fee_type %q", input.FeeType)
	}
	if input.Amount <= 0 {
		return nil, errors.New("amount must be positive")
	}
	code := utils.NormalizeCode(input.ConfirmationCode)
	if code == "" {
		return nil, errors.New("confirmation_code is required")
	}

	payment := &domain.ZellePayment{
		StudentID:        studentID,
		FeeType:          feeType,
		AmountCents:      utils.ToCents(input.Amount),
		ConfirmationCode: code,
		Status:           domain.ZelleStatusPendingReview,
	}
	return s.repo.CreateZellePayment(payment)
}

func (s *zelleService) ValidateCode(zellePaymentID uint, adminID uint, confirmationCode string) (*domain.ZellePayment, error) {
	payment, err := s.findPayment(zellePaymentID)
	if err != nil {
		return nil, err
	}

	if utils.NormalizeCode(confirmationCode) != payment.ConfirmationCode {
		return nil, ErrZelleCodeMismatch
	}

	if err := s.transition(payment, domain.ZelleStatusCodeValidated, &adminID, nil); err != nil {
		return nil, err
	}
	return s.findPayment(zellePaymentID)
}

func (s *zelleService) Review(zellePaymentID uint, adminID uint, input dto.ReviewZellePaymentRequest) (*domain.ZellePayment, error) {
	payment, err := s.findPayment(zellePaymentID)
	if err != nil {
		return nil, err
	}

	var next domain.ZelleStatus
	switch strings.ToLower(strings.TrimSpace(input.Decision)) {
	case "approve":
		next = domain.ZelleStatusApproved
	case "reject":
		next = domain.ZelleStatusRejected
	default:
		return nil, errors.New("decision must be approve or reject")
	}

	var reason *string
	if strings.TrimSpace(input.Reason) != "" {
		r := strings.TrimSpace(input.Reason)
		reason = &r
	}

	if err := s.transition(payment, next, &adminID, reason); err != nil {
		return nil, err
	}

	if next == domain.ZelleStatusApproved {
		// email is not known here; in-app notification only
		_ = s.notifySvc.Dispatch(dto.EventZelleApproved, dto.DispatchNotificationRequest{
			Target:         "student",
			TargetID:       payment.StudentID,
			Title:          "Zelle payment approved",
			Body:           fmt.Sprintf("Your Zelle payment of $%.2f was approved.", utils.FromCents(payment.AmountCents)),
			IdempotencyKey: fmt.Sprintf("zelle_approved:%d", payment.ID),
		})
	}

	return s.findPayment(zellePaymentID)
}

func (s *zelleService) ListPending(limit, offset int) ([]domain.ZellePayment, error) {
	return s.repo.ListByStatus(domain.ZelleStatusPendingReview, limit, offset)
}

func (s *zelleService) findPayment(id uint) (*domain.ZellePayment, error) {
	payment, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrZellePaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *zelleService) transition(payment *domain.ZellePayment, next domain.ZelleStatus, changedBy *uint, reason *string) error {
	if !payment.Status.CanTransitionTo(next) {
		return ErrZelleInvalidTransition
	}

	err := s.repo.Transition(payment.ID, payment.Status, next, changedBy, reason)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// concurrent review moved it first
		return ErrZelleInvalidTransition
	}
	return err
}
