package repository

import (
	"errors"

	"github.com/matriculausa/payment_service/internal/domain"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateStudentNotification(n *domain.StudentNotification) error
	CreateUniversityNotification(n *domain.UniversityNotification) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateStudentNotification(n *domain.StudentNotification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	return r.db.Create(n).Error
}

func (r *notificationRepository) CreateUniversityNotification(n *domain.UniversityNotification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	return r.db.Create(n).Error
}
