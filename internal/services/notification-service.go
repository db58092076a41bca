package services

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/matriculausa/payment_service/internal/helper"
	"github.com/matriculausa/payment_service/internal/interfaces"
	"github.com/matriculausa/payment_service/internal/repository"
)

type NotificationService interface {
	// Dispatch inserts the in-app notification and then publishes the
	// event for the mail worker. The same idempotency key twice results
	// in one stored row and one published event.
	Dispatch(eventType string, input dto.DispatchNotificationRequest) error
}

type notificationService struct {
	repo     repository.NotificationRepository
	producer interfaces.ProducerHandler
}

func NewNotificationService(
	repo repository.NotificationRepository,
	producer interfaces.ProducerHandler,
) NotificationService {
	return &notificationService{
		repo:     repo,
		producer: producer,
	}
}

func (s *notificationService) Dispatch(eventType string, input dto.DispatchNotificationRequest) error {
	if strings.TrimSpace(input.IdempotencyKey) == "" {
		return errors.New("idempotency_key is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return errors.New("title is required")
	}

	var err error
	switch strings.ToLower(strings.TrimSpace(input.Target)) {
	case "student":
		err = s.repo.CreateStudentNotification(&domain.StudentNotification{
			StudentID:      input.TargetID,
			Title:          input.Title,
			Body:           input.Body,
			Link:           input.Link,
			IdempotencyKey: input.IdempotencyKey,
		})
	case "university":
		err = s.repo.CreateUniversityNotification(&domain.UniversityNotification{
			UniversityID:   input.TargetID,
			Title:          input.Title,
			Body:           input.Body,
			Link:           input.Link,
			IdempotencyKey: input.IdempotencyKey,
		})
	default:
		return errors.New("invalid target")
	}

	if err != nil {
		if helper.IsDuplicateNotification(err) {
			// retried delivery of the same business event
			log.Printf("[NOTIFY] duplicate key=%s - already dispatched", input.IdempotencyKey)
			return nil
		}
		return err
	}

	// email is best-effort: the in-app row is already visible even if the
	// worker never sends
	if s.producer != nil && input.Email != "" {
		event := dto.NotificationEvent{
			Type:  eventType,
			Email: input.Email,
			Title: input.Title,
			Body:  input.Body,
		}
		if input.Link != nil {
			event.Link = *input.Link
		}
		payload, merr := json.Marshal(event)
		if merr == nil {
			_ = s.producer.PublishMessage([]byte(eventType), payload)
		}
	}

	return nil
}
