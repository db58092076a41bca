package services

import (
	"encoding/json"
	"testing"

	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	published [][]byte
	err       error
}

func (p *fakeProducer) PublishMessage(key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, value)
	return nil
}

func TestDispatchStudentNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	producer := &fakeProducer{}
	svc := NewNotificationService(repo, producer)

	err := svc.Dispatch(dto.EventPaymentReceived, dto.DispatchNotificationRequest{
		Target:         "student",
		TargetID:       7,
		Title:          "Payment received",
		Body:           "Your payment was received.",
		IdempotencyKey: "payment_paid:1",
		Email:          "student@example.com",
	})
	require.NoError(t, err)
	assert.True(t, repo.studentKeys["payment_paid:1"])

	require.Len(t, producer.published, 1)
	var event dto.NotificationEvent
	require.NoError(t, json.Unmarshal(producer.published[0], &event))
	assert.Equal(t, dto.EventPaymentReceived, event.Type)
	assert.Equal(t, "student@example.com", event.Email)
}

func TestDispatchDuplicateKeyIsSuccess(t *testing.T) {
	repo := newFakeNotificationRepo()
	producer := &fakeProducer{}
	svc := NewNotificationService(repo, producer)

	input := dto.DispatchNotificationRequest{
		Target:         "university",
		TargetID:       12,
		Title:          "New enrollment payment",
		IdempotencyKey: "payment_paid:1",
	}
	require.NoError(t, svc.Dispatch(dto.EventPaymentReceived, input))
	require.NoError(t, svc.Dispatch(dto.EventPaymentReceived, input))
}

func TestDispatchValidation(t *testing.T) {
	svc := NewNotificationService(newFakeNotificationRepo(), &fakeProducer{})

	err := svc.Dispatch(dto.EventPaymentReceived, dto.DispatchNotificationRequest{
		Target: "student", TargetID: 7, Title: "x",
	})
	require.Error(t, err) // missing idempotency key

	err = svc.Dispatch(dto.EventPaymentReceived, dto.DispatchNotificationRequest{
		Target: "vendor", TargetID: 7, Title: "x", IdempotencyKey: "k",
	})
	require.Error(t, err) // unknown target
}

func TestDispatchWithoutEmailSkipsPublish(t *testing.T) {
	producer := &fakeProducer{}
	svc := NewNotificationService(newFakeNotificationRepo(), producer)

	err := svc.Dispatch(dto.EventZelleApproved, dto.DispatchNotificationRequest{
		Target:         "student",
		TargetID:       7,
		Title:          "Zelle payment approved",
		IdempotencyKey: "zelle_approved:1",
	})
	require.NoError(t, err)
	assert.Empty(t, producer.published)
}

func TestDispatchPublishFailureIsNotPropagated(t *testing.T) {
	producer := &fakeProducer{err: assert.AnError}
	svc := NewNotificationService(newFakeNotificationRepo(), producer)

	err := svc.Dispatch(dto.EventPaymentReceived, dto.DispatchNotificationRequest{
		Target:         "student",
		TargetID:       7,
		Title:          "Payment received",
		IdempotencyKey: "payment_paid:2",
		Email:          "student@example.com",
	})
	require.NoError(t, err)
}
