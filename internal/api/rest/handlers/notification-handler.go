package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/matriculausa/payment_service/internal/services"
	"github.com/matriculausa/payment_service/pkg/utils"
)

type NotificationHandler struct {
	svc services.NotificationService
}

func NewNotificationHandler(svc services.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// POST /api/notifications/dispatch
//
// Replaying the same idempotency key returns 200, same as the first call.
func (h *NotificationHandler) Dispatch(ctx *fiber.Ctx) error {
	var requestBody dto.DispatchNotificationRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if requestBody.IdempotencyKey == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "idempotency_key is required")
	}
	if requestBody.Target != "student" && requestBody.Target != "university" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "target must be student or university")
	}

	eventType := requestBody.EventType
	if eventType == "" {
		eventType = dto.EventDocumentRequested
	}

	if err := h.svc.Dispatch(eventType, requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to dispatch notification")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"dispatched": true,
	})
}
