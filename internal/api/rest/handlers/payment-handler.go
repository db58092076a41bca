package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/matriculausa/payment_service/internal/api/rest/middleware"
	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/matriculausa/payment_service/internal/services"
	"github.com/matriculausa/payment_service/pkg/utils"
)

type PaymentHandler struct {
	svc services.CheckoutService
}

func NewPaymentHandler(svc services.CheckoutService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// POST /api/payments/checkout
func (h *PaymentHandler) CreateCheckout(ctx *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.CreateCheckoutRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	resp, err := h.svc.CreateSession(&userID, requestBody)
	if err != nil {
		return h.checkoutError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, resp)
}

// POST /api/payments/checkout/eb3
// EB-3 flow accepts unauthenticated guests; mounted before the auth
// middleware. Requires guest_email and guest_name in the body.
func (h *PaymentHandler) CreateGuestCheckout(ctx *fiber.Ctx) error {
	var requestBody dto.CreateCheckoutRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if strings.TrimSpace(requestBody.GuestEmail) == "" || strings.TrimSpace(requestBody.GuestName) == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "guest_email and guest_name are required")
	}

	resp, err := h.svc.CreateSession(nil, requestBody)
	if err != nil {
		return h.checkoutError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, resp)
}

// POST /api/payments/verify
func (h *PaymentHandler) VerifySession(ctx *fiber.Ctx) error {
	var requestBody dto.VerifySessionRequest
	if err := ctx.BodyParser(&requestBody); err != nil || strings.TrimSpace(requestBody.SessionID) == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "session_id is required")
	}

	resp, err := h.svc.VerifySession(requestBody.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) || errors.Is(err, services.ErrPaymentNotFound) {
			return utils.ResponseError(ctx, fiber.StatusNotFound, err.Error())
		}
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to verify session")
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, resp)
}

func (h *PaymentHandler) checkoutError(ctx *fiber.Ctx, err error) error {
	msg := err.Error()
	// input problems are the caller's fault; everything else is a
	// generic 500 so upstream detail never leaks
	if strings.HasPrefix(msg, "unknown fee_type") ||
		strings.Contains(msg, "required") {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, msg)
	}
	return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to create checkout session")
}
