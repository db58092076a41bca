package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/matriculausa/payment_service/internal/api/rest/middleware"
	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/matriculausa/payment_service/internal/services"
	"github.com/matriculausa/payment_service/pkg/utils"
)

type ZelleHandler struct {
	svc services.ZelleService
}

func NewZelleHandler(svc services.ZelleService) *ZelleHandler {
	return &ZelleHandler{svc: svc}
}

// POST /api/zelle/payments
func (h *ZelleHandler) Create(ctx *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.CreateZellePaymentRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	payment, err := h.svc.Create(userID, requestBody)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	}

	return utils.ResponseSuccess(ctx, fiber.StatusCreated, zelleResponse(payment))
}

// POST /api/zelle/payments/:id/validate-code  (admin)
func (h *ZelleHandler) ValidateCode(ctx *fiber.Ctx) error {
	adminID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	paymentID, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid payment id")
	}

	var requestBody dto.ValidateZelleCodeRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	payment, err := h.svc.ValidateCode(uint(paymentID), adminID, requestBody.ConfirmationCode)
	if err != nil {
		return h.zelleError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, zelleResponse(payment))
}

// POST /api/zelle/payments/:id/review  (admin)
func (h *ZelleHandler) Review(ctx *fiber.Ctx) error {
	adminID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	paymentID, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid payment id")
	}

	var requestBody dto.ReviewZellePaymentRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	payment, err := h.svc.Review(uint(paymentID), adminID, requestBody)
	if err != nil {
		return h.zelleError(ctx, err)
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, zelleResponse(payment))
}

// GET /api/zelle/payments/pending  (admin)
func (h *ZelleHandler) ListPending(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	payments, err := h.svc.ListPending(limit, offset)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to list zelle payments")
	}

	items := make([]fiber.Map, 0, len(payments))
	for i := range payments {
		items = append(items, zelleResponse(&payments[i]))
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, items)
}

func (h *ZelleHandler) zelleError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrZellePaymentNotFound):
		return utils.ResponseError(ctx, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrZelleInvalidTransition),
		errors.Is(err, services.ErrZelleCodeMismatch):
		return utils.ResponseError(ctx, fiber.StatusConflict, err.Error())
	default:
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to process zelle payment")
	}
}

func zelleResponse(p *domain.ZellePayment) fiber.Map {
	return fiber.Map{
		"id":         p.ID,
		"student_id": p.StudentID,
		"fee_type":   p.FeeType,
		"amount":     utils.FromCents(p.AmountCents),
		"status":     p.Status,
	}
}
