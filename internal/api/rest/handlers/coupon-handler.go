package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/matriculausa/payment_service/internal/api/rest/middleware"
	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/dto"
	"github.com/matriculausa/payment_service/internal/services"
	"github.com/matriculausa/payment_service/pkg/utils"
)

type CouponHandler struct {
	svc services.CouponService
}

func NewCouponHandler(svc services.CouponService) *CouponHandler {
	return &CouponHandler{svc: svc}
}

// POST /api/coupons/validate
//
// Business failures (invalid code, already used, wrong fee type) are 200
// with success:false so the client can render them inline.
func (h *CouponHandler) Validate(ctx *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.ValidateCouponRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	feeType, valid := domain.ParseFeeType(requestBody.FeeType)
	if !valid {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid fee_type")
	}

	result, err := h.svc.Validate(userID, requestBody.Code, feeType, requestBody.PurchaseAmount)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to validate coupon")
	}

	if !result.Success {
		return ctx.Status(fiber.StatusOK).JSON(dto.ValidateCouponResponse{
			Success: false,
			Error:   result.Reason,
		})
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.ValidateCouponResponse{
		Success:        true,
		DiscountAmount: utils.FromCents(result.DiscountCents),
		FinalAmount:    utils.FromCents(result.FinalCents),
		StripeCouponID: result.StripeCouponID,
	})
}

// DELETE /api/coupons/usage
// Removes only the provisional validation row; confirmed usage rows are
// never deleted here.
func (h *CouponHandler) RemoveUsage(ctx *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
	}

	var requestBody dto.RemoveCouponUsageRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	feeType, valid := domain.ParseFeeType(requestBody.FeeType)
	if !valid {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid fee_type")
	}

	removed, err := h.svc.RemoveProvisionalUsage(userID, requestBody.Code, feeType)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to remove coupon usage")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fiber.Map{
		"removed": removed,
	})
}
