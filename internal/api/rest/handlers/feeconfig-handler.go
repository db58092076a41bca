package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/repository"
	"github.com/matriculausa/payment_service/pkg/utils"
)

type FeeConfigHandler struct {
	repo repository.FeeConfigRepository
}

func NewFeeConfigHandler(repo repository.FeeConfigRepository) *FeeConfigHandler {
	return &FeeConfigHandler{repo: repo}
}

type feeOverridePayload struct {
	FeeType string  `json:"fee_type"`
	Amount  float64 `json:"amount"`
	Active  bool    `json:"active"`
}

// GET /api/fees/universities/:id
// Returns the effective amount per fee type: the active override when one
// exists, otherwise the package default.
func (h *FeeConfigHandler) List(ctx *fiber.Ctx) error {
	universityID, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid university id")
	}

	overrides, err := h.repo.ListByUniversity(uint(universityID))
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to list fee configuration")
	}

	active := make(map[domain.FeeType]int64, len(overrides))
	for _, o := range overrides {
		if o.Active {
			active[o.FeeType] = o.AmountCentsOverride
		}
	}

	fees := make([]fiber.Map, 0, len(domain.DefaultFeeAmounts))
	for _, feeType := range domain.AllFeeTypes {
		cents, overridden := active[feeType]
		if !overridden {
			cents = domain.DefaultFeeAmounts[feeType]
		}
		fees = append(fees, fiber.Map{
			"fee_type":   feeType,
			"amount":     utils.FromCents(cents),
			"overridden": overridden,
		})
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, fees)
}

// PUT /api/fees/universities/:id  (admin)
func (h *FeeConfigHandler) Upsert(ctx *fiber.Ctx) error {
	universityID, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid university id")
	}

	var requestBody feeOverridePayload
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	feeType, valid := domain.ParseFeeType(requestBody.FeeType)
	if !valid {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "invalid fee_type")
	}
	if requestBody.Amount <= 0 {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "amount must be positive")
	}

	cfg := &domain.UniversityFeeConfiguration{
		UniversityID:        uint(universityID),
		FeeType:             feeType,
		AmountCentsOverride: utils.ToCents(requestBody.Amount),
		Active:              requestBody.Active,
	}
	if err := h.repo.Upsert(cfg); err != nil {
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "failed to save fee configuration")
	}

	return utils.ResponseSuccess(ctx, fiber.StatusOK, cfg)
}
