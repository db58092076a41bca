package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matriculausa/payment_service/internal/clients/stripeapi"
	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/matriculausa/payment_service/internal/repository"
	"github.com/matriculausa/payment_service/pkg/utils"
	"gorm.io/gorm"
)

const stripeCouponPrefix = "MATR_"

// ValidationResult carries soft business failures (Success=false) without
// an error; hard errors (db/stripe down) come back as error.
type ValidationResult struct {
	Success        bool
	Reason         string
	DiscountCents  int64
	FinalCents     int64
	StripeCouponID string
	CouponCode     string
	IsAffiliate    bool
}

type CouponService interface {
	Validate(userID uint, rawCode string, feeType domain.FeeType, purchaseAmount float64) (*ValidationResult, error)
	RemoveProvisionalUsage(userID uint, rawCode string, feeType domain.FeeType) (int64, error)

	// ConfirmUsage is called by the session verifier once a payment is
	// confirmed paid; it promotes the provisional row to a confirmed one.
	ConfirmUsage(userID uint, rawCode string, feeType domain.FeeType, paymentID string) error
}

type couponService struct {
	couponRepo    repository.CouponRepository
	usageRepo     repository.CouponUsageRepository
	affiliateRepo repository.AffiliateRepository
	stripe        stripeapi.Client
}

func NewCouponService(
	couponRepo repository.CouponRepository,
	usageRepo repository.CouponUsageRepository,
	affiliateRepo repository.AffiliateRepository,
	stripe stripeapi.Client,
) CouponService {
	return &couponService{
		couponRepo:    couponRepo,
		usageRepo:     usageRepo,
		affiliateRepo: affiliateRepo,
		stripe:        stripe,
	}
}

func softFail(reason string) *ValidationResult {
	return &ValidationResult{Success: false, Reason: reason}
}

func (s *couponService) Validate(userID uint, rawCode string, feeType domain.FeeType, purchaseAmount float64) (*ValidationResult, error) {
	code := utils.NormalizeCode(rawCode)
	if code == "" {
		return softFail("invalid code"), nil
	}
	if purchaseAmount <= 0 {
		return softFail("invalid purchase amount"), nil
	}
	amountCents := utils.ToCents(purchaseAmount)

	coupon, err := s.couponRepo.FindPromotionalByCode(code)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// not a promotional code, try affiliate codes
		return s.validateAffiliate(userID, code, feeType, amountCents)
	}

	if !coupon.Active {
		return softFail("coupon is not active"), nil
	}
	if coupon.ExpiresAt != nil && time.Now().After(*coupon.ExpiresAt) {
		return softFail("coupon has expired"), nil
	}
	if !couponAllowsFeeType(coupon, feeType) {
		return softFail("coupon not valid for this fee type"), nil
	}

	used, err := s.usageRepo.CountConfirmed(userID, coupon.ID, feeType)
	if err != nil {
		return nil, err
	}
	if used >= int64(coupon.MaxUsesPerUser) {
		return softFail("coupon already used"), nil
	}

	discountCents := computeDiscountCents(coupon, amountCents)
	if discountCents <= 0 {
		return softFail("coupon has no discount for this amount"), nil
	}

	stripeCouponID, err := s.ensureStripeMirror(code, discountCents)
	if err != nil {
		return nil, fmt.Errorf("stripe coupon provisioning failed: %w", err)
	}

	if coupon.StripeCouponID == nil || *coupon.StripeCouponID != stripeCouponID {
		coupon.StripeCouponID = &stripeCouponID
		if err := s.couponRepo.SavePromotional(coupon); err != nil {
			log.Printf("save stripe coupon id error: %v", err)
		}
	}

	// provisional usage: "user typed a valid code but has not paid yet"
	usage := &domain.CouponUsage{
		UserID:        userID,
		CouponID:      coupon.ID,
		FeeType:       feeType,
		PaymentID:     domain.ValidationPaymentIDPrefix + uuid.NewString(),
		IsValidation:  true,
		AmountCents:   amountCents,
		DiscountCents: discountCents,
	}
	if err := s.usageRepo.CreateUsage(usage); err != nil {
		return nil, err
	}

	return &ValidationResult{
		Success:        true,
		DiscountCents:  discountCents,
		FinalCents:     amountCents - discountCents,
		StripeCouponID: stripeCouponID,
		CouponCode:     code,
	}, nil
}

func (s *couponService) validateAffiliate(userID uint, code string, feeType domain.FeeType, amountCents int64) (*ValidationResult, error) {
	affiliateCode, err := s.affiliateRepo.FindCodeByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return softFail("invalid code"), nil
		}
		return nil, err
	}

	if !affiliateCode.Active {
		return softFail("code is not active"), nil
	}

	discountCents := affiliateCode.DiscountCents
	if discountCents > amountCents {
		discountCents = amountCents
	}
	if discountCents <= 0 {
		return softFail("code has no discount for this amount"), nil
	}

	stripeCouponID, err := s.ensureStripeMirror(code, discountCents)
	if err != nil {
		return nil, fmt.Errorf("stripe coupon provisioning failed: %w", err)
	}

	return &ValidationResult{
		Success:        true,
		DiscountCents:  discountCents,
		FinalCents:     amountCents - discountCents,
		StripeCouponID: stripeCouponID,
		CouponCode:     code,
		IsAffiliate:    true,
	}, nil
}

// ensureStripeMirror lazily provisions the Stripe coupon MATR_<CODE> plus a
// promotion code carrying the literal code text. Both calls are idempotent.
func (s *couponService) ensureStripeMirror(code string, discountCents int64) (string, error) {
	stripeCouponID := stripeCouponPrefix + code

	if _, err := s.stripe.EnsureCoupon(stripeCouponID, discountCents, "usd"); err != nil {
		return "", err
	}
	if _, err := s.stripe.EnsurePromotionCode(stripeCouponID, code); err != nil {
		return "", err
	}

	return stripeCouponID, nil
}

func (s *couponService) RemoveProvisionalUsage(userID uint, rawCode string, feeType domain.FeeType) (int64, error) {
	code := utils.NormalizeCode(rawCode)

	coupon, err := s.couponRepo.FindPromotionalByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil // affiliate codes have no provisional rows
		}
		return 0, err
	}

	return s.usageRepo.DeleteProvisional(userID, coupon.ID, feeType)
}

func (s *couponService) ConfirmUsage(userID uint, rawCode string, feeType domain.FeeType, paymentID string) error {
	code := utils.NormalizeCode(rawCode)

	coupon, err := s.couponRepo.FindPromotionalByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	err = s.usageRepo.FinalizeProvisional(userID, coupon.ID, feeType, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// no provisional row left (removed or already finalized), so record
		// the confirmed usage directly to keep the per-user limit counting it
		return s.usageRepo.CreateUsage(&domain.CouponUsage{
			UserID:       userID,
			CouponID:     coupon.ID,
			FeeType:      feeType,
			PaymentID:    paymentID,
			IsValidation: false,
		})
	}
	return err
}

func couponAllowsFeeType(coupon *domain.PromotionalCoupon, feeType domain.FeeType) bool {
	if coupon.AllowedFeeTypes == nil || strings.TrimSpace(*coupon.AllowedFeeTypes) == "" {
		return true
	}
	for _, allowed := range strings.Split(*coupon.AllowedFeeTypes, ",") {
		if domain.FeeType(strings.TrimSpace(allowed)) == feeType {
			return true
		}
	}
	return false
}

func computeDiscountCents(coupon *domain.PromotionalCoupon, amountCents int64) int64 {
	var discount int64
	switch coupon.DiscountType {
	case domain.DiscountPercentage:
		discount = int64(math.Round(float64(amountCents) * coupon.DiscountValue / 100))
	default:
		discount = utils.ToCents(coupon.DiscountValue)
	}

	if discount > amountCents {
		discount = amountCents
	}
	return discount
}
