package services

import (
	"strings"
	"testing"
	"time"

	"github.com/matriculausa/payment_service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCouponFixture(coupons ...*domain.PromotionalCoupon) (CouponService, *fakeCouponRepo, *fakeUsageRepo, *fakeStripeClient) {
	couponRepo := newFakeCouponRepo(coupons...)
	usageRepo := &fakeUsageRepo{}
	stripeClient := &fakeStripeClient{}
	svc := NewCouponService(couponRepo, usageRepo, newFakeAffiliateRepo(), stripeClient)
	return svc, couponRepo, usageRepo, stripeClient
}

func TestValidateFixedDiscount(t *testing.T) {
	svc, _, usageRepo, stripeClient := newCouponFixture(&domain.PromotionalCoupon{
		ID:             1,
		Code:           "SAVE50",
		DiscountType:   domain.DiscountFixed,
		DiscountValue:  50,
		Active:         true,
		MaxUsesPerUser: 1,
	})

	result, err := svc.Validate(7, "save50", domain.FeeSelectionProcess, 350)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, int64(5000), result.DiscountCents)
	assert.Equal(t, int64(30000), result.FinalCents)
	assert.Equal(t, "MATR_SAVE50", result.StripeCouponID)
	assert.Equal(t, "SAVE50", result.CouponCode)

	// stripe mirror provisioned once
	assert.Equal(t, 1, stripeClient.couponCalls)
	assert.Equal(t, 1, stripeClient.promoCalls)

	// provisional usage recorded, not confirmed
	require.Len(t, usageRepo.usages, 1)
	usage := usageRepo.usages[0]
	assert.True(t, usage.IsValidation)
	assert.True(t, strings.HasPrefix(usage.PaymentID, domain.ValidationPaymentIDPrefix))
	assert.Equal(t, int64(5000), usage.DiscountCents)
}

func TestValidatePercentageDiscount(t *testing.T) {
	svc, _, _, _ := newCouponFixture(&domain.PromotionalCoupon{
		ID:             1,
		Code:           "HALF",
		DiscountType:   domain.DiscountPercentage,
		DiscountValue:  50,
		Active:         true,
		MaxUsesPerUser: 1,
	})

	result, err := svc.Validate(7, "HALF", domain.FeeApplication, 350)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, int64(17500), result.DiscountCents)
	assert.Equal(t, int64(17500), result.FinalCents)
}

func TestValidateUnknownCode(t *testing.T) {
	svc, _, usageRepo, stripeClient := newCouponFixture()

	result, err := svc.Validate(7, "NOPE", domain.FeeApplication, 100)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "invalid code", result.Reason)
	assert.Empty(t, usageRepo.usages)
	assert.Zero(t, stripeClient.couponCalls)
}

func TestValidateInactiveAndExpired(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	svc, _, _, _ := newCouponFixture(
		&domain.PromotionalCoupon{ID: 1, Code: "OFF", Active: false, DiscountValue: 10, MaxUsesPerUser: 1},
		&domain.PromotionalCoupon{ID: 2, Code: "OLD", Active: true, ExpiresAt: &past, DiscountValue: 10, MaxUsesPerUser: 1},
	)

	result, err := svc.Validate(7, "OFF", domain.FeeApplication, 100)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "coupon is not active", result.Reason)

	result, err = svc.Validate(7, "OLD", domain.FeeApplication, 100)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "coupon has expired", result.Reason)
}

func TestValidateFeeTypeRestriction(t *testing.T) {
	allowed := "scholarship_fee, enrollment_fee"
	svc, _, _, _ := newCouponFixture(&domain.PromotionalCoupon{
		ID:              1,
		Code:            "SCHOLAR",
		DiscountValue:   25,
		Active:          true,
		MaxUsesPerUser:  1,
		AllowedFeeTypes: &allowed,
	})

	result, err := svc.Validate(7, "SCHOLAR", domain.FeeApplication, 100)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "coupon not valid for this fee type", result.Reason)

	result, err = svc.Validate(7, "SCHOLAR", domain.FeeScholarship, 100)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestValidateUsageLimit(t *testing.T) {
	svc, _, usageRepo, _ := newCouponFixture(&domain.PromotionalCoupon{
		ID:             1,
		Code:           "ONCE",
		DiscountValue:  10,
		Active:         true,
		MaxUsesPerUser: 1,
	})

	// a confirmed usage already exists for this user and fee type
	require.NoError(t, usageRepo.CreateUsage(&domain.CouponUsage{
		UserID: 7, CouponID: 1, FeeType: domain.FeeApplication, PaymentID: "42", IsValidation: false,
	}))

	result, err := svc.Validate(7, "ONCE", domain.FeeApplication, 100)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "coupon already used", result.Reason)

	// a leftover provisional row for another fee type does not count
	require.NoError(t, usageRepo.CreateUsage(&domain.CouponUsage{
		UserID: 7, CouponID: 1, FeeType: domain.FeeScholarship,
		PaymentID: domain.ValidationPaymentIDPrefix + "x", IsValidation: true,
	}))
	result, err = svc.Validate(7, "ONCE", domain.FeeScholarship, 100)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestValidateDiscountClampedToAmount(t *testing.T) {
	svc, _, _, _ := newCouponFixture(&domain.PromotionalCoupon{
		ID:             1,
		Code:           "BIG",
		DiscountType:   domain.DiscountFixed,
		DiscountValue:  500,
		Active:         true,
		MaxUsesPerUser: 1,
	})

	result, err := svc.Validate(7, "BIG", domain.FeeApplication, 100)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, int64(10000), result.DiscountCents)
	assert.Equal(t, int64(0), result.FinalCents)
}

func TestValidateAffiliateCode(t *testing.T) {
	couponRepo := newFakeCouponRepo()
	usageRepo := &fakeUsageRepo{}
	stripeClient := &fakeStripeClient{}
	affiliateRepo := newFakeAffiliateRepo(&domain.AffiliateCode{
		ID: 3, Code: "MATHEUS", ReferrerUserID: 99, Active: true, DiscountCents: 5000,
	})
	svc := NewCouponService(couponRepo, usageRepo, affiliateRepo, stripeClient)

	result, err := svc.Validate(7, "matheus", domain.FeeSelectionProcess, 350)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, result.IsAffiliate)
	assert.Equal(t, int64(5000), result.DiscountCents)
	assert.Equal(t, int64(30000), result.FinalCents)

	// affiliate validations do not create provisional usage rows
	assert.Empty(t, usageRepo.usages)
}

func TestValidateStripeFailureIsHardError(t *testing.T) {
	couponRepo := newFakeCouponRepo(&domain.PromotionalCoupon{
		ID: 1, Code: "SAVE50", DiscountValue: 50, Active: true, MaxUsesPerUser: 1,
	})
	usageRepo := &fakeUsageRepo{}
	stripeClient := &fakeStripeClient{ensureCouponErr: assert.AnError}
	svc := NewCouponService(couponRepo, usageRepo, newFakeAffiliateRepo(), stripeClient)

	_, err := svc.Validate(7, "SAVE50", domain.FeeApplication, 350)
	require.Error(t, err)
	assert.Empty(t, usageRepo.usages)
}

func TestRemoveProvisionalUsageLeavesConfirmedRows(t *testing.T) {
	svc, _, usageRepo, _ := newCouponFixture(&domain.PromotionalCoupon{
		ID: 1, Code: "SAVE50", DiscountValue: 50, Active: true, MaxUsesPerUser: 2,
	})

	require.NoError(t, usageRepo.CreateUsage(&domain.CouponUsage{
		UserID: 7, CouponID: 1, FeeType: domain.FeeApplication,
		PaymentID: "41", IsValidation: false,
	}))

	_, err := svc.Validate(7, "SAVE50", domain.FeeApplication, 350)
	require.NoError(t, err)
	require.Len(t, usageRepo.usages, 2)

	removed, err := svc.RemoveProvisionalUsage(7, "SAVE50", domain.FeeApplication)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	require.Len(t, usageRepo.usages, 1)
	assert.False(t, usageRepo.usages[0].IsValidation)
}

func TestConfirmUsagePromotesProvisionalRow(t *testing.T) {
	svc, _, usageRepo, _ := newCouponFixture(&domain.PromotionalCoupon{
		ID: 1, Code: "SAVE50", DiscountValue: 50, Active: true, MaxUsesPerUser: 1,
	})

	_, err := svc.Validate(7, "SAVE50", domain.FeeApplication, 350)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmUsage(7, "SAVE50", domain.FeeApplication, "4311"))

	require.Len(t, usageRepo.usages, 1)
	usage := usageRepo.usages[0]
	assert.False(t, usage.IsValidation)
	assert.Equal(t, "4311", usage.PaymentID)
}

func TestConfirmUsageWithoutProvisionalRow(t *testing.T) {
	svc, _, usageRepo, _ := newCouponFixture(&domain.PromotionalCoupon{
		ID: 1, Code: "SAVE50", DiscountValue: 50, Active: true, MaxUsesPerUser: 1,
	})

	require.NoError(t, svc.ConfirmUsage(7, "SAVE50", domain.FeeApplication, "4311"))

	require.Len(t, usageRepo.usages, 1)
	assert.False(t, usageRepo.usages[0].IsValidation)
	assert.Equal(t, "4311", usageRepo.usages[0].PaymentID)
}

func TestValidateStoresStripeCouponID(t *testing.T) {
	coupon := &domain.PromotionalCoupon{
		ID: 1, Code: "SAVE50", DiscountValue: 50, Active: true, MaxUsesPerUser: 5,
	}
	svc, couponRepo, _, _ := newCouponFixture(coupon)

	_, err := svc.Validate(7, "SAVE50", domain.FeeApplication, 350)
	require.NoError(t, err)
	require.NotNil(t, coupon.StripeCouponID)
	assert.Equal(t, "MATR_SAVE50", *coupon.StripeCouponID)
	assert.Equal(t, 1, couponRepo.saved)

	// second validation reuses the stored id without another save
	_, err = svc.Validate(8, "SAVE50", domain.FeeApplication, 350)
	require.NoError(t, err)
	assert.Equal(t, 1, couponRepo.saved)
}
