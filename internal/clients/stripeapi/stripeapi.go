// Package stripeapi wraps the Stripe SDK behind an interface so services
// can be tested with mocks.
package stripeapi

import (
	"errors"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/coupon"
	"github.com/stripe/stripe-go/v82/promotioncode"
)

type Client interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error)

	// EnsureCoupon and EnsurePromotionCode are idempotent: both look up
	// before creating, and creates carry an idempotency key derived from
	// the normalized code so concurrent first validations cannot race
	// into duplicates.
	EnsureCoupon(couponID string, amountOffCents int64, currency string) (*stripe.Coupon, error)
	EnsurePromotionCode(couponID, code string) (*stripe.PromotionCode, error)
}

type StripeClient struct{}

func New(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{}
}

func (c *StripeClient) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}

func (c *StripeClient) GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error) {
	return session.Get(sessionID, nil)
}

func (c *StripeClient) EnsureCoupon(couponID string, amountOffCents int64, currency string) (*stripe.Coupon, error) {
	if existing, err := coupon.Get(couponID, nil); err == nil {
		return existing, nil
	} else if !isResourceMissing(err) {
		return nil, err
	}

	params := &stripe.CouponParams{
		ID:        stripe.String(couponID),
		AmountOff: stripe.Int64(amountOffCents),
		Currency:  stripe.String(currency),
		Duration:  stripe.String(string(stripe.CouponDurationOnce)),
	}
	params.SetIdempotencyKey("coupon_" + couponID)
	return coupon.New(params)
}

func (c *StripeClient) EnsurePromotionCode(couponID, code string) (*stripe.PromotionCode, error) {
	listParams := &stripe.PromotionCodeListParams{
		Code: stripe.String(code),
	}
	listParams.Limit = stripe.Int64(1)
	iter := promotioncode.List(listParams)
	for iter.Next() {
		return iter.PromotionCode(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	params := &stripe.PromotionCodeParams{
		Coupon: stripe.String(couponID),
		Code:   stripe.String(code),
	}
	params.SetIdempotencyKey("promo_" + code)
	return promotioncode.New(params)
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Code == stripe.ErrorCodeResourceMissing
	}
	return false
}
