package dto

type CreateCheckoutRequest struct {
	FeeType        string            `json:"fee_type"`
	PriceID        string            `json:"price_id,omitempty"` // optional fixed Stripe price
	SuccessURL     string            `json:"success_url"`
	CancelURL      string            `json:"cancel_url"`
	UniversityID   *uint             `json:"university_id,omitempty"`
	ScholarshipIDs []string          `json:"scholarship_ids,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	StripeCouponID string            `json:"stripe_coupon_id,omitempty"` // from a prior /coupons/validate

	// EB-3 guest checkout only
	GuestEmail string `json:"guest_email,omitempty"`
	GuestName  string `json:"guest_name,omitempty"`
}

type CreateCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type VerifySessionRequest struct {
	SessionID string `json:"session_id"`
}

// Status values: "paid" (side effects applied on this call),
// "already_processed", "incomplete".
type VerifySessionResponse struct {
	Status    string `json:"status"`
	PaymentID uint   `json:"payment_id,omitempty"`
}
