package dto

type ValidateCouponRequest struct {
	Code           string  `json:"code"`
	FeeType        string  `json:"fee_type"`
	PurchaseAmount float64 `json:"purchase_amount"`
}

// Soft failures keep HTTP 200 with Success=false so the client shows an
// inline message instead of treating it as a transport error.
type ValidateCouponResponse struct {
	Success        bool    `json:"success"`
	Error          string  `json:"error,omitempty"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	FinalAmount    float64 `json:"final_amount,omitempty"`
	StripeCouponID string  `json:"stripe_coupon_id,omitempty"`
}

type RemoveCouponUsageRequest struct {
	Code    string `json:"code"`
	FeeType string `json:"fee_type"`
}
