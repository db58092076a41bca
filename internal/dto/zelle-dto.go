package dto

type CreateZellePaymentRequest struct {
	FeeType          string  `json:"fee_type"`
	Amount           float64 `json:"amount"`
	ConfirmationCode string  `json:"confirmation_code"`
}

type ValidateZelleCodeRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
}

type ReviewZellePaymentRequest struct {
	Decision string `json:"decision"` // "approve" or "reject"
	Reason   string `json:"reason,omitempty"`
}

type ZellePaymentResponse struct {
	ID               uint    `json:"id"`
	StudentID        uint    `json:"student_id"`
	FeeType          string  `json:"fee_type"`
	Amount           float64 `json:"amount"`
	ConfirmationCode string  `json:"confirmation_code"`
	Status           string  `json:"status"`
}
