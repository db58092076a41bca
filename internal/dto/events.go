package dto

// Event keys on the notifications topic. The mail worker only acts on
// events that carry an email address.
const (
	EventPaymentReceived   = "payment.received"
	EventDiscountRedeemed  = "discount.redeemed"
	EventDocumentRequested = "document.requested"
	EventZelleApproved     = "zelle.approved"
)

type NotificationEvent struct {
	Type  string `json:"type"`
	Email string `json:"email,omitempty"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link,omitempty"`
}
