package dto

type DispatchNotificationRequest struct {
	EventType      string  `json:"event_type,omitempty"`
	Target         string  `json:"target"` // "student" or "university"
	TargetID       uint    `json:"target_id"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	Link           *string `json:"link,omitempty"`
	IdempotencyKey string  `json:"idempotency_key"`
	Email          string  `json:"email,omitempty"` // also send external mail when set
}
