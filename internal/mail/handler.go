package mail

import (
	"encoding/json"
	"log"

	"github.com/matriculausa/payment_service/internal/dto"
)

type Handler struct {
	MailService *MailService
}

func NewHandler(ms *MailService) *Handler {
	return &Handler{MailService: ms}
}

func (h *Handler) HandleMessage(message string) error {
	var event dto.NotificationEvent

	if err := json.Unmarshal([]byte(message), &event); err != nil {
		log.Printf("invalid event payload: %s\n", message)
		return err
	}

	if event.Email == "" {
		// in-app only notification, nothing to send
		log.Printf("event %s has no email target - skip", event.Type)
		return nil
	}

	log.Printf("notification event received: type=%s email=%s", event.Type, event.Email)

	err := h.MailService.SendNotification(event.Email, event.Title, event.Body, event.Link)
	log.Println("[MAIL] send finished, err =", err)
	return err
}
