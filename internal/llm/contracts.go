package llm

import (
	"context"

	"github.com/joseph-ayodele/cardscan/internal/entity"
)

// WebPresence groups the links the model reports for a card.
type WebPresence struct {
	Website   *string `json:"website"`
	Facebook  *string `json:"facebook"`
	Instagram *string `json:"instagram"`
	Twitter   *string `json:"twitter"`
}

// ContactCard is the shape the prompt asks the model to fill.
type ContactCard struct {
	Email        *string     `json:"email"`
	PhoneNumbers []string    `json:"phone_numbers"`
	AgentName    *string     `json:"agent_name"`
	CompanyName  *string     `json:"company_name"`
	WebPresence  WebPresence `json:"web_presence"`
}

// Envelope is the top-level {"data": {...}} object.
type Envelope struct {
	Data ContactCard `json:"data"`
}

// Record maps the card onto the shared contact record. City, country and industry
// are not requested from the model and stay absent.
func (c ContactCard) Record() entity.ContactRecord {
	return entity.ContactRecord{
		OrganizationName:   c.CompanyName,
		PrimaryPhoneNumber: entity.At(c.PhoneNumbers, 0),
		OtherPhoneNumber:   entity.At(c.PhoneNumbers, 1),
		Email:              c.Email,
		Website:            c.WebPresence.Website,
	}
}

// Completer is the LLM collaborator: one prompt in, the completion text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
