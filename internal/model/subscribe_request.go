// internal/model/subscribe_request.go
package model

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Same permissive local@domain.tld shape the landing page checks client-side.
var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// SubscribeRequest is the POST /subscribe body.
type SubscribeRequest struct {
	Company  string `json:"company"`
	Email    string `json:"email"`
	Whatsapp string `json:"whatsapp"`
	Consent  bool   `json:"consent"`
}

// Normalize trims the free-text fields before validation.
func (r *SubscribeRequest) Normalize() {
	r.Company = strings.TrimSpace(r.Company)
	r.Email = strings.TrimSpace(r.Email)
	r.Whatsapp = strings.TrimSpace(r.Whatsapp)
}

// Validate checks the fields one by one so the first failure wins:
// company, then email shape, then consent.
func (r SubscribeRequest) Validate() error {
	if err := validation.Validate(r.Company,
		validation.Required.Error("Empresa é obrigatória"),
	); err != nil {
		return err
	}
	if err := validation.Validate(r.Email,
		validation.Required.Error("E-mail inválido"),
		validation.Match(emailRE).Error("E-mail inválido"),
	); err != nil {
		return err
	}
	if !r.Consent {
		return validation.NewError("validation_consent_required", "Consentimento obrigatório")
	}
	return nil
}
