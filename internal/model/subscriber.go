// internal/model/subscriber.go
package model

// Subscriber is one landing-page submission. One record per email,
// case-insensitive. ConfirmToken stays set after confirmation so the link
// in an already-delivered email keeps working.
type Subscriber struct {
	ID           int     `db:"id" json:"id"`
	Company      string  `db:"company" json:"company"`
	Email        string  `db:"email" json:"email"`
	Whatsapp     *string `db:"whatsapp" json:"whatsapp,omitempty"`
	Consent      bool    `db:"consent" json:"consent"`
	Confirmed    bool    `db:"confirmed" json:"confirmed"`
	ConfirmToken string  `db:"confirm_token" json:"confirm_token,omitempty"`
}
