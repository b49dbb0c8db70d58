// internal/service/phone_service.go
package service

import "strings"

// NormalizeWhatsapp canonicalizes free-form WhatsApp input to the
// "5511"+number digit string the store and the CSV export standardize on.
//
// Steps, in order: drop every non-digit, strip leading zeros, drop a leading
// country code "55", strip newly exposed zeros, prefix DDD "11" when missing,
// prefix "55". Empty input stays empty.
//
// Example: "(11) 9 1234-5678" -> "5511912345678".
func NormalizeWhatsapp(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := strings.TrimLeft(b.String(), "0")
	digits = strings.TrimPrefix(digits, "55")
	digits = strings.TrimLeft(digits, "0")
	if !strings.HasPrefix(digits, "11") {
		digits = "11" + digits
	}
	return "55" + digits
}
