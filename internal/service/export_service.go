// internal/service/export_service.go
package service

import (
	"io"
	"strings"
)

// WriteCSV writes every subscriber as one CSV row.
//
// The layout mirrors the files the previous deployment produced, which
// downstream spreadsheets already consume: fixed header, every value
// double-quoted, embedded quotes not escaped, Python-style True/False for
// the consent column.
func (s *SubscriptionService) WriteCSV(w io.Writer) error {
	subs, err := s.Repo.ListAll()
	if err != nil {
		return err
	}

	lines := []string{"company,email,whatsapp,consent"}
	for _, sub := range subs {
		whatsapp := ""
		if sub.Whatsapp != nil {
			whatsapp = *sub.Whatsapp
		}
		row := strings.Join([]string{
			quote(sub.Company),
			quote(sub.Email),
			quote(whatsapp),
			quote(pyBool(sub.Consent)),
		}, ",")
		lines = append(lines, row)
	}

	_, err = io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func quote(v string) string {
	return `"` + v + `"`
}

// pyBool spells booleans the way the old exporter did.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
