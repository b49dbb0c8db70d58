// internal/mailer/mailer.go
package mailer

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// Sender delivers transactional mail for the subscription flow. Delivery is
// best effort: implementations report success or failure as a boolean and
// never let a transport error escape to the caller.
type Sender interface {
	SendConfirmation(to, confirmURL string) bool
	SendWelcome(to, accessURL string) bool
}

// SMTPSender talks plain SMTP with optional STARTTLS. When Host is empty
// every send reports false without dialing; the caller falls back to
// disclosing the link in the server log.
type SMTPSender struct {
	Host    string
	Port    string
	User    string
	Pass    string
	From    string
	UseTLS  bool
	Timeout time.Duration
}

// FromEnv builds a sender from the SMTP_* environment variables.
func FromEnv() *SMTPSender {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	useTLS := true
	switch strings.ToLower(os.Getenv("SMTP_USE_TLS")) {
	case "0", "false", "no":
		useTLS = false
	}

	// The authenticated user takes priority as the From address so providers
	// that reject mismatched senders (SendAsDenied) still accept the mail.
	from := os.Getenv("SMTP_USER")
	if from == "" {
		from = os.Getenv("SMTP_FROM")
	}
	if from == "" {
		from = "no-reply@example.com"
	}

	return &SMTPSender{
		Host:    os.Getenv("SMTP_HOST"),
		Port:    port,
		User:    os.Getenv("SMTP_USER"),
		Pass:    os.Getenv("SMTP_PASS"),
		From:    from,
		UseTLS:  useTLS,
		Timeout: 20 * time.Second,
	}
}

// SendConfirmation emails the double-opt-in link.
func (s *SMTPSender) SendConfirmation(to, confirmURL string) bool {
	subject := "Confirme sua inscrição — Planejador Tributário"
	body := "Olá,\n\n" +
		"Clique no link abaixo para confirmar sua inscrição e acessar o Planejador Tributário:\n\n" +
		confirmURL + "\n\n" +
		"Se você não solicitou, ignore esta mensagem.\n"
	return s.send(to, subject, body)
}

// SendWelcome emails the planner access link after confirmation.
func (s *SMTPSender) SendWelcome(to, accessURL string) bool {
	subject := "Inscrição confirmada — Planejador Tributário"
	body := "Olá,\n\n" +
		"Sua inscrição foi confirmada! Acesse o Planejador Tributário pelo link abaixo:\n\n" +
		accessURL + "\n\n" +
		"Obrigado!\n"
	return s.send(to, subject, body)
}

func (s *SMTPSender) send(to, subject, body string) bool {
	if s.Host == "" {
		log.Println("SMTP_HOST not configured; skipping send")
		return false
	}

	addr := net.JoinHostPort(s.Host, s.Port)
	log.Printf("Connecting to SMTP %s (tls=%v)", addr, s.UseTLS)

	conn, err := net.DialTimeout("tcp", addr, s.Timeout)
	if err != nil {
		log.Println("⚠️ SMTP dial failed:", err)
		return false
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.Timeout))

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		log.Println("⚠️ SMTP handshake failed:", err)
		return false
	}
	defer client.Close()

	if s.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			log.Println("⚠️ SMTP STARTTLS failed:", err)
			return false
		}
	}
	if s.User != "" && s.Pass != "" {
		if err := client.Auth(smtp.PlainAuth("", s.User, s.Pass, s.Host)); err != nil {
			log.Println("⚠️ SMTP auth failed:", err)
			return false
		}
	}
	if err := client.Mail(s.From); err != nil {
		log.Println("⚠️ SMTP MAIL FROM failed:", err)
		return false
	}
	if err := client.Rcpt(to); err != nil {
		log.Println("⚠️ SMTP RCPT TO failed:", err)
		return false
	}
	w, err := client.Data()
	if err != nil {
		log.Println("⚠️ SMTP DATA failed:", err)
		return false
	}
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		s.From, to, subject, body,
	)
	if _, err := w.Write([]byte(msg)); err != nil {
		log.Println("⚠️ SMTP write failed:", err)
		return false
	}
	if err := w.Close(); err != nil {
		log.Println("⚠️ SMTP message rejected:", err)
		return false
	}
	// The message is accepted at this point; a failed QUIT is not a failed send.
	_ = client.Quit()

	log.Println("✅ Email sent to", to)
	return true
}

var _ Sender = (*SMTPSender)(nil)
