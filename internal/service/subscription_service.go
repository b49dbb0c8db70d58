// internal/service/subscription_service.go
package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/thecontabilist/planejador-backend/internal/errors"
	"github.com/thecontabilist/planejador-backend/internal/mailer"
	"github.com/thecontabilist/planejador-backend/internal/model"
	"github.com/thecontabilist/planejador-backend/internal/queue"
	"github.com/thecontabilist/planejador-backend/internal/repository"
)

// SubscribeOutcome classifies a Subscribe call for the HTTP layer.
type SubscribeOutcome string

const (
	OutcomeAlreadyConfirmed SubscribeOutcome = "already_confirmed"
	OutcomePendingResent    SubscribeOutcome = "pending_resent"
	OutcomePendingNew       SubscribeOutcome = "pending_new"
)

// Result struct for Subscribe
type SubscribeResult struct {
	Outcome   SubscribeOutcome
	Message   string
	Confirmed bool
	Sent      bool
}

// Result struct for Resend
type ResendResult struct {
	Sent    bool
	Message string
}

type SubscriptionService struct {
	Repo   repository.SubscriberRepositoryInterface
	Mailer mailer.Sender
	Events queue.EventPublisher
}

// mintToken returns a uuid4 hex string, same format the original site used.
// Uniqueness is probabilistic; the store's unique index is the backstop.
func mintToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Subscribe runs the full submission workflow: validate, look up, persist,
// then attempt the confirmation send. baseURL is the externally visible
// origin the confirmation link points back to.
func (s *SubscriptionService) Subscribe(req model.SubscribeRequest, baseURL string) (*SubscribeResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		sub := &model.Subscriber{
			Company:      req.Company,
			Email:        req.Email,
			Consent:      true,
			Confirmed:    false,
			ConfirmToken: mintToken(),
		}
		if req.Whatsapp != "" {
			normalized := NormalizeWhatsapp(req.Whatsapp)
			sub.Whatsapp = &normalized
		}

		err := s.Repo.Insert(sub)
		if err == nil {
			s.publish(model.EventSubscriberCreated, sub)
			sent := s.deliverConfirmation(sub.Email, baseURL, sub.ConfirmToken)
			return &SubscribeResult{
				Outcome: OutcomePendingNew,
				Message: "Inscrição recebida. Verifique seu e-mail e confirme para acessar.",
				Sent:    sent,
			}, nil
		}
		if !appErrors.IsDuplicateEmail(err) {
			return nil, err
		}
		// Lost the insert race to a concurrent submission for the same
		// email; continue down the existing-record path.
		existing, err = s.Repo.FindByEmail(req.Email)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("subscriber %s not visible after duplicate insert", req.Email)
		}
	}

	if existing.Confirmed {
		return &SubscribeResult{
			Outcome:   OutcomeAlreadyConfirmed,
			Message:   "E-mail já inscrito e confirmado",
			Confirmed: true,
		}, nil
	}

	// Pending record: reuse the token already mailed out, mint only if missing.
	if existing.ConfirmToken == "" {
		existing.ConfirmToken = mintToken()
	}
	if err := s.Repo.Update(existing); err != nil {
		return nil, err
	}
	s.publish(model.EventSubscriberResent, existing)
	sent := s.deliverConfirmation(existing.Email, baseURL, existing.ConfirmToken)
	return &SubscribeResult{
		Outcome: OutcomePendingResent,
		Message: "Verifique seu e-mail para confirmar sua inscrição.",
		Sent:    sent,
	}, nil
}

// Confirm flips the confirmed flag for the record holding the token and
// returns its email for the redirect. Re-confirming is an idempotent no-op.
func (s *SubscriptionService) Confirm(token string) (string, error) {
	sub, err := s.Repo.FindByToken(token)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return "", appErrors.NewInvalidToken(token)
	}

	sub.Confirmed = true
	if err := s.Repo.Update(sub); err != nil {
		return "", err
	}
	s.publish(model.EventSubscriberConfirmed, sub)
	return sub.Email, nil
}

// Resend re-attempts the confirmation send for a known subscriber.
func (s *SubscriptionService) Resend(email, baseURL string) (*ResendResult, error) {
	sub, err := s.Repo.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, appErrors.NewSubscriberNotFound(email)
	}

	if sub.ConfirmToken == "" {
		sub.ConfirmToken = mintToken()
	}
	if err := s.Repo.Update(sub); err != nil {
		return nil, err
	}

	if s.deliverConfirmation(sub.Email, baseURL, sub.ConfirmToken) {
		return &ResendResult{Sent: true, Message: "E-mail disparado"}, nil
	}
	return &ResendResult{Sent: false, Message: "Envio falhou; link impresso no servidor"}, nil
}

// IsConfirmed reports whether the email belongs to a confirmed subscriber.
// Unknown emails read as not confirmed.
func (s *SubscriptionService) IsConfirmed(email string) (bool, error) {
	sub, err := s.Repo.FindByEmail(email)
	if err != nil {
		return false, err
	}
	return sub != nil && sub.Confirmed, nil
}

// deliverConfirmation attempts the send and falls back to disclosing the
// link in the server log. Send failures never bubble up.
func (s *SubscriptionService) deliverConfirmation(email, baseURL, token string) bool {
	confirmURL := confirmLink(baseURL, token)
	sent := s.Mailer.SendConfirmation(email, confirmURL)
	if !sent {
		log.Printf("Confirmation link for %s: %s", email, confirmURL)
	}
	return sent
}

func confirmLink(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/confirm/" + token
}

func (s *SubscriptionService) publish(eventType string, sub *model.Subscriber) {
	if s.Events == nil {
		return
	}
	evt := model.SubscriptionEvent{
		Type:       eventType,
		Email:      sub.Email,
		Company:    sub.Company,
		OccurredAt: time.Now(),
	}
	if err := s.Events.Publish(evt); err != nil {
		log.Println("⚠️ failed to publish event:", err)
	}
}
