package service_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	appErrors "github.com/thecontabilist/planejador-backend/internal/errors"
	"github.com/thecontabilist/planejador-backend/internal/model"
	"github.com/thecontabilist/planejador-backend/internal/queue"
	"github.com/thecontabilist/planejador-backend/internal/service"
)

// Mock repository keeping subscribers in memory
type MockSubscriberRepo struct {
	subs      []model.Subscriber
	insertErr error
	updateErr error
	lookups   int
	inserts   int
	updates   int
}

func (m *MockSubscriberRepo) FindByEmail(email string) (*model.Subscriber, error) {
	m.lookups++
	for i := range m.subs {
		if strings.EqualFold(m.subs[i].Email, email) {
			s := m.subs[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *MockSubscriberRepo) FindByToken(token string) (*model.Subscriber, error) {
	m.lookups++
	if token == "" {
		return nil, nil
	}
	for i := range m.subs {
		if m.subs[i].ConfirmToken == token {
			s := m.subs[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *MockSubscriberRepo) Insert(s *model.Subscriber) error {
	m.inserts++
	if m.insertErr != nil {
		return m.insertErr
	}
	for i := range m.subs {
		if strings.EqualFold(m.subs[i].Email, s.Email) {
			return appErrors.NewDuplicateEmail(s.Email)
		}
	}
	s.ID = len(m.subs) + 1
	m.subs = append(m.subs, *s)
	return nil
}

func (m *MockSubscriberRepo) Update(s *model.Subscriber) error {
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.subs {
		if m.subs[i].ID == s.ID {
			m.subs[i] = *s
			return nil
		}
	}
	return appErrors.NewSubscriberNotFound(s.Email)
}

func (m *MockSubscriberRepo) ListAll() ([]model.Subscriber, error) {
	out := make([]model.Subscriber, len(m.subs))
	copy(out, m.subs)
	return out, nil
}

// Mock mailer recording send attempts
type MockMailer struct {
	deliver bool
	sentTo  []string
	lastURL string
}

func (m *MockMailer) SendConfirmation(to, confirmURL string) bool {
	m.sentTo = append(m.sentTo, to)
	m.lastURL = confirmURL
	return m.deliver
}

func (m *MockMailer) SendWelcome(to, accessURL string) bool {
	return m.deliver
}

func newTestService(repo *MockSubscriberRepo, mail *MockMailer) (*service.SubscriptionService, *[]model.SubscriptionEvent) {
	events := []model.SubscriptionEvent{}
	pub := queue.NewInMemoryPublisher()
	pub.Subscribe(func(evt model.SubscriptionEvent) {
		events = append(events, evt)
	})
	svc := &service.SubscriptionService{
		Repo:   repo,
		Mailer: mail,
		Events: pub,
	}
	return svc, &events
}

func validRequest() model.SubscribeRequest {
	return model.SubscribeRequest{
		Company:  "Padaria do João",
		Email:    "joao@example.com",
		Whatsapp: "(11) 9 1234-5678",
		Consent:  true,
	}
}

func TestSubscribeNewSubscriber(t *testing.T) {
	repo := &MockSubscriberRepo{}
	mail := &MockMailer{deliver: true}
	svc, events := newTestService(repo, mail)

	result, err := svc.Subscribe(validRequest(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != service.OutcomePendingNew {
		t.Errorf("expected pending_new, got %s", result.Outcome)
	}
	if result.Confirmed {
		t.Error("new subscriber must not be confirmed")
	}
	if !result.Sent {
		t.Error("expected the confirmation email to be sent")
	}

	sub, _ := repo.FindByEmail("joao@example.com")
	if sub == nil {
		t.Fatal("subscriber was not persisted")
	}
	if sub.Confirmed {
		t.Error("persisted subscriber must start unconfirmed")
	}
	if sub.ConfirmToken == "" {
		t.Error("persisted subscriber must carry a token")
	}
	if sub.Whatsapp == nil || *sub.Whatsapp != "5511912345678" {
		t.Errorf("whatsapp not normalized: %v", sub.Whatsapp)
	}
	if !strings.Contains(mail.lastURL, "/confirm/"+sub.ConfirmToken) {
		t.Errorf("confirmation URL %q does not carry the token", mail.lastURL)
	}
	if len(*events) != 1 || (*events)[0].Type != model.EventSubscriberCreated {
		t.Errorf("expected one created event, got %+v", *events)
	}
}

func TestSubscribeWithoutWhatsapp(t *testing.T) {
	repo := &MockSubscriberRepo{}
	svc, _ := newTestService(repo, &MockMailer{deliver: true})

	req := validRequest()
	req.Whatsapp = ""
	if _, err := svc.Subscribe(req, "http://localhost:8080"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, _ := repo.FindByEmail("joao@example.com")
	if sub.Whatsapp != nil {
		t.Errorf("expected absent whatsapp, got %q", *sub.Whatsapp)
	}
}

func TestSubscribeTwiceBeforeConfirmation(t *testing.T) {
	repo := &MockSubscriberRepo{}
	mail := &MockMailer{deliver: true}
	svc, _ := newTestService(repo, mail)

	if _, err := svc.Subscribe(validRequest(), "http://localhost:8080"); err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}
	first, _ := repo.FindByEmail("joao@example.com")

	result, err := svc.Subscribe(validRequest(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("second subscribe failed: %v", err)
	}
	if result.Outcome != service.OutcomePendingResent {
		t.Errorf("expected pending_resent, got %s", result.Outcome)
	}

	subs, _ := repo.ListAll()
	if len(subs) != 1 {
		t.Fatalf("expected a single record, got %d", len(subs))
	}
	if subs[0].ConfirmToken != first.ConfirmToken {
		t.Error("resubmission must reuse the existing token")
	}
}

func TestSubscribeCaseInsensitiveEmail(t *testing.T) {
	repo := &MockSubscriberRepo{}
	svc, _ := newTestService(repo, &MockMailer{deliver: true})

	if _, err := svc.Subscribe(validRequest(), "http://localhost:8080"); err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}

	req := validRequest()
	req.Email = "JOAO@Example.COM"
	result, err := svc.Subscribe(req, "http://localhost:8080")
	if err != nil {
		t.Fatalf("second subscribe failed: %v", err)
	}
	if result.Outcome != service.OutcomePendingResent {
		t.Errorf("expected pending_resent, got %s", result.Outcome)
	}

	subs, _ := repo.ListAll()
	if len(subs) != 1 {
		t.Errorf("case-variant email created a duplicate: %d records", len(subs))
	}
}

func TestSubscribeAlreadyConfirmed(t *testing.T) {
	repo := &MockSubscriberRepo{subs: []model.Subscriber{
		{ID: 1, Company: "Padaria do João", Email: "joao@example.com", Consent: true, Confirmed: true, ConfirmToken: "tok123"},
	}}
	mail := &MockMailer{deliver: true}
	svc, _ := newTestService(repo, mail)

	result, err := svc.Subscribe(validRequest(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != service.OutcomeAlreadyConfirmed {
		t.Errorf("expected already_confirmed, got %s", result.Outcome)
	}
	if !result.Confirmed {
		t.Error("expected confirmed=true in result")
	}
	if len(mail.sentTo) != 0 {
		t.Error("no email may be sent for a confirmed subscriber")
	}
	if repo.updates != 0 {
		t.Error("a confirmed record must not be mutated")
	}
}

func TestSubscribeValidationOrder(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*model.SubscribeRequest)
		wantErr string
	}{
		{"empty company", func(r *model.SubscribeRequest) { r.Company = "  " }, "Empresa é obrigatória"},
		{"bad email", func(r *model.SubscribeRequest) { r.Email = "not-an-email" }, "E-mail inválido"},
		{"email without tld", func(r *model.SubscribeRequest) { r.Email = "joao@localhost" }, "E-mail inválido"},
		{"missing consent", func(r *model.SubscribeRequest) { r.Consent = false }, "Consentimento obrigatório"},
		{"company wins over email", func(r *model.SubscribeRequest) { r.Company = ""; r.Email = "bad" }, "Empresa é obrigatória"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockSubscriberRepo{}
			mail := &MockMailer{deliver: true}
			svc, _ := newTestService(repo, mail)

			req := validRequest()
			tc.mutate(&req)

			_, err := svc.Subscribe(req, "http://localhost:8080")
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected %q, got %q", tc.wantErr, err.Error())
			}
			if repo.lookups != 0 || repo.inserts != 0 {
				t.Error("validation must fail before any store access")
			}
			if len(mail.sentTo) != 0 {
				t.Error("validation failure must not send email")
			}
		})
	}
}

func TestSubscribeSendFailureStillSucceeds(t *testing.T) {
	repo := &MockSubscriberRepo{}
	svc, _ := newTestService(repo, &MockMailer{deliver: false})

	result, err := svc.Subscribe(validRequest(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("send failure must not become an error: %v", err)
	}
	if result.Outcome != service.OutcomePendingNew {
		t.Errorf("expected pending_new, got %s", result.Outcome)
	}
	if result.Sent {
		t.Error("expected sent=false")
	}
}

func TestSubscribeStorageFailure(t *testing.T) {
	repo := &MockSubscriberRepo{insertErr: errors.New("disk full")}
	mail := &MockMailer{deliver: true}
	svc, _ := newTestService(repo, mail)

	if _, err := svc.Subscribe(validRequest(), "http://localhost:8080"); err == nil {
		t.Fatal("expected a storage error")
	}
	if len(mail.sentTo) != 0 {
		t.Error("no send may happen after a failed persist")
	}
}

func TestConfirmUnknownToken(t *testing.T) {
	repo := &MockSubscriberRepo{subs: []model.Subscriber{
		{ID: 1, Email: "joao@example.com", ConfirmToken: "tok123"},
	}}
	svc, _ := newTestService(repo, &MockMailer{})

	_, err := svc.Confirm("nope")
	if !appErrors.IsInvalidToken(err) {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	sub, _ := repo.FindByEmail("joao@example.com")
	if sub.Confirmed {
		t.Error("unknown token must not mutate the store")
	}
}

func TestConfirmTwiceIsIdempotent(t *testing.T) {
	repo := &MockSubscriberRepo{subs: []model.Subscriber{
		{ID: 1, Email: "joao@example.com", ConfirmToken: "tok123"},
	}}
	svc, events := newTestService(repo, &MockMailer{})

	for i := 0; i < 2; i++ {
		email, err := svc.Confirm("tok123")
		if err != nil {
			t.Fatalf("confirm %d failed: %v", i+1, err)
		}
		if email != "joao@example.com" {
			t.Errorf("confirm %d returned %q", i+1, email)
		}
	}

	sub, _ := repo.FindByEmail("joao@example.com")
	if !sub.Confirmed {
		t.Error("subscriber must be confirmed")
	}
	if sub.ConfirmToken != "tok123" {
		t.Error("token must survive confirmation")
	}
	if len(*events) != 2 || (*events)[1].Type != model.EventSubscriberConfirmed {
		t.Errorf("expected confirmed events, got %+v", *events)
	}
}

func TestUpdateFailureOnConfirm(t *testing.T) {
	repo := &MockSubscriberRepo{
		subs:      []model.Subscriber{{ID: 1, Email: "joao@example.com", ConfirmToken: "tok123"}},
		updateErr: errors.New("commit failed"),
	}
	svc, _ := newTestService(repo, &MockMailer{})

	if _, err := svc.Confirm("tok123"); err == nil {
		t.Fatal("expected a storage error")
	}
}

func TestResendUnknownEmail(t *testing.T) {
	svc, _ := newTestService(&MockSubscriberRepo{}, &MockMailer{})

	_, err := svc.Resend("ghost@example.com", "http://localhost:8080")
	if !appErrors.IsSubscriberNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestResendReportsDeliveryResult(t *testing.T) {
	repo := &MockSubscriberRepo{subs: []model.Subscriber{
		{ID: 1, Email: "joao@example.com", ConfirmToken: "tok123"},
	}}
	mail := &MockMailer{deliver: true}
	svc, _ := newTestService(repo, mail)

	result, err := svc.Resend("joao@example.com", "http://localhost:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Sent {
		t.Error("expected sent=true")
	}
	if !strings.Contains(mail.lastURL, "/confirm/tok123") {
		t.Errorf("resend must reuse the stored token, got %q", mail.lastURL)
	}

	mail.deliver = false
	result, err = svc.Resend("joao@example.com", "http://localhost:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent {
		t.Error("expected sent=false when delivery fails")
	}
}

func TestIsConfirmed(t *testing.T) {
	repo := &MockSubscriberRepo{subs: []model.Subscriber{
		{ID: 1, Email: "joao@example.com", Confirmed: true},
	}}
	svc, _ := newTestService(repo, &MockMailer{})

	confirmed, err := svc.IsConfirmed("JOAO@example.com")
	if err != nil || !confirmed {
		t.Errorf("expected confirmed=true, got %v, %v", confirmed, err)
	}

	confirmed, err = svc.IsConfirmed("ghost@example.com")
	if err != nil || confirmed {
		t.Errorf("unknown email must read as not confirmed, got %v, %v", confirmed, err)
	}
}

func TestWriteCSV(t *testing.T) {
	whatsapp := "5511912345678"
	repo := &MockSubscriberRepo{subs: []model.Subscriber{
		{ID: 1, Company: `Acme "The Best"`, Email: "a@example.com", Whatsapp: &whatsapp, Consent: true, Confirmed: true},
		{ID: 2, Company: "Beta", Email: "b@example.com", Consent: true},
	}}
	svc, _ := newTestService(repo, &MockMailer{})

	var buf bytes.Buffer
	if err := svc.WriteCSV(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "company,email,whatsapp,consent" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	// quotes are reproduced as-is, no escaping
	if lines[1] != `"Acme "The Best"","a@example.com","5511912345678","True"` {
		t.Errorf("unexpected first row: %q", lines[1])
	}
	if lines[2] != `"Beta","b@example.com","","True"` {
		t.Errorf("unexpected second row: %q", lines[2])
	}
}
