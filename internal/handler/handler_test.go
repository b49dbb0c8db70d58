package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/thecontabilist/planejador-backend/internal/handler"
	"github.com/thecontabilist/planejador-backend/internal/model"
)

type stubRepo struct {
	subs []model.Subscriber
}

func (s *stubRepo) FindByEmail(email string) (*model.Subscriber, error) { return nil, nil }
func (s *stubRepo) FindByToken(token string) (*model.Subscriber, error) { return nil, nil }
func (s *stubRepo) Insert(sub *model.Subscriber) error                  { return nil }
func (s *stubRepo) Update(sub *model.Subscriber) error                  { return nil }
func (s *stubRepo) ListAll() ([]model.Subscriber, error)                { return s.subs, nil }

func TestDebugListSubscribers(t *testing.T) {
	h := handler.NewDebugHandler(&stubRepo{subs: []model.Subscriber{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/debug/subscribers", nil)
	rec := httptest.NewRecorder()
	h.ListSubscribers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Count  int      `json:"count"`
		Emails []string `json:"emails"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || len(resp.Emails) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestForceHTTPSRedirectsForwardedHTTP(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := handler.ForceHTTPS(next)

	req := httptest.NewRequest(http.MethodGet, "http://example.com/subscribe?x=1", nil)
	req.Header.Set("X-Forwarded-Proto", "http")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://example.com/subscribe?x=1" {
		t.Errorf("unexpected redirect target: %q", loc)
	}
}

func TestForceHTTPSPassesThroughHTTPS(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	mw := handler.ForceHTTPS(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if !called {
		t.Error("https requests must pass through")
	}
}
