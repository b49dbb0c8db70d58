// internal/controller/subscription_controller.go
package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	appErrors "github.com/thecontabilist/planejador-backend/internal/errors"
	"github.com/thecontabilist/planejador-backend/internal/model"
	"github.com/thecontabilist/planejador-backend/internal/service"
)

type SubscriptionController struct {
	Service *service.SubscriptionService
}

// Subscribe handles POST /subscribe
func (c *SubscriptionController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req model.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "JSON inválido"})
		return
	}

	result, err := c.Service.Subscribe(req, baseURL(r))
	if err != nil {
		var verr validation.Error
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": verr.Error()})
			return
		}
		log.Println("❌ subscribe failed:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Não foi possível salvar"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   result.Message,
		"confirmed": result.Confirmed,
	})
}

// Confirm handles GET /confirm/{token}
func (c *SubscriptionController) Confirm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	email, err := c.Service.Confirm(token)
	if err != nil {
		if appErrors.IsInvalidToken(err) {
			http.Error(w, "Token inválido ou expirado.", http.StatusBadRequest)
			return
		}
		log.Println("❌ confirm failed:", err)
		http.Error(w, "Erro ao confirmar. Tente novamente mais tarde.", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/?confirmed_email="+url.QueryEscape(email), http.StatusFound)
}

// IsConfirmed handles GET /is_confirmed?email=
func (c *SubscriptionController) IsConfirmed(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "email missing"})
		return
	}

	confirmed, err := c.Service.IsConfirmed(email)
	if err != nil {
		log.Println("❌ is_confirmed failed:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Não foi possível consultar"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"confirmed": confirmed})
}

// Resend handles GET /resend?email=
func (c *SubscriptionController) Resend(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "email missing"})
		return
	}

	result, err := c.Service.Resend(email, baseURL(r))
	if err != nil {
		if appErrors.IsSubscriberNotFound(err) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not found"})
			return
		}
		log.Println("❌ resend failed:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "Não foi possível salvar"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sent":    result.Sent,
		"message": result.Message,
	})
}

// Export handles GET /export
func (c *SubscriptionController) Export(w http.ResponseWriter, r *http.Request) {
	// Buffer first so a store failure can still become a clean 500.
	var buf bytes.Buffer
	if err := c.Service.WriteCSV(&buf); err != nil {
		log.Println("❌ export failed:", err)
		http.Error(w, "Não foi possível exportar", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="subscribers.csv"`)
	w.Write(buf.Bytes())
}

// baseURL reconstructs the externally visible origin of the request so
// confirmation links point back at this deployment.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
