// internal/handler/debug_handler.go
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/thecontabilist/planejador-backend/internal/repository"
)

// DebugHandler holds the dependencies for temporary operational endpoints
type DebugHandler struct {
	Repo repository.SubscriberRepositoryInterface
}

// NewDebugHandler creates a new DebugHandler with the given repository
func NewDebugHandler(repo repository.SubscriberRepositoryInterface) *DebugHandler {
	return &DebugHandler{
		Repo: repo,
	}
}

// ListSubscribers returns the subscriber emails the server currently sees
func (h *DebugHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Repo.ListAll()
	if err != nil {
		log.Println("❌ failed to list subscribers:", err)
		http.Error(w, "failed to list subscribers: "+err.Error(), http.StatusInternalServerError)
		return
	}

	emails := make([]string, 0, len(subs))
	for _, s := range subs {
		emails = append(emails, s.Email)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":  len(emails),
		"emails": emails,
	})
}
