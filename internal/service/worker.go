package service

import (
	"fmt"

	"github.com/thecontabilist/planejador-backend/internal/model"
)

// WelcomeWorker turns confirmation events into welcome emails carrying the
// planner access link. It runs in the worker binary, off the request path.
type WelcomeWorker struct {
	Send      func(to, accessURL string) bool
	AccessURL string
}

// Constructor
func NewWelcomeWorker(send func(to, accessURL string) bool, accessURL string) *WelcomeWorker {
	return &WelcomeWorker{
		Send:      send,
		AccessURL: accessURL,
	}
}

// Process handles a single event. Only confirmations produce mail; every
// other event type is dropped without error.
func (w *WelcomeWorker) Process(evt model.SubscriptionEvent) error {
	if evt.Type != model.EventSubscriberConfirmed {
		return nil
	}
	if !w.Send(evt.Email, w.AccessURL) {
		return fmt.Errorf("welcome email to %s not delivered", evt.Email)
	}
	return nil
}
