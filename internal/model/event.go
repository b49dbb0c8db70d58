// internal/model/event.go
package model

import "time"

// Event types pushed to the subscriber_events queue.
const (
	EventSubscriberCreated   = "subscriber.created"
	EventSubscriberResent    = "subscriber.resent"
	EventSubscriberConfirmed = "subscriber.confirmed"
)

// SubscriptionEvent is a lifecycle notification for downstream consumers
// (the welcome-email worker today).
type SubscriptionEvent struct {
	Type       string    `json:"type"`
	Email      string    `json:"email"`
	Company    string    `json:"company,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
