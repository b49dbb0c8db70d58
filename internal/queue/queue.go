package queue

import (
	"encoding/json"
	"sync"

	"github.com/streadway/amqp"

	"github.com/thecontabilist/planejador-backend/internal/model"
)

// EventsQueue is the durable queue the worker consumes.
const EventsQueue = "subscriber_events"

// EventPublisher pushes subscriber lifecycle events to whatever transport the
// deployment provides. Publishing is best effort: callers log failures and
// carry on, a lost event never fails an HTTP request.
type EventPublisher interface {
	Publish(evt model.SubscriptionEvent) error
}

// AMQPPublisher publishes events to RabbitMQ. A connection is dialed per
// publish; the volume of a capture form does not justify pooling channels.
type AMQPPublisher struct {
	URL string
}

func (p *AMQPPublisher) Publish(evt model.SubscriptionEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		EventsQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return err
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return ch.Publish(
		"",
		q.Name,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// InMemoryPublisher dispatches events synchronously to in-process handlers.
// Used in tests and when AMQP_URL is not configured.
type InMemoryPublisher struct {
	mu       sync.Mutex
	handlers []func(model.SubscriptionEvent)
}

// NewInMemoryPublisher creates a new in-memory publisher
func NewInMemoryPublisher() *InMemoryPublisher {
	return &InMemoryPublisher{}
}

// Subscribe adds a handler called for every published event
func (q *InMemoryPublisher) Subscribe(handler func(model.SubscriptionEvent)) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers = append(q.handlers, handler)
}

// Publish sends an event to all subscribed handlers
func (q *InMemoryPublisher) Publish(evt model.SubscriptionEvent) error {
	q.mu.Lock()
	handlers := make([]func(model.SubscriptionEvent), len(q.handlers))
	copy(handlers, q.handlers)
	q.mu.Unlock()

	for _, handler := range handlers {
		handler(evt)
	}
	return nil
}

var _ EventPublisher = (*AMQPPublisher)(nil)
var _ EventPublisher = (*InMemoryPublisher)(nil)
