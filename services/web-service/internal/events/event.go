// Package events publishes customer actions taken through the web frontend.
package events

import (
	"context"
	"encoding/json"
	"time"

	otelx "github.com/fabclean/fabclean-web/libs/otel"
	"github.com/google/uuid"
)

const (
	TypeCustomerLoggedIn = "web.customer.logged_in.v1"
	TypeCustomerSignedUp = "web.customer.signed_up.v1"
	TypeOrderSubmitted   = "web.order.submitted.v1"
)

type Event struct {
	ID          string
	Type        string
	Key         string
	OccurredAt  time.Time
	Traceparent string
	Payload     json.RawMessage
}

type CustomerPayload struct {
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type OrderPayload struct {
	CustomerEmail string    `json:"customer_email"`
	ServiceID     string    `json:"service_id"`
	PickupDate    string    `json:"pickup_date"`
	Total         string    `json:"total"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// New builds an event keyed by key, capturing the trace of ctx.
func New(ctx context.Context, eventType, key string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		Key:         key,
		OccurredAt:  time.Now().UTC(),
		Traceparent: otelx.TraceParent(ctx),
		Payload:     b,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}
