package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeStockReserved      = "stock.reserved"
)

// Envelope wraps every published payload.
type Envelope struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	Version    int             `json:"version"`
	OccurredAt time.Time       `json:"occurredAt"`
	Producer   string          `json:"producer"`
	Key        string          `json:"key,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload into a fresh envelope. key is the partition
// key, usually the order id.
func NewEnvelope(producer, eventType, key string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		Producer:   producer,
		Key:        key,
		Payload:    b,
	}, nil
}

// Publisher never blocks request handling on the broker; delivery failures
// are logged, not returned.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any)
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher is used when no brokers are configured.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, string, any) {}

func (nopPublisher) Close() error { return nil }
