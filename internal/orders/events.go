package orders

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced  = "OrderPlaced"
	EventOrderUpdated = "OrderUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type ItemTotal struct {
	MenuItemID int64           `json:"menuitem_id"`
	Total      decimal.Decimal `json:"total"`
}

type OrderPlacedPayload struct {
	OrderID int64           `json:"order_id"`
	UserID  int64           `json:"user_id"`
	Total   decimal.Decimal `json:"total"`
	Items   []ItemTotal     `json:"items"`
}

type OrderUpdatedPayload struct {
	OrderID      int64           `json:"order_id"`
	Status       Status          `json:"status"`
	DeliveryCrew *int64          `json:"delivery_crew,omitempty"`
	Total        decimal.Decimal `json:"total"`
}

// EventSink delivers envelopes to a topic. Implementations must not block
// the request on broker availability.
type EventSink interface {
	Emit(ctx context.Context, topic string, key []byte, env Envelope)
}

type NopSink struct{}

func (NopSink) Emit(context.Context, string, []byte, Envelope) {}

var encodePayload = json.Marshal

func newEnvelope(producer, eventType string, orderID int64, payload any) (Envelope, error) {
	b, err := encodePayload(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       b,
	}, nil
}

func placedEnvelope(producer string, o Order, items []OrderItem) (Envelope, error) {
	p := OrderPlacedPayload{OrderID: o.ID, UserID: o.UserID, Total: o.Total, Items: make([]ItemTotal, 0, len(items))}
	for _, it := range items {
		p.Items = append(p.Items, ItemTotal{MenuItemID: it.MenuItemID, Total: it.Total})
	}
	return newEnvelope(producer, EventOrderPlaced, o.ID, p)
}

func updatedEnvelope(producer string, o Order) (Envelope, error) {
	return newEnvelope(producer, EventOrderUpdated, o.ID, OrderUpdatedPayload{
		OrderID:      o.ID,
		Status:       o.Status,
		DeliveryCrew: o.DeliveryCrew,
		Total:        o.Total,
	})
}
