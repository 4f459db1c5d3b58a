package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
)

const (
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

type MessagePublisher interface {
	Publish(key, value []byte, headers ...kafka.Header) bool
}

// Publisher routes order envelopes to the producer owning their topic. It
// implements orders.EventSink.
type Publisher struct {
	topics map[string]MessagePublisher
	log    logrus.FieldLogger
}

func NewPublisher(log logrus.FieldLogger) *Publisher {
	return &Publisher{topics: map[string]MessagePublisher{}, log: log}
}

func (p *Publisher) Route(topic string, to MessagePublisher) *Publisher {
	p.topics[topic] = to
	return p
}

func (p *Publisher) Emit(_ context.Context, topic string, key []byte, env orders.Envelope) {
	to, ok := p.topics[topic]
	if !ok {
		p.log.WithField("topic", topic).Warn("no producer for topic, event dropped")
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		p.log.WithError(err).WithField("event_id", env.EventID).Error("encode envelope")
		return
	}
	to.Publish(key, b,
		kafka.Header{Key: HeaderEventType, Value: []byte(env.EventType)},
		kafka.Header{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(env.EventVersion))},
	)
}

func DecodeEnvelope(b []byte) (orders.Envelope, error) {
	var env orders.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

// UnwrapPayload decodes the typed payload of an envelope.
func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
