// Package tracking keeps a last-known status per order in Redis, fed by the
// order events on Kafka and read by the status endpoint.
package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	kafkax "github.com/Jeffzycode/LittleLemonAPI/internal/kafka"
	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
	"github.com/Jeffzycode/LittleLemonAPI/internal/redisx"
)

// Status is the cached view of one order.
type Status struct {
	OrderID      int64           `json:"order_id"`
	Status       orders.Status   `json:"status"`
	DeliveryCrew *int64          `json:"delivery_crew"`
	Total        decimal.Decimal `json:"total"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func FromOrder(o orders.Order, at time.Time) Status {
	return Status{OrderID: o.ID, Status: o.Status, DeliveryCrew: o.DeliveryCrew, Total: o.Total, UpdatedAt: at.UTC()}
}

type Cache interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, v []byte, ttl time.Duration) error
}

type RedisCache struct{ RDB *redis.Client }

func (c RedisCache) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return redisx.Claim(ctx, c.RDB, key, ttl)
}

func (c RedisCache) Release(ctx context.Context, key string) error {
	return c.RDB.Del(ctx, key).Err()
}

func (c RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return redisx.GetBytes(ctx, c.RDB, key)
}

func (c RedisCache) Set(ctx context.Context, key string, v []byte, ttl time.Duration) error {
	return c.RDB.Set(ctx, key, v, ttl).Err()
}

type Tracker struct {
	Cache   Cache
	Service string
	Log     logrus.FieldLogger
}

// Handle is the consumer handler for both order topics. Each event id is
// applied at most once; a failed event releases its claim so a redelivery
// can retry it.
func (t *Tracker) Handle(ctx context.Context, m kafka.Message) error {
	env, err := kafkax.DecodeEnvelope(m.Value)
	if err != nil {
		t.Log.WithError(err).WithField("offset", m.Offset).Warn("skip undecodable message")
		return nil
	}

	var st Status
	switch env.EventType {
	case orders.EventOrderPlaced:
		p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
		if err != nil {
			return err
		}
		st = Status{OrderID: p.OrderID, Status: orders.StatusPending, Total: p.Total}
	case orders.EventOrderUpdated:
		p, err := kafkax.UnwrapPayload[orders.OrderUpdatedPayload](env.Payload)
		if err != nil {
			return err
		}
		st = Status{OrderID: p.OrderID, Status: p.Status, DeliveryCrew: p.DeliveryCrew, Total: p.Total}
	default:
		return nil
	}
	st.UpdatedAt = env.OccurredAt.UTC()

	dkey := fmt.Sprintf(redisx.KeyDedup, t.Service, env.EventID)
	won, err := t.Cache.Claim(ctx, dkey, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	if err := t.Record(ctx, st); err != nil {
		_ = t.Cache.Release(ctx, dkey)
		return err
	}
	t.Log.WithFields(logrus.Fields{
		"event_id": env.EventID,
		"type":     env.EventType,
		"order_id": st.OrderID,
		"status":   st.Status.String(),
	}).Info("order status tracked")
	return nil
}

// Record stores st unless a newer status is already cached. Events of one
// order travel on two topics, so they can arrive out of order.
func (t *Tracker) Record(ctx context.Context, st Status) error {
	cur, ok, err := t.Lookup(ctx, st.OrderID)
	if err != nil {
		return err
	}
	if ok && cur.UpdatedAt.After(st.UpdatedAt) {
		return nil
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return t.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, st.OrderID), b, redisx.TTLStatusCache)
}

func (t *Tracker) Lookup(ctx context.Context, orderID int64) (Status, bool, error) {
	b, err := t.Cache.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID))
	if err != nil || b == nil {
		return Status{}, false, err
	}
	var st Status
	if err := json.Unmarshal(b, &st); err != nil {
		return Status{}, false, err
	}
	return st, true, nil
}
