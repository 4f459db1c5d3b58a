package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jeffzycode/LittleLemonAPI/internal/orders"
)

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = []byte("1")
	return true, nil
}

func (c *memCache) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memCache) Set(_ context.Context, key string, v []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("redis down")
	}
	c.data[key] = v
	return nil
}

func message(t *testing.T, id, typ string, at time.Time, payload any) kafka.Message {
	t.Helper()
	p, err := json.Marshal(payload)
	require.NoError(t, err)
	b, err := json.Marshal(orders.Envelope{EventID: id, EventType: typ, EventVersion: 1, OccurredAt: at, Payload: p})
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func newTracker() (*Tracker, *memCache) {
	log, _ := test.NewNullLogger()
	c := newMemCache()
	return &Tracker{Cache: c, Service: "tracker", Log: log}, c
}

func TestHandle_PlacedThenUpdated(t *testing.T) {
	tr, _ := newTracker()
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	crew := int64(9)

	require.NoError(t, tr.Handle(ctx, message(t, "e1", orders.EventOrderPlaced, t0,
		orders.OrderPlacedPayload{OrderID: 5, UserID: 2, Total: decimal.RequireFromString("20.00")})))
	require.NoError(t, tr.Handle(ctx, message(t, "e2", orders.EventOrderUpdated, t0.Add(time.Minute),
		orders.OrderUpdatedPayload{OrderID: 5, Status: orders.StatusDelivered, DeliveryCrew: &crew, Total: decimal.RequireFromString("20.00")})))

	st, ok, err := tr.Lookup(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, orders.StatusDelivered, st.Status)
	require.NotNil(t, st.DeliveryCrew)
	assert.EqualValues(t, 9, *st.DeliveryCrew)
}

func TestHandle_OutOfOrderKeepsNewest(t *testing.T) {
	tr, _ := newTracker()
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, tr.Handle(ctx, message(t, "e2", orders.EventOrderUpdated, t0.Add(time.Minute),
		orders.OrderUpdatedPayload{OrderID: 5, Status: orders.StatusDelivered})))
	require.NoError(t, tr.Handle(ctx, message(t, "e1", orders.EventOrderPlaced, t0,
		orders.OrderPlacedPayload{OrderID: 5})))

	st, ok, err := tr.Lookup(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, orders.StatusDelivered, st.Status)
}

func TestHandle_DedupAndRetry(t *testing.T) {
	tr, c := newTracker()
	ctx := context.Background()
	t0 := time.Now().UTC()

	c.failSet = true
	msg := message(t, "e1", orders.EventOrderPlaced, t0, orders.OrderPlacedPayload{OrderID: 1})
	assert.Error(t, tr.Handle(ctx, msg))

	c.failSet = false
	require.NoError(t, tr.Handle(ctx, msg), "a failed event can be retried")
	_, ok, err := tr.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// A redelivery of an applied event id is ignored.
	require.NoError(t, tr.Handle(ctx, message(t, "e1", orders.EventOrderUpdated, t0.Add(time.Hour),
		orders.OrderUpdatedPayload{OrderID: 1, Status: orders.StatusDelivered})))
	st, _, err := tr.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, st.Status)
}

func TestHandle_IgnoresGarbageAndUnknownTypes(t *testing.T) {
	tr, c := newTracker()
	ctx := context.Background()

	assert.NoError(t, tr.Handle(ctx, kafka.Message{Value: []byte("not json")}))
	assert.NoError(t, tr.Handle(ctx, message(t, "e9", "SomethingElse", time.Now(), map[string]int{"x": 1})))
	assert.Empty(t, c.data)
}

func TestLookup_Missing(t *testing.T) {
	tr, _ := newTracker()
	_, ok, err := tr.Lookup(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
}
