package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const pending = "pending"

// Idempotency remembers the response of a placement per user and client key.
type Idempotency struct {
	RDB *redis.Client
}

// Begin reserves key for userID. started is true when the caller should
// place the order; otherwise replay holds the stored response, or is nil
// while the first request is still running.
func (i *Idempotency) Begin(ctx context.Context, userID int64, key string) (replay []byte, started bool, err error) {
	k := fmt.Sprintf(KeyIdemOrderPlace, userID, key)
	ok, err := i.RDB.SetNX(ctx, k, pending, TTLIdempotencyPending).Result()
	if err != nil || ok {
		return nil, ok, err
	}
	b, err := GetBytes(ctx, i.RDB, k)
	if err != nil || string(b) == pending {
		return nil, false, err
	}
	return b, false, nil
}

func (i *Idempotency) Complete(ctx context.Context, userID int64, key string, body []byte) error {
	return i.RDB.Set(ctx, fmt.Sprintf(KeyIdemOrderPlace, userID, key), body, TTLIdempotency).Err()
}

// Abort frees key so a failed placement can be retried with it.
func (i *Idempotency) Abort(ctx context.Context, userID int64, key string) error {
	return i.RDB.Del(ctx, fmt.Sprintf(KeyIdemOrderPlace, userID, key)).Err()
}
