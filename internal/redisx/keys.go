package redisx

import "time"

const (
	// Idempotent placement: idem:order:place:{user_id}:{client key} -> response body
	KeyIdemOrderPlace = "idem:order:place:%d:%s"

	// Order status cache: order_status:{order_id} -> {"status":..,"delivery_crew":..,"total":..}
	KeyOrderStatus = "order_status:%d"

	// Event dedup: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	// A pending reservation expires on its own if the placing request dies.
	TTLIdempotencyPending = time.Minute
	TTLStatusCache        = 24 * time.Hour
	TTLDedup              = 48 * time.Hour
)
