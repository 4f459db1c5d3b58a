package redisx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingReservationExpiresQuickly(t *testing.T) {
	assert.Less(t, TTLIdempotencyPending, TTLIdempotency)
	assert.LessOrEqual(t, TTLIdempotencyPending, 5*time.Minute)
	assert.Greater(t, TTLIdempotencyPending, 5*time.Second)
}
