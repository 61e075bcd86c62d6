// Package redis keeps the delivery memo of the change dispatcher.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"dispatch/internal/core/ports"
)

const keyPrefix = "dispatch:delivered:"

// DeliveryMemo remembers, for a bounded time, which handlers completed an event.
type DeliveryMemo struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

func NewDeliveryMemo(rdb goredis.Cmdable, ttl time.Duration) *DeliveryMemo {
	return &DeliveryMemo{rdb: rdb, ttl: ttl}
}

func Key(eventID, handler string) string {
	return keyPrefix + eventID + ":" + handler
}

func (m *DeliveryMemo) Done(ctx context.Context, eventID, handler string) (bool, error) {
	n, err := m.rdb.Exists(ctx, Key(eventID, handler)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (m *DeliveryMemo) MarkDone(ctx context.Context, eventID, handler string) error {
	return m.rdb.Set(ctx, Key(eventID, handler), "1", m.ttl).Err()
}

var _ ports.DeliveryMemo = (*DeliveryMemo)(nil)
