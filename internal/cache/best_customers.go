package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmehdipour/lunchly/internal/metrics"
	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/redis/go-redis/v9"
)

const DefaultBestCustomersKey = "lunchly:customers:best"

// BestCustomers caches the reservations ranking in Redis. A nil client
// turns every call into a miss / no-op, as does an open breaker.
type BestCustomers struct {
	rdb *redis.Client
	key string
	ttl time.Duration
	br  *breaker
}

func NewBestCustomers(rdb *redis.Client, ttl time.Duration) *BestCustomers {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &BestCustomers{
		rdb: rdb,
		key: DefaultBestCustomersKey,
		ttl: ttl,
		br:  newBreaker(3, 15*time.Second),
	}
}

// call runs fn against Redis through the breaker. ok is false when the
// breaker refused the call.
func (c *BestCustomers) call(fn func() error) (ok bool, err error) {
	if !c.br.acquire() {
		return false, nil
	}
	err = fn()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.br.onFailure()
		return true, err
	}
	c.br.onSuccess()
	return true, err
}

func (c *BestCustomers) Enabled() bool { return c != nil && c.rdb != nil }

// Get returns the cached ranking. ok is false on a miss.
func (c *BestCustomers) Get(ctx context.Context) (best []model.BestCustomer, ok bool, err error) {
	if !c.Enabled() {
		return nil, false, nil
	}

	var raw []byte
	called, err := c.call(func() (err error) {
		raw, err = c.rdb.Get(ctx, c.key).Bytes()
		return err
	})
	if !called || errors.Is(err, redis.Nil) {
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	if err := json.Unmarshal(raw, &best); err != nil {
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}
	metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
	return best, true, nil
}

func (c *BestCustomers) Set(ctx context.Context, best []model.BestCustomer) error {
	if !c.Enabled() {
		return nil
	}
	b, err := json.Marshal(best)
	if err != nil {
		return err
	}
	_, err = c.call(func() error { return c.rdb.Set(ctx, c.key, b, c.ttl).Err() })
	return err
}

// Invalidate drops the cached ranking; the next Get is a miss.
func (c *BestCustomers) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	_, err := c.call(func() error { return c.rdb.Del(ctx, c.key).Err() })
	return err
}
