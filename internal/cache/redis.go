package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meridianair/booking/config"
	"github.com/meridianair/booking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL: flightsTTL,
	}
}

func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) GetDiscount(ctx context.Context, discountType string) (*domain.Discount, error) {
	data, err := c.client.Get(ctx, discountKey(discountType)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var d domain.Discount
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *RedisCache) SetDiscount(ctx context.Context, d *domain.Discount) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	// Discount rows change rarely; reuse the flights TTL rather than adding
	// a second knob.
	return c.client.Set(ctx, discountKey(d.Type), payload, c.flightsTTL).Err()
}

// AcquireClassLock serializes passenger creation per (flight, cabin class).
// The conditional update in storage is the authoritative guard; this lock
// only shortens the window in which two requests race to the same seat.
func (c *RedisCache) AcquireClassLock(ctx context.Context, flightID int64, class domain.CabinClass, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, classLockKey(flightID, class), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseClassLock(ctx context.Context, flightID int64, class domain.CabinClass) error {
	return c.client.Del(ctx, classLockKey(flightID, class)).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func discountKey(discountType string) string {
	return "cache:discount:" + discountType
}

func classLockKey(flightID int64, class domain.CabinClass) string {
	return fmt.Sprintf("lock:flight:%d:class:%s", flightID, class)
}
