package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rifasolidaria/rifa/config"
	"github.com/rifasolidaria/rifa/internal/domain"
)

type RedisCache struct {
	client  *redis.Client
	gridTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, gridTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		gridTTL: gridTTL,
	}
}

func (c *RedisCache) GetTickets(ctx context.Context) ([]domain.Ticket, error) {
	data, err := c.client.Get(ctx, ticketsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var tickets []domain.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (c *RedisCache) SetTickets(ctx context.Context, tickets []domain.Ticket) error {
	payload, err := json.Marshal(tickets)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ticketsKey(), payload, c.gridTTL).Err()
}

// InvalidateTickets drops the cached grid after any mutation so readers
// never see a stale status longer than one round trip.
func (c *RedisCache) InvalidateTickets(ctx context.Context) error {
	return c.client.Del(ctx, ticketsKey()).Err()
}

// AcquireNumberLock takes a short-lived SETNX lock on a single raffle
// number while a purchase is in flight.
func (c *RedisCache) AcquireNumberLock(ctx context.Context, number int, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, numberLockKey(number), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseNumberLock(ctx context.Context, number int) error {
	return c.client.Del(ctx, numberLockKey(number)).Err()
}

func ticketsKey() string {
	return "cache:tickets"
}

func numberLockKey(number int) string {
	return fmt.Sprintf("lock:rifa:number:%d", number)
}
