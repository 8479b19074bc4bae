package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/cart"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// CartStore keeps carts in Redis as JSON with a sliding TTL, so an abandoned
// cart expires on its own.
type CartStore struct {
	client *Client
	ttl    time.Duration
}

// NewCartStore returns a cart.Store backed by Redis
func NewCartStore(client *Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

func cartKey(id string) string {
	return fmt.Sprintf("cart:%s", id)
}

// Get loads a cart and refreshes its TTL
func (s *CartStore) Get(ctx context.Context, id string) (*cart.Cart, error) {
	data, err := s.client.rdb.GetEx(ctx, cartKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", id, err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", id, err)
	}
	return &c, nil
}

// Save stores a cart
func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart %s: %w", c.ID, err)
	}
	return s.client.rdb.Set(ctx, cartKey(c.ID), data, s.ttl).Err()
}

// Delete removes a cart
func (s *CartStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.rdb.Del(ctx, cartKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return cart.ErrCartNotFound
	}
	return nil
}
