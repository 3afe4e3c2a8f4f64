package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client mirrors the in-process online set into Redis so operators and
// sibling services can observe presence. Routing never reads from here.
type Client struct {
	cli    *redis.Client
	prefix string
}

func NewRedis(addr, password string, db int, prefix string) (*Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "chat"
	}
	return &Client{cli: r, prefix: prefix}, nil
}

func (c *Client) key(userID string) string {
	return c.prefix + ":presence:" + userID
}

func (c *Client) SetPresence(ctx context.Context, userID string, online bool) error {
	if !online {
		return c.cli.Del(ctx, c.key(userID)).Err()
	}
	return c.cli.Set(ctx, c.key(userID), "1", 0).Err()
}

func (c *Client) GetPresence(ctx context.Context, userID string) (bool, error) {
	s, err := c.cli.Get(ctx, c.key(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s == "1", nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}
