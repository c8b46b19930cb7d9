package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb *redis.Client
}

func New(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

const rateLimitPrefix = "city-service:ratelimit:"

// AllowRequest is a fixed-window counter shared by every instance pointing at
// the same Redis. On Redis errors it fails open and returns the error for logging.
func (c *Client) AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := rateLimitPrefix + key

	count, err := c.rdb.Incr(ctx, k).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, k, window).Err(); err != nil {
			return true, err
		}
	}
	return count <= int64(limit), nil
}
