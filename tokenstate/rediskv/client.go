// Package rediskv implements tokenstate.KV on Redis using go-redis.
package rediskv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/msoica/redis-jwt-hash-store-validator/tokenstate"
)

// DefaultScanCount is the COUNT hint passed to SCAN.
const DefaultScanCount = 100

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// ScanCount overrides the SCAN COUNT hint. Zero means DefaultScanCount.
	ScanCount int64
}

// Client is a tokenstate.KV backed by a single shared Redis
// connection handle. Construct with New, then Connect before use.
type Client struct {
	rdb       *redis.Client
	scanCount int64
}

var _ tokenstate.KV = (*Client)(nil)

// New builds a Client from cfg. No connection is made until Connect.
func New(cfg Config) *Client {
	scanCount := cfg.ScanCount
	if scanCount <= 0 {
		scanCount = DefaultScanCount
	}
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		scanCount: scanCount,
	}
}

// Connect verifies the connection with a PING. It must succeed before
// any other operation is invoked.
func (c *Client) Connect(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) WriteFields(ctx context.Context, key string, fields map[string]string) error {
	return c.rdb.HSet(ctx, key, fields).Err()
}

func (c *Client) SetExpiration(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// ScanKeys iterates the keyspace with SCAN. KEYS would block the
// server on large deployments, so it is never used here.
func (c *Client) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, c.scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (c *Client) ReadFields(ctx context.Context, key string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, key).Result()
}
