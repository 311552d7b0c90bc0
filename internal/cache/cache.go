// Package cache memoizes reverse-engineering reports in Valkey, keyed by a
// digest of the input SQL so unchanged dumps skip the parse entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/schemarev/schemarev/internal/config"
)

// ErrMiss is returned by Get when no entry exists for the key.
var ErrMiss = fmt.Errorf("cache miss")

type Cache struct {
	client valkey.Client
	ttl    time.Duration
}

// New connects to Valkey and verifies connectivity with a ping.
func New(cfg config.CacheConfig) (*Cache, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{cfg.Addr},
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create valkey client: %w", err)
	}

	ctx := context.Background()
	resp := client.Do(ctx, client.B().Ping().Build())
	if err := resp.Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey: %w", err)
	}

	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// Key derives the cache key for a batch of SQL sources. The digest covers
// content only, so renaming an input file does not invalidate the entry.
func Key(sources ...string) string {
	h := sha256.New()
	for _, s := range sources {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return "schemarev:report:" + hex.EncodeToString(h.Sum(nil))
}

// Get fetches a serialized report. Returns ErrMiss when absent.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	b, err := resp.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return b, nil
}

// Set stores a serialized report under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	cmd := c.client.B().Set().Key(key).Value(valkey.BinaryString(value)).
		Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *Cache) Close() {
	c.client.Close()
}
