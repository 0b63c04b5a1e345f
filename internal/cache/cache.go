package cache

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"NetIntelAPI/internal/config"
	"NetIntelAPI/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Cache wraps Redis. Every method is safe on a nil receiver and on an
// unreachable server: failures are logged and a neutral value is returned.
type Cache struct {
	client *redis.Client
	log    *logger.Logger
}

func New(cfg *config.RedisConfig, log *logger.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
		opts.ReadTimeout = cfg.DialTimeout
		opts.WriteTimeout = cfg.DialTimeout
	}

	c := NewWithClient(redis.NewClient(opts), log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.log.Error("Redis connection failed: %v", err)
	} else {
		c.log.Info("Redis connection established")
	}

	return c, nil
}

func NewWithClient(client *redis.Client, log *logger.Logger) *Cache {
	return &Cache{client: client, log: log.With("cache")}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) IsConnected(ctx context.Context) bool {
	if c == nil {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}

// Set stores value as JSON. A ttl of zero keeps the key forever.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	if c == nil {
		return false
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Error("Failed to encode %s: %v", key, err)
		return false
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn("Failed to set %s: %v", key, err)
		return false
	}
	return true
}

// Get decodes the JSON at key into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Failed to get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Error("Failed to decode %s: %v", key, err)
		return false
	}
	return true
}

func (c *Cache) Delete(ctx context.Context, key string) bool {
	if c == nil {
		return false
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("Failed to delete %s: %v", key, err)
		return false
	}
	return true
}

func (c *Cache) IsMember(ctx context.Context, set, member string) bool {
	if c == nil {
		return false
	}
	ok, err := c.client.SIsMember(ctx, set, member).Result()
	if err != nil {
		c.log.Warn("Failed membership check on %s: %v", set, err)
		return false
	}
	return ok
}

func (c *Cache) AddMember(ctx context.Context, set, member string, ttl time.Duration) bool {
	if c == nil {
		return false
	}
	pipe := c.client.TxPipeline()
	pipe.SAdd(ctx, set, member)
	if ttl > 0 {
		pipe.Expire(ctx, set, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("Failed to add %s to %s: %v", member, set, err)
		return false
	}
	return true
}

func (c *Cache) Publish(ctx context.Context, channel string, payload interface{}) bool {
	if c == nil {
		return false
	}
	data, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("Failed to encode message for %s: %v", channel, err)
		return false
	}
	if err := c.client.Publish(ctx, channel, data).Err(); err != nil {
		c.log.Warn("Failed to publish on %s: %v", channel, err)
		return false
	}
	return true
}

// Subscribe delivers every message on channel to fn until ctx is cancelled.
// It returns once the subscription is confirmed by the server.
func (c *Cache) Subscribe(ctx context.Context, channel string, fn func(payload []byte)) bool {
	if c == nil {
		return false
	}

	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		c.log.Warn("Failed to subscribe to %s: %v", channel, err)
		pubsub.Close()
		return false
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn([]byte(msg.Payload))
			}
		}
	}()

	c.log.Info("Subscribed to %s", channel)
	return true
}

// CheckRateLimit counts a hit against key and reports whether it is within limit
// for the current window. An unreachable cache allows the request.
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) bool {
	if c == nil {
		return true
	}
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		c.log.Warn("Rate limit check failed for %s: %v", key, err)
		return true
	}
	if n == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			c.log.Warn("Failed to set rate limit window for %s: %v", key, err)
		}
	}
	return n <= int64(limit)
}

// Clear deletes every key matching pattern using incremental SCAN.
func (c *Cache) Clear(ctx context.Context, pattern string) bool {
	if c == nil {
		return false
	}
	if pattern == "" {
		pattern = "*"
	}

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			c.log.Warn("Failed to scan %s: %v", pattern, err)
			return false
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.log.Warn("Failed to clear %s: %v", pattern, err)
				return false
			}
		}
		if next == 0 {
			return true
		}
		cursor = next
	}
}

// keys returns every key matching pattern.
func (c *Cache) keys(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	iter := c.client.Scan(ctx, 0, pattern, 200).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	return out, iter.Err()
}

// Stats returns a subset of INFO, or an empty map when Redis is down.
func (c *Cache) Stats(ctx context.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	raw, err := c.client.Info(ctx).Result()
	if err != nil {
		c.log.Warn("Failed to read cache stats: %v", err)
		return map[string]interface{}{}
	}
	return parseInfo(raw)
}

func parseInfo(raw string) map[string]interface{} {
	fields := map[string]string{}
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			fields[k] = v
		}
	}

	num := func(k string) int64 {
		n, _ := strconv.ParseInt(fields[k], 10, 64)
		return n
	}
	mem := fields["used_memory_human"]
	if mem == "" {
		mem = "0B"
	}

	return map[string]interface{}{
		"connected_clients":        num("connected_clients"),
		"used_memory_human":        mem,
		"total_commands_processed": num("total_commands_processed"),
		"keyspace_hits":            num("keyspace_hits"),
		"keyspace_misses":          num("keyspace_misses"),
	}
}
