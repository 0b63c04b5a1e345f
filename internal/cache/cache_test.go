package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"NetIntelAPI/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewWithClient(client, logger.Discard())
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSetGetRoundTripWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.CacheNetworkStats(ctx, map[string]int{"total_connections": 900}))

	var got map[string]int
	require.True(t, c.NetworkStats(ctx, &got))
	assert.Equal(t, 900, got["total_connections"])
	assert.Equal(t, TTLNetworkStats, mr.TTL(KeyNetworkStats))

	mr.FastForward(TTLNetworkStats + time.Second)
	assert.False(t, c.NetworkStats(ctx, &got))
}

func TestGetMissingKey(t *testing.T) {
	c, _ := newTestCache(t)
	var v string
	assert.False(t, c.Get(context.Background(), "nope", &v))
}

func TestSessionLifecycle(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.CacheSession(ctx, "abc", map[string]string{"user_id": "u1"})
	assert.Equal(t, TTLSession, mr.TTL("session:abc"))

	var got map[string]string
	require.True(t, c.Session(ctx, "abc", &got))
	assert.Equal(t, "u1", got["user_id"])

	require.True(t, c.DeleteSession(ctx, "abc"))
	assert.False(t, c.Session(ctx, "abc", &got))
}

func TestKnownThreatSet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	assert.False(t, c.IsKnownThreat(ctx, "203.0.113.15"))
	require.True(t, c.MarkKnownThreat(ctx, "203.0.113.15"))
	assert.True(t, c.IsKnownThreat(ctx, "203.0.113.15"))
}

func TestRateLimitWindow(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, c.CheckRateLimit(ctx, "rl:1.2.3.4", 3, time.Minute))
	}
	assert.False(t, c.CheckRateLimit(ctx, "rl:1.2.3.4", 3, time.Minute))

	mr.FastForward(time.Minute + time.Second)
	assert.True(t, c.CheckRateLimit(ctx, "rl:1.2.3.4", 3, time.Minute))
}

func TestClearByPattern(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "session:a", 1, 0)
	c.Set(ctx, "session:b", 1, 0)
	c.Set(ctx, "network:stats:current", 1, 0)

	require.True(t, c.Clear(ctx, "session:*"))
	assert.False(t, mr.Exists("session:a"))
	assert.False(t, mr.Exists("session:b"))
	assert.True(t, mr.Exists("network:stats:current"))

	require.True(t, c.Clear(ctx, ""))
	assert.Empty(t, mr.Keys())
}

func TestInferenceHistoryNewestFirst(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	c.CacheInference(ctx, "traffic_analysis", map[string]int{"n": 1}, base)
	c.CacheInference(ctx, "traffic_analysis", map[string]int{"n": 2}, base.Add(time.Second))
	c.CacheInference(ctx, "threat_classification", map[string]int{"n": 3}, base)

	history := c.InferenceHistory(ctx, "traffic_analysis", 10)
	require.Len(t, history, 2)

	var first map[string]int
	require.NoError(t, json.Unmarshal(history[0], &first))
	assert.Equal(t, 2, first["n"])

	var latest map[string]int
	require.True(t, c.LatestInference(ctx, "traffic_analysis", &latest))
	assert.Equal(t, 2, latest["n"])

	assert.Len(t, c.InferenceHistory(ctx, "traffic_analysis", 1), 1)
}

func TestPublishSubscribe(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []byte, 1)
	require.True(t, c.Subscribe(ctx, ChannelAlerts, func(p []byte) { got <- p }))
	require.True(t, c.PublishAlert(ctx, map[string]string{"type": "traffic_analysis"}))

	select {
	case p := <-got:
		assert.JSONEq(t, `{"type":"traffic_analysis"}`, string(p))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestDegradesWhenServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	var v string
	assert.False(t, c.IsConnected(ctx))
	assert.False(t, c.Set(ctx, "k", "v", time.Minute))
	assert.False(t, c.Get(ctx, "k", &v))
	assert.False(t, c.IsKnownThreat(ctx, "1.2.3.4"))
	assert.True(t, c.CheckRateLimit(ctx, "rl", 1, time.Minute))
	assert.False(t, c.Clear(ctx, "*"))
	assert.Empty(t, c.Stats(ctx))
	assert.Empty(t, c.InferenceHistory(ctx, "traffic_analysis", 5))
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	var v string

	assert.False(t, c.IsConnected(ctx))
	assert.False(t, c.Get(ctx, "k", &v))
	assert.False(t, c.Publish(ctx, "ch", 1))
	assert.True(t, c.CheckRateLimit(ctx, "rl", 1, time.Minute))
	assert.Empty(t, c.Stats(ctx))
	assert.NoError(t, c.Close())
}

func TestParseInfo(t *testing.T) {
	raw := "# Clients\r\nconnected_clients:3\r\n\r\n# Memory\r\nused_memory_human:1.02M\r\n" +
		"# Stats\r\ntotal_commands_processed:120\r\nkeyspace_hits:40\r\nkeyspace_misses:2\r\n"

	stats := parseInfo(raw)

	assert.Equal(t, int64(3), stats["connected_clients"])
	assert.Equal(t, "1.02M", stats["used_memory_human"])
	assert.Equal(t, int64(120), stats["total_commands_processed"])
	assert.Equal(t, int64(40), stats["keyspace_hits"])
	assert.Equal(t, int64(2), stats["keyspace_misses"])
}

func TestParseInfoDefaults(t *testing.T) {
	stats := parseInfo("")
	assert.Equal(t, "0B", stats["used_memory_human"])
	assert.Equal(t, int64(0), stats["keyspace_hits"])
}
