package cache

import (
	"context"
	"encoding/json"
	"sort"
	"time"
)

const (
	KeyNetworkStats    = "network:stats:current"
	KeyRealtimeEvents  = "events:realtime"
	KeyIndicators      = "threats:indicators"
	KeyKnownThreats    = "threats:known"
	ChannelAlerts      = "security_alerts"
	prefixSession      = "session:"
	prefixThreatCheck  = "threat:check:"
	prefixInference    = "inference:"
	latestInferenceTag = "latest"

	TTLNetworkStats   = 300 * time.Second
	TTLRealtimeEvents = 60 * time.Second
	TTLSession        = 3600 * time.Second
	TTLIndicators     = 1800 * time.Second
	TTLThreatCheck    = 3600 * time.Second
	TTLInference      = 1800 * time.Second
)

func SessionKey(id string) string       { return prefixSession + id }
func ThreatCheckKey(value string) string { return prefixThreatCheck + value }

func (c *Cache) CacheNetworkStats(ctx context.Context, stats interface{}) bool {
	return c.Set(ctx, KeyNetworkStats, stats, TTLNetworkStats)
}

func (c *Cache) NetworkStats(ctx context.Context, dest interface{}) bool {
	return c.Get(ctx, KeyNetworkStats, dest)
}

func (c *Cache) CacheRealtimeEvents(ctx context.Context, events interface{}) bool {
	return c.Set(ctx, KeyRealtimeEvents, events, TTLRealtimeEvents)
}

func (c *Cache) RealtimeEvents(ctx context.Context, dest interface{}) bool {
	return c.Get(ctx, KeyRealtimeEvents, dest)
}

func (c *Cache) CacheSession(ctx context.Context, id string, session interface{}) bool {
	return c.Set(ctx, SessionKey(id), session, TTLSession)
}

func (c *Cache) Session(ctx context.Context, id string, dest interface{}) bool {
	return c.Get(ctx, SessionKey(id), dest)
}

func (c *Cache) DeleteSession(ctx context.Context, id string) bool {
	return c.Delete(ctx, SessionKey(id))
}

func (c *Cache) CacheIndicators(ctx context.Context, indicators interface{}) bool {
	return c.Set(ctx, KeyIndicators, indicators, TTLIndicators)
}

func (c *Cache) Indicators(ctx context.Context, dest interface{}) bool {
	return c.Get(ctx, KeyIndicators, dest)
}

func (c *Cache) CacheThreatCheck(ctx context.Context, value string, result interface{}) bool {
	return c.Set(ctx, ThreatCheckKey(value), result, TTLThreatCheck)
}

func (c *Cache) ThreatCheck(ctx context.Context, value string, dest interface{}) bool {
	return c.Get(ctx, ThreatCheckKey(value), dest)
}

// MarkKnownThreat adds value to the known-threat set consulted by traffic scoring.
func (c *Cache) MarkKnownThreat(ctx context.Context, value string) bool {
	return c.AddMember(ctx, KeyKnownThreats, value, 0)
}

// IsKnownThreat reports whether value is in the known-threat set.
func (c *Cache) IsKnownThreat(ctx context.Context, value string) bool {
	return c.IsMember(ctx, KeyKnownThreats, value)
}

func (c *Cache) PublishAlert(ctx context.Context, alert interface{}) bool {
	return c.Publish(ctx, ChannelAlerts, alert)
}

func inferenceKey(kind string, at time.Time) string {
	return prefixInference + kind + ":" + at.UTC().Format("20060102_150405.000")
}

func latestInferenceKey(kind string) string {
	return prefixInference + latestInferenceTag + ":" + kind
}

// CacheInference stores a timestamped result and replaces the latest one for kind.
func (c *Cache) CacheInference(ctx context.Context, kind string, result interface{}, at time.Time) bool {
	ok := c.Set(ctx, inferenceKey(kind, at), result, TTLInference)
	return c.Set(ctx, latestInferenceKey(kind), result, TTLInference) && ok
}

func (c *Cache) LatestInference(ctx context.Context, kind string, dest interface{}) bool {
	return c.Get(ctx, latestInferenceKey(kind), dest)
}

// InferenceHistory returns up to limit cached results for kind, newest first.
func (c *Cache) InferenceHistory(ctx context.Context, kind string, limit int) []json.RawMessage {
	out := []json.RawMessage{}
	if c == nil || kind == latestInferenceTag {
		return out
	}

	keys, err := c.keys(ctx, prefixInference+kind+":*")
	if err != nil {
		c.log.Warn("Failed to list inference history for %s: %v", kind, err)
		return out
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	if len(keys) == 0 {
		return out
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn("Failed to read inference history for %s: %v", kind, err)
		return out
	}
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, json.RawMessage(s))
		}
	}
	return out
}
