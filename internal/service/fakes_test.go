package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/guidance"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var errBoom = errors.New("boom")

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger.Discard())
	t.Cleanup(func() { c.Close() })
	return c, mr
}

type fakeEvents struct {
	mu      sync.Mutex
	created []models.SecurityEvent
	list    []models.SecurityEvent
	filter  models.EventFilter
	err     error
}

func (f *fakeEvents) Create(_ context.Context, e *models.SecurityEvent) (*models.SecurityEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := *e
	out.ID = int64(len(f.created) + 1)
	out.Timestamp = time.Now()
	f.created = append(f.created, out)
	return &out, nil
}

func (f *fakeEvents) List(_ context.Context, filter models.EventFilter) ([]models.SecurityEvent, error) {
	f.filter = filter
	return f.list, f.err
}

type fakeMetrics struct {
	mu       sync.Mutex
	recorded []models.NetworkMetric
	list     []models.NetworkMetric
	filter   models.MetricFilter
	err      error
}

func (f *fakeMetrics) Record(_ context.Context, m *models.NetworkMetric) (*models.NetworkMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := *m
	out.ID = int64(len(f.recorded) + 1)
	f.recorded = append(f.recorded, out)
	return &out, nil
}

func (f *fakeMetrics) List(_ context.Context, filter models.MetricFilter) ([]models.NetworkMetric, error) {
	f.filter = filter
	return f.list, f.err
}

func (f *fakeMetrics) named(name string) []models.NetworkMetric {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.NetworkMetric
	for _, m := range f.recorded {
		if m.MetricName == name {
			out = append(out, m)
		}
	}
	return out
}

type fakeIndicators struct {
	added []models.ThreatIntelRecord
	found *models.ThreatIntelRecord
	err   error
}

func (f *fakeIndicators) Add(_ context.Context, rec *models.ThreatIntelRecord) (*models.ThreatIntelRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, *rec)
	return rec, nil
}

func (f *fakeIndicators) FindActive(context.Context, string, string) (*models.ThreatIntelRecord, error) {
	return f.found, f.err
}

func (f *fakeIndicators) List(context.Context, models.IndicatorFilter) ([]models.ThreatIntelRecord, error) {
	return f.added, f.err
}

type fakeSessions struct {
	stored  map[string]*models.UserSession
	touched []string
	err     error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{stored: map[string]*models.UserSession{}}
}

func (f *fakeSessions) Create(_ context.Context, s *models.UserSession) (*models.UserSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *s
	out.ID = int64(len(f.stored) + 1)
	out.Status = models.StatusActive
	out.LoginTime = time.Now()
	out.LastActivity = out.LoginTime
	f.stored[s.SessionID] = &out
	return &out, nil
}

func (f *fakeSessions) GetBySessionID(_ context.Context, id string) (*models.UserSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stored[id], nil
}

func (f *fakeSessions) TouchActivity(_ context.Context, id string) (bool, error) {
	f.touched = append(f.touched, id)
	_, ok := f.stored[id]
	return ok, nil
}

type fakeEmbeddingRepo struct {
	traffic []models.TrafficEmbedding
	events  []models.EventEmbedding
	metrics []models.MetricEmbedding
	matches []models.SimilarityMatch
	query   models.SimilarityQuery
	kind    string
	err     error
}

func (f *fakeEmbeddingRepo) InsertTraffic(_ context.Context, rec *models.TrafficEmbedding) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = int64(len(f.traffic) + 1)
	f.traffic = append(f.traffic, *rec)
	return nil
}

func (f *fakeEmbeddingRepo) InsertEvent(_ context.Context, rec *models.EventEmbedding) error {
	rec.ID = int64(len(f.events) + 1)
	f.events = append(f.events, *rec)
	return f.err
}

func (f *fakeEmbeddingRepo) InsertMetric(_ context.Context, rec *models.MetricEmbedding) error {
	rec.ID = int64(len(f.metrics) + 1)
	f.metrics = append(f.metrics, *rec)
	return f.err
}

func (f *fakeEmbeddingRepo) Search(_ context.Context, kind string, q models.SimilarityQuery) ([]models.SimilarityMatch, error) {
	f.kind = kind
	f.query = q
	return f.matches, nil
}

func (f *fakeEmbeddingRepo) Stats(context.Context) (map[string]models.EmbeddingTableStats, error) {
	return map[string]models.EmbeddingTableStats{
		models.KindTraffic: {Count: int64(len(f.traffic)), AvgRiskScore: 42},
	}, nil
}

type fakeGuidanceRepo struct {
	inserted []models.GuidanceRecord
	query    models.SimilarityQuery
	err      error
}

func (f *fakeGuidanceRepo) Insert(_ context.Context, rec *models.GuidanceRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = int64(len(f.inserted) + 1)
	f.inserted = append(f.inserted, *rec)
	return nil
}

func (f *fakeGuidanceRepo) Recent(_ context.Context, limit int, _ string) ([]models.GuidanceRecord, error) {
	if limit < len(f.inserted) {
		return f.inserted[:limit], nil
	}
	return f.inserted, nil
}

func (f *fakeGuidanceRepo) Similar(_ context.Context, q models.SimilarityQuery) ([]models.SimilarityMatch, error) {
	f.query = q
	return []models.SimilarityMatch{{ID: 1, Kind: models.KindGuidance, Similarity: 0.91}}, nil
}

type fakeEmbedder struct {
	enabled bool
	texts   []string
	err     error
}

func (f *fakeEmbedder) Enabled() bool   { return f.enabled }
func (f *fakeEmbedder) Model() string   { return "embed-test" }
func (f *fakeEmbedder) Dimensions() int { return 3 }

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeAdvisor struct {
	enabled bool
	req     guidance.Request
	err     error
}

func (f *fakeAdvisor) Enabled() bool { return f.enabled }
func (f *fakeAdvisor) Model() string { return "chat-test" }

func (f *fakeAdvisor) Generate(_ context.Context, req guidance.Request) (*guidance.Result, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &guidance.Result{Text: "Block the source.", Tokens: 12, Elapsed: 40 * time.Millisecond}, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []interface{}
	err  error
}

func (f *fakePublisher) PublishAlert(alert interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, alert)
	return f.err
}
