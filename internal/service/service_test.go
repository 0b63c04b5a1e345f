package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"
	"NetIntelAPI/internal/mqtt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestAlertLifecycle(t *testing.T) {
	c, _ := newTestCache(t)
	mon := monitor.New()
	events := &fakeEvents{}
	svc := NewAlertService(mon, events, c, nil, nil, logger.Discard())

	a := svc.Raise(context.Background(), models.AlertInput{Severity: models.SeverityHigh, Type: "manual", SourceIP: "10.1.1.1"})
	b := svc.Raise(context.Background(), models.AlertInput{})
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, models.SeverityMedium, b.Severity)

	require.Len(t, events.created, 2)
	assert.Equal(t, 80, events.created[0].RiskScore)
	assert.Equal(t, 50, events.created[1].RiskScore)
	assert.Nil(t, events.created[1].SourceIP)

	_, err := svc.UpdateStatus(1, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus(99, models.StatusResolved)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.UpdateStatus(1, models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, got.Status)

	_, err = svc.UpdateStatus(1, models.StatusInvestigating)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	list, err := svc.List(models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.Active)

	_, err = svc.List("closed")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAlertSurvivesBrokenSinks(t *testing.T) {
	mon := monitor.New()
	pub := &fakePublisher{err: errBoom}
	svc := NewAlertService(mon, &fakeEvents{err: errBoom}, nil, pub, nil, logger.Discard())

	a := svc.Raise(context.Background(), models.AlertInput{Type: "x"})
	assert.Equal(t, 1, a.ID)
	assert.Len(t, pub.sent, 1)
	assert.Equal(t, 1, mon.ActiveAlerts())
}

func TestEventServiceWithoutStore(t *testing.T) {
	svc := NewEventService(nil, monitor.New(), nil, logger.Discard())
	ctx := context.Background()

	events, err := svc.List(ctx, models.EventFilter{})
	require.NoError(t, err)
	assert.Empty(t, events)

	_, err = svc.Create(ctx, &models.SecurityEvent{EventType: "scan"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	// validation runs before the store check
	_, err = svc.Create(ctx, &models.SecurityEvent{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing required field: event_type", verr.Message)
}

func TestEventServiceCreate(t *testing.T) {
	repo := &fakeEvents{}
	svc := NewEventService(repo, monitor.New(), nil, logger.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.SecurityEvent{EventType: "scan", Severity: "critical"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	ev, err := svc.Create(ctx, &models.SecurityEvent{EventType: "scan"})
	require.NoError(t, err)
	assert.Equal(t, models.SeverityMedium, ev.Severity)
	assert.Equal(t, models.StatusActive, ev.Status)

	_, err = svc.List(ctx, models.EventFilter{Severity: "high"})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.filter.Limit)
	assert.Equal(t, "high", repo.filter.Severity)
}

func TestLiveEventsAreCached(t *testing.T) {
	c, mr := newTestCache(t)
	svc := NewEventService(nil, monitor.New(monitor.WithSeed(3)), c, logger.Discard())
	ctx := context.Background()

	first := svc.Live(ctx)
	require.Len(t, first, liveEventCount)
	second := svc.Live(ctx)
	assert.Equal(t, first[0].ID, second[0].ID)

	mr.FastForward(61 * time.Second)
	assert.Len(t, svc.Live(ctx), liveEventCount)
}

func TestMetricServiceValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewMetricService(nil, logger.Discard())

	_, err := svc.Record(ctx, models.MetricInput{MetricValue: ptr(1.0)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "metric_name", verr.Field)

	_, err = svc.Record(ctx, models.MetricInput{MetricName: "latency"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "metric_value", verr.Field)

	_, err = svc.Record(ctx, models.MetricInput{MetricName: "latency", MetricValue: ptr(0.0), Period: "yearly"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "period", verr.Field)

	_, err = svc.Record(ctx, models.MetricInput{MetricName: "latency", MetricValue: ptr(0.0)})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	list, err := svc.List(ctx, models.MetricFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMetricServiceRecord(t *testing.T) {
	repo := &fakeMetrics{}
	svc := NewMetricService(repo, logger.Discard())

	m, err := svc.Record(context.Background(), models.MetricInput{MetricName: "latency", MetricValue: ptr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, models.PeriodRealtime, m.Period)
	assert.Equal(t, 0.0, m.MetricValue)

	repo.err = errBoom
	_, err = svc.Record(context.Background(), models.MetricInput{MetricName: "latency", MetricValue: ptr(1.0)})
	assert.ErrorIs(t, err, errBoom)

	_, err = svc.List(context.Background(), models.MetricFilter{})
	assert.Error(t, err)
	assert.Equal(t, 100, repo.filter.Limit)
	assert.Equal(t, models.PeriodRealtime, repo.filter.Period)
}

func TestIndicatorAddAndCheck(t *testing.T) {
	c, _ := newTestCache(t)
	mon := monitor.New()
	repo := &fakeIndicators{}
	svc := NewIndicatorService(mon, repo, c, logger.Discard())
	ctx := context.Background()

	_, err := svc.Add(ctx, models.IndicatorInput{Value: ptr("1.2.3.4"), Description: ptr("x")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing required field: type", verr.Message)

	_, err = svc.Add(ctx, models.IndicatorInput{Type: ptr("ip"), Value: ptr("1.2.3.4")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "description", verr.Field)

	first, err := svc.Add(ctx, models.IndicatorInput{Type: ptr("ip"), Value: ptr("1.2.3.4"), Description: ptr("c2")})
	require.NoError(t, err)
	second, err := svc.Add(ctx, models.IndicatorInput{Type: ptr("domain"), Value: ptr("evil.test"), Description: ptr("phish"), Confidence: "high"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, models.ConfidenceMedium, first.Confidence)
	assert.Len(t, repo.added, 2)
	assert.True(t, c.IsKnownThreat(ctx, "1.2.3.4"))

	assert.Len(t, svc.List(ctx), 2)

	check, err := svc.Check(ctx, "evil.test")
	require.NoError(t, err)
	assert.True(t, check.Known)
	assert.Equal(t, "cache", check.Source)

	_, err = svc.Check(ctx, "nothing.test")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIndicatorCheckFallsBackToStore(t *testing.T) {
	c, _ := newTestCache(t)
	repo := &fakeIndicators{found: &models.ThreatIntelRecord{
		ID: 9, IndicatorType: "ip", IndicatorValue: "9.9.9.9", ConfidenceLevel: "high",
		Description: ptr("botnet"), Active: true,
	}}
	svc := NewIndicatorService(monitor.New(), repo, c, logger.Discard())
	ctx := context.Background()

	check, err := svc.Check(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.Equal(t, "database", check.Source)
	assert.Equal(t, "botnet", check.Indicator.Description)
	assert.True(t, c.IsKnownThreat(ctx, "9.9.9.9"))

	again, err := svc.Check(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.Equal(t, "cache", again.Source)
}

func TestIndicatorListTreatsEmptyCacheAsMiss(t *testing.T) {
	c, _ := newTestCache(t)
	mon := monitor.New()
	svc := NewIndicatorService(mon, nil, c, logger.Discard())
	ctx := context.Background()

	assert.Empty(t, svc.List(ctx))
	mon.AddIndicator(models.ThreatIndicator{Type: "ip", Value: "5.5.5.5"})
	assert.Len(t, svc.List(ctx), 1)
}

func TestSessionLifecycle(t *testing.T) {
	c, _ := newTestCache(t)
	repo := newFakeSessions()
	svc := NewSessionService(repo, c, logger.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, map[string]interface{}{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "No session data provided", verr.Message)

	s, err := svc.Create(ctx, map[string]interface{}{
		"user_id":       "u1",
		"ip_address":    "10.0.0.1",
		"location_data": map[string]interface{}{"city": "Nairobi"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, s.SessionID)
	assert.Equal(t, "u1", *s.UserID)
	assert.Equal(t, "Nairobi", s.LocationData["city"])

	got, err := svc.Get(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, s.SessionID, got.SessionID)
	assert.Empty(t, repo.touched)

	assert.True(t, svc.Delete(ctx, s.SessionID))
	got, err = svc.Get(ctx, s.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{s.SessionID}, repo.touched)
	assert.Equal(t, "10.0.0.1", *got.IPAddress)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionWithoutStore(t *testing.T) {
	svc := NewSessionService(nil, nil, logger.Discard())
	_, err := svc.Create(context.Background(), map[string]interface{}{"user_id": "u1"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInferenceResults(t *testing.T) {
	c, _ := newTestCache(t)
	repo := &fakeMetrics{}
	svc := NewInferenceService(NewMetricService(repo, logger.Discard()), c, logger.Discard())
	ctx := context.Background()

	res := svc.Infer(ctx, "")
	assert.Equal(t, InferenceTraffic, res["inference_type"])
	assert.Equal(t, 75, res["risk_score"])

	res = svc.Infer(ctx, InferenceClassification)
	assert.Equal(t, "DDoS", res["threat_type"])

	res = svc.Infer(ctx, "quantum")
	assert.Equal(t, "unknown_type", res["status"])
	assert.Equal(t, "Inference type quantum not supported", res["message"])

	recorded := repo.named("ai_inference")
	require.Len(t, recorded, 3)
	assert.Equal(t, 150.0, recorded[0].MetricValue)
	assert.Equal(t, 0.92, recorded[0].Tags["confidence"])
	assert.Equal(t, 0, recorded[1].Tags["confidence"])
	assert.Equal(t, 0.0, recorded[2].MetricValue)

	var latest map[string]interface{}
	require.True(t, c.LatestInference(ctx, InferenceClassification, &latest))
	assert.Equal(t, "DDoS", latest["threat_type"])

	history := svc.History(ctx, InferenceTraffic, 0)
	require.Len(t, history, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(history[0], &entry))
	assert.Equal(t, 0.85, entry["threat_probability"])
}

func TestInferenceBatchAndModels(t *testing.T) {
	svc := NewInferenceService(nil, nil, logger.Discard())

	batch := svc.Batch([]map[string]interface{}{{"type": "traffic_analysis"}, {}, {"type": "x"}})
	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, 3, batch.TotalRequests)
	assert.Equal(t, "unknown", batch.Results[1].InferenceType)
	assert.Equal(t, 75, batch.Results[2].Result["risk_score"])
	assert.Equal(t, 0.84, batch.Results[2].Result["confidence"])
	assert.Equal(t, 100+110+120, batch.ProcessingTimeMs)

	empty := svc.Batch(nil)
	assert.Equal(t, 0, empty.TotalRequests)
	assert.NotNil(t, empty.Results)

	catalogue := svc.Models()
	require.Len(t, catalogue, 3)
	assert.Equal(t, []string{"threat_classification", "malware_detection"}, catalogue[1].SupportedTypes)
}

func TestEmbeddingServiceUnavailable(t *testing.T) {
	ctx := context.Background()

	svc := NewEmbeddingService(&fakeEmbedder{}, &fakeEmbeddingRepo{}, monitor.New(), nil, 0.7, logger.Discard())
	_, err := svc.Generate(ctx, models.KindTraffic, map[string]interface{}{"risk_score": 1})
	assert.ErrorIs(t, err, ErrEmbedderUnavailable)
	_, err = svc.Analyze(ctx, &models.TrafficData{})
	assert.ErrorIs(t, err, ErrEmbedderUnavailable)

	svc = NewEmbeddingService(&fakeEmbedder{enabled: true}, nil, monitor.New(), nil, 0.7, logger.Discard())
	_, err = svc.Search(ctx, models.SearchRequest{Query: "ddos"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = svc.Generate(ctx, "guidance", map[string]interface{}{"a": 1})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEmbeddingGenerateRecords(t *testing.T) {
	repo := &fakeEmbeddingRepo{}
	emb := &fakeEmbedder{enabled: true}
	svc := NewEmbeddingService(emb, repo, monitor.New(), nil, 0.7, logger.Discard())
	ctx := context.Background()

	out, err := svc.Generate(ctx, models.KindTraffic, map[string]interface{}{"risk_score": 85.0, "source_ip": "10.0.0.5"})
	require.NoError(t, err)
	rec := out.(*models.TrafficEmbedding)
	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, 85, rec.RiskScore)
	assert.Equal(t, "traffic_analysis", rec.AnalysisType)
	assert.Equal(t, 0.8, rec.SimilarityThreshold)
	assert.Equal(t, "embed-test", rec.Metadata["model_used"])
	assert.Contains(t, emb.texts[0], "Source IP: 10.0.0.5")

	out, err = svc.Generate(ctx, models.KindEvent, map[string]interface{}{"event_type": "scan", "source_ip": "1.1.1.1"})
	require.NoError(t, err)
	ev := out.(*models.EventEmbedding)
	assert.Equal(t, models.SeverityMedium, ev.Severity)
	assert.Equal(t, "1.1.1.1", *ev.SourceIP)

	out, err = svc.Generate(ctx, models.KindMetric, map[string]interface{}{"metric_name": "rtt", "metric_value": 12.5})
	require.NoError(t, err)
	assert.Equal(t, 12.5, out.(*models.MetricEmbedding).MetricValue)

	emb.err = errBoom
	_, err = svc.Generate(ctx, models.KindTraffic, map[string]interface{}{"risk_score": 1})
	assert.ErrorIs(t, err, errBoom)
}

func TestEmbeddingSearchDefaults(t *testing.T) {
	repo := &fakeEmbeddingRepo{matches: []models.SimilarityMatch{{ID: 3, Similarity: 0.9}}}
	svc := NewEmbeddingService(&fakeEmbedder{enabled: true}, repo, monitor.New(), nil, 0.7, logger.Discard())
	ctx := context.Background()

	res, err := svc.Search(ctx, models.SearchRequest{Query: "port scan"})
	require.NoError(t, err)
	assert.Equal(t, models.KindTraffic, res.Type)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 5, repo.query.Limit)
	assert.Equal(t, 0.7, repo.query.MinSimilarity)

	res, err = svc.Search(ctx, models.SearchRequest{
		Data:          map[string]interface{}{"event_type": "scan", "severity": "high"},
		Type:          models.KindEvent,
		Limit:         2,
		MinSimilarity: ptr(0.5),
		Filter:        map[string]string{"severity": "high"},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Query, "Security event: scan with high severity")
	assert.Equal(t, models.KindEvent, repo.kind)
	assert.Equal(t, 2, repo.query.Limit)
	assert.Equal(t, 0.5, repo.query.MinSimilarity)
	assert.Equal(t, "high", repo.query.Filter["severity"])

	_, err = svc.Search(ctx, models.SearchRequest{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEmbeddingAnalyze(t *testing.T) {
	repo := &fakeEmbeddingRepo{matches: []models.SimilarityMatch{{Similarity: 0.9}, {Similarity: 0.7}}}
	svc := NewEmbeddingService(&fakeEmbedder{enabled: true}, repo, monitor.New(), nil, 0.7, logger.Discard())

	res, err := svc.Analyze(context.Background(), &models.TrafficData{SourceIP: "10.0.0.7", ConnectionCount: 1200})
	require.NoError(t, err)
	assert.Equal(t, monitor.HighVolumeWeight, res.Analysis.RiskScore)
	assert.True(t, res.StoredInDatabase)
	assert.Equal(t, int64(1), res.EmbeddingID)
	assert.InDelta(t, 0.8, res.AverageSimilarity, 1e-9)
	assert.Contains(t, res.TextDescription, "Risk assessment: 30 risk score")

	require.Len(t, repo.traffic, 1)
	assert.Equal(t, 30, repo.traffic[0].RiskScore)

	repo.err = errBoom
	res, err = svc.Analyze(context.Background(), &models.TrafficData{})
	require.NoError(t, err)
	assert.False(t, res.StoredInDatabase)
}

func TestEmbeddingStats(t *testing.T) {
	svc := NewEmbeddingService(&fakeEmbedder{enabled: true}, &fakeEmbeddingRepo{}, monitor.New(), nil, 0.7, logger.Discard())
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "embed-test", stats["provider"].(map[string]interface{})["model"])

	svc = NewEmbeddingService(nil, nil, monitor.New(), nil, 0.7, logger.Discard())
	stats, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, stats["provider"].(map[string]interface{})["enabled"])
}

func TestGuidanceGenerate(t *testing.T) {
	advisor := &fakeAdvisor{enabled: true}
	emb := &fakeEmbedder{enabled: true}
	repo := &fakeGuidanceRepo{}
	svc := NewGuidanceService(advisor, emb, repo, monitor.New(), nil, 0.7, logger.Discard())
	ctx := context.Background()

	_, err := svc.Generate(ctx, models.GuidanceInput{SourceIP: "10.0.0.1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	resp, err := svc.Generate(ctx, models.GuidanceInput{
		Traffic: &models.TrafficData{SourceIP: "10.0.0.1", FailedAuthAttempts: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, monitor.FailedAuthWeight, advisor.req.RiskScore)
	assert.Equal(t, "10.0.0.1", advisor.req.SourceIP)
	assert.Equal(t, "Block the source.", resp.Guidance)
	assert.Equal(t, "chat-test", resp.ModelUsed)
	assert.Equal(t, int64(40), resp.ProcessingTimeMs)
	assert.True(t, resp.Embedded)
	assert.True(t, resp.Stored)
	require.Len(t, repo.inserted, 1)
	assert.Len(t, repo.inserted[0].Embedding, 3)
	assert.Contains(t, emb.texts[0], "AI Guidance Summary:")
}

func TestGuidanceDegrades(t *testing.T) {
	ctx := context.Background()

	svc := NewGuidanceService(&fakeAdvisor{}, nil, nil, monitor.New(), nil, 0.7, logger.Discard())
	_, err := svc.Generate(ctx, models.GuidanceInput{RiskScore: ptr(10)})
	assert.ErrorIs(t, err, ErrAdvisorUnavailable)

	repo := &fakeGuidanceRepo{err: errBoom}
	svc = NewGuidanceService(&fakeAdvisor{enabled: true}, &fakeEmbedder{enabled: true, err: errBoom}, repo, monitor.New(), nil, 0.7, logger.Discard())
	resp, err := svc.Generate(ctx, models.GuidanceInput{RiskScore: ptr(10)})
	require.NoError(t, err)
	assert.False(t, resp.Embedded)
	assert.False(t, resp.Stored)
	assert.Equal(t, "unknown", resp.SourceIP)

	advisorErr := errors.New("upstream 502")
	svc = NewGuidanceService(&fakeAdvisor{enabled: true, err: advisorErr}, nil, nil, monitor.New(), nil, 0.7, logger.Discard())
	_, err = svc.Generate(ctx, models.GuidanceInput{RiskScore: ptr(10)})
	assert.ErrorIs(t, err, advisorErr)
}

func TestGuidanceSimilarAndHistory(t *testing.T) {
	repo := &fakeGuidanceRepo{}
	svc := NewGuidanceService(&fakeAdvisor{enabled: true}, &fakeEmbedder{enabled: true}, repo, monitor.New(), nil, 0.7, logger.Discard())
	ctx := context.Background()

	matches, err := svc.Similar(ctx, models.SimilarGuidanceRequest{Query: "brute force", SourceIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, "10.0.0.1", repo.query.Filter["source_ip"])
	assert.Equal(t, 5, repo.query.Limit)

	_, err = svc.Similar(ctx, models.SimilarGuidanceRequest{})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	for i := 0; i < 3; i++ {
		_, err := svc.Generate(ctx, models.GuidanceInput{RiskScore: ptr(i)})
		require.NoError(t, err)
	}
	history, err := svc.History(ctx, 2, "")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	empty := NewGuidanceService(nil, nil, nil, monitor.New(), nil, 0.7, logger.Discard())
	history, err = empty.History(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, history)
}

type brokerStub bool

func (b brokerStub) IsConnected() bool { return bool(b) }

func (b brokerStub) Health() mqtt.HealthStatus {
	return mqtt.HealthStatus{Connected: bool(b), TrafficTopic: "netintel/traffic/+"}
}

func TestHealthCheck(t *testing.T) {
	c, _ := newTestCache(t)
	resp := NewHealthService(nil, c, brokerStub(false)).Check(context.Background())
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
	assert.True(t, resp.Services.Redis)
	assert.False(t, resp.Services.Database)
	require.NotNil(t, resp.Services.MQTT)
	assert.False(t, *resp.Services.MQTT)

	resp = NewHealthService(nil, nil, nil).Check(context.Background())
	assert.False(t, resp.Services.Redis)
	assert.Nil(t, resp.Services.MQTT)

	ready, detail := NewHealthService(nil, nil, nil).Ready(context.Background())
	assert.True(t, ready)
	assert.Equal(t, "disabled", detail["database"])
	assert.NotContains(t, detail, "mqtt")

	_, detail = NewHealthService(nil, nil, brokerStub(true)).Ready(context.Background())
	assert.Equal(t, mqtt.HealthStatus{Connected: true, TrafficTopic: "netintel/traffic/+"}, detail["mqtt"])
}

func TestBackgroundMarksStaleAlerts(t *testing.T) {
	c, _ := newTestCache(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	mon := monitor.New(monitor.WithClock(func() time.Time { return clock }))

	mon.AddAlert(models.AlertInput{Type: "old"})
	clock = base.Add(25 * time.Hour)
	mon.AddAlert(models.AlertInput{Type: "fresh"})

	bg := NewBackgroundMonitor(mon, c, time.Minute, 24*time.Hour, logger.Discard())
	bg.now = func() time.Time { return clock }

	assert.Equal(t, 1, bg.RunOnce(context.Background()))
	assert.Equal(t, 1, mon.ActiveAlerts())
	assert.Equal(t, 0, bg.RunOnce(context.Background()))

	var stats models.NetworkStats
	require.True(t, c.NetworkStats(context.Background(), &stats))
	assert.True(t, stats.LastUpdated.Equal(clock))
}

func TestBackgroundStartShutdown(t *testing.T) {
	bg := NewBackgroundMonitor(monitor.New(), nil, 5*time.Millisecond, 0, logger.Discard())
	bg.Start()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		bg.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background monitor did not stop")
	}
}
