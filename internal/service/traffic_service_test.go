package service

import (
	"context"
	"testing"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/metrics"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trafficFixture struct {
	svc       *TrafficService
	alerts    *AlertService
	mon       *monitor.Monitor
	cache     *cache.Cache
	events    *fakeEvents
	metrics   *fakeMetrics
	publisher *fakePublisher
}

func newTrafficFixture(t *testing.T) *trafficFixture {
	t.Helper()
	c, _ := newTestCache(t)
	mon := monitor.New(monitor.WithSeed(7))
	events := &fakeEvents{}
	metricRepo := &fakeMetrics{}
	pub := &fakePublisher{}
	m := metrics.New()
	log := logger.Discard()

	alerts := NewAlertService(mon, events, c, pub, m, log)
	ms := NewMetricService(metricRepo, log)
	return &trafficFixture{
		svc:       NewTrafficService(mon, alerts, ms, metricRepo, events, c, m, log),
		alerts:    alerts,
		mon:       mon,
		cache:     c,
		events:    events,
		metrics:   metricRepo,
		publisher: pub,
	}
}

func TestAnalyzeHighRiskFansOut(t *testing.T) {
	f := newTrafficFixture(t)
	ctx := context.Background()

	res, err := f.svc.Analyze(ctx, &models.TrafficData{
		SourceIP:           "10.0.0.9",
		ConnectionCount:    1500,
		FailedAuthAttempts: 20,
		UnusualPorts:       []interface{}{4444},
	})
	require.NoError(t, err)

	assert.Equal(t, 100, res.RiskScore)
	assert.Len(t, res.ThreatsDetected, 3)
	assert.True(t, res.StoredInDatabase)
	assert.NotEmpty(t, res.AnalysisID)

	risk := f.metrics.named(MetricRiskScore)
	require.Len(t, risk, 1)
	assert.Equal(t, 100.0, risk[0].MetricValue)
	assert.Equal(t, "10.0.0.9", risk[0].Tags["source_ip"])
	assert.Equal(t, 3, risk[0].Tags["threats_detected_count"])

	stamp := f.metrics.named(MetricAnalysisTimestamp)
	require.Len(t, stamp, 1)
	assert.Equal(t, res.AnalysisID, stamp[0].Tags["analysis_id"])

	// one analysis event plus the durable copy of the alert
	require.Len(t, f.events.created, 2)
	event := f.events.created[0]
	assert.Equal(t, "traffic_analysis", event.EventType)
	assert.Equal(t, models.SeverityHigh, event.Severity)
	assert.Equal(t, "unknown", *event.DestinationIP)
	assert.Equal(t, res.ThreatsDetected, event.ThreatIndicators)

	list, err := f.alerts.List("active")
	require.NoError(t, err)
	require.Len(t, list.Alerts, 1)
	assert.Equal(t, models.SeverityHigh, list.Alerts[0].Severity)
	assert.Equal(t, "High risk traffic detected (score: 100)", list.Alerts[0].Description)
	assert.Len(t, f.publisher.sent, 1)
}

func TestAnalyzeKnownThreatIsMediumAlert(t *testing.T) {
	f := newTrafficFixture(t)
	ctx := context.Background()
	f.cache.MarkKnownThreat(ctx, "203.0.113.15")

	res, err := f.svc.Analyze(ctx, &models.TrafficData{SourceIP: "203.0.113.15"})
	require.NoError(t, err)
	assert.Equal(t, monitor.KnownThreatWeight, res.RiskScore)
	assert.Equal(t, "Known threat IP: 203.0.113.15", res.ThreatsDetected[0])

	list, _ := f.alerts.List("all")
	require.Len(t, list.Alerts, 1)
	assert.Equal(t, models.SeverityMedium, list.Alerts[0].Severity)
	assert.Equal(t, models.SeverityMedium, f.events.created[0].Severity)
}

func TestAnalyzeThresholds(t *testing.T) {
	f := newTrafficFixture(t)
	ctx := context.Background()

	// 30 does not pass the event threshold
	_, err := f.svc.Analyze(ctx, &models.TrafficData{ConnectionCount: 2000})
	require.NoError(t, err)
	assert.Empty(t, f.events.created)

	// 50 stores an event but raises nothing
	_, err = f.svc.Analyze(ctx, &models.TrafficData{FailedAuthAttempts: 11})
	require.NoError(t, err)
	assert.Len(t, f.events.created, 1)
	assert.Equal(t, 0, f.mon.ActiveAlerts())
}

func TestAnalyzeEmptyTrafficWithoutStore(t *testing.T) {
	mon := monitor.New(monitor.WithSeed(1))
	log := logger.Discard()
	alerts := NewAlertService(mon, nil, nil, nil, nil, log)
	svc := NewTrafficService(mon, alerts, NewMetricService(nil, log), nil, nil, nil, nil, log)

	res, err := svc.Analyze(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.RiskScore)
	assert.Empty(t, res.ThreatsDetected)
	assert.False(t, res.StoredInDatabase)
}

func TestAnalyzeSurvivesMetricFailure(t *testing.T) {
	f := newTrafficFixture(t)
	f.metrics.err = errBoom

	res, err := f.svc.Analyze(context.Background(), &models.TrafficData{UnusualPorts: []interface{}{23}})
	require.NoError(t, err)
	assert.Equal(t, monitor.UnusualPortsWeight, res.RiskScore)
	assert.False(t, res.StoredInDatabase)
}

func TestHistoryFiltersAndPages(t *testing.T) {
	f := newTrafficFixture(t)
	now := time.Now()
	f.metrics.list = []models.NetworkMetric{
		{Timestamp: now, MetricValue: 100, Tags: map[string]interface{}{"source_ip": "10.0.0.1", "connection_count": 1500.0}},
		{Timestamp: now, MetricValue: 20, Tags: map[string]interface{}{"source_ip": "10.0.0.2"}},
		{Timestamp: now, MetricValue: 50, Tags: map[string]interface{}{"source_ip": "10.0.0.1"}},
		{Timestamp: now, MetricValue: 0, Tags: nil},
	}

	page, err := f.svc.History(context.Background(), 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 40, f.metrics.filter.Limit)
	assert.Equal(t, MetricRiskScore, f.metrics.filter.MetricName)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, "unknown", page.History[3].SourceIP)
	assert.Equal(t, 0, page.History[3].ConnectionCount)

	page, err = f.svc.History(context.Background(), 1, 1, "10.0.0.1")
	require.NoError(t, err)
	require.Len(t, page.History, 1)
	assert.Equal(t, 50.0, page.History[0].RiskScore)

	page, err = f.svc.History(context.Background(), 5, 10, "")
	require.NoError(t, err)
	assert.Empty(t, page.History)
}

func TestStatusCachesStats(t *testing.T) {
	f := newTrafficFixture(t)
	ctx := context.Background()

	status := f.svc.Status(ctx)
	assert.Equal(t, "operational", status.Status)
	assert.GreaterOrEqual(t, status.Stats.TotalConnections, 800)

	var cached models.NetworkStats
	require.True(t, f.cache.NetworkStats(ctx, &cached))
	assert.Equal(t, status.Stats.TotalConnections, cached.TotalConnections)
	assert.Len(t, f.svc.Suggestions(), 3)
}
