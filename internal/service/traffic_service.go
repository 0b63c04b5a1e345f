package service

import (
	"context"
	"fmt"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/metrics"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"
	"NetIntelAPI/internal/repository"

	"github.com/google/uuid"
)

const (
	MetricRiskScore         = "traffic_analysis_risk_score"
	MetricAnalysisTimestamp = "traffic_analysis_timestamp"

	eventThreshold = 30
	alertThreshold = 50
	highThreshold  = 80
)

type ITrafficService interface {
	Analyze(ctx context.Context, traffic *models.TrafficData) (*models.AnalysisResult, error)
	History(ctx context.Context, limit, offset int, sourceIP string) (*HistoryPage, error)
	Status(ctx context.Context) *models.NetworkStatus
	Suggestions() []string
}

type HistoryPage struct {
	History []models.AnalysisHistoryEntry `json:"history"`
	Total   int                           `json:"total"`
	Limit   int                           `json:"limit"`
	Offset  int                           `json:"offset"`
}

type TrafficService struct {
	monitor       *monitor.Monitor
	alerts        *AlertService
	metricService *MetricService
	metricRepo    repository.IMetricRepository
	events        repository.IEventRepository
	cache         *cache.Cache
	metrics       *metrics.Metrics
	log           *logger.Logger
}

func NewTrafficService(
	mon *monitor.Monitor,
	alerts *AlertService,
	metricService *MetricService,
	metricRepo repository.IMetricRepository,
	events repository.IEventRepository,
	c *cache.Cache,
	m *metrics.Metrics,
	log *logger.Logger,
) *TrafficService {
	return &TrafficService{
		monitor:       mon,
		alerts:        alerts,
		metricService: metricService,
		metricRepo:    metricRepo,
		events:        events,
		cache:         c,
		metrics:       m,
		log:           log.With("traffic"),
	}
}

// Analyze scores a traffic sample and fans the result out to the metric
// store, the event store and the alert path. Only scoring can fail the call.
func (s *TrafficService) Analyze(ctx context.Context, traffic *models.TrafficData) (*models.AnalysisResult, error) {
	if traffic == nil {
		traffic = &models.TrafficData{}
	}

	analysis := s.monitor.Score(ctx, traffic, s.cache)
	s.metrics.ObserveAnalysis(analysis.RiskScore)
	analysisID := uuid.NewString()

	sourceIP := valueOrUnknown(traffic.SourceIP)
	destIP := valueOrUnknown(traffic.DestinationIP)

	stored := s.metricService.recordInternal(ctx, MetricRiskScore, float64(analysis.RiskScore), "score", "traffic_analysis",
		map[string]interface{}{
			"source_ip":              sourceIP,
			"connection_count":       traffic.ConnectionCount,
			"failed_auth_attempts":   traffic.FailedAuthAttempts,
			"threats_detected_count": len(analysis.ThreatsDetected),
			"recommendations_count":  len(analysis.Recommendations),
		})
	s.metricService.recordInternal(ctx, MetricAnalysisTimestamp, float64(analysis.Timestamp.Unix()), "unix_timestamp", "traffic_analysis",
		map[string]interface{}{
			"source_ip":   sourceIP,
			"analysis_id": analysisID,
		})

	if analysis.RiskScore > eventThreshold {
		s.storeEvent(ctx, traffic, analysis, sourceIP, destIP)
	}

	if analysis.RiskScore > alertThreshold {
		severity := models.SeverityMedium
		if analysis.RiskScore > highThreshold {
			severity = models.SeverityHigh
		}
		s.alerts.Raise(ctx, models.AlertInput{
			Severity:      severity,
			Type:          "traffic_analysis",
			Description:   fmt.Sprintf("High risk traffic detected (score: %d)", analysis.RiskScore),
			SourceIP:      sourceIP,
			DestinationIP: destIP,
		})
	}

	s.log.Debug("Analyzed traffic from %s: risk %d", sourceIP, analysis.RiskScore)

	return &models.AnalysisResult{
		Analysis:         analysis,
		AnalysisID:       analysisID,
		StoredInDatabase: stored,
	}, nil
}

func (s *TrafficService) storeEvent(ctx context.Context, traffic *models.TrafficData, analysis models.Analysis, sourceIP, destIP string) {
	if s.events == nil {
		return
	}

	severity := models.SeverityMedium
	if analysis.RiskScore > highThreshold {
		severity = models.SeverityHigh
	}

	event := &models.SecurityEvent{
		EventType:        "traffic_analysis",
		Severity:         severity,
		SourceIP:         &sourceIP,
		DestinationIP:    &destIP,
		SourcePort:       traffic.SourcePort,
		DestinationPort:  traffic.DestinationPort,
		Protocol:         optional(traffic.Protocol),
		CountryCode:      optional(traffic.CountryCode),
		City:             optional(traffic.City),
		RiskScore:        analysis.RiskScore,
		ThreatIndicators: analysis.ThreatsDetected,
		Metadata: map[string]interface{}{
			"traffic_data":     traffic,
			"analysis_results": analysis,
			"recommendations":  analysis.Recommendations,
		},
		Status: models.StatusActive,
	}
	if _, err := s.events.Create(ctx, event); err != nil {
		s.log.Error("Failed to store analysis event for %s: %v", sourceIP, err)
	}
}

// History pages over stored risk-score metrics. The store is over-fetched
// by a factor of two so source filtering still fills most pages.
func (s *TrafficService) History(ctx context.Context, limit, offset int, sourceIP string) (*HistoryPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	page := &HistoryPage{History: []models.AnalysisHistoryEntry{}, Limit: limit, Offset: offset}
	if s.metricRepo == nil {
		return page, nil
	}

	rows, err := s.metricRepo.List(ctx, models.MetricFilter{
		MetricName: MetricRiskScore,
		Period:     models.PeriodRealtime,
		Limit:      limit * 2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis history: %w", err)
	}

	var entries []models.AnalysisHistoryEntry
	for _, row := range rows {
		ip, _ := row.Tags["source_ip"].(string)
		if ip == "" {
			ip = "unknown"
		}
		if sourceIP != "" && ip != sourceIP {
			continue
		}
		entries = append(entries, models.AnalysisHistoryEntry{
			Timestamp:            row.Timestamp,
			RiskScore:            row.MetricValue,
			SourceIP:             ip,
			ConnectionCount:      tagOrZero(row.Tags, "connection_count"),
			FailedAuthAttempts:   tagOrZero(row.Tags, "failed_auth_attempts"),
			ThreatsDetectedCount: tagOrZero(row.Tags, "threats_detected_count"),
			RecommendationsCount: tagOrZero(row.Tags, "recommendations_count"),
		})
	}

	if offset < len(entries) {
		end := offset + limit
		if end > len(entries) {
			end = len(entries)
		}
		page.History = entries[offset:end]
	}
	page.Total = len(page.History)
	return page, nil
}

// Status regenerates the mock network stats on every call.
func (s *TrafficService) Status(ctx context.Context) *models.NetworkStatus {
	stats := s.monitor.GenerateStats()
	s.cache.CacheNetworkStats(ctx, stats)

	return &models.NetworkStatus{
		Status:       "operational",
		Stats:        stats,
		ActiveAlerts: s.monitor.ActiveAlerts(),
		LastUpdated:  time.Now(),
	}
}

func (s *TrafficService) Suggestions() []string {
	return s.monitor.Suggestions()
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func tagOrZero(tags map[string]interface{}, key string) interface{} {
	if v, ok := tags[key]; ok && v != nil {
		return v
	}
	return 0
}
