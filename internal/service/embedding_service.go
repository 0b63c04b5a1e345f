package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"NetIntelAPI/internal/cache"
	"NetIntelAPI/internal/embedding"
	"NetIntelAPI/internal/logger"
	"NetIntelAPI/internal/models"
	"NetIntelAPI/internal/monitor"
	"NetIntelAPI/internal/repository"
)

const (
	defaultSearchLimit  = 5
	similarityThreshold = 0.8
)

// Embedder turns text into vectors. *embedding.Client satisfies it.
type Embedder interface {
	Enabled() bool
	Model() string
	Dimensions() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

type IEmbeddingService interface {
	Generate(ctx context.Context, kind string, data map[string]interface{}) (interface{}, error)
	Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error)
	Analyze(ctx context.Context, traffic *models.TrafficData) (*models.EmbeddingAnalysis, error)
	Stats(ctx context.Context) (map[string]interface{}, error)
}

type EmbeddingService struct {
	embedder      Embedder
	repo          repository.IEmbeddingRepository
	monitor       *monitor.Monitor
	cache         *cache.Cache
	minSimilarity float64
	log           *logger.Logger
	now           func() time.Time
}

func NewEmbeddingService(
	embedder Embedder,
	repo repository.IEmbeddingRepository,
	mon *monitor.Monitor,
	c *cache.Cache,
	minSimilarity float64,
	log *logger.Logger,
) *EmbeddingService {
	return &EmbeddingService{
		embedder:      embedder,
		repo:          repo,
		monitor:       mon,
		cache:         c,
		minSimilarity: minSimilarity,
		log:           log.With("embeddings"),
		now:           time.Now,
	}
}

func (s *EmbeddingService) ready() error {
	if s.embedder == nil || !s.embedder.Enabled() {
		return ErrEmbedderUnavailable
	}
	if s.repo == nil {
		return ErrStoreUnavailable
	}
	return nil
}

func (s *EmbeddingService) metadata(vector []float32) map[string]interface{} {
	return map[string]interface{}{
		"model_used":           s.embedder.Model(),
		"embedding_dimensions": len(vector),
		"generated_at":         s.now().UTC().Format(time.RFC3339),
	}
}

// Generate describes, embeds and stores one record of the given kind and
// returns the stored row.
func (s *EmbeddingService) Generate(ctx context.Context, kind string, data map[string]interface{}) (interface{}, error) {
	if !models.ValidEmbeddingKind(kind) {
		return nil, invalid("type", "Invalid type: must be traffic, event or metric")
	}
	if len(data) == 0 {
		return nil, missingField("data")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	text := describe(kind, data)
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	switch kind {
	case models.KindTraffic:
		analysisType := str(data, "analysis_type")
		if analysisType == "" {
			analysisType = "traffic_analysis"
		}
		rec := &models.TrafficEmbedding{
			AnalysisType:        analysisType,
			SourceData:          data,
			TextDescription:     text,
			Embedding:           vector,
			RiskScore:           num[int](data, "risk_score"),
			SimilarityThreshold: similarityThreshold,
			Metadata:            s.metadata(vector),
		}
		if err := s.repo.InsertTraffic(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil

	case models.KindEvent:
		rec := &models.EventEmbedding{
			EventType:       str(data, "event_type"),
			Severity:        str(data, "severity"),
			SourceIP:        optional(str(data, "source_ip")),
			RiskScore:       num[int](data, "risk_score"),
			TextDescription: text,
			Embedding:       vector,
			Metadata:        s.metadata(vector),
		}
		if rec.Severity == "" {
			rec.Severity = models.SeverityMedium
		}
		if err := s.repo.InsertEvent(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil

	default:
		rec := &models.MetricEmbedding{
			MetricName:      str(data, "metric_name"),
			MetricValue:     num[float64](data, "metric_value"),
			Source:          optional(str(data, "source")),
			TextDescription: text,
			Embedding:       vector,
			Metadata:        s.metadata(vector),
		}
		if err := s.repo.InsertMetric(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
}

func (s *EmbeddingService) Search(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error) {
	if req.Type == "" {
		req.Type = models.KindTraffic
	}
	if !models.ValidEmbeddingKind(req.Type) {
		return nil, invalid("type", "Invalid type: must be traffic, event or metric")
	}

	query := req.Query
	if query == "" && len(req.Data) > 0 {
		query = describe(req.Type, req.Data)
	}
	if query == "" {
		return nil, invalid("query", "Missing required field: query or data")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	minSim := s.minSimilarity
	if req.MinSimilarity != nil {
		minSim = *req.MinSimilarity
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.repo.Search(ctx, req.Type, models.SimilarityQuery{
		Vector:        vector,
		Filter:        req.Filter,
		Limit:         limit,
		MinSimilarity: minSim,
	})
	if err != nil {
		return nil, err
	}

	return &models.SearchResult{Query: query, Type: req.Type, Results: matches, Total: len(matches)}, nil
}

// Analyze scores traffic, finds earlier analyses close to it and stores the
// new one. Storage failures leave stored_in_database false.
func (s *EmbeddingService) Analyze(ctx context.Context, traffic *models.TrafficData) (*models.EmbeddingAnalysis, error) {
	if s.embedder == nil || !s.embedder.Enabled() {
		return nil, ErrEmbedderUnavailable
	}
	if traffic == nil {
		traffic = &models.TrafficData{}
	}

	analysis := s.monitor.Score(ctx, traffic, s.cache)

	data, err := toMap(traffic)
	if err != nil {
		return nil, err
	}
	data["analysis_type"] = "traffic_analysis"
	data["risk_score"] = analysis.RiskScore
	data["threat_indicators"] = analysis.ThreatsDetected
	data["recommendations"] = analysis.Recommendations
	data["timestamp"] = analysis.Timestamp.UTC().Format(time.RFC3339)
	if stats := s.monitor.Stats(); stats.TotalConnections > 0 {
		data["network_stats"] = map[string]interface{}{
			"total_connections":      stats.TotalConnections,
			"suspicious_connections": stats.SuspiciousConnections,
			"blocked_attempts":       stats.BlockedAttempts,
		}
	}

	text := embedding.DescribeTraffic(data)
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	result := &models.EmbeddingAnalysis{
		Analysis:        analysis,
		TextDescription: text,
		SimilarAnalyses: []models.SimilarityMatch{},
	}
	if s.repo == nil {
		return result, nil
	}

	similar, err := s.repo.Search(ctx, models.KindTraffic, models.SimilarityQuery{
		Vector:        vector,
		Limit:         defaultSearchLimit,
		MinSimilarity: s.minSimilarity,
	})
	if err != nil {
		s.log.Warn("Similarity search failed: %v", err)
	} else {
		result.SimilarAnalyses = similar
		result.AverageSimilarity = averageSimilarity(similar)
	}

	rec := &models.TrafficEmbedding{
		AnalysisType:        "traffic_analysis",
		SourceData:          data,
		TextDescription:     text,
		Embedding:           vector,
		RiskScore:           analysis.RiskScore,
		SimilarityThreshold: similarityThreshold,
		Metadata:            s.metadata(vector),
	}
	if err := s.repo.InsertTraffic(ctx, rec); err != nil {
		s.log.Error("Failed to store traffic embedding: %v", err)
	} else {
		result.EmbeddingID = rec.ID
		result.StoredInDatabase = true
	}

	return result, nil
}

func (s *EmbeddingService) Stats(ctx context.Context) (map[string]interface{}, error) {
	provider := map[string]interface{}{"enabled": false}
	if s.embedder != nil && s.embedder.Enabled() {
		provider = map[string]interface{}{
			"enabled":    true,
			"model":      s.embedder.Model(),
			"dimensions": s.embedder.Dimensions(),
		}
	}

	out := map[string]interface{}{
		"provider": provider,
		"tables":   map[string]models.EmbeddingTableStats{},
	}
	if s.repo == nil {
		return out, nil
	}

	tables, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out["tables"] = tables
	return out, nil
}

func describe(kind string, data map[string]interface{}) string {
	switch kind {
	case models.KindEvent:
		return embedding.DescribeEvent(data)
	case models.KindMetric:
		return embedding.DescribeMetric(data)
	default:
		return embedding.DescribeTraffic(data)
	}
}

func averageSimilarity(matches []models.SimilarityMatch) float64 {
	if len(matches) == 0 {
		return 0
	}
	var sum float64
	for _, m := range matches {
		sum += m.Similarity
	}
	return sum / float64(len(matches))
}

func toMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode traffic: %w", err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode traffic: %w", err)
	}
	return out, nil
}

func str(data map[string]interface{}, key string) string {
	v, _ := data[key].(string)
	return v
}

// num reads a JSON number; decoded bodies carry float64, Go callers may pass ints.
func num[T int | float64](data map[string]interface{}, key string) T {
	switch v := data[key].(type) {
	case float64:
		return T(v)
	case int:
		return T(v)
	case int64:
		return T(v)
	}
	return 0
}
